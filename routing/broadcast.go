/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 *  File author: Anders Xiao
 */

package routing

import (
	"github.com/endink/shardroute/core"
	"github.com/scylladb/go-set/strset"
)

func (r *router) routeDatabaseBroadcast() error {
	for _, ds := range r.rule.DataSourceNames() {
		r.result.add(r.identityUnit(ds))
	}
	return nil
}

func (r *router) routeInstanceBroadcast() error {
	for _, ds := range r.rule.InstanceDataSources() {
		r.result.add(r.identityUnit(ds))
	}
	return nil
}

//routeTableBroadcast sends the statement to every actual node of the sharding tables it names,
//several tables must belong to one binding group so they can be mapped by node position
func (r *router) routeTableBroadcast() error {
	sharding := r.shardingTables()
	if len(sharding) > 1 && !r.rule.IsAllBindingTables(sharding) {
		return core.NewRoutingError("statement on sharding tables %v can only be broadcast when they are binding tables", sharding)
	}
	rules := make([]*core.TableRule, len(sharding))
	for i, name := range sharding {
		tr, err := r.tableRule(name)
		if err != nil {
			return err
		}
		rules[i] = tr
	}
	for idx, node := range rules[0].ActualDataNodes() {
		actual := make(map[string]string, len(rules))
		for _, tr := range rules {
			actual[core.TrimAndLower(tr.LogicTable)] = tr.ActualDataNodes()[idx].Table
		}
		r.result.add(&Unit{DataSource: node.DataSource, TableMappers: r.mappers(actual)})
	}
	return nil
}

//routeDataSourceGroupBroadcast picks one data source of every group of data sources sharing table rules
func (r *router) routeDataSourceGroupBroadcast() error {
	var candidates []*strset.Set
	for _, tr := range r.rule.TableRules() {
		group := strset.New(tr.DataSources()...)
		merged := false
		for i, c := range candidates {
			if common := strset.Intersection(c, group); !common.IsEmpty() {
				candidates[i] = common
				merged = true
				break
			}
		}
		if !merged {
			candidates = append(candidates, group)
		}
	}

	if len(candidates) == 0 {
		names := r.rule.DataSourceNames()
		if len(names) == 0 {
			return core.NewRoutingError("no data source is configured")
		}
		r.result.add(r.identityUnit(names[0]))
		return nil
	}
	for _, c := range candidates {
		for _, ds := range r.rule.DataSourceNames() {
			if c.Has(ds) {
				r.result.add(r.identityUnit(ds))
				break
			}
		}
	}
	return nil
}
