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

//routeComplex routes every sharding table independently and joins them by cartesian product in each common data source
func (r *router) routeComplex() error {
	sharding := r.shardingTables()
	logger.Debugf("complex routing is used for tables %v, the route is degraded", sharding)

	groups := r.ctx.groups()
	tablesByDs := make([]map[string][]string, len(sharding))
	var common *strset.Set
	var dsOrder []string
	for i, name := range sharding {
		tr, err := r.tableRule(name)
		if err != nil {
			return err
		}
		nodes, err := r.routeNodes(tr, groups)
		if err != nil {
			return err
		}
		byDs := make(map[string][]string)
		dataSources := strset.New()
		for _, n := range nodes {
			if !dataSources.Has(n.node.DataSource) {
				dataSources.Add(n.node.DataSource)
				if i == 0 {
					dsOrder = append(dsOrder, n.node.DataSource)
				}
			}
			byDs[n.node.DataSource] = append(byDs[n.node.DataSource], n.node.Table)
		}
		tablesByDs[i] = byDs
		if common == nil {
			common = dataSources
		} else {
			common = strset.Intersection(common, dataSources)
		}
	}

	if common == nil || common.IsEmpty() {
		return core.NewRoutingError("tables %v can not be routed to a common data source", sharding)
	}

	total := 0
	for _, ds := range dsOrder {
		if !common.Has(ds) {
			continue
		}
		product := 1
		for i := range sharding {
			product *= len(tablesByDs[i][ds])
		}
		total += product
	}

	props := r.rule.Props()
	if props.MaxCartesianUnits > 0 && total > props.MaxCartesianUnits {
		return core.NewRoutingError("complex routing of tables %v produces %d units, exceeds the limit %d", sharding, total, props.MaxCartesianUnits)
	}
	if total > props.CartesianWarnThreshold {
		cartesianLogger.Warnf("complex routing of tables %v produces %d units", sharding, total)
	}

	for _, ds := range dsOrder {
		if !common.Has(ds) {
			continue
		}
		lists := make([][]string, len(sharding))
		for i := range sharding {
			lists[i] = tablesByDs[i][ds]
		}
		for _, combination := range core.Permute(lists) {
			actual := make(map[string]string, len(sharding))
			for i, name := range sharding {
				actual[core.TrimAndLower(name)] = combination[i]
			}
			r.result.add(&Unit{DataSource: ds, TableMappers: r.mappers(actual)})
		}
	}
	return nil
}
