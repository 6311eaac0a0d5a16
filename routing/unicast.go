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

//routeUnicast routes to the first data source shared by every table, sharding tables take their first actual table there
func (r *router) routeUnicast() error {
	names := r.rule.DataSourceNames()
	candidates := strset.New(names...)
	for _, t := range r.tables {
		if r.rule.IsBroadcastTable(t) {
			continue
		}
		if tr, ok := r.rule.FindTableRule(t); ok {
			candidates = strset.Intersection(candidates, strset.New(tr.DataSources()...))
			continue
		}
		ds, ok := r.rule.SingleTableDataSource(t)
		if !ok {
			ds = r.rule.DefaultDataSource()
		}
		if ds == "" {
			continue
		}
		candidates = strset.Intersection(candidates, strset.New(ds))
	}

	target := ""
	for _, ds := range names {
		if candidates.Has(ds) {
			target = ds
			break
		}
	}
	if target == "" {
		return core.NewRoutingError("tables %v have no common data source", r.tables)
	}

	actual := make(map[string]string)
	for _, t := range r.tables {
		if tr, ok := r.rule.FindTableRule(t); ok {
			actual[core.TrimAndLower(t)] = tr.ActualTablesIn(target)[0]
		}
	}
	r.result.add(&Unit{DataSource: target, TableMappers: r.mappers(actual)})
	return nil
}

//routeUnconfigured routes tables outside the sharding rule to the single data source holding all of them
func (r *router) routeUnconfigured() error {
	target := ""
	for _, t := range r.tables {
		if r.rule.IsBroadcastTable(t) {
			continue
		}
		ds, ok := r.rule.SingleTableDataSource(t)
		if !ok {
			ds = r.rule.DefaultDataSource()
		}
		if ds == "" {
			return core.NewRoutingError("table '%s' is neither configured nor found in any data source", t)
		}
		if target != "" && target != ds {
			return core.NewRoutingError("unconfigured tables %v are located in different data sources", r.tables)
		}
		target = ds
	}
	if target == "" {
		return core.NewRoutingError("no data source found for tables %v", r.tables)
	}
	r.result.add(r.identityUnit(target))
	return nil
}

//routeDatabaseHint routes by the hint database values only, table names are kept
func (r *router) routeDatabaseHint() error {
	names := r.rule.DataSourceNames()
	values := r.ctx.Hint.databaseValues()
	strategy := r.rule.DefaultDatabaseStrategy()

	var targets []string
	if strategy.Type == core.StrategyHint {
		logic := ""
		if len(r.tables) > 0 {
			logic = r.tables[0]
		}
		inv := &invoker{logicTable: logic, strategy: strategy, hintValues: values}
		routed, err := inv.route(names, core.NewConditionGroup())
		if err != nil {
			return err
		}
		targets = routed
	} else {
		for _, v := range values {
			ds, ok := v.(string)
			if !ok {
				return core.NewRoutingError("database hint value '%v' is not a data source name", v)
			}
			for _, name := range names {
				if name == ds && !core.ContainsIgnoreCase(targets, name) {
					targets = append(targets, name)
				}
			}
		}
	}
	if len(targets) == 0 {
		return core.NewRoutingError("no data source found for database hint %v", values)
	}
	for _, ds := range targets {
		r.result.add(r.identityUnit(ds))
	}
	return nil
}
