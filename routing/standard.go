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
)

func (r *router) routeStandard() error {
	sharding := r.shardingTables()
	if len(sharding) == 0 {
		return core.NewRoutingError("standard routing requires a sharding table, found %v", r.tables)
	}
	tr, err := r.tableRule(sharding[0])
	if err != nil {
		return err
	}
	nodes, err := r.routeNodes(tr, r.ctx.groups())
	if err != nil {
		return err
	}
	for _, n := range nodes {
		r.result.add(&Unit{
			DataSource:   n.node.DataSource,
			TableMappers: r.mappers(map[string]string{core.TrimAndLower(sharding[0]): n.node.Table}),
			Rows:         n.rows,
		})
	}
	return nil
}

//routeBinding routes the first sharding table and maps every other member of its binding group by node position
func (r *router) routeBinding() error {
	sharding := r.shardingTables()
	primary, err := r.tableRule(sharding[0])
	if err != nil {
		return err
	}
	members := make([]*core.TableRule, 0, len(sharding)-1)
	for _, name := range sharding[1:] {
		tr, err := r.tableRule(name)
		if err != nil {
			return err
		}
		members = append(members, tr)
	}

	groups := r.ctx.groups()
	retargeted := make(core.ShardingConditions, len(groups))
	for i, g := range groups {
		retargeted[i] = g.WithTable(primary.LogicTable, sharding[1:]...)
	}

	nodes, err := r.routeNodes(primary, retargeted)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		actual := map[string]string{core.TrimAndLower(primary.LogicTable): n.node.Table}
		for _, m := range members {
			if n.index >= len(m.ActualDataNodes()) {
				return core.NewRoutingError("binding table '%s' has no data node at position %d", m.LogicTable, n.index)
			}
			actual[core.TrimAndLower(m.LogicTable)] = m.ActualDataNodes()[n.index].Table
		}
		r.result.add(&Unit{
			DataSource:   n.node.DataSource,
			TableMappers: r.mappers(actual),
			Rows:         n.rows,
		})
	}
	return nil
}
