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
	"time"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/logging"
	"go.uber.org/zap/zapcore"
)

var logger = logging.GetLogger("routing")

var cartesianLogger = logging.NewThrottledLogger("cartesian", logger, 10*time.Second)

//Route selects the strategy of the statement and computes its units
func Route(rule *core.ShardingRule, ctx *Context) (*Result, error) {
	kind := SelectStrategy(ctx.Kind, ctx.Tables, rule, ctx.Hint)
	return RouteWith(kind, rule, ctx)
}

//RouteWith computes the units of the statement with the given strategy
func RouteWith(kind StrategyKind, rule *core.ShardingRule, ctx *Context) (*Result, error) {
	r := &router{
		rule:   rule,
		ctx:    ctx,
		tables: distinctTables(ctx.Tables),
		result: newResult(kind),
	}

	var err error
	switch kind {
	case StrategyStandard:
		err = r.routeStandard()
	case StrategyBinding:
		err = r.routeBinding()
	case StrategyComplex:
		err = r.routeComplex()
	case StrategyDatabaseBroadcast:
		err = r.routeDatabaseBroadcast()
	case StrategyTableBroadcast:
		err = r.routeTableBroadcast()
	case StrategyInstanceBroadcast:
		err = r.routeInstanceBroadcast()
	case StrategyDataSourceGroupBroadcast:
		err = r.routeDataSourceGroupBroadcast()
	case StrategyUnicast:
		err = r.routeUnicast()
	case StrategyUnconfigured:
		err = r.routeUnconfigured()
	case StrategyDatabaseHint:
		err = r.routeDatabaseHint()
	default:
		err = core.NewRoutingError("unknown routing strategy %d", kind)
	}
	if err != nil {
		return nil, err
	}
	if r.result.IsEmpty() {
		return nil, core.NewRoutingError("no route found for %s statement on %v", ctx.Kind, ctx.Tables)
	}
	if logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		logger.Debugf("%s statement on %v routed: %s", ctx.Kind, ctx.Tables, r.result)
	}
	return r.result, nil
}

type router struct {
	rule   *core.ShardingRule
	ctx    *Context
	tables []string
	result *Result
}

//routedNode is a data node selected for a table with the insert rows routed to it
type routedNode struct {
	index int
	node  core.DataNode
	rows  []int
}

//routeNodes routes one sharding table over every condition group, nodes are returned in actual data node order
func (r *router) routeNodes(tr *core.TableRule, groups core.ShardingConditions) ([]*routedNode, error) {
	dbInvoker := &invoker{logicTable: tr.LogicTable, strategy: tr.DatabaseStrategy, hintValues: r.ctx.Hint.databaseValues()}
	tableInvoker := &invoker{logicTable: tr.LogicTable, strategy: tr.TableStrategy, hintValues: r.ctx.Hint.tableValues()}

	routed := make(map[int]*routedNode)
	for _, group := range groups {
		dataSources, err := dbInvoker.route(tr.DataSources(), group)
		if err != nil {
			return nil, err
		}
		if len(dataSources) == 0 {
			return nil, core.NewRoutingError("no database route found for table '%s' with %v", tr.LogicTable, group.Conditions)
		}

		tables, err := tableInvoker.route(tr.ActualTables(), group)
		if err != nil {
			return nil, err
		}
		if len(tables) == 0 {
			return nil, core.NewRoutingError("no table route found for table '%s' with %v", tr.LogicTable, group.Conditions)
		}

		var groupNodes []int
		for _, ds := range dataSources {
			for _, t := range tables {
				node := core.DataNode{DataSource: ds, Table: t}
				if idx := tr.IndexOf(node); idx >= 0 {
					groupNodes = append(groupNodes, idx)
				}
			}
		}

		if group.Row != core.NoRow && len(groupNodes) != 1 {
			return nil, core.NewRoutingError("insert row #%d of table '%s' must be routed to exactly one data node, found %d",
				group.Row, tr.LogicTable, len(groupNodes))
		}
		for _, idx := range groupNodes {
			rn, ok := routed[idx]
			if !ok {
				rn = &routedNode{index: idx, node: tr.ActualDataNodes()[idx]}
				routed[idx] = rn
			}
			if group.Row != core.NoRow {
				rn.rows = insertSorted(rn.rows, group.Row)
			}
		}
	}

	if len(routed) == 0 {
		return nil, core.NewRoutingError("no data node route found for table '%s'", tr.LogicTable)
	}
	nodes := make([]*routedNode, 0, len(routed))
	for i := range tr.ActualDataNodes() {
		if rn, ok := routed[i]; ok {
			nodes = append(nodes, rn)
		}
	}
	return nodes, nil
}

//mappers builds the mappers of every table of the statement, actual names of the given tables are replaced
func (r *router) mappers(actual map[string]string) []TableMapper {
	result := make([]TableMapper, 0, len(r.tables))
	for _, t := range r.tables {
		a, ok := actual[core.TrimAndLower(t)]
		if !ok {
			a = t
		}
		result = append(result, TableMapper{LogicTable: t, ActualTable: a})
	}
	return result
}

func (r *router) identityUnit(ds string) *Unit {
	return &Unit{DataSource: ds, TableMappers: r.mappers(nil)}
}

func (r *router) shardingTables() []string {
	return shardingTables(r.tables, r.rule)
}

func (r *router) tableRule(logicTable string) (*core.TableRule, error) {
	tr, ok := r.rule.FindTableRule(logicTable)
	if !ok {
		return nil, core.NewRoutingError("table '%s' is not a sharding table", logicTable)
	}
	return tr, nil
}

func distinctTables(tables []string) []string {
	var result []string
	for _, t := range tables {
		if !core.ContainsIgnoreCase(result, t) {
			result = append(result, t)
		}
	}
	return result
}
