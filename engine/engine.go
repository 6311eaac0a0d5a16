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

package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/keygen"
	"github.com/endink/shardroute/logging"
	"github.com/endink/shardroute/rewriting"
	"github.com/endink/shardroute/routing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/label"
)

var logger = logging.GetLogger("engine")

var ErrNilRule = errors.New("sharding rule can not be nil")

type Option func(e *Engine)

//WithDecorators registers token decorators applied to every unit
func WithDecorators(decorators ...rewriting.TokenDecorator) Option {
	return func(e *Engine) {
		e.decorators = append(e.decorators, decorators...)
	}
}

//Engine routes and rewrites statements against a rule snapshot, it is safe for concurrent use
type Engine struct {
	rule       atomic.Value
	decorators []rewriting.TokenDecorator
	metrics    *engineMetrics
}

func New(rule *core.ShardingRule, opts ...Option) (*Engine, error) {
	if rule == nil {
		return nil, ErrNilRule
	}
	e := &Engine{metrics: newEngineMetrics()}
	for _, opt := range opts {
		opt(e)
	}
	e.rule.Store(rule)
	return e, nil
}

//Swap replaces the rule snapshot, statements in flight keep the snapshot they started with
func (e *Engine) Swap(rule *core.ShardingRule) error {
	if rule == nil {
		return ErrNilRule
	}
	e.rule.Store(rule)
	logger.Infof("sharding rule swapped, %d data sources, %d sharding tables", len(rule.DataSourceNames()), len(rule.TableRules()))
	return nil
}

func (e *Engine) Rule() *core.ShardingRule {
	return e.rule.Load().(*core.ShardingRule)
}

//Execute generates keys, routes and rewrites the statement into execution units
func (e *Engine) Execute(ctx context.Context, stmt *Statement) (*ExecutionContext, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "shardroute.execute")
	defer span.End()

	start := time.Now()
	rule := e.Rule()

	gk, err := keygen.Generate(rule, insertTable(stmt), insertColumns(stmt), insertRows(stmt))
	if err != nil {
		e.metrics.failed(ctx, err)
		span.RecordError(err)
		return nil, err
	}

	conditions := stmt.Conditions
	var keys []interface{}
	if gk != nil {
		conditions = gk.AppendConditions(conditions)
		keys = gk.Values
	}

	result, units, err := e.process(rule, stmt, conditions, keys)
	if err != nil {
		e.metrics.failed(ctx, err)
		span.RecordError(err)
		return nil, err
	}

	ec := &ExecutionContext{
		Strategy:      result.Strategy,
		Degraded:      result.Degraded,
		Units:         units,
		GeneratedKeys: keys,
	}
	if gk != nil {
		ec.GeneratedKeyColumn = gk.Column
	}
	span.SetAttributes(label.String("strategy", result.Strategy.String()), label.Int("units", len(units)))
	e.metrics.routed(ctx, result, start)
	return ec, nil
}

//Explain runs routing and rewriting without generating keys, generated key values render as DEFAULT
//When the missing key is a sharding column, insert rows are explained against every node they may reach
func (e *Engine) Explain(_ context.Context, stmt *Statement) (*Explanation, error) {
	rule := e.Rule()
	conditions := stmt.Conditions
	if gk := keygen.Plan(rule, insertTable(stmt), insertColumns(stmt)); gk != nil && gk.ShardingColumn {
		conditions = withoutRows(conditions)
	}
	result, units, err := e.process(rule, stmt, conditions, nil)
	if err != nil {
		return nil, err
	}
	return &Explanation{
		Strategy: result.Strategy,
		Degraded: result.Degraded,
		Route:    result,
		Units:    units,
	}, nil
}

func (e *Engine) process(rule *core.ShardingRule, stmt *Statement, conditions core.ShardingConditions, keys []interface{}) (*routing.Result, []*ExecutionUnit, error) {
	result, err := routing.Route(rule, &routing.Context{
		Kind:       stmt.Kind,
		Tables:     stmt.Tables,
		Conditions: conditions,
		Hint:       stmt.Hint,
	})
	if err != nil {
		return nil, nil, err
	}
	if result.Degraded {
		logger.Debugf("statement is routed by degraded strategy %s: %s", result.Strategy, stmt.SQL)
	}

	sqlUnits, err := rewriting.Rewrite(&rewriting.Context{
		Tokens:        stmt.Tokens,
		Parameters:    stmt.Parameters,
		GeneratedKeys: keys,
		Decorators:    e.decorators,
	}, result)
	if err != nil {
		return nil, nil, err
	}
	return result, assemble(result, sqlUnits), nil
}

//assemble zips routing units with their sql units in result order
func assemble(result *routing.Result, sqlUnits []*rewriting.SQLUnit) []*ExecutionUnit {
	routed := result.Units()
	units := make([]*ExecutionUnit, len(routed))
	for i, u := range routed {
		units[i] = &ExecutionUnit{
			DataSource: u.DataSource,
			SQL:        sqlUnits[i].SQL,
			Parameters: sqlUnits[i].Parameters,
		}
	}
	return units
}

func withoutRows(conditions core.ShardingConditions) core.ShardingConditions {
	relaxed := make(core.ShardingConditions, len(conditions))
	for i, g := range conditions {
		relaxed[i] = core.NewConditionGroup(g.Conditions...)
	}
	return relaxed
}

func insertTable(stmt *Statement) string {
	if stmt.Insert == nil {
		return ""
	}
	return stmt.Insert.Table
}

func insertColumns(stmt *Statement) []string {
	if stmt.Insert == nil {
		return nil
	}
	return stmt.Insert.Columns
}

func insertRows(stmt *Statement) int {
	if stmt.Insert == nil {
		return 0
	}
	return stmt.Insert.RowCount
}
