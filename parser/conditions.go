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

package parser

import (
	"math"
	"strconv"

	"github.com/endink/shardroute/core"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/opcode"
	"github.com/pingcap/tidb/types"
	driver "github.com/pingcap/tidb/types/parser_driver"
)

//maxConditionGroups bounds the expansion of AND over OR, a larger where clause is routed without conditions
const maxConditionGroups = 256

//disjunction is a where clause in disjunctive normal form, a group without conditions matches every node
type disjunction []core.ConditionGroup

func unconstrained() disjunction {
	return disjunction{core.NewConditionGroup()}
}

func (d disjunction) isUnconstrained() bool {
	for _, g := range d {
		if len(g.Conditions) == 0 {
			return true
		}
	}
	return false
}

func and(l, r disjunction) disjunction {
	if len(l)*len(r) > maxConditionGroups {
		return unconstrained()
	}
	result := make(disjunction, 0, len(l)*len(r))
	for _, lg := range l {
		for _, rg := range r {
			cs := make([]core.ShardingCondition, 0, len(lg.Conditions)+len(rg.Conditions))
			cs = append(cs, lg.Conditions...)
			cs = append(cs, rg.Conditions...)
			result = append(result, core.NewConditionGroup(cs...))
		}
	}
	return result
}

func or(l, r disjunction) disjunction {
	if l.isUnconstrained() || r.isUnconstrained() || len(l)+len(r) > maxConditionGroups {
		return unconstrained()
	}
	result := make(disjunction, 0, len(l)+len(r))
	result = append(result, l...)
	return append(result, r...)
}

func (b *binder) whereConditions(where ast.ExprNode) core.ShardingConditions {
	if where == nil {
		return nil
	}
	d := b.extract(where)
	if d.isUnconstrained() {
		return nil
	}
	return core.ShardingConditions(d)
}

func (b *binder) extract(expr ast.ExprNode) disjunction {
	switch e := expr.(type) {
	case *ast.ParenthesesExpr:
		return b.extract(e.Expr)
	case *ast.BinaryOperationExpr:
		switch e.Op {
		case opcode.LogicAnd:
			return and(b.extract(e.L), b.extract(e.R))
		case opcode.LogicOr:
			return or(b.extract(e.L), b.extract(e.R))
		case opcode.EQ, opcode.GT, opcode.GE, opcode.LT, opcode.LE:
			return b.compare(e)
		}
	case *ast.PatternInExpr:
		return b.in(e)
	case *ast.BetweenExpr:
		return b.between(e)
	}
	return unconstrained()
}

//compare handles both column op value and value op column
func (b *binder) compare(e *ast.BinaryOperationExpr) disjunction {
	op := e.Op
	col, ok := e.L.(*ast.ColumnNameExpr)
	value := e.R
	if !ok {
		if col, ok = e.R.(*ast.ColumnNameExpr); !ok {
			return unconstrained()
		}
		value = e.L
		op = reverse(op)
	}
	owners := b.ownersOf(col.Name)
	v, ok := b.valueOf(value)
	if len(owners) == 0 || !ok || v == nil {
		return unconstrained()
	}

	var r core.Range
	var err error
	switch op {
	case opcode.EQ:
		return b.group(owners, func(table string) core.ShardingCondition {
			return core.NewEqualCondition(table, col.Name.Name.O, v)
		})
	case opcode.GT:
		r, err = core.NewRangeBounds(v, false, nil, false)
	case opcode.GE:
		r, err = core.NewRangeBounds(v, true, nil, false)
	case opcode.LT:
		r, err = core.NewRangeBounds(nil, false, v, false)
	case opcode.LE:
		r, err = core.NewRangeBounds(nil, false, v, true)
	}
	if err != nil || r == nil {
		return unconstrained()
	}
	return b.group(owners, func(table string) core.ShardingCondition {
		return core.NewRangeCondition(table, col.Name.Name.O, r)
	})
}

func reverse(op opcode.Op) opcode.Op {
	switch op {
	case opcode.GT:
		return opcode.LT
	case opcode.GE:
		return opcode.LE
	case opcode.LT:
		return opcode.GT
	case opcode.LE:
		return opcode.GE
	}
	return op
}

func (b *binder) in(e *ast.PatternInExpr) disjunction {
	col, ok := e.Expr.(*ast.ColumnNameExpr)
	if e.Not || e.Sel != nil || !ok || len(e.List) == 0 {
		return unconstrained()
	}
	owners := b.ownersOf(col.Name)
	if len(owners) == 0 {
		return unconstrained()
	}
	values := make([]interface{}, 0, len(e.List))
	for _, item := range e.List {
		v, ok := b.valueOf(item)
		if !ok || v == nil {
			return unconstrained()
		}
		values = append(values, v)
	}
	return b.group(owners, func(table string) core.ShardingCondition {
		return core.NewInCondition(table, col.Name.Name.O, values...)
	})
}

func (b *binder) between(e *ast.BetweenExpr) disjunction {
	col, ok := e.Expr.(*ast.ColumnNameExpr)
	if e.Not || !ok {
		return unconstrained()
	}
	owners := b.ownersOf(col.Name)
	lower, lok := b.valueOf(e.Left)
	upper, uok := b.valueOf(e.Right)
	if len(owners) == 0 || !lok || !uok || lower == nil || upper == nil {
		return unconstrained()
	}
	r, err := core.NewRange(lower, upper)
	if err != nil {
		return unconstrained()
	}
	return b.group(owners, func(table string) core.ShardingCondition {
		return core.NewRangeCondition(table, col.Name.Name.O, r)
	})
}

func (b *binder) group(owners []string, create func(table string) core.ShardingCondition) disjunction {
	cs := make([]core.ShardingCondition, len(owners))
	for i, t := range owners {
		cs[i] = create(t)
	}
	return disjunction{core.NewConditionGroup(cs...)}
}

//ownersOf returns the sharding tables the column is a sharding column of,
//an unqualified column belongs to every such table of the statement
func (b *binder) ownersOf(c *ast.ColumnName) []string {
	column := c.Name.O
	if c.Table.O != "" {
		table, ok := b.resolve(c.Table.O)
		if !ok {
			return nil
		}
		if tr, found := b.rule.FindTableRule(table); found && tr.IsShardingColumn(column) {
			return []string{table}
		}
		return nil
	}
	var owners []string
	for _, t := range b.stmt.Tables {
		if tr, found := b.rule.FindTableRule(t); found && tr.IsShardingColumn(column) {
			owners = append(owners, t)
		}
	}
	return owners
}

//valueOf returns the bound value of a literal or parameter, ok is false for any other expression
func (b *binder) valueOf(expr ast.ExprNode) (interface{}, bool) {
	switch v := expr.(type) {
	case *driver.ParamMarkerExpr:
		if v.Order < 0 || v.Order >= len(b.params) {
			return nil, false
		}
		return b.params[v.Order], true
	case *driver.ValueExpr:
		return literalValue(v)
	case *ast.UnaryOperationExpr:
		if v.Op != opcode.Minus {
			return nil, false
		}
		inner, ok := b.valueOf(v.V)
		if !ok {
			return nil, false
		}
		return negate(inner)
	case *ast.ParenthesesExpr:
		return b.valueOf(v.Expr)
	}
	return nil, false
}

func literalValue(n *driver.ValueExpr) (interface{}, bool) {
	switch n.Kind() {
	case types.KindNull:
		return nil, true
	case types.KindInt64:
		return n.GetInt64(), true
	case types.KindUint64:
		u := n.GetUint64()
		if u <= math.MaxInt64 {
			return int64(u), true
		}
		return u, true
	case types.KindFloat32:
		return float64(n.GetFloat32()), true
	case types.KindFloat64:
		return n.GetFloat64(), true
	case types.KindString, types.KindBytes:
		return n.GetString(), true
	default:
		text, err := restore(n)
		if err != nil {
			return nil, false
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f, true
		}
		return text, true
	}
}

func negate(v interface{}) (interface{}, bool) {
	switch n := v.(type) {
	case int64:
		return -n, true
	case int:
		return -n, true
	case float64:
		return -n, true
	}
	return nil, false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case int:
		return int64(n), true
	}
	return 0, false
}
