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

package algorithm

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/core/comparison"
)

const (
	TypeExpression = "EXPRESSION"

	PropExpression = "expression"
)

func init() {
	Register(TypeExpression, newExpression)
}

var expressionFunctions = map[string]govaluate.ExpressionFunction{
	"concat": func(args ...interface{}) (interface{}, error) {
		s := ""
		for _, arg := range args {
			s += formatNumber(arg)
		}
		return s, nil
	},
	"hashcode": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("hashcode requires one argument")
		}
		return float64(Hashcode(formatNumber(args[0]))), nil
	},
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs requires one argument")
		}
		f, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs requires numeric argument")
		}
		return math.Abs(f), nil
	},
}

//Expression evaluates a govaluate expression with the sharding column bound to the value,
//a numeric result is the index of the target and a string result is the target name
type Expression struct {
	expression *govaluate.EvaluableExpression
	raw        string
}

func newExpression(props core.Properties) (core.ShardingAlgorithm, error) {
	raw := props.GetString(PropExpression, "")
	if raw == "" {
		return nil, fmt.Errorf("property '%s' is required for %s sharding algorithm", PropExpression, TypeExpression)
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(raw, expressionFunctions)
	if err != nil {
		return nil, fmt.Errorf("invalid expression for %s sharding algorithm: %v", TypeExpression, err)
	}
	return &Expression{expression: expr, raw: raw}, nil
}

func (e *Expression) Type() string {
	return TypeExpression
}

func (e *Expression) prepare(columns []string) error {
	for _, v := range e.expression.Vars() {
		if !core.ContainsIgnoreCase(columns, v) {
			return fmt.Errorf("expression '%s' references '%s' which is not a sharding column", e.raw, v)
		}
	}
	return nil
}

func (e *Expression) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (int, error) {
	result, err := e.expression.Evaluate(map[string]interface{}{
		value.Column: expressionValue(value.Value),
	})
	if err != nil {
		return -1, fmt.Errorf("evaluate expression '%s' fault: %v", e.raw, err)
	}
	switch r := result.(type) {
	case float64:
		if r != math.Trunc(r) {
			return -1, fmt.Errorf("expression '%s' returned non-integer index %v", e.raw, r)
		}
		return int(r), nil
	case string:
		return findTarget(availableTargets, r), nil
	default:
		return -1, fmt.Errorf("expression '%s' returned unsupported type %T", e.raw, result)
	}
}

func (e *Expression) DoRangeSharding(availableTargets []string, _ *core.RangeShardingValue) ([]int, error) {
	return core.AllIndexes(len(availableTargets)), nil
}

func expressionValue(value interface{}) interface{} {
	v := scriptValue(value)
	if i, ok := comparison.ToInt64(v); ok {
		return float64(i)
	}
	return v
}

func formatNumber(v interface{}) string {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}
