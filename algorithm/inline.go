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
	"strings"
	"sync"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/core/script"
)

const (
	TypeInline        = "INLINE"
	TypeComplexInline = "COMPLEX_INLINE"
	TypeHintInline    = "HINT_INLINE"

	PropAlgorithmExpression = "algorithm-expression"
	PropAllowRangeQuery     = "allow-range-query-with-inline-sharding"
	PropShardingColumns     = "sharding-columns"

	hintValueVariable = "value"
)

func init() {
	Register(TypeInline, newInline)
	Register(TypeComplexInline, newComplexInline)
	Register(TypeHintInline, newHintInline)
}

//expressionCache compiles the expression once for each variable set
type expressionCache struct {
	expression string
	cache      sync.Map
}

func (c *expressionCache) get(variables ...string) (script.InlineExpression, error) {
	key := strings.Join(variables, ",")
	if v, ok := c.cache.Load(key); ok {
		return v.(script.InlineExpression), nil
	}
	expr, err := script.NewInlineExpression(c.expression, variables...)
	if err != nil {
		return nil, err
	}
	v, _ := c.cache.LoadOrStore(key, expr)
	return v.(script.InlineExpression), nil
}

func loadExpression(props core.Properties, algorithmType string) (*expressionCache, error) {
	expr := props.GetString(PropAlgorithmExpression, "")
	if expr == "" {
		return nil, fmt.Errorf("property '%s' is required for %s sharding algorithm", PropAlgorithmExpression, algorithmType)
	}
	return &expressionCache{expression: expr}, nil
}

type Inline struct {
	expression *expressionCache
	allowRange bool
}

func newInline(props core.Properties) (core.ShardingAlgorithm, error) {
	expr, err := loadExpression(props, TypeInline)
	if err != nil {
		return nil, err
	}
	allow, err := props.GetBool(PropAllowRangeQuery, false)
	if err != nil {
		return nil, err
	}
	return &Inline{expression: expr, allowRange: allow}, nil
}

func (i *Inline) Type() string {
	return TypeInline
}

func (i *Inline) prepare(columns []string) error {
	_, err := i.expression.get(columns...)
	return err
}

func (i *Inline) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (int, error) {
	expr, err := i.expression.get(value.Column)
	if err != nil {
		return -1, err
	}
	name, err := expr.FlatScalar(map[string]interface{}{value.Column: scriptValue(value.Value)})
	if err != nil {
		return -1, err
	}
	return findTarget(availableTargets, name), nil
}

func (i *Inline) DoRangeSharding(availableTargets []string, value *core.RangeShardingValue) ([]int, error) {
	if !i.allowRange {
		return nil, fmt.Errorf("%s sharding algorithm can not route range condition on '%s', set '%s' to route it to all targets",
			TypeInline, value.Column, PropAllowRangeQuery)
	}
	return core.AllIndexes(len(availableTargets)), nil
}

//ComplexInline evaluates one expression over several sharding columns, every combination of equality values is evaluated
type ComplexInline struct {
	expression *expressionCache
	columns    []string
	allowRange bool
}

func newComplexInline(props core.Properties) (core.ShardingAlgorithm, error) {
	expr, err := loadExpression(props, TypeComplexInline)
	if err != nil {
		return nil, err
	}
	allow, err := props.GetBool(PropAllowRangeQuery, false)
	if err != nil {
		return nil, err
	}
	c := &ComplexInline{expression: expr, allowRange: allow}
	if cols := props.GetString(PropShardingColumns, ""); cols != "" {
		c.columns = core.DistinctSliceAndTrim(strings.Split(cols, ","))
	}
	return c, nil
}

func (c *ComplexInline) Type() string {
	return TypeComplexInline
}

func (c *ComplexInline) variables(columns []string) []string {
	if len(c.columns) > 0 {
		return c.columns
	}
	return columns
}

func (c *ComplexInline) prepare(columns []string) error {
	_, err := c.expression.get(c.variables(columns)...)
	return err
}

func (c *ComplexInline) DoComplexSharding(availableTargets []string, values *core.ComplexShardingValues) ([]int, error) {
	columns := c.columns
	if len(columns) == 0 {
		columns = make([]string, 0, len(values.Values)+len(values.Ranges))
		for col := range values.Values {
			columns = append(columns, col)
		}
		for col := range values.Ranges {
			if _, ok := values.Values[col]; !ok {
				columns = append(columns, col)
			}
		}
		columns = sortedCopy(columns)
	}

	lists := make([][]interface{}, len(columns))
	for i, col := range columns {
		list := lookupValues(values.Values, col)
		if len(list) == 0 {
			if !c.allowRange {
				return nil, fmt.Errorf("%s sharding algorithm requires equality value for column '%s'", TypeComplexInline, col)
			}
			return core.AllIndexes(len(availableTargets)), nil
		}
		lists[i] = list
	}

	expr, err := c.expression.get(columns...)
	if err != nil {
		return nil, err
	}

	var result []int
	seen := make(map[int]struct{})
	err = permuteValues(lists, func(combination []interface{}) error {
		vars := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			vars[col] = scriptValue(combination[i])
		}
		name, e := expr.FlatScalar(vars)
		if e != nil {
			return e
		}
		idx := findTarget(availableTargets, name)
		if idx < 0 {
			return fmt.Errorf("%s sharding algorithm produced target '%s' which is not available", TypeComplexInline, name)
		}
		if _, ok := seen[idx]; !ok {
			seen[idx] = core.Nothing
			result = append(result, idx)
		}
		return nil
	})
	return result, err
}

//HintInline evaluates the expression for every hint value, the value is bound to the 'value' variable
type HintInline struct {
	expression *expressionCache
}

func newHintInline(props core.Properties) (core.ShardingAlgorithm, error) {
	expr, err := loadExpression(props, TypeHintInline)
	if err != nil {
		return nil, err
	}
	return &HintInline{expression: expr}, nil
}

func (h *HintInline) Type() string {
	return TypeHintInline
}

func (h *HintInline) prepare(_ []string) error {
	_, err := h.expression.get(hintValueVariable)
	return err
}

func (h *HintInline) DoHintSharding(availableTargets []string, values *core.HintShardingValues) ([]int, error) {
	expr, err := h.expression.get(hintValueVariable)
	if err != nil {
		return nil, err
	}
	var result []int
	seen := make(map[int]struct{})
	for _, v := range values.Values {
		name, err := expr.FlatScalar(map[string]interface{}{hintValueVariable: scriptValue(v)})
		if err != nil {
			return nil, err
		}
		idx := findTarget(availableTargets, name)
		if idx < 0 {
			return nil, fmt.Errorf("%s sharding algorithm produced target '%s' which is not available", TypeHintInline, name)
		}
		if _, ok := seen[idx]; !ok {
			seen[idx] = core.Nothing
			result = append(result, idx)
		}
	}
	return result, nil
}
