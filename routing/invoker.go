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
	"fmt"
	"sort"

	"github.com/endink/shardroute/core"
)

//invoker evaluates the strategy of one logic table against available targets, indexes returned by
//algorithms are validated and converted to names in target order
type invoker struct {
	logicTable string
	strategy   *core.ShardingStrategy
	hintValues []interface{}
}

func (inv *invoker) route(targets []string, group core.ConditionGroup) ([]string, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	switch inv.strategy.Type {
	case core.StrategyStandard:
		return inv.standard(targets, group)
	case core.StrategyComplex:
		return inv.complex(targets, group)
	case core.StrategyHint:
		return inv.hint(targets)
	default:
		return targets, nil
	}
}

func (inv *invoker) standard(targets []string, group core.ConditionGroup) ([]string, error) {
	column := inv.strategy.Columns[0]
	conditions := group.Find(inv.logicTable, column)
	if len(conditions) == 0 {
		return targets, nil
	}

	var selected map[int]bool
	for _, c := range conditions {
		indexes, err := inv.standardCondition(targets, column, c)
		if err != nil {
			return nil, err
		}
		current := make(map[int]bool, len(indexes))
		for _, i := range indexes {
			if selected == nil || selected[i] {
				current[i] = true
			}
		}
		selected = current
	}
	return namesOf(targets, selected), nil
}

func (inv *invoker) standardCondition(targets []string, column string, c core.ShardingCondition) ([]int, error) {
	if c.IsRange() {
		if inv.strategy.Range == nil {
			return nil, core.NewRoutingError("algorithm '%s' of table '%s' does not support range sharding on column '%s'",
				inv.strategy.AlgorithmName, inv.logicTable, column)
		}
		indexes, err := inv.strategy.Range.DoRangeSharding(targets, &core.RangeShardingValue{
			LogicTable: inv.logicTable,
			Column:     column,
			Range:      c.Range,
		})
		if err != nil {
			return nil, inv.wrap(err)
		}
		return indexes, inv.validate(targets, indexes)
	}

	indexes := make([]int, 0, len(c.Values))
	for _, v := range c.Values {
		i, err := inv.strategy.Precise.DoPreciseSharding(targets, &core.PreciseShardingValue{
			LogicTable: inv.logicTable,
			Column:     column,
			Value:      v,
		})
		if err != nil {
			return nil, inv.wrap(err)
		}
		if i < 0 || i >= len(targets) {
			return nil, core.NewRoutingError("algorithm '%s' of table '%s' routed value %v of column '%s' to index %d, it is out of targets %v",
				inv.strategy.AlgorithmName, inv.logicTable, v, column, i, targets)
		}
		indexes = append(indexes, i)
	}
	return indexes, nil
}

func (inv *invoker) complex(targets []string, group core.ConditionGroup) ([]string, error) {
	values := &core.ComplexShardingValues{
		LogicTable: inv.logicTable,
		Values:     make(map[string][]interface{}),
		Ranges:     make(map[string]core.Range),
	}
	found := false
	for _, column := range inv.strategy.Columns {
		for _, c := range group.Find(inv.logicTable, column) {
			found = true
			if c.IsRange() {
				r := c.Range
				if existing, ok := values.Ranges[column]; ok {
					merged, err := existing.Intersect(r)
					if err != nil {
						return nil, inv.wrap(err)
					}
					if merged == nil {
						return nil, nil
					}
					r = merged
				}
				values.Ranges[column] = r
				continue
			}
			if existing, ok := values.Values[column]; ok {
				values.Values[column] = intersectValues(existing, c.Values)
			} else {
				values.Values[column] = c.Values
			}
		}
	}
	if !found {
		return targets, nil
	}
	indexes, err := inv.strategy.Complex.DoComplexSharding(targets, values)
	if err != nil {
		return nil, inv.wrap(err)
	}
	if err = inv.validate(targets, indexes); err != nil {
		return nil, err
	}
	return namesOf(targets, toSet(indexes)), nil
}

func (inv *invoker) hint(targets []string) ([]string, error) {
	if len(inv.hintValues) == 0 {
		return targets, nil
	}
	indexes, err := inv.strategy.Hint.DoHintSharding(targets, &core.HintShardingValues{
		LogicTable: inv.logicTable,
		Values:     inv.hintValues,
	})
	if err != nil {
		return nil, inv.wrap(err)
	}
	if err = inv.validate(targets, indexes); err != nil {
		return nil, err
	}
	return namesOf(targets, toSet(indexes)), nil
}

func (inv *invoker) validate(targets []string, indexes []int) error {
	for _, i := range indexes {
		if i < 0 || i >= len(targets) {
			return core.NewRoutingError("algorithm '%s' of table '%s' returned index %d out of %d targets",
				inv.strategy.AlgorithmName, inv.logicTable, i, len(targets))
		}
	}
	return nil
}

func (inv *invoker) wrap(err error) error {
	if core.IsRoutingError(err) {
		return err
	}
	return core.NewRoutingError("algorithm '%s' of table '%s' failed: %v", inv.strategy.AlgorithmName, inv.logicTable, err)
}

func toSet(indexes []int) map[int]bool {
	set := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		set[i] = true
	}
	return set
}

//namesOf returns the selected targets in target order
func namesOf(targets []string, selected map[int]bool) []string {
	indexes := make([]int, 0, len(selected))
	for i := range selected {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	names := make([]string, len(indexes))
	for n, i := range indexes {
		names[n] = targets[i]
	}
	return names
}

func intersectValues(a []interface{}, b []interface{}) []interface{} {
	var result []interface{}
	for _, x := range a {
		for _, y := range b {
			if fmt.Sprint(x) == fmt.Sprint(y) {
				result = append(result, x)
				break
			}
		}
	}
	return result
}
