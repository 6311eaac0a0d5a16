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
	"testing"

	"github.com/endink/shardroute/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tables = []string{"t_order_0", "t_order_1"}

func newAlgorithm(t *testing.T, typeName string, props map[string]string) core.ShardingAlgorithm {
	alg, err := New(typeName, core.NewPropertiesFromMap(props))
	require.Nil(t, err, "create %s algorithm fault", typeName)
	return alg
}

func precise(t *testing.T, alg core.ShardingAlgorithm, targets []string, column string, value interface{}) int {
	p, ok := alg.(core.PreciseAlgorithm)
	require.True(t, ok, "%s is not precise algorithm", alg.Type())
	idx, err := p.DoPreciseSharding(targets, &core.PreciseShardingValue{LogicTable: "t_order", Column: column, Value: value})
	require.Nil(t, err)
	return idx
}

func rangeOf(t *testing.T, lower, upper interface{}) core.Range {
	r, err := core.NewRange(lower, upper)
	require.Nil(t, err)
	return r
}

func TestUnknownType(t *testing.T) {
	_, err := New("NOT_EXISTED", nil)
	assert.Error(t, err)
}

func TestInline(t *testing.T) {
	alg := newAlgorithm(t, "inline", map[string]string{PropAlgorithmExpression: "t_order_${order_id % 2}"})
	assert.Equal(t, TypeInline, alg.Type())
	assert.Nil(t, Prepare(alg, []string{"order_id"}))

	assert.Equal(t, 1, precise(t, alg, tables, "order_id", int64(3)))
	assert.Equal(t, 0, precise(t, alg, tables, "order_id", uint64(10)))
	assert.Equal(t, -1, precise(t, alg, []string{"t_order_0"}, "order_id", 3))

	_, err := alg.(core.RangeAlgorithm).DoRangeSharding(tables, &core.RangeShardingValue{Column: "order_id", Range: rangeOf(t, 1, 5)})
	assert.Error(t, err)
}

func TestInlineAllowRange(t *testing.T) {
	alg := newAlgorithm(t, TypeInline, map[string]string{
		PropAlgorithmExpression: "t_order_${order_id % 2}",
		PropAllowRangeQuery:     "true",
	})
	r, err := alg.(core.RangeAlgorithm).DoRangeSharding(tables, &core.RangeShardingValue{Column: "order_id", Range: rangeOf(t, 1, 5)})
	assert.Nil(t, err)
	assert.Equal(t, []int{0, 1}, r)
}

func TestInlinePrepareError(t *testing.T) {
	alg := newAlgorithm(t, TypeInline, map[string]string{PropAlgorithmExpression: "t_order_${user_id % 2}"})
	assert.Error(t, Prepare(alg, []string{"order_id"}))

	_, err := New(TypeInline, core.NewPropertiesFromMap(nil))
	assert.Error(t, err)
}

func TestComplexInline(t *testing.T) {
	alg := newAlgorithm(t, TypeComplexInline, map[string]string{
		PropAlgorithmExpression: "t_order_${(user_id + order_id) % 2}",
		PropShardingColumns:     "user_id, order_id",
	})
	c := alg.(core.ComplexAlgorithm)
	r, err := c.DoComplexSharding(tables, &core.ComplexShardingValues{
		LogicTable: "t_order",
		Values: map[string][]interface{}{
			"user_id":  {int64(1)},
			"order_id": {int64(1), int64(2)},
		},
	})
	assert.Nil(t, err)
	assert.Equal(t, []int{0, 1}, r)

	_, err = c.DoComplexSharding(tables, &core.ComplexShardingValues{
		Values: map[string][]interface{}{"user_id": {int64(1)}},
	})
	assert.Error(t, err)
}

func TestHintInline(t *testing.T) {
	alg := newAlgorithm(t, TypeHintInline, map[string]string{PropAlgorithmExpression: "ds${value % 2}"})
	h := alg.(core.HintAlgorithm)
	r, err := h.DoHintSharding([]string{"ds0", "ds1"}, &core.HintShardingValues{Values: []interface{}{3, 5, 4}})
	assert.Nil(t, err)
	assert.Equal(t, []int{1, 0}, r)
}

func TestMod(t *testing.T) {
	alg := newAlgorithm(t, TypeMod, map[string]string{PropShardingCount: "4"})
	targets := []string{"t_3", "t_2", "t_1", "t_0"}
	assert.Equal(t, 3, precise(t, alg, targets, "id", int64(8)))
	assert.Equal(t, 0, precise(t, alg, targets, "id", "7"))
	assert.Equal(t, 2, precise(t, alg, targets, "id", int64(-5)))

	ra := alg.(core.RangeAlgorithm)
	r, err := ra.DoRangeSharding(targets, &core.RangeShardingValue{Range: rangeOf(t, int64(5), int64(6))})
	assert.Nil(t, err)
	assert.Equal(t, []int{2, 1}, r)

	r, err = ra.DoRangeSharding(targets, &core.RangeShardingValue{Range: rangeOf(t, int64(5), nil)})
	assert.Nil(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, r)

	_, err = New(TypeMod, core.NewPropertiesFromMap(map[string]string{PropShardingCount: "0"}))
	assert.Error(t, err)

	_, err = ra.DoRangeSharding([]string{"t_0", "t_1"}, &core.RangeShardingValue{Range: rangeOf(t, int64(1), int64(2))})
	assert.Error(t, err)
}

func TestModTrailingNumber(t *testing.T) {
	alg := newAlgorithm(t, TypeMod, map[string]string{PropShardingCount: "11"})
	targets := []string{"t_10", "t_0"}
	assert.Equal(t, 1, precise(t, alg, targets, "id", int64(11)))
	assert.Equal(t, 0, precise(t, alg, targets, "id", int64(10)))
}

func TestHashMod(t *testing.T) {
	alg := newAlgorithm(t, TypeHashMod, map[string]string{PropShardingCount: "2"})
	//hashcode("a") = 97
	assert.Equal(t, 1, precise(t, alg, tables, "name", "a"))
	assert.Equal(t, int32(96354), Hashcode("abc"))
	//U+1F600 is the surrogate pair 0xD83D 0xDE00
	assert.Equal(t, int32(0xD83D*31+0xDE00), Hashcode("\U0001F600"))
}

func TestVolumeRange(t *testing.T) {
	alg := newAlgorithm(t, TypeVolumeRange, map[string]string{
		PropRangeLower:     "10",
		PropRangeUpper:     "40",
		PropShardingVolume: "10",
	})
	targets := []string{"t_0", "t_1", "t_2", "t_3", "t_4"}
	assert.Equal(t, 5, alg.(*PartitionRange).PartitionCount())
	assert.Equal(t, 0, precise(t, alg, targets, "amount", int64(5)))
	assert.Equal(t, 1, precise(t, alg, targets, "amount", int64(10)))
	assert.Equal(t, 3, precise(t, alg, targets, "amount", 39.5))
	assert.Equal(t, 4, precise(t, alg, targets, "amount", int64(40)))

	r, err := alg.(core.RangeAlgorithm).DoRangeSharding(targets, &core.RangeShardingValue{Range: rangeOf(t, int64(15), int64(25))})
	assert.Nil(t, err)
	assert.Equal(t, []int{1, 2}, r)

	_, err = alg.(core.RangeAlgorithm).DoRangeSharding(targets[:2], &core.RangeShardingValue{Range: rangeOf(t, int64(15), int64(25))})
	assert.Error(t, err)
}

func TestBoundaryRange(t *testing.T) {
	alg := newAlgorithm(t, TypeBoundaryRange, map[string]string{PropShardingRanges: "1, 5, 10"})
	targets := []string{"t_0", "t_1", "t_2", "t_3"}
	assert.Equal(t, 0, precise(t, alg, targets, "id", int64(0)))
	assert.Equal(t, 2, precise(t, alg, targets, "id", int64(5)))
	assert.Equal(t, 3, precise(t, alg, targets, "id", int64(100)))

	r, err := alg.(core.RangeAlgorithm).DoRangeSharding(targets, &core.RangeShardingValue{Range: rangeOf(t, nil, int64(1))})
	assert.Nil(t, err)
	assert.Equal(t, []int{0, 1}, r)

	_, err = New(TypeBoundaryRange, core.NewPropertiesFromMap(map[string]string{PropShardingRanges: "5,1"}))
	assert.Error(t, err)
}

func TestExpression(t *testing.T) {
	alg := newAlgorithm(t, TypeExpression, map[string]string{PropExpression: "order_id % 2"})
	assert.Nil(t, Prepare(alg, []string{"order_id"}))
	assert.Error(t, Prepare(alg, []string{"user_id"}))
	assert.Equal(t, 1, precise(t, alg, tables, "order_id", int64(7)))

	named := newAlgorithm(t, TypeExpression, map[string]string{PropExpression: `concat('t_order_', order_id % 2)`})
	assert.Equal(t, 0, precise(t, named, tables, "order_id", int64(8)))

	hashed := newAlgorithm(t, TypeExpression, map[string]string{PropExpression: `abs(hashcode(name)) % 2`})
	assert.Equal(t, 1, precise(t, hashed, tables, "name", "a"))
}
