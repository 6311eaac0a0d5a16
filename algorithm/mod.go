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
	"strconv"
	"unicode/utf16"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/core/comparison"
)

const (
	TypeMod     = "MOD"
	TypeHashMod = "HASH_MOD"

	PropShardingCount = "sharding-count"

	//a bounded range smaller than this is enumerated instead of routed to all targets
	maxEnumerableRange = 1024
)

func init() {
	Register(TypeMod, newMod)
	Register(TypeHashMod, newHashMod)
}

func loadShardingCount(props core.Properties, algorithmType string) (int64, error) {
	count, err := requiredInt(props, PropShardingCount, algorithmType)
	if err != nil {
		return 0, err
	}
	if count <= 0 {
		return 0, fmt.Errorf("property '%s' of %s sharding algorithm must be positive", PropShardingCount, algorithmType)
	}
	return count, nil
}

//Mod picks the target whose trailing number is value % sharding-count
type Mod struct {
	count int64
}

func newMod(props core.Properties) (core.ShardingAlgorithm, error) {
	count, err := loadShardingCount(props, TypeMod)
	if err != nil {
		return nil, err
	}
	return &Mod{count: count}, nil
}

func (m *Mod) Type() string {
	return TypeMod
}

func (m *Mod) mod(value interface{}) (int64, error) {
	v, ok := comparison.ToInt64(value)
	if !ok {
		s, isString := value.(string)
		if !isString {
			return 0, fmt.Errorf("%s sharding algorithm requires integer value, given: %v (%T)", TypeMod, value, value)
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s sharding algorithm requires integer value, given: '%s'", TypeMod, s)
		}
		v = parsed
	}
	r := v % m.count
	if r < 0 {
		r = -r
	}
	return r, nil
}

func (m *Mod) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (int, error) {
	r, err := m.mod(value.Value)
	if err != nil {
		return -1, err
	}
	return findSuffix(availableTargets, r), nil
}

func (m *Mod) DoRangeSharding(availableTargets []string, value *core.RangeShardingValue) ([]int, error) {
	rg := value.Range
	if !rg.HasLower() || !rg.HasUpper() {
		return core.AllIndexes(len(availableTargets)), nil
	}
	lower, okL := comparison.ToInt64(rg.LowerBound())
	upper, okU := comparison.ToInt64(rg.UpperBound())
	if !okL || !okU {
		return core.AllIndexes(len(availableTargets)), nil
	}
	if !rg.LowerInclusive() {
		lower++
	}
	if !rg.UpperInclusive() {
		upper--
	}
	if upper-lower+1 >= m.count || upper-lower >= maxEnumerableRange {
		return core.AllIndexes(len(availableTargets)), nil
	}
	var result []int
	seen := make(map[int]struct{})
	for v := lower; v <= upper; v++ {
		r, _ := m.mod(v)
		idx := findSuffix(availableTargets, r)
		if idx < 0 {
			return nil, fmt.Errorf("%s sharding algorithm found no target with suffix %d in %v", TypeMod, r, availableTargets)
		}
		if _, ok := seen[idx]; !ok {
			seen[idx] = core.Nothing
			result = append(result, idx)
		}
	}
	return result, nil
}

//HashMod picks the target whose trailing number is abs(hashcode(value)) % sharding-count
type HashMod struct {
	count int64
}

func newHashMod(props core.Properties) (core.ShardingAlgorithm, error) {
	count, err := loadShardingCount(props, TypeHashMod)
	if err != nil {
		return nil, err
	}
	return &HashMod{count: count}, nil
}

func (h *HashMod) Type() string {
	return TypeHashMod
}

func (h *HashMod) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (int, error) {
	hash := int64(Hashcode(fmt.Sprint(scriptValue(value.Value))))
	r := hash % h.count
	if r < 0 {
		r = -r
	}
	return findSuffix(availableTargets, r), nil
}

func (h *HashMod) DoRangeSharding(availableTargets []string, _ *core.RangeShardingValue) ([]int, error) {
	return core.AllIndexes(len(availableTargets)), nil
}

//Hashcode is the 31 based string hash used by java.lang.String, computed over utf-16 code units
func Hashcode(s string) int32 {
	var hash int32
	for _, c := range utf16.Encode([]rune(s)) {
		hash = int32(c) + ((hash << 5) - hash)
	}
	return hash
}
