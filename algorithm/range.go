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
	"strings"

	"github.com/endink/shardroute/core"
)

const (
	TypeVolumeRange   = "VOLUME_RANGE"
	TypeBoundaryRange = "BOUNDARY_RANGE"

	PropRangeLower     = "range-lower"
	PropRangeUpper     = "range-upper"
	PropShardingVolume = "sharding-volume"
	PropShardingRanges = "sharding-ranges"
)

func init() {
	Register(TypeVolumeRange, newVolumeRange)
	Register(TypeBoundaryRange, newBoundaryRange)
}

//PartitionRange maps a value to the partition containing it, partition i is routed to the target whose trailing number is i
type PartitionRange struct {
	typeName   string
	partitions []core.Range
}

func newVolumeRange(props core.Properties) (core.ShardingAlgorithm, error) {
	lower, err := requiredInt(props, PropRangeLower, TypeVolumeRange)
	if err != nil {
		return nil, err
	}
	upper, err := requiredInt(props, PropRangeUpper, TypeVolumeRange)
	if err != nil {
		return nil, err
	}
	volume, err := requiredInt(props, PropShardingVolume, TypeVolumeRange)
	if err != nil {
		return nil, err
	}
	if volume <= 0 {
		return nil, fmt.Errorf("property '%s' of %s sharding algorithm must be positive", PropShardingVolume, TypeVolumeRange)
	}
	if upper <= lower {
		return nil, fmt.Errorf("property '%s' must be greater than '%s' for %s sharding algorithm", PropRangeUpper, PropRangeLower, TypeVolumeRange)
	}
	var bounds []int64
	for b := lower; b < upper; b += volume {
		bounds = append(bounds, b)
	}
	bounds = append(bounds, upper)
	return newPartitionRange(TypeVolumeRange, bounds)
}

func newBoundaryRange(props core.Properties) (core.ShardingAlgorithm, error) {
	text := props.GetString(PropShardingRanges, "")
	if text == "" {
		return nil, fmt.Errorf("property '%s' is required for %s sharding algorithm", PropShardingRanges, TypeBoundaryRange)
	}
	var bounds []int64
	for _, s := range core.DistinctSliceAndTrim(strings.Split(text, ",")) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("property '%s' of %s sharding algorithm must be integer list, given: %s", PropShardingRanges, TypeBoundaryRange, text)
		}
		if len(bounds) > 0 && v <= bounds[len(bounds)-1] {
			return nil, fmt.Errorf("property '%s' of %s sharding algorithm must be ascending, given: %s", PropShardingRanges, TypeBoundaryRange, text)
		}
		bounds = append(bounds, v)
	}
	return newPartitionRange(TypeBoundaryRange, bounds)
}

//newPartitionRange creates (-inf, b0), [b0, b1) ... [bn, +inf)
func newPartitionRange(typeName string, bounds []int64) (*PartitionRange, error) {
	p := &PartitionRange{typeName: typeName}
	var prev interface{}
	for _, b := range bounds {
		r, err := core.NewRangeBounds(prev, true, b, false)
		if err != nil {
			return nil, err
		}
		p.partitions = append(p.partitions, r)
		prev = b
	}
	last, err := core.NewRangeBounds(prev, true, nil, false)
	if err != nil {
		return nil, err
	}
	p.partitions = append(p.partitions, last)
	return p, nil
}

func (p *PartitionRange) Type() string {
	return p.typeName
}

func (p *PartitionRange) PartitionCount() int {
	return len(p.partitions)
}

func (p *PartitionRange) DoPreciseSharding(availableTargets []string, value *core.PreciseShardingValue) (int, error) {
	v := scriptValue(value.Value)
	for i, r := range p.partitions {
		ok, err := r.Contains(v)
		if err != nil {
			return -1, fmt.Errorf("%s sharding algorithm can not shard value %v (%T): %v", p.typeName, value.Value, value.Value, err)
		}
		if ok {
			return findSuffix(availableTargets, int64(i)), nil
		}
	}
	return -1, nil
}

func (p *PartitionRange) DoRangeSharding(availableTargets []string, value *core.RangeShardingValue) ([]int, error) {
	var result []int
	for i, r := range p.partitions {
		has, err := r.HasIntersection(value.Range)
		if err != nil {
			return nil, fmt.Errorf("%s sharding algorithm can not shard range %s: %v", p.typeName, value.Range, err)
		}
		if has {
			idx := findSuffix(availableTargets, int64(i))
			if idx < 0 {
				return nil, fmt.Errorf("%s sharding algorithm found no target for partition %d in %v", p.typeName, i, availableTargets)
			}
			result = append(result, idx)
		}
	}
	return result, nil
}
