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

package core

//ShardingAlgorithm is the common part of all algorithms, an algorithm must implement at least one capability
type ShardingAlgorithm interface {
	Type() string
}

type PreciseShardingValue struct {
	LogicTable string
	Column     string
	Value      interface{}
}

type RangeShardingValue struct {
	LogicTable string
	Column     string
	Range      Range
}

//ComplexShardingValues holds the values of every sharding column of a complex strategy, a column may carry both
type ComplexShardingValues struct {
	LogicTable string
	Values     map[string][]interface{}
	Ranges     map[string]Range
}

type HintShardingValues struct {
	LogicTable string
	Values     []interface{}
}

//PreciseAlgorithm returns the index of the target for one equality value
type PreciseAlgorithm interface {
	ShardingAlgorithm
	DoPreciseSharding(availableTargets []string, value *PreciseShardingValue) (int, error)
}

type RangeAlgorithm interface {
	ShardingAlgorithm
	DoRangeSharding(availableTargets []string, value *RangeShardingValue) ([]int, error)
}

type ComplexAlgorithm interface {
	ShardingAlgorithm
	DoComplexSharding(availableTargets []string, values *ComplexShardingValues) ([]int, error)
}

type HintAlgorithm interface {
	ShardingAlgorithm
	DoHintSharding(availableTargets []string, values *HintShardingValues) ([]int, error)
}

//AllIndexes returns [0, n)
func AllIndexes(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = i
	}
	return r
}
