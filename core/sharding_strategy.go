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

import "strings"

type StrategyType int

const (
	StrategyNone StrategyType = iota
	StrategyStandard
	StrategyComplex
	StrategyHint
)

func (t StrategyType) String() string {
	switch t {
	case StrategyStandard:
		return "standard"
	case StrategyComplex:
		return "complex"
	case StrategyHint:
		return "hint"
	default:
		return "none"
	}
}

//ShardingStrategy binds sharding columns to an algorithm, a none strategy routes to every target
type ShardingStrategy struct {
	Type          StrategyType
	Columns       []string
	AlgorithmName string
	Precise       PreciseAlgorithm
	Range         RangeAlgorithm
	Complex       ComplexAlgorithm
	Hint          HintAlgorithm
}

var NoneStrategy = &ShardingStrategy{Type: StrategyNone}

func NewStandardStrategy(column string, algorithmName string, precise PreciseAlgorithm) *ShardingStrategy {
	s := &ShardingStrategy{
		Type:          StrategyStandard,
		Columns:       []string{strings.TrimSpace(column)},
		AlgorithmName: algorithmName,
		Precise:       precise,
	}
	if r, ok := precise.(RangeAlgorithm); ok {
		s.Range = r
	}
	return s
}

func NewComplexStrategy(columns []string, algorithmName string, algorithm ComplexAlgorithm) *ShardingStrategy {
	return &ShardingStrategy{
		Type:          StrategyComplex,
		Columns:       DistinctSliceAndTrim(columns),
		AlgorithmName: algorithmName,
		Complex:       algorithm,
	}
}

func NewHintStrategy(algorithmName string, algorithm HintAlgorithm) *ShardingStrategy {
	return &ShardingStrategy{
		Type:          StrategyHint,
		AlgorithmName: algorithmName,
		Hint:          algorithm,
	}
}

func (s *ShardingStrategy) GetShardingColumns() []string {
	return s.Columns
}

func (s *ShardingStrategy) IsShardingColumn(column string) bool {
	return ContainsIgnoreCase(s.Columns, column)
}

func (s *ShardingStrategy) IsNone() bool {
	return s == nil || s.Type == StrategyNone
}

func (s *ShardingStrategy) IsRangeValueSupported() bool {
	switch s.Type {
	case StrategyStandard:
		return s.Range != nil
	case StrategyComplex:
		return true
	default:
		return false
	}
}

func (s *ShardingStrategy) validate(owner string) error {
	switch s.Type {
	case StrategyStandard:
		if len(s.Columns) != 1 || s.Columns[0] == "" {
			return NewConfigurationError("%s: standard strategy requires exactly one sharding column", owner)
		}
		if s.Precise == nil {
			return NewConfigurationError("%s: algorithm '%s' can not be used for precise sharding", owner, s.AlgorithmName)
		}
	case StrategyComplex:
		if len(s.Columns) == 0 {
			return NewConfigurationError("%s: complex strategy requires at least one sharding column", owner)
		}
		if s.Complex == nil {
			return NewConfigurationError("%s: algorithm '%s' can not be used for complex sharding", owner, s.AlgorithmName)
		}
	case StrategyHint:
		if s.Hint == nil {
			return NewConfigurationError("%s: algorithm '%s' can not be used for hint sharding", owner, s.AlgorithmName)
		}
	}
	return nil
}
