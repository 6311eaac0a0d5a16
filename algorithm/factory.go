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
	"github.com/endink/shardroute/core/provider"
)

//Factory creates a sharding algorithm from its properties, the provider name is the algorithm type
type Factory interface {
	provider.Provider
	Create(props core.Properties) (core.ShardingAlgorithm, error)
}

type CreateFunc func(props core.Properties) (core.ShardingAlgorithm, error)

type factory struct {
	name   string
	create CreateFunc
}

func (f *factory) GetName() string {
	return f.name
}

func (f *factory) Create(props core.Properties) (core.ShardingAlgorithm, error) {
	return f.create(props)
}

//Register adds an algorithm type to the default registry, a later registration replaces the earlier one
func Register(typeName string, create CreateFunc) {
	provider.DefaultRegistry().MustRegister(provider.ShardingAlgorithm, &factory{
		name:   strings.ToUpper(strings.TrimSpace(typeName)),
		create: create,
	})
}

//New creates an algorithm of the registered type
func New(typeName string, props core.Properties) (core.ShardingAlgorithm, error) {
	p, ok := provider.DefaultRegistry().TryLoad(provider.ShardingAlgorithm, typeName)
	if !ok {
		return nil, fmt.Errorf("sharding algorithm type '%s' is not supported", typeName)
	}
	f, ok := p.(Factory)
	if !ok {
		return nil, fmt.Errorf("provider '%s' is not a sharding algorithm factory", typeName)
	}
	if props == nil {
		props = core.EmptyProperties
	}
	return f.Create(props)
}

type columnPreparer interface {
	prepare(columns []string) error
}

//Prepare checks the algorithm against the sharding columns of the strategy using it,
//expression based algorithms are compiled here so that errors surface at load time
func Prepare(alg core.ShardingAlgorithm, columns []string) error {
	if p, ok := alg.(columnPreparer); ok {
		return p.prepare(columns)
	}
	return nil
}

//findTarget returns the index of the target named name, names are compared case-insensitively
func findTarget(targets []string, name string) int {
	for i, t := range targets {
		if strings.EqualFold(t, name) {
			return i
		}
	}
	return -1
}

//findSuffix returns the first target whose trailing number equals n, 't_order_10' never matches 0
func findSuffix(targets []string, n int64) int {
	for i, t := range targets {
		end := len(t)
		start := end
		for start > 0 && t[start-1] >= '0' && t[start-1] <= '9' {
			start--
		}
		if start == end {
			continue
		}
		if v, err := strconv.ParseInt(t[start:end], 10, 64); err == nil && v == n {
			return i
		}
	}
	return -1
}

//scriptValue converts a sharding value to a type usable as script variable
func scriptValue(value interface{}) interface{} {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		if v <= 1<<63-1 {
			return int64(v)
		}
		return fmt.Sprint(v)
	case float32:
		return float64(v)
	case []byte:
		return string(v)
	default:
		return v
	}
}

func requiredInt(props core.Properties, key string, algorithmType string) (int64, error) {
	v, err := props.GetInt64(key, 0)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(props.GetString(key, "")) == "" {
		return 0, fmt.Errorf("property '%s' is required for %s sharding algorithm", key, algorithmType)
	}
	return v, nil
}
