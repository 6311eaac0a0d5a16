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

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/config"
)

type Properties interface {
	GetValues() map[string]string
	PopulateValue(instance interface{}) error
	GetString(key string, defaultValue string) string
	GetInt(key string, defaultValue int) (int, error)
	GetInt64(key string, defaultValue int64) (int64, error)
	GetBool(key string, defaultValue bool) (bool, error)
}

var EmptyProperties Properties = NewPropertiesFromMap(nil)

func NewProperties(value config.Value) (Properties, error) {
	values := make(map[string]interface{})
	if value.HasValue() {
		if err := value.Populate(&values); err != nil {
			return nil, err
		}
	}
	flat := make(map[string]string, len(values))
	for k, v := range values {
		flat[k] = fmt.Sprint(v)
	}
	return &properties{
		values:   flat,
		rawValue: &value,
	}, nil
}

func NewPropertiesFromMap(values map[string]string) Properties {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return &properties{values: m}
}

type properties struct {
	values   map[string]string
	rawValue *config.Value
}

func (props *properties) GetValues() map[string]string {
	return props.values
}

func (props *properties) PopulateValue(instance interface{}) error {
	if props.rawValue == nil {
		return nil
	}
	return props.rawValue.Populate(instance)
}

func (props *properties) lookup(key string) (string, bool) {
	v, ok := props.values[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (props *properties) GetString(key string, defaultValue string) string {
	if v, ok := props.lookup(key); ok {
		return v
	}
	return defaultValue
}

func (props *properties) GetInt(key string, defaultValue int) (int, error) {
	v, err := props.GetInt64(key, int64(defaultValue))
	return int(v), err
}

func (props *properties) GetInt64(key string, defaultValue int64) (int64, error) {
	v, ok := props.lookup(key)
	if !ok {
		return defaultValue, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("property '%s' must be an integer, given: %s", key, v)
	}
	return i, nil
}

func (props *properties) GetBool(key string, defaultValue bool) (bool, error) {
	v, ok := props.lookup(key)
	if !ok {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("property '%s' must be a boolean, given: %s", key, v)
	}
	return b, nil
}
