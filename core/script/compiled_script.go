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

package script

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
)

//CompiledScript is safe for concurrent use, every run works on its own copy of the compiled program
type CompiledScript interface {
	Run() ([]string, error)
	RunWith(variables map[string]interface{}) ([]string, error)
	Raw() string
}

type tengoScript struct {
	raw      string
	compiled *tengo.Compiled
}

func (script *tengoScript) Raw() string {
	return script.raw
}

func (script *tengoScript) Run() ([]string, error) {
	return script.RunWith(nil)
}

func (script *tengoScript) RunWith(variables map[string]interface{}) ([]string, error) {
	c := script.compiled.Clone()
	for name, value := range variables {
		if err := c.Set(name, value); err != nil {
			return nil, fmt.Errorf("set variable '%s' fault: %v", name, err)
		}
	}
	if err := c.Run(); err != nil {
		return nil, err
	}
	return script.toStrings(c.Get(resultVar))
}

func (script *tengoScript) toStrings(v *tengo.Variable) ([]string, error) {
	switch value := v.Value().(type) {
	case []interface{}:
		list := make([]string, len(value))
		for i, item := range value {
			s, ok := scalarString(item)
			if !ok {
				return nil, script.invalidReturnTypeError(v)
			}
			list[i] = s
		}
		return list, nil
	default:
		s, ok := scalarString(value)
		if !ok {
			return nil, script.invalidReturnTypeError(v)
		}
		return []string{s}, nil
	}
}

func scalarString(value interface{}) (string, bool) {
	switch s := value.(type) {
	case string:
		return s, true
	case int64, float64, bool:
		return fmt.Sprint(s), true
	case rune:
		return string(s), true
	default:
		return "", false
	}
}

func (script *tengoScript) invalidReturnTypeError(v *tengo.Variable) error {
	return errors.New(fmt.Sprint("script return invalid type, excepted array that element is number or string, and primitive number or string",
		"\n", "script: ", script.raw,
		"\n", "return type: ", v.ValueType()))
}
