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
	"sort"

	"github.com/endink/shardroute/core"
)

var _ InlineExpression = &inlineExpr{}

//InlineExpression expands templates like 'ds${range(0,1)}.t_order_${[0,1]}' into the ordered list of names
type InlineExpression interface {
	//Flat expands the expression, segments are combined in prefix-major order and duplicates are dropped
	Flat() ([]string, error)
	FlatWith(variables map[string]interface{}) ([]string, error)
	//FlatScalar returns the first expanded name
	FlatScalar(variables map[string]interface{}) (string, error)
	RawExpression() string
	VariableNames() []string
}

type inlineExpr struct {
	expression string
	groups     []*inlineSegmentGroup
	varNames   []string
}

//NewInlineExpression parses the expression, the variables are declared for the scripts with nil values
func NewInlineExpression(expression string, variables ...string) (InlineExpression, error) {
	declared := make(map[string]interface{}, len(variables))
	for _, v := range variables {
		declared[v] = nil
	}
	groups, err := splitSegments(expression, declared)
	if err != nil {
		return nil, err
	}
	names := append([]string(nil), variables...)
	sort.Strings(names)
	return &inlineExpr{
		expression: expression,
		groups:     groups,
		varNames:   names,
	}, nil
}

//FlatInline is a shortcut for expressions without variables
func FlatInline(expression string) ([]string, error) {
	expr, err := NewInlineExpression(expression)
	if err != nil {
		return nil, err
	}
	return expr.Flat()
}

func (i *inlineExpr) RawExpression() string {
	return i.expression
}

func (i *inlineExpr) VariableNames() []string {
	return i.varNames
}

func (i *inlineExpr) Flat() ([]string, error) {
	return i.FlatWith(nil)
}

func (i *inlineExpr) FlatScalar(variables map[string]interface{}) (string, error) {
	list, err := i.FlatWith(variables)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[0], nil
}

func (i *inlineExpr) FlatWith(variables map[string]interface{}) ([]string, error) {
	seen := make(map[string]struct{})
	list := make([]string, 0)

	for _, g := range i.groups {
		current := []string{""}
		for _, s := range g.segments {
			suffix := []string{""}
			if s.script != nil {
				values, err := s.script.RunWith(variables)
				if err != nil {
					return nil, i.wrapExecuteError(err, variables)
				}
				suffix = values
			}
			current = join(current, s.prefix, suffix)
		}
		for _, c := range current {
			if c == "" {
				continue
			}
			if _, ok := seen[c]; !ok {
				seen[c] = core.Nothing
				list = append(list, c)
			}
		}
	}
	return list, nil
}

func join(heads []string, prefix string, suffix []string) []string {
	r := make([]string, 0, len(heads)*len(suffix))
	for _, h := range heads {
		for _, v := range suffix {
			r = append(r, h+prefix+v)
		}
	}
	return r
}

func (i *inlineExpr) wrapExecuteError(e error, vars map[string]interface{}) error {
	sb := core.NewStringBuilder()
	sb.WriteLine("inline expression evaluation fault.")
	sb.WriteLine("Script: ", i.expression)
	sb.Write("Variables: ")
	if len(vars) > 0 {
		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)
		for idx, name := range names {
			if idx > 0 {
				sb.Write(", ")
			}
			sb.WriteFormat("%s=%v", name, vars[name])
		}
	} else {
		sb.Write("<none>")
	}
	sb.WriteLine()
	sb.WriteLine("Error:")
	sb.Write(e.Error())

	return errors.New(sb.String())
}
