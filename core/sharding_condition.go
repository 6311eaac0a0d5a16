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
	"strings"
)

type ConditionOperator int

const (
	OperatorEqual ConditionOperator = iota
	OperatorIn
	OperatorRange
)

func (o ConditionOperator) String() string {
	switch o {
	case OperatorEqual:
		return "="
	case OperatorIn:
		return "IN"
	default:
		return "RANGE"
	}
}

//ShardingCondition is a predicate on one sharding column with concrete values
type ShardingCondition struct {
	Table    string
	Column   string
	Operator ConditionOperator
	Values   []interface{}
	Range    Range
}

func NewEqualCondition(table, column string, value interface{}) ShardingCondition {
	return ShardingCondition{Table: table, Column: column, Operator: OperatorEqual, Values: []interface{}{value}}
}

func NewInCondition(table, column string, values ...interface{}) ShardingCondition {
	return ShardingCondition{Table: table, Column: column, Operator: OperatorIn, Values: values}
}

func NewRangeCondition(table, column string, r Range) ShardingCondition {
	return ShardingCondition{Table: table, Column: column, Operator: OperatorRange, Range: r}
}

func (c ShardingCondition) IsRange() bool {
	return c.Operator == OperatorRange
}

func (c ShardingCondition) matches(table, column string) bool {
	return strings.EqualFold(c.Table, table) && strings.EqualFold(c.Column, column)
}

func (c ShardingCondition) String() string {
	if c.IsRange() {
		return fmt.Sprintf("%s.%s %s %s", c.Table, c.Column, c.Operator, c.Range)
	}
	return fmt.Sprintf("%s.%s %s %v", c.Table, c.Column, c.Operator, c.Values)
}

const NoRow = -1

//ConditionGroup is a conjunction of conditions, Row is the insert row it was built from or NoRow
type ConditionGroup struct {
	Row        int
	Conditions []ShardingCondition
}

func NewConditionGroup(conditions ...ShardingCondition) ConditionGroup {
	return ConditionGroup{Row: NoRow, Conditions: conditions}
}

func NewRowConditionGroup(row int, conditions ...ShardingCondition) ConditionGroup {
	return ConditionGroup{Row: row, Conditions: conditions}
}

//Find returns the conditions of the column in the group
func (g ConditionGroup) Find(table, column string) []ShardingCondition {
	var r []ShardingCondition
	for _, c := range g.Conditions {
		if c.matches(table, column) {
			r = append(r, c)
		}
	}
	return r
}

func (g ConditionGroup) HasTable(table string) bool {
	for _, c := range g.Conditions {
		if strings.EqualFold(c.Table, table) {
			return true
		}
	}
	return false
}

//WithTable returns a copy whose conditions on the given tables are re-targeted to target
func (g ConditionGroup) WithTable(target string, tables ...string) ConditionGroup {
	cs := make([]ShardingCondition, 0, len(g.Conditions))
	for _, c := range g.Conditions {
		if ContainsIgnoreCase(tables, c.Table) {
			c.Table = target
		}
		cs = append(cs, c)
	}
	return ConditionGroup{Row: g.Row, Conditions: cs}
}

//ShardingConditions is a disjunction of condition groups, empty means no sharding condition
type ShardingConditions []ConditionGroup

func (s ShardingConditions) IsEmpty() bool {
	return len(s) == 0
}

func (s ShardingConditions) IsInsert() bool {
	return len(s) > 0 && s[0].Row != NoRow
}

func (s ShardingConditions) String() string {
	sb := NewStringBuilder()
	for i, g := range s {
		if i > 0 {
			sb.Write(" OR ")
		}
		sb.Write("(")
		for j, c := range g.Conditions {
			if j > 0 {
				sb.Write(" AND ")
			}
			sb.Write(c.String())
		}
		sb.Write(")")
	}
	return sb.String()
}
