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

package keygen

import (
	"github.com/endink/shardroute/core"
	"github.com/pingcap/errors"
)

//GeneratedKey holds the values generated for one insert statement in row order
type GeneratedKey struct {
	Table          string
	Column         string
	Values         []interface{}
	ShardingColumn bool
}

//Plan returns the key that would be generated for the insert without invoking the generator,
//Values of the returned key is nil
func Plan(rule *core.ShardingRule, table string, columns []string) *GeneratedKey {
	if rule == nil || len(columns) == 0 {
		return nil
	}
	tr, ok := rule.FindTableRule(table)
	if !ok || tr.KeyGenerate == nil || tr.KeyGenerate.Generator == nil {
		return nil
	}
	if core.ContainsIgnoreCase(columns, tr.KeyGenerate.Column) {
		return nil
	}
	return &GeneratedKey{
		Table:          tr.LogicTable,
		Column:         tr.KeyGenerate.Column,
		ShardingColumn: tr.IsShardingColumn(tr.KeyGenerate.Column),
	}
}

//Generate produces a key for every inserted row when the table has a key generate strategy and the
//insert column list does not contain the key column, it returns nil otherwise
func Generate(rule *core.ShardingRule, table string, columns []string, rowCount int) (*GeneratedKey, error) {
	if rowCount <= 0 {
		return nil, nil
	}
	gk := Plan(rule, table, columns)
	if gk == nil {
		return nil, nil
	}
	tr, _ := rule.FindTableRule(table)
	gk.Values = make([]interface{}, rowCount)
	for i := range gk.Values {
		v, err := tr.KeyGenerate.Generator.Generate()
		if err != nil {
			return nil, errors.Annotatef(err, "generate key for %s.%s failed", tr.LogicTable, tr.KeyGenerate.Column)
		}
		gk.Values[i] = v
	}
	return gk, nil
}

//AppendConditions adds an equality condition on the key column to every row group when the key column
//is a sharding column, the input is never modified
func (g *GeneratedKey) AppendConditions(conditions core.ShardingConditions) core.ShardingConditions {
	if g == nil || !g.ShardingColumn {
		return conditions
	}
	result := make(core.ShardingConditions, 0, len(g.Values))
	for row, v := range g.Values {
		var group core.ConditionGroup
		if found := findRow(conditions, row); found != nil {
			cs := make([]core.ShardingCondition, len(found.Conditions), len(found.Conditions)+1)
			copy(cs, found.Conditions)
			group = core.NewRowConditionGroup(row, cs...)
		} else {
			group = core.NewRowConditionGroup(row)
		}
		group.Conditions = append(group.Conditions, core.NewEqualCondition(g.Table, g.Column, v))
		result = append(result, group)
	}
	return result
}

func findRow(conditions core.ShardingConditions, row int) *core.ConditionGroup {
	for i := range conditions {
		if conditions[i].Row == row {
			return &conditions[i]
		}
	}
	return nil
}
