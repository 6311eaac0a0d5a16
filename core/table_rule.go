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
	"strings"

	"github.com/scylladb/go-set/strset"
)

//TableRule describes how one logic table is spread over its actual data nodes, it is immutable after creation
type TableRule struct {
	LogicTable       string
	DatabaseStrategy *ShardingStrategy
	TableStrategy    *ShardingStrategy
	KeyGenerate      *KeyGenerateStrategy

	actualDataNodes []DataNode
	dataSources     []string
	actualTables    []string
	tablesByDs      map[string][]string
	nodeIndexes     map[DataNode]int
	dataSourceSet   *strset.Set
}

func NewTableRule(logicTable string, nodes []DataNode) *TableRule {
	t := &TableRule{
		LogicTable:       strings.TrimSpace(logicTable),
		DatabaseStrategy: NoneStrategy,
		TableStrategy:    NoneStrategy,
		actualDataNodes:  make([]DataNode, len(nodes)),
		tablesByDs:       make(map[string][]string),
		nodeIndexes:      make(map[DataNode]int, len(nodes)),
		dataSourceSet:    strset.New(),
	}
	copy(t.actualDataNodes, nodes)

	tables := strset.New()
	for i, n := range t.actualDataNodes {
		if _, exists := t.nodeIndexes[n]; !exists {
			t.nodeIndexes[n] = i
		}
		if !t.dataSourceSet.Has(n.DataSource) {
			t.dataSourceSet.Add(n.DataSource)
			t.dataSources = append(t.dataSources, n.DataSource)
		}
		if !tables.Has(n.Table) {
			tables.Add(n.Table)
			t.actualTables = append(t.actualTables, n.Table)
		}
		t.tablesByDs[n.DataSource] = append(t.tablesByDs[n.DataSource], n.Table)
	}
	return t
}

//ActualDataNodes returns the nodes in declaration order
func (t *TableRule) ActualDataNodes() []DataNode {
	return t.actualDataNodes
}

//DataSources returns the distinct data sources in node order
func (t *TableRule) DataSources() []string {
	return t.dataSources
}

//ActualTables returns the distinct actual table names in node order
func (t *TableRule) ActualTables() []string {
	return t.actualTables
}

func (t *TableRule) ActualTablesIn(dataSource string) []string {
	return t.tablesByDs[dataSource]
}

func (t *TableRule) HasDataSource(dataSource string) bool {
	return t.dataSourceSet.Has(dataSource)
}

//IndexOf returns the position of the node in actual data nodes or -1
func (t *TableRule) IndexOf(node DataNode) int {
	if i, ok := t.nodeIndexes[node]; ok {
		return i
	}
	return -1
}

func (t *TableRule) IsDbShardingColumn(column string) bool {
	return t.DatabaseStrategy.IsShardingColumn(column)
}

func (t *TableRule) IsTableShardingColumn(column string) bool {
	return t.TableStrategy.IsShardingColumn(column)
}

func (t *TableRule) IsShardingColumn(column string) bool {
	return t.IsDbShardingColumn(column) || t.IsTableShardingColumn(column)
}

//ShardingColumns returns database columns first then table columns without duplicates
func (t *TableRule) ShardingColumns() []string {
	cols := make([]string, 0, len(t.DatabaseStrategy.Columns)+len(t.TableStrategy.Columns))
	cols = append(cols, t.DatabaseStrategy.Columns...)
	cols = append(cols, t.TableStrategy.Columns...)
	return DistinctSliceAndTrim(cols)
}

func (t *TableRule) IsKeyGenerateColumn(column string) bool {
	return t.KeyGenerate != nil && strings.EqualFold(t.KeyGenerate.Column, column)
}

func (t *TableRule) copyWith(db *ShardingStrategy, table *ShardingStrategy, key *KeyGenerateStrategy) *TableRule {
	c := *t
	c.DatabaseStrategy = db
	c.TableStrategy = table
	c.KeyGenerate = key
	return &c
}
