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

package engine

import (
	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/rewriting"
	"github.com/endink/shardroute/routing"
)

//InsertInfo describes the insert part of a statement needed for key generation
type InsertInfo struct {
	Table    string
	Columns  []string
	RowCount int
}

//Statement is a bound statement ready for routing, it is never modified by the engine
type Statement struct {
	SQL        string
	Kind       routing.StatementKind
	Tables     []string
	Conditions core.ShardingConditions
	Parameters []interface{}
	Tokens     rewriting.TokenStream
	Insert     *InsertInfo
	Hint       *routing.Hint
}

//ExecutionUnit is one physical statement to dispatch
type ExecutionUnit struct {
	DataSource string
	SQL        string
	Parameters []interface{}
}

//ExecutionContext is the result of executing a statement through the engine
type ExecutionContext struct {
	Strategy routing.StrategyKind
	Degraded bool
	Units    []*ExecutionUnit
	//GeneratedKeys holds one value per inserted row in row order
	GeneratedKeys      []interface{}
	GeneratedKeyColumn string
}

//Explanation describes how a statement would be routed and rewritten
type Explanation struct {
	Strategy routing.StrategyKind
	Degraded bool
	Route    *routing.Result
	Units    []*ExecutionUnit
}
