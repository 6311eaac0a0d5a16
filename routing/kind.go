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

package routing

//StatementKind classifies a statement for strategy selection
type StatementKind int

const (
	KindSelect StatementKind = iota
	KindInsert
	KindUpdate
	KindDelete
	//KindDDL is table level DDL: create, alter, drop, truncate table and index DDL
	KindDDL
	//KindSchemaDDL is DDL on schema objects without tables: views, functions, procedures, databases
	KindSchemaDDL
	KindTablespaceDDL
	KindDCL
	KindDAL
	KindTCL
	//KindSession is SET and other session scoped statements
	KindSession
)

func (k StatementKind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	case KindDDL:
		return "DDL"
	case KindSchemaDDL:
		return "SCHEMA_DDL"
	case KindTablespaceDDL:
		return "TABLESPACE_DDL"
	case KindDCL:
		return "DCL"
	case KindDAL:
		return "DAL"
	case KindTCL:
		return "TCL"
	case KindSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

func (k StatementKind) IsDML() bool {
	return k <= KindDelete
}

func (k StatementKind) IsReadOnly() bool {
	return k == KindSelect
}

type StrategyKind int

const (
	StrategyStandard StrategyKind = iota
	StrategyBinding
	StrategyComplex
	StrategyDatabaseBroadcast
	StrategyTableBroadcast
	StrategyInstanceBroadcast
	StrategyDataSourceGroupBroadcast
	StrategyUnicast
	StrategyUnconfigured
	StrategyDatabaseHint
)

var strategyNames = []string{
	"STANDARD",
	"BINDING",
	"COMPLEX",
	"DATABASE_BROADCAST",
	"TABLE_BROADCAST",
	"INSTANCE_BROADCAST",
	"DATASOURCE_GROUP_BROADCAST",
	"UNICAST",
	"UNCONFIGURED",
	"DATABASE_HINT",
}

func (k StrategyKind) String() string {
	if k < 0 || int(k) >= len(strategyNames) {
		return "UNKNOWN"
	}
	return strategyNames[k]
}

//IsDegraded reports whether routes of the kind bypass sharding semantics
func (k StrategyKind) IsDegraded() bool {
	return k == StrategyComplex || k == StrategyUnconfigured
}
