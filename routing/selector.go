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

import (
	"github.com/endink/shardroute/core"
)

//SelectStrategy picks the routing strategy of a statement, the first matching rule wins
func SelectStrategy(kind StatementKind, tables []string, rule *core.ShardingRule, hint *Hint) StrategyKind {
	if hint != nil && hint.DatabaseShardingOnly {
		return StrategyDatabaseHint
	}

	switch kind {
	case KindTCL, KindSession, KindSchemaDDL:
		return StrategyDatabaseBroadcast
	case KindTablespaceDDL:
		return StrategyInstanceBroadcast
	case KindDDL:
		if len(tables) == 0 {
			return StrategyDatabaseBroadcast
		}
		if len(shardingTables(tables, rule)) > 0 {
			return StrategyTableBroadcast
		}
	case KindDAL:
		if len(tables) == 0 {
			return StrategyInstanceBroadcast
		}
		for _, t := range tables {
			if !rule.IsKnownTable(t) {
				return StrategyDataSourceGroupBroadcast
			}
		}
		return StrategyUnicast
	}

	if len(tables) == 0 {
		return StrategyUnicast
	}

	sharding := shardingTables(tables, rule)
	if len(sharding) == 1 {
		return StrategyStandard
	}
	if rule.IsAllBroadcastTables(tables) {
		if kind.IsReadOnly() {
			return StrategyUnicast
		}
		return StrategyDatabaseBroadcast
	}
	if len(sharding) == 0 {
		return StrategyUnconfigured
	}
	if rule.IsAllBindingTables(sharding) {
		return StrategyBinding
	}
	return StrategyComplex
}

//shardingTables returns the distinct sharding tables in reference order
func shardingTables(tables []string, rule *core.ShardingRule) []string {
	var result []string
	for _, t := range tables {
		if rule.IsShardingTable(t) && !core.ContainsIgnoreCase(result, t) {
			result = append(result, t)
		}
	}
	return result
}
