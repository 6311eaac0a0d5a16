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

import "github.com/endink/shardroute/core"

//Hint carries sharding values supplied out of band for one statement
type Hint struct {
	//DatabaseShardingOnly routes by DatabaseValues only and never rewrites table names
	DatabaseShardingOnly bool
	DatabaseValues       []interface{}
	TableValues          []interface{}
}

func (h *Hint) databaseValues() []interface{} {
	if h == nil {
		return nil
	}
	return h.DatabaseValues
}

func (h *Hint) tableValues() []interface{} {
	if h == nil {
		return nil
	}
	return h.TableValues
}

//Context is the per statement input of routing, it is owned by the caller and never modified
type Context struct {
	Kind StatementKind
	//Tables are the logical tables in reference order
	Tables     []string
	Conditions core.ShardingConditions
	Hint       *Hint
}

func (c *Context) isDatabaseHint() bool {
	return c.Hint != nil && c.Hint.DatabaseShardingOnly
}

//groups returns the condition groups to route with, a statement without conditions is one empty group
func (c *Context) groups() core.ShardingConditions {
	if c.Conditions.IsEmpty() {
		return core.ShardingConditions{core.NewConditionGroup()}
	}
	return c.Conditions
}
