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

package parser

import (
	"fmt"
	"sync"

	tidb "github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"
	_ "github.com/pingcap/tidb/types/parser_driver"
)

var parserPool = sync.Pool{
	New: func() interface{} {
		return tidb.New()
	},
}

//ParseSQL parses exactly one statement with a pooled parser, parser warnings are logged at debug level
func ParseSQL(sql string) (ast.StmtNode, error) {
	parser := parserPool.Get().(*tidb.Parser)
	defer parserPool.Put(parser)

	stmts, warns, err := parser.Parse(sql, "", "")
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		logger.Debugf("sql parse warning: %v", w)
	}
	if len(stmts) != 1 {
		return nil, fmt.Errorf("exactly one statement is expected, given: %d", len(stmts))
	}
	return stmts[0], nil
}
