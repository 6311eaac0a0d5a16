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

package testkit

import (
	"sync"
	"testing"

	"github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"
	_ "github.com/pingcap/tidb/types/parser_driver"
)

var parsers = sync.Pool{
	New: func() interface{} {
		return parser.New()
	},
}

//ParseForTest parses exactly one statement, syntax errors fail the test
func ParseForTest(sql string, t testing.TB) ast.StmtNode {
	t.Helper()
	p := parsers.Get().(*parser.Parser)
	defer parsers.Put(p)

	stmts, warns, err := p.Parse(sql, "", "")
	if err != nil {
		t.Fatalf("%s\nsql err:%v", sql, err.Error())
	}
	for _, w := range warns {
		t.Logf("%s\nsql warning:%v", sql, w)
	}
	if len(stmts) != 1 {
		t.Fatalf("%s\none statement expected, given: %d", sql, len(stmts))
	}
	return stmts[0]
}
