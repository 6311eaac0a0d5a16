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
	"math"
	"sort"

	"github.com/pingcap/parser/ast"
	driver "github.com/pingcap/tidb/types/parser_driver"
)

//orderParams numbers the parameter markers of the statement by their position in the sql text
func orderParams(stmt ast.StmtNode) ([]*driver.ParamMarkerExpr, error) {
	switch stmt.(type) {
	case *ast.LoadDataStmt, *ast.PrepareStmt, *ast.ExecuteStmt, *ast.DeallocateStmt:
		return nil, fmt.Errorf("statement %T is not supported", stmt)
	}

	var markers []*driver.ParamMarkerExpr
	err := Walk(func(node ast.Node) (bool, error) {
		if p, ok := node.(*driver.ParamMarkerExpr); ok {
			markers = append(markers, p)
		}
		return true, nil
	}, stmt)
	if err != nil {
		return nil, err
	}

	// DDL Statements can not accept parameters
	if _, ok := stmt.(ast.DDLNode); ok && len(markers) > 0 {
		return nil, fmt.Errorf("parameter in ddl statement is not supported")
	}
	if len(markers) > math.MaxUint16 {
		return nil, fmt.Errorf("sql parameter count out of limit ( allow max: %d )", math.MaxUint16)
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Offset < markers[j].Offset
	})
	for i, p := range markers {
		p.SetOrder(i)
	}
	return markers, nil
}

//ParamCount returns the number of parameter markers of the sql
func ParamCount(sql string) (int, error) {
	stmt, err := ParseSQL(sql)
	if err != nil {
		return 0, err
	}
	markers, err := orderParams(stmt)
	if err != nil {
		return 0, err
	}
	return len(markers), nil
}
