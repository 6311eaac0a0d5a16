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
	"strconv"
	"strings"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/engine"
	"github.com/endink/shardroute/keygen"
	"github.com/endink/shardroute/logging"
	"github.com/endink/shardroute/rewriting"
	"github.com/endink/shardroute/routing"
	"github.com/pingcap/errors"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/model"
	driver "github.com/pingcap/tidb/types/parser_driver"
)

var logger = logging.GetLogger("parser")

//Parse parses the sql and binds it with its parameters into a statement the engine can route,
//the rendered sql of the token stream is the normalized form of the parser
func Parse(sql string, params []interface{}, rule *core.ShardingRule) (*engine.Statement, error) {
	if rule == nil {
		return nil, errors.New("sharding rule can not be nil")
	}
	node, err := ParseSQL(sql)
	if err != nil {
		return nil, errors.Annotatef(err, "parse sql failed: %s", sql)
	}
	markers, err := orderParams(node)
	if err != nil {
		return nil, err
	}
	if len(params) < len(markers) {
		return nil, errors.Errorf("sql requires %d parameters, %d given", len(markers), len(params))
	}

	b := &binder{
		rule:    rule,
		node:    node,
		params:  params,
		aliases: make(map[string]string),
		stmt:    &engine.Statement{SQL: sql, Parameters: params},
	}
	if err = b.bind(); err != nil {
		return nil, err
	}
	return b.stmt, nil
}

type binder struct {
	rule   *core.ShardingRule
	node   ast.StmtNode
	params []interface{}
	//aliases maps lower case alias to the aliased table, derived tables map to ""
	aliases map[string]string
	stmt    *engine.Statement
	keyGen  bool
}

func (b *binder) bind() error {
	kind, err := classify(b.node)
	if err != nil {
		return err
	}
	b.stmt.Kind = kind
	b.collectTables()

	switch n := b.node.(type) {
	case *ast.SelectStmt:
		b.stmt.Conditions = b.whereConditions(n.Where)
	case *ast.UpdateStmt:
		b.stmt.Conditions = b.whereConditions(n.Where)
	case *ast.DeleteStmt:
		b.stmt.Conditions = b.whereConditions(n.Where)
	case *ast.InsertStmt:
		if err = b.bindInsert(n); err != nil {
			return err
		}
	}

	tokens, err := b.tokens()
	if err != nil {
		return err
	}
	b.stmt.Tokens = tokens
	logger.Debugf("%s statement bound, tables: %v, conditions: %s", kind, b.stmt.Tables, b.stmt.Conditions)
	return nil
}

func classify(node ast.StmtNode) (routing.StatementKind, error) {
	switch node.(type) {
	case *ast.SelectStmt:
		return routing.KindSelect, nil
	case *ast.InsertStmt:
		return routing.KindInsert, nil
	case *ast.UpdateStmt:
		return routing.KindUpdate, nil
	case *ast.DeleteStmt:
		return routing.KindDelete, nil
	case *ast.ShowStmt, *ast.UseStmt, *ast.ExplainStmt, *ast.AnalyzeTableStmt, *ast.FlushStmt, *ast.KillStmt:
		return routing.KindDAL, nil
	case *ast.CreateDatabaseStmt, *ast.DropDatabaseStmt, *ast.AlterDatabaseStmt, *ast.CreateViewStmt:
		return routing.KindSchemaDDL, nil
	case *ast.GrantStmt, *ast.RevokeStmt, *ast.CreateUserStmt, *ast.DropUserStmt, *ast.AlterUserStmt, *ast.SetPwdStmt:
		return routing.KindDCL, nil
	case *ast.BeginStmt, *ast.CommitStmt, *ast.RollbackStmt:
		return routing.KindTCL, nil
	case *ast.SetStmt:
		return routing.KindSession, nil
	case ast.DDLNode:
		return routing.KindDDL, nil
	case ast.DMLNode:
		//set operations of selects
		return routing.KindSelect, nil
	}
	return 0, errors.Errorf("statement %T is not supported", node)
}

//collectTables records the logic tables in reference order and the aliases of the statement
func (b *binder) collectTables() {
	_ = Walk(func(node ast.Node) (bool, error) {
		switch n := node.(type) {
		case *ast.TableSource:
			if n.AsName.L != "" {
				if t, ok := n.Source.(*ast.TableName); ok {
					b.aliases[n.AsName.L] = t.Name.O
				} else {
					b.aliases[n.AsName.L] = ""
				}
			}
		case *ast.TableName:
			if !core.ContainsIgnoreCase(b.stmt.Tables, n.Name.O) {
				b.stmt.Tables = append(b.stmt.Tables, n.Name.O)
			}
		}
		return true, nil
	}, b.node)
}

func (b *binder) hasTable(name string) bool {
	return core.ContainsIgnoreCase(b.stmt.Tables, name)
}

func (b *binder) isAlias(name string) bool {
	_, ok := b.aliases[strings.ToLower(name)]
	return ok
}

//resolve returns the logic table a column qualifier stands for
func (b *binder) resolve(qualifier string) (string, bool) {
	if t, ok := b.aliases[strings.ToLower(qualifier)]; ok {
		return t, t != ""
	}
	if b.hasTable(qualifier) {
		return qualifier, true
	}
	return "", false
}

func (b *binder) bindInsert(n *ast.InsertStmt) error {
	table, ok := insertTable(n)
	if !ok {
		return errors.New("insert statement requires exactly one target table")
	}
	columns := make([]string, len(n.Columns))
	for i, c := range n.Columns {
		columns[i] = c.Name.O
	}
	b.stmt.Insert = &engine.InsertInfo{Table: table, Columns: columns, RowCount: len(n.Lists)}

	tr, sharding := b.rule.FindTableRule(table)
	if !sharding {
		return nil
	}

	if len(n.Lists) > 0 {
		for row, values := range n.Lists {
			group := core.NewRowConditionGroup(row)
			for j, c := range n.Columns {
				if j < len(values) && tr.IsShardingColumn(c.Name.O) {
					if v, ok := b.valueOf(values[j]); ok && v != nil {
						group.Conditions = append(group.Conditions, core.NewEqualCondition(table, c.Name.O, v))
					}
				}
			}
			b.stmt.Conditions = append(b.stmt.Conditions, group)
		}
		if gk := keygen.Plan(b.rule, table, columns); gk != nil {
			n.Columns = append(n.Columns, &ast.ColumnName{Name: model.NewCIStr(gk.Column)})
			b.keyGen = true
		}
		return nil
	}

	if len(n.Setlist) > 0 {
		group := core.NewRowConditionGroup(0)
		for _, a := range n.Setlist {
			if tr.IsShardingColumn(a.Column.Name.O) {
				if v, ok := b.valueOf(a.Expr); ok && v != nil {
					group.Conditions = append(group.Conditions, core.NewEqualCondition(table, a.Column.Name.O, v))
				}
			}
		}
		b.stmt.Conditions = core.ShardingConditions{group}
	}
	return nil
}

func insertTable(n *ast.InsertStmt) (string, bool) {
	if n.Table == nil || n.Table.TableRefs == nil || n.Table.TableRefs.Right != nil {
		return "", false
	}
	ts, ok := n.Table.TableRefs.Left.(*ast.TableSource)
	if !ok {
		return "", false
	}
	t, ok := ts.Source.(*ast.TableName)
	if !ok {
		return "", false
	}
	return t.Name.O, true
}

//tokens restores the statement with markers in place of every rewritable part
func (b *binder) tokens() (rewriting.TokenStream, error) {
	if sel, ok := b.node.(*ast.SelectStmt); ok && sel.Limit != nil {
		if sel.Limit.Offset != nil {
			sel.Limit.Offset = b.limitMarker(markOffset, sel.Limit.Offset)
		}
		if sel.Limit.Count != nil {
			sel.Limit.Count = b.limitMarker(markRowCount, sel.Limit.Count)
		}
	}

	b.node.Accept(&substituter{b: b})

	var rows []rewriting.InsertRow
	if ins, ok := b.node.(*ast.InsertStmt); ok && len(ins.Lists) > 0 {
		var err error
		if rows, err = b.insertRows(ins); err != nil {
			return nil, err
		}
		ins.Lists = [][]ast.ExprNode{{newMarkerExpr(&driver.ValueExpr{}, markValues, "")}}
	}

	text, err := restore(b.node)
	if err != nil {
		return nil, err
	}
	return tokenize(text, rows)
}

func (b *binder) insertRows(n *ast.InsertStmt) ([]rewriting.InsertRow, error) {
	rows := make([]rewriting.InsertRow, len(n.Lists))
	for i, list := range n.Lists {
		for _, expr := range list {
			text, err := restore(expr)
			if err != nil {
				return nil, err
			}
			value, err := tokenize(text, nil)
			if err != nil {
				return nil, err
			}
			rows[i].Values = append(rows[i].Values, value)
		}
		if b.keyGen {
			rows[i].Values = append(rows[i].Values, rewriting.TokenStream{
				&rewriting.GeneratedKeyToken{Row: i, Parameterized: len(b.params) > 0},
			})
		}
	}
	return rows, nil
}

func (b *binder) limitMarker(kind byte, expr ast.ExprNode) ast.ExprNode {
	switch v := expr.(type) {
	case *driver.ParamMarkerExpr:
		return newMarkerExpr(v, kind, "p"+strconv.Itoa(v.Order))
	case *driver.ValueExpr:
		if n, ok := literalValue(v); ok {
			if i, ok := toInt64(n); ok {
				return newMarkerExpr(v, kind, "v"+strconv.FormatInt(i, 10))
			}
		}
	}
	return expr
}

//substituter writes markers into table names, column owners, index names and parameters
type substituter struct {
	b *binder
}

func (s *substituter) Enter(in ast.Node) (ast.Node, bool) {
	switch n := in.(type) {
	case *ast.TableName:
		s.b.markTable(n)
	case *ast.ColumnName:
		s.b.markColumn(n)
	case *ast.CreateIndexStmt:
		if n.Table != nil {
			n.IndexName = marker(markIndex, n.IndexName+separator+n.Table.Name.O)
		}
	case *ast.DropIndexStmt:
		if n.Table != nil {
			n.IndexName = marker(markIndex, n.IndexName+separator+n.Table.Name.O)
		}
	}
	return in, false
}

func (s *substituter) Leave(in ast.Node) (ast.Node, bool) {
	switch n := in.(type) {
	case *driver.ParamMarkerExpr:
		return newMarkerExpr(n, markParam, strconv.Itoa(n.Order)), true
	case *driver.ValueExpr:
		if e, ok := newEscapedLiteral(n); ok {
			return e, true
		}
	}
	return in, true
}

func isMarked(name string) bool {
	return strings.HasPrefix(name, sentinel)
}

func (b *binder) markTable(n *ast.TableName) {
	if isMarked(n.Name.O) {
		return
	}
	if b.rule.IsShardingTable(n.Name.O) {
		n.Schema = model.CIStr{}
	}
	n.Name = model.NewCIStr(marker(markTable, n.Name.O))
}

func (b *binder) markColumn(n *ast.ColumnName) {
	q := n.Table.O
	if q == "" || isMarked(q) || b.isAlias(q) || !b.hasTable(q) {
		return
	}
	if b.rule.IsShardingTable(q) {
		n.Schema = model.CIStr{}
	}
	n.Table = model.NewCIStr(marker(markTable, q))
}
