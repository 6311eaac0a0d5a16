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

package rewriting

import (
	"testing"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(ds string, rows []int, mappings ...string) *routing.Unit {
	u := &routing.Unit{DataSource: ds, Rows: rows}
	for i := 0; i+1 < len(mappings); i += 2 {
		u.TableMappers = append(u.TableMappers, routing.TableMapper{LogicTable: mappings[i], ActualTable: mappings[i+1]})
	}
	return u
}

func values(texts ...string) InsertRow {
	row := InsertRow{}
	for _, t := range texts {
		row.Values = append(row.Values, TokenStream{NewLiteral(t)})
	}
	return row
}

func TestRewriteInsertScenario(t *testing.T) {
	ctx := &Context{Tokens: TokenStream{
		NewLiteral("INSERT INTO "),
		NewTableToken("t_order"),
		NewLiteral(" (order_id) VALUES "),
		&InsertValuesToken{Rows: []InsertRow{values("3")}},
	}}
	su, err := RewriteUnit(ctx, unit("ds1", []int{0}, "t_order", "t_order_1"), true)
	require.Nil(t, err)
	assert.Equal(t, "INSERT INTO t_order_1 (order_id) VALUES (3)", su.SQL)
	assert.Empty(t, su.Parameters)
}

func TestRewriteSingleUnitIsNoop(t *testing.T) {
	ctx := &Context{
		Tokens: TokenStream{
			NewLiteral("SELECT * FROM "),
			NewTableToken("t_order"),
			NewParamLiteral(" WHERE order_id = ? AND status = ?", 0, 1),
			NewLiteral(" LIMIT "),
			NewLimitValue(LimitOffset, 10),
			NewLiteral(", "),
			NewLimitValue(LimitRowCount, 5),
		},
		Parameters: []interface{}{int64(1), "OK"},
	}
	su, err := RewriteUnit(ctx, unit("ds0", nil, "t_order", "t_order"), true)
	require.Nil(t, err)
	assert.Equal(t, "SELECT * FROM t_order WHERE order_id = ? AND status = ? LIMIT 10, 5", su.SQL)
	assert.Equal(t, ctx.Parameters, su.Parameters)
}

func TestRewriteMissingTable(t *testing.T) {
	ctx := &Context{Tokens: TokenStream{NewLiteral("SELECT * FROM "), NewTableToken("t_order")}}
	_, err := RewriteUnit(ctx, unit("ds0", nil, "t_user", "t_user_0"), true)
	assert.True(t, core.IsRewriteError(err))
}

func TestRewriteIndex(t *testing.T) {
	ctx := &Context{Tokens: TokenStream{
		NewLiteral("CREATE INDEX "),
		&IndexToken{Name: "idx_status", LogicTable: "t_order"},
		NewLiteral(" ON "),
		NewTableToken("t_order"),
		NewLiteral(" (status)"),
	}}
	su, err := RewriteUnit(ctx, unit("ds0", nil, "t_order", "t_order_1"), false)
	require.Nil(t, err)
	assert.Equal(t, "CREATE INDEX idx_status_t_order_1 ON t_order_1 (status)", su.SQL)

	su, err = RewriteUnit(ctx, unit("ds0", nil, "t_order", "t_order"), false)
	require.Nil(t, err)
	assert.Equal(t, "CREATE INDEX idx_status ON t_order (status)", su.SQL)
}

func TestRewritePagination(t *testing.T) {
	t.Run("literal", func(t *testing.T) {
		ctx := &Context{Tokens: TokenStream{
			NewLiteral("SELECT * FROM "),
			NewTableToken("t_order"),
			NewLiteral(" LIMIT "),
			NewLimitValue(LimitOffset, 10),
			NewLiteral(","),
			NewLimitValue(LimitRowCount, 20),
		}}
		su, err := RewriteUnit(ctx, unit("ds0", nil, "t_order", "t_order_0"), false)
		require.Nil(t, err)
		assert.Equal(t, "SELECT * FROM t_order_0 LIMIT 0,30", su.SQL)
	})

	t.Run("parameters", func(t *testing.T) {
		ctx := &Context{
			Tokens: TokenStream{
				NewLiteral("SELECT * FROM "),
				NewTableToken("t_order"),
				NewParamLiteral(" WHERE status = ?", 0),
				NewLiteral(" LIMIT "),
				NewLimitParam(LimitRowCount, 2),
				NewLiteral(" OFFSET "),
				NewLimitParam(LimitOffset, 1),
			},
			Parameters: []interface{}{"OK", 5, int64(20)},
		}
		single, err := RewriteUnit(ctx, unit("ds0", nil, "t_order", "t_order_0"), true)
		require.Nil(t, err)
		assert.Equal(t, "SELECT * FROM t_order_0 WHERE status = ? LIMIT ? OFFSET ?", single.SQL)
		assert.Equal(t, []interface{}{"OK", int64(20), 5}, single.Parameters)

		multi, err := RewriteUnit(ctx, unit("ds0", nil, "t_order", "t_order_0"), false)
		require.Nil(t, err)
		assert.Equal(t, single.SQL, multi.SQL)
		assert.Equal(t, []interface{}{"OK", int64(25), int64(0)}, multi.Parameters)
		assert.Equal(t, []interface{}{"OK", 5, int64(20)}, ctx.Parameters)
	})

	t.Run("invalid parameter", func(t *testing.T) {
		ctx := &Context{
			Tokens:     TokenStream{NewLiteral("SELECT 1 LIMIT "), NewLimitParam(LimitRowCount, 0)},
			Parameters: []interface{}{"ten"},
		}
		_, err := RewriteUnit(ctx, unit("ds0", nil), false)
		assert.True(t, core.IsRewriteError(err))
	})
}

func insertWithKeys(parameterized bool) TokenStream {
	var rows []InsertRow
	for i := 0; i < 3; i++ {
		var row InsertRow
		if parameterized {
			row.Values = []TokenStream{
				{NewParamLiteral("?", i*2)},
				{NewParamLiteral("?", i*2+1)},
			}
		} else {
			row = values("'u'", "1")
		}
		row.Values = append(row.Values, TokenStream{&GeneratedKeyToken{Row: i, Parameterized: parameterized}})
		rows = append(rows, row)
	}
	return TokenStream{
		NewLiteral("INSERT INTO "),
		NewTableToken("t_order"),
		NewLiteral(" (name,user_id,order_id) VALUES "),
		&InsertValuesToken{Rows: rows},
	}
}

func TestRewriteInsertRows(t *testing.T) {
	t.Run("parameterized", func(t *testing.T) {
		ctx := &Context{
			Tokens:        insertWithKeys(true),
			Parameters:    []interface{}{"a", 1, "b", 2, "c", 3},
			GeneratedKeys: []interface{}{int64(100), int64(101), int64(102)},
		}
		su, err := RewriteUnit(ctx, unit("ds1", []int{0, 2}, "t_order", "t_order_1"), false)
		require.Nil(t, err)
		assert.Equal(t, "INSERT INTO t_order_1 (name,user_id,order_id) VALUES (?,?,?),(?,?,?)", su.SQL)
		assert.Equal(t, []interface{}{"a", 1, int64(100), "c", 3, int64(102)}, su.Parameters)

		su, err = RewriteUnit(ctx, unit("ds0", []int{1}, "t_order", "t_order_0"), false)
		require.Nil(t, err)
		assert.Equal(t, "INSERT INTO t_order_0 (name,user_id,order_id) VALUES (?,?,?)", su.SQL)
		assert.Equal(t, []interface{}{"b", 2, int64(101)}, su.Parameters)
	})

	t.Run("literal", func(t *testing.T) {
		ctx := &Context{
			Tokens:        insertWithKeys(false),
			GeneratedKeys: []interface{}{int64(7), "k'8", int64(9)},
		}
		su, err := RewriteUnit(ctx, unit("ds0", []int{1}, "t_order", "t_order_0"), false)
		require.Nil(t, err)
		assert.Equal(t, "INSERT INTO t_order_0 (name,user_id,order_id) VALUES ('u',1,'k''8')", su.SQL)
	})

	t.Run("default", func(t *testing.T) {
		su, err := RewriteUnit(&Context{Tokens: insertWithKeys(false)}, unit("ds0", nil, "t_order", "t_order"), true)
		require.Nil(t, err)
		assert.Equal(t, "INSERT INTO t_order (name,user_id,order_id) VALUES ('u',1,DEFAULT),('u',1,DEFAULT),('u',1,DEFAULT)", su.SQL)
	})

	t.Run("no row", func(t *testing.T) {
		_, err := RewriteUnit(&Context{Tokens: insertWithKeys(false)}, unit("ds0", []int{}, "t_order", "t_order"), true)
		assert.True(t, core.IsRewriteError(err))
	})
}

func TestDecorator(t *testing.T) {
	ctx := &Context{
		Tokens: TokenStream{NewLiteral("SELECT pwd FROM "), NewTableToken("t_user")},
		Decorators: []TokenDecorator{TokenDecoratorFunc(func(u *routing.Unit, tokens TokenStream) (TokenStream, error) {
			decorated := make(TokenStream, len(tokens))
			copy(decorated, tokens)
			decorated[0] = NewLiteral("SELECT pwd_cipher FROM ")
			return decorated, nil
		})},
	}
	su, err := RewriteUnit(ctx, unit("ds0", nil, "t_user", "t_user_0"), true)
	require.Nil(t, err)
	assert.Equal(t, "SELECT pwd_cipher FROM t_user_0", su.SQL)
	assert.Equal(t, "SELECT pwd FROM ", ctx.Tokens[0].String())
}

func TestRewriteResult(t *testing.T) {
	nodes, err := core.ParseDataNodes([]string{"ds0.t_order_0", "ds1.t_order_1"})
	require.Nil(t, err)
	rule, err := core.NewShardingRule(&core.RuleOptions{Tables: []*core.TableRule{core.NewTableRule("t_order", nodes)}})
	require.Nil(t, err)
	result, err := routing.Route(rule, &routing.Context{Kind: routing.KindSelect, Tables: []string{"t_order"}})
	require.Nil(t, err)

	ctx := &Context{Tokens: TokenStream{
		NewLiteral("SELECT * FROM "),
		NewTableToken("t_order"),
		NewLiteral(" LIMIT "),
		NewLimitValue(LimitRowCount, 10),
	}}
	units, err := Rewrite(ctx, result)
	require.Nil(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "SELECT * FROM t_order_0 LIMIT 10", units[0].SQL)
	assert.Equal(t, "SELECT * FROM t_order_1 LIMIT 10", units[1].SQL)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil))
	assert.Equal(t, "12", FormatValue(uint8(12)))
	assert.Equal(t, "18446744073709551615", FormatValue(uint64(18446744073709551615)))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, `'a\\b'`, FormatValue(`a\b`))
}
