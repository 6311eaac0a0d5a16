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
	"fmt"
	"strconv"
	"strings"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/core/comparison"
	"github.com/endink/shardroute/routing"
)

//SQLUnit is the physical statement of one routing unit
type SQLUnit struct {
	SQL        string
	Parameters []interface{}
}

//TokenDecorator replaces tokens for one unit before rendering, the given stream must not be modified
type TokenDecorator interface {
	Decorate(unit *routing.Unit, tokens TokenStream) (TokenStream, error)
}

type TokenDecoratorFunc func(unit *routing.Unit, tokens TokenStream) (TokenStream, error)

func (f TokenDecoratorFunc) Decorate(unit *routing.Unit, tokens TokenStream) (TokenStream, error) {
	return f(unit, tokens)
}

//Context is the statement level input of rewriting
type Context struct {
	Tokens     TokenStream
	Parameters []interface{}
	//GeneratedKeys are the generated key values in row order, nil renders DEFAULT
	GeneratedKeys []interface{}
	Decorators    []TokenDecorator
}

//Rewrite renders one SQL unit for every unit of the result in result order
func Rewrite(ctx *Context, result *routing.Result) ([]*SQLUnit, error) {
	units := result.Units()
	sqlUnits := make([]*SQLUnit, 0, len(units))
	single := len(units) == 1
	for _, u := range units {
		su, err := RewriteUnit(ctx, u, single)
		if err != nil {
			return nil, err
		}
		sqlUnits = append(sqlUnits, su)
	}
	return sqlUnits, nil
}

//RewriteUnit renders the statement for one unit, pagination is revised unless the unit is the only one
func RewriteUnit(ctx *Context, unit *routing.Unit, singleUnit bool) (*SQLUnit, error) {
	tokens := ctx.Tokens
	for _, d := range ctx.Decorators {
		decorated, err := d.Decorate(unit, tokens)
		if err != nil {
			return nil, err
		}
		tokens = decorated
	}

	r := &renderer{
		ctx:    ctx,
		unit:   unit,
		revise: !singleUnit,
		sb:     core.NewStringBuilder(),
		params: make([]interface{}, 0, len(ctx.Parameters)),
	}
	if r.revise {
		offset, err := r.offset(tokens)
		if err != nil {
			return nil, err
		}
		r.offsetValue = offset
	}
	if err := r.renderAll(tokens); err != nil {
		return nil, err
	}
	return &SQLUnit{SQL: r.sb.String(), Parameters: r.params}, nil
}

type renderer struct {
	ctx         *Context
	unit        *routing.Unit
	revise      bool
	offsetValue int64
	sb          *core.StringBuilder
	params      []interface{}
}

func (r *renderer) renderAll(tokens TokenStream) error {
	for _, t := range tokens {
		if err := r.render(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) render(t Token) error {
	switch v := t.(type) {
	case *Literal:
		r.sb.Write(v.Text)
		return r.bind(v.Params)
	case *TableToken:
		actual, ok := r.unit.ActualTable(v.LogicTable)
		if !ok {
			return core.NewRewriteError("table '%s' has no actual table in unit %s", v.LogicTable, r.unit)
		}
		r.sb.Write(actual)
	case *IndexToken:
		actual, ok := r.unit.ActualTable(v.LogicTable)
		if !ok {
			return core.NewRewriteError("table '%s' of index '%s' has no actual table in unit %s", v.LogicTable, v.Name, r.unit)
		}
		if actual == v.LogicTable {
			r.sb.Write(v.Name)
		} else {
			r.sb.Write(v.Name, "_", actual)
		}
	case *LimitToken:
		return r.renderLimit(v)
	case *InsertValuesToken:
		return r.renderRows(v)
	case *GeneratedKeyToken:
		return r.renderGeneratedKey(v)
	default:
		return core.NewRewriteError("unknown token type %T", t)
	}
	return nil
}

func (r *renderer) bind(indexes []int) error {
	for _, i := range indexes {
		if i < 0 || i >= len(r.ctx.Parameters) {
			return core.NewRewriteError("parameter #%d is referenced but only %d parameters are bound", i, len(r.ctx.Parameters))
		}
		r.params = append(r.params, r.ctx.Parameters[i])
	}
	return nil
}

func (r *renderer) limitValue(t *LimitToken) (int64, error) {
	if t.ParamIndex < 0 {
		return t.Value, nil
	}
	if t.ParamIndex >= len(r.ctx.Parameters) {
		return 0, core.NewRewriteError("limit parameter #%d is not bound", t.ParamIndex)
	}
	v, ok := comparison.ToInt64(r.ctx.Parameters[t.ParamIndex])
	if !ok {
		s, isString := r.ctx.Parameters[t.ParamIndex].(string)
		parsed, err := strconv.ParseInt(s, 10, 64)
		if !isString || err != nil {
			return 0, core.NewRewriteError("limit parameter #%d is not an integer: %v", t.ParamIndex, r.ctx.Parameters[t.ParamIndex])
		}
		v = parsed
	}
	return v, nil
}

func (r *renderer) offset(tokens TokenStream) (int64, error) {
	for _, t := range tokens {
		if l, ok := t.(*LimitToken); ok && l.Kind == LimitOffset {
			return r.limitValue(l)
		}
	}
	return 0, nil
}

//renderLimit keeps the pagination of a single unit, otherwise every unit fetches rows from 0 to offset + count
func (r *renderer) renderLimit(t *LimitToken) error {
	if !r.revise {
		if t.ParamIndex >= 0 {
			r.sb.Write("?")
			return r.bind([]int{t.ParamIndex})
		}
		r.sb.Write(strconv.FormatInt(t.Value, 10))
		return nil
	}

	var revised int64
	if t.Kind == LimitRowCount {
		count, err := r.limitValue(t)
		if err != nil {
			return err
		}
		revised = r.offsetValue + count
	}
	if t.ParamIndex >= 0 {
		r.sb.Write("?")
		r.params = append(r.params, revised)
		return nil
	}
	r.sb.Write(strconv.FormatInt(revised, 10))
	return nil
}

func (r *renderer) renderRows(t *InsertValuesToken) error {
	written := 0
	for i, row := range t.Rows {
		if r.unit.Rows != nil && !r.unit.HasRow(i) {
			continue
		}
		if written > 0 {
			r.sb.Write(",")
		}
		r.sb.Write("(")
		for j, value := range row.Values {
			if j > 0 {
				r.sb.Write(",")
			}
			if err := r.renderAll(value); err != nil {
				return err
			}
		}
		r.sb.Write(")")
		written++
	}
	if written == 0 {
		return core.NewRewriteError("no insert row is routed to unit %s", r.unit)
	}
	return nil
}

func (r *renderer) renderGeneratedKey(t *GeneratedKeyToken) error {
	if r.ctx.GeneratedKeys == nil {
		r.sb.Write("DEFAULT")
		return nil
	}
	if t.Row < 0 || t.Row >= len(r.ctx.GeneratedKeys) {
		return core.NewRewriteError("no generated key for insert row #%d", t.Row)
	}
	value := r.ctx.GeneratedKeys[t.Row]
	if t.Parameterized {
		r.sb.Write("?")
		r.params = append(r.params, value)
		return nil
	}
	r.sb.Write(FormatValue(value))
	return nil
}

//FormatValue renders a value as SQL literal
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(v)
	case []byte:
		return quote(string(v))
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		if i, ok := comparison.ToInt64(v); ok {
			return strconv.FormatInt(i, 10)
		}
		if u, ok := v.(uint64); ok {
			return strconv.FormatUint(u, 10)
		}
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return quote(fmt.Sprint(v))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "'", "''") + "'"
}
