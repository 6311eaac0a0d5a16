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

	"github.com/endink/shardroute/rewriting"
	"github.com/pingcap/errors"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/format"
	"github.com/pingcap/parser/mysql"
	"github.com/pingcap/tidb/types"
	driver "github.com/pingcap/tidb/types/parser_driver"
)

//Sentinels wrap markers written into the restored sql, string literals holding them are restored escaped
const (
	sentinel     = "\x00"
	separator    = "\x01"
	markTable    = 'T'
	markIndex    = 'I'
	markParam    = 'P'
	markOffset   = 'O'
	markRowCount = 'R'
	markValues   = 'V'
)

const restoreFlags = format.RestoreKeyWordUppercase | format.RestoreStringSingleQuotes | format.RestoreStringEscapeBackslash | format.RestoreNameBackQuotes

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`, sentinel, `\0`)

func marker(kind byte, payload string) string {
	return sentinel + string(kind) + payload + sentinel
}

//markerExpr replaces an expression so that restoring writes the marker instead
type markerExpr struct {
	ast.ExprNode
	text string
}

func newMarkerExpr(origin ast.ExprNode, kind byte, payload string) *markerExpr {
	return &markerExpr{ExprNode: origin, text: marker(kind, payload)}
}

func (m *markerExpr) Restore(ctx *format.RestoreCtx) error {
	ctx.WritePlain(m.text)
	return nil
}

//Accept never visits the replaced expression
func (m *markerExpr) Accept(_ ast.Visitor) (ast.Node, bool) {
	return m, true
}

//escapedLiteral restores a string literal holding a sentinel with the sentinel written as an escape sequence
type escapedLiteral struct {
	*driver.ValueExpr
}

func newEscapedLiteral(v *driver.ValueExpr) (*escapedLiteral, bool) {
	kind := v.Kind()
	if kind != types.KindString && kind != types.KindBytes {
		return nil, false
	}
	if !strings.Contains(v.GetString(), sentinel) {
		return nil, false
	}
	return &escapedLiteral{ValueExpr: v}, true
}

func (e *escapedLiteral) Restore(ctx *format.RestoreCtx) error {
	if e.Kind() == types.KindString && e.Type.Charset != "" && e.Type.Charset != mysql.DefaultCharset {
		ctx.WritePlain("_")
		ctx.WriteKeyWord(e.Type.Charset)
	}
	ctx.WritePlain("'" + literalEscaper.Replace(e.GetString()) + "'")
	return nil
}

func (e *escapedLiteral) Accept(_ ast.Visitor) (ast.Node, bool) {
	return e, true
}

func restore(node ast.Node) (string, error) {
	sb := &strings.Builder{}
	if err := node.Restore(format.NewRestoreCtx(restoreFlags, sb)); err != nil {
		return "", errors.Annotate(err, "restore sql failed")
	}
	return sb.String(), nil
}

//tokenizer turns restored sql with markers into a token stream, adjacent literals are merged
type tokenizer struct {
	rows    []rewriting.InsertRow
	tokens  rewriting.TokenStream
	pending *rewriting.Literal
	//trimNext drops the closing parenthesis the restore wrote around the values marker
	trimNext bool
}

func tokenize(text string, rows []rewriting.InsertRow) (rewriting.TokenStream, error) {
	parts := strings.Split(text, sentinel)
	if len(parts)%2 == 0 {
		return nil, errors.Errorf("unbalanced marker in restored sql")
	}
	t := &tokenizer{rows: rows}
	for i, p := range parts {
		if i%2 == 0 {
			t.literal(p)
			continue
		}
		if err := t.marker(p); err != nil {
			return nil, err
		}
	}
	t.flush()
	return t.tokens, nil
}

func (t *tokenizer) literal(text string, params ...int) {
	if t.trimNext {
		text = strings.TrimPrefix(text, ")")
		t.trimNext = false
	}
	if text == "" && len(params) == 0 {
		return
	}
	if t.pending == nil {
		t.pending = rewriting.NewLiteral("")
	}
	t.pending.Text += text
	t.pending.Params = append(t.pending.Params, params...)
}

func (t *tokenizer) flush() {
	if t.pending != nil {
		t.tokens = append(t.tokens, t.pending)
		t.pending = nil
	}
}

func (t *tokenizer) push(token rewriting.Token) {
	t.flush()
	t.tokens = append(t.tokens, token)
}

func (t *tokenizer) marker(text string) error {
	if text == "" {
		return errors.Errorf("empty marker in restored sql")
	}
	payload := text[1:]
	switch text[0] {
	case markTable:
		t.push(rewriting.NewTableToken(payload))
	case markIndex:
		parts := strings.SplitN(payload, separator, 2)
		if len(parts) != 2 {
			return errors.Errorf("bad index marker '%s'", payload)
		}
		t.push(&rewriting.IndexToken{Name: parts[0], LogicTable: parts[1]})
	case markParam:
		index, err := strconv.Atoi(payload)
		if err != nil {
			return errors.Annotatef(err, "bad parameter marker '%s'", payload)
		}
		t.literal("?", index)
	case markOffset, markRowCount:
		kind := rewriting.LimitRowCount
		if text[0] == markOffset {
			kind = rewriting.LimitOffset
		}
		if len(payload) < 2 {
			return errors.Errorf("bad limit marker '%s'", payload)
		}
		n, err := strconv.ParseInt(payload[1:], 10, 64)
		if err != nil {
			return errors.Annotatef(err, "bad limit marker '%s'", payload)
		}
		if payload[0] == 'p' {
			t.push(rewriting.NewLimitParam(kind, int(n)))
		} else {
			t.push(rewriting.NewLimitValue(kind, n))
		}
	case markValues:
		if t.pending != nil {
			t.pending.Text = strings.TrimSuffix(t.pending.Text, "(")
		}
		t.push(&rewriting.InsertValuesToken{Rows: t.rows})
		t.trimNext = true
	default:
		return errors.Errorf("unknown marker '%s'", text)
	}
	return nil
}
