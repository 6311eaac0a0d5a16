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
	"strings"
)

//Token is one typed piece of a statement, tokens are values and never modified once created
type Token interface {
	fmt.Stringer
	token()
}

//TokenStream is the ordered sequence of tokens of a statement
type TokenStream []Token

//Literal is text kept as is, Params are the indexes of the placeholders it contains in text order
type Literal struct {
	Text   string
	Params []int
}

//TableToken is a reference to a logic table, it renders the actual table of the unit
type TableToken struct {
	LogicTable string
}

//IndexToken is an index name of a table, it renders '<index>_<actualTable>' when the table is renamed
type IndexToken struct {
	Name       string
	LogicTable string
}

type LimitKind int

const (
	LimitOffset LimitKind = iota
	LimitRowCount
)

//LimitToken is the offset or row count of a pagination clause, ParamIndex is -1 when Value is a literal
type LimitToken struct {
	Kind       LimitKind
	Value      int64
	ParamIndex int
}

//GeneratedKeyToken renders the generated key of the insert row, as '?' plus a parameter when Parameterized
type GeneratedKeyToken struct {
	Row           int
	Parameterized bool
}

//InsertRow is the value list of one inserted row, every value is rendered by its own tokens
type InsertRow struct {
	Values []TokenStream
}

//InsertValuesToken is the value rows of an insert statement, rows not routed to a unit are dropped
type InsertValuesToken struct {
	Rows []InsertRow
}

func (l *Literal) token()           {}
func (t *TableToken) token()        {}
func (t *IndexToken) token()        {}
func (t *LimitToken) token()        {}
func (t *GeneratedKeyToken) token() {}
func (t *InsertValuesToken) token() {}

func (l *Literal) String() string {
	return l.Text
}

func (t *TableToken) String() string {
	return "table(" + t.LogicTable + ")"
}

func (t *IndexToken) String() string {
	return "index(" + t.Name + " on " + t.LogicTable + ")"
}

func (t *LimitToken) String() string {
	kind := "offset"
	if t.Kind == LimitRowCount {
		kind = "rowcount"
	}
	if t.ParamIndex >= 0 {
		return fmt.Sprintf("%s(?%d)", kind, t.ParamIndex)
	}
	return fmt.Sprintf("%s(%d)", kind, t.Value)
}

func (t *GeneratedKeyToken) String() string {
	return fmt.Sprintf("generated-key(%d)", t.Row)
}

func (t *InsertValuesToken) String() string {
	return fmt.Sprintf("values(%d rows)", len(t.Rows))
}

func (s TokenStream) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, "")
}

//NewLiteral creates a literal without placeholders
func NewLiteral(text string) *Literal {
	return &Literal{Text: text}
}

func NewParamLiteral(text string, params ...int) *Literal {
	return &Literal{Text: text, Params: params}
}

func NewTableToken(logicTable string) *TableToken {
	return &TableToken{LogicTable: logicTable}
}

func NewLimitValue(kind LimitKind, value int64) *LimitToken {
	return &LimitToken{Kind: kind, Value: value, ParamIndex: -1}
}

func NewLimitParam(kind LimitKind, paramIndex int) *LimitToken {
	return &LimitToken{Kind: kind, ParamIndex: paramIndex}
}

//HasGeneratedKey reports whether the stream carries generated key tokens
func (s TokenStream) HasGeneratedKey() bool {
	for _, t := range s {
		if v, ok := t.(*InsertValuesToken); ok {
			for _, row := range v.Rows {
				for _, value := range row.Values {
					for _, vt := range value {
						if _, isKey := vt.(*GeneratedKeyToken); isKey {
							return true
						}
					}
				}
			}
		}
	}
	return false
}
