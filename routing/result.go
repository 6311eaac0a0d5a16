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
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/endink/shardroute/core"
	"github.com/scylladb/go-set/strset"
)

type TableMapper struct {
	LogicTable  string
	ActualTable string
}

//Unit is one physical target of a statement
type Unit struct {
	DataSource   string
	TableMappers []TableMapper
	//Rows are the insert rows routed to the unit in ascending order, nil for other statements
	Rows []int
}

//ActualTable returns the actual table of the logic table in the unit
func (u *Unit) ActualTable(logicTable string) (string, bool) {
	for _, m := range u.TableMappers {
		if strings.EqualFold(m.LogicTable, logicTable) {
			return m.ActualTable, true
		}
	}
	return "", false
}

func (u *Unit) HasRow(row int) bool {
	for _, r := range u.Rows {
		if r == row {
			return true
		}
	}
	return false
}

func (u *Unit) key() string {
	sb := core.NewStringBuilder(u.DataSource)
	for _, m := range u.TableMappers {
		sb.Write("|", strings.ToLower(m.LogicTable), ":", m.ActualTable)
	}
	return sb.String()
}

func (u *Unit) String() string {
	sb := core.NewStringBuilder(u.DataSource, ":")
	for i, m := range u.TableMappers {
		if i > 0 {
			sb.Write(",")
		}
		sb.Write(m.LogicTable, "->", m.ActualTable)
	}
	return sb.String()
}

//Result is the ordered and duplicate free set of units produced by a strategy
type Result struct {
	Strategy StrategyKind
	Degraded bool

	units *linkedhashmap.Map
}

func newResult(strategy StrategyKind) *Result {
	return &Result{
		Strategy: strategy,
		Degraded: strategy.IsDegraded(),
		units:    linkedhashmap.New(),
	}
}

//add keeps the first position of a unit, rows of an equal unit are merged
func (r *Result) add(unit *Unit) {
	k := unit.key()
	if v, found := r.units.Get(k); found {
		existing := v.(*Unit)
		for _, row := range unit.Rows {
			if !existing.HasRow(row) {
				existing.Rows = insertSorted(existing.Rows, row)
			}
		}
		return
	}
	r.units.Put(k, unit)
}

func insertSorted(rows []int, row int) []int {
	i := len(rows)
	for i > 0 && rows[i-1] > row {
		i--
	}
	rows = append(rows, 0)
	copy(rows[i+1:], rows[i:])
	rows[i] = row
	return rows
}

func (r *Result) Len() int {
	return r.units.Size()
}

func (r *Result) IsEmpty() bool {
	return r.units.Empty()
}

func (r *Result) IsSingleUnit() bool {
	return r.units.Size() == 1
}

func (r *Result) Units() []*Unit {
	values := r.units.Values()
	units := make([]*Unit, len(values))
	for i, v := range values {
		units[i] = v.(*Unit)
	}
	return units
}

//DataSourceNames returns every data source of the result once in unit order
func (r *Result) DataSourceNames() []string {
	seen := strset.New()
	var names []string
	r.units.Each(func(_ interface{}, v interface{}) {
		ds := v.(*Unit).DataSource
		if !seen.Has(ds) {
			seen.Add(ds)
			names = append(names, ds)
		}
	})
	return names
}

//ActualTables returns the distinct actual tables routed in the data source in unit order
func (r *Result) ActualTables(dataSource string) []string {
	seen := strset.New()
	var tables []string
	r.units.Each(func(_ interface{}, v interface{}) {
		u := v.(*Unit)
		if u.DataSource != dataSource {
			return
		}
		for _, m := range u.TableMappers {
			if !seen.Has(m.ActualTable) {
				seen.Add(m.ActualTable)
				tables = append(tables, m.ActualTable)
			}
		}
	})
	return tables
}

//ActualTablesOf returns the actual tables the logic table is routed to in the data source
func (r *Result) ActualTablesOf(dataSource string, logicTable string) []string {
	seen := strset.New()
	var tables []string
	r.units.Each(func(_ interface{}, v interface{}) {
		u := v.(*Unit)
		if u.DataSource != dataSource {
			return
		}
		if t, ok := u.ActualTable(logicTable); ok && !seen.Has(t) {
			seen.Add(t)
			tables = append(tables, t)
		}
	})
	return tables
}

func (r *Result) String() string {
	sb := core.NewStringBuilder(r.Strategy.String(), "[")
	for i, u := range r.Units() {
		if i > 0 {
			sb.Write(" ")
		}
		sb.Write(u.String())
	}
	sb.Write("]")
	return sb.String()
}
