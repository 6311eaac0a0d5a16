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

package core

import (
	"sort"
	"strings"

	"github.com/scylladb/go-set/strset"
	"go.uber.org/multierr"
)

const (
	PropMaxCartesianUnits      = "max-cartesian-units"
	PropCartesianWarnThreshold = "cartesian-warn-threshold"

	DefaultCartesianWarnThreshold = 64
)

type DataSource struct {
	Name string
	//Instance is the physical endpoint of the data source, data sources sharing it are one instance
	Instance string
}

type RuleProps struct {
	//MaxCartesianUnits rejects complex routes producing more units, 0 means unlimited
	MaxCartesianUnits      int
	CartesianWarnThreshold int
}

//RuleOptions is the input of NewShardingRule
type RuleOptions struct {
	DataSources             []DataSource
	Tables                  []*TableRule
	BindingGroups           [][]string
	BroadcastTables         []string
	SingleTables            map[string]string
	DefaultDataSource       string
	DefaultDatabaseStrategy *ShardingStrategy
	DefaultTableStrategy    *ShardingStrategy
	DefaultKeyGenerate      *KeyGenerateStrategy
	ShardingAlgorithms      map[string]ShardingAlgorithm
	KeyGenerators           map[string]KeyGenerator
	Props                   RuleProps
}

//ShardingRule is the immutable rule model shared by all routing calls
type ShardingRule struct {
	dataSources       []DataSource
	dataSourceNames   []string
	dataSourceSet     *strset.Set
	tables            map[string]*TableRule
	tableOrder        []*TableRule
	bindingGroups     [][]string
	bindingIndex      map[string]int
	broadcastTables   []string
	broadcastSet      *strset.Set
	singleTables      map[string]string
	defaultDataSource string
	defaultKey        *KeyGenerateStrategy
	defaultDbStrategy *ShardingStrategy
	algorithms        map[string]ShardingAlgorithm
	keyGenerators     map[string]KeyGenerator
	props             RuleProps
}

func NewShardingRule(opts *RuleOptions) (*ShardingRule, error) {
	r := &ShardingRule{
		dataSourceSet:     strset.New(),
		tables:            make(map[string]*TableRule, len(opts.Tables)),
		bindingIndex:      make(map[string]int),
		broadcastSet:      strset.New(),
		singleTables:      make(map[string]string, len(opts.SingleTables)),
		defaultDataSource: strings.TrimSpace(opts.DefaultDataSource),
		defaultKey:        opts.DefaultKeyGenerate,
		algorithms:        opts.ShardingAlgorithms,
		keyGenerators:     opts.KeyGenerators,
		props:             opts.Props,
	}
	if r.props.CartesianWarnThreshold <= 0 {
		r.props.CartesianWarnThreshold = DefaultCartesianWarnThreshold
	}

	var errs error
	appendErr := func(err error) {
		errs = multierr.Append(errs, err)
	}

	for _, ds := range opts.DataSources {
		name := strings.TrimSpace(ds.Name)
		if err := ValidateIdentifier(name); err != nil {
			appendErr(NewConfigurationError("data source name '%s' is invalid: %v", ds.Name, err))
			continue
		}
		if r.dataSourceSet.Has(name) {
			appendErr(NewConfigurationError("data source '%s' is duplicated", name))
			continue
		}
		r.dataSourceSet.Add(name)
		r.dataSources = append(r.dataSources, DataSource{Name: name, Instance: strings.TrimSpace(ds.Instance)})
	}
	explicitDataSources := len(r.dataSources) > 0

	dbDefault := opts.DefaultDatabaseStrategy
	if dbDefault == nil {
		dbDefault = NoneStrategy
	}
	tableDefault := opts.DefaultTableStrategy
	if tableDefault == nil {
		tableDefault = NoneStrategy
	}
	r.defaultDbStrategy = dbDefault
	appendErr(dbDefault.validate("default database strategy"))
	appendErr(tableDefault.validate("default table strategy"))

	for _, t := range opts.Tables {
		key := strings.ToLower(t.LogicTable)
		if key == "" {
			appendErr(NewConfigurationError("logic table name can not be empty"))
			continue
		}
		if _, ok := r.tables[key]; ok {
			appendErr(NewConfigurationError("table '%s' is configured more than once", t.LogicTable))
			continue
		}
		if len(t.ActualDataNodes()) == 0 {
			appendErr(NewConfigurationError("table '%s' has no actual data nodes", t.LogicTable))
			continue
		}

		db, table, keyGen := t.DatabaseStrategy, t.TableStrategy, t.KeyGenerate
		if db.IsNone() {
			db = dbDefault
		}
		if table.IsNone() {
			table = tableDefault
		}
		if keyGen == nil {
			keyGen = opts.DefaultKeyGenerate
		}
		appendErr(db.validate("table '" + t.LogicTable + "' database strategy"))
		appendErr(table.validate("table '" + t.LogicTable + "' table strategy"))
		if keyGen != nil && keyGen.Generator == nil {
			appendErr(NewConfigurationError("table '%s' key generator '%s' is not found", t.LogicTable, keyGen.GeneratorName))
		}

		for _, ds := range t.DataSources() {
			if explicitDataSources && !r.dataSourceSet.Has(ds) {
				appendErr(NewConfigurationError("table '%s' references unknown data source '%s'", t.LogicTable, ds))
			}
		}

		resolved := t.copyWith(db, table, keyGen)
		r.tables[key] = resolved
		r.tableOrder = append(r.tableOrder, resolved)
	}

	if !explicitDataSources {
		for _, t := range r.tableOrder {
			for _, ds := range t.DataSources() {
				if !r.dataSourceSet.Has(ds) {
					r.dataSourceSet.Add(ds)
					r.dataSources = append(r.dataSources, DataSource{Name: ds})
				}
			}
		}
	}

	sort.SliceStable(r.dataSources, func(i, j int) bool {
		return r.dataSources[i].Name < r.dataSources[j].Name
	})
	r.dataSourceNames = make([]string, len(r.dataSources))
	for i, ds := range r.dataSources {
		r.dataSourceNames[i] = ds.Name
	}

	for _, name := range opts.BroadcastTables {
		n := strings.TrimSpace(name)
		if n == "" {
			continue
		}
		if _, sharded := r.tables[strings.ToLower(n)]; sharded {
			appendErr(NewConfigurationError("table '%s' can not be both sharding table and broadcast table", n))
			continue
		}
		if !r.broadcastSet.Has(strings.ToLower(n)) {
			r.broadcastSet.Add(strings.ToLower(n))
			r.broadcastTables = append(r.broadcastTables, n)
		}
	}

	for i, group := range opts.BindingGroups {
		appendErr(r.addBindingGroup(i, group))
	}

	for table, ds := range opts.SingleTables {
		name := strings.ToLower(strings.TrimSpace(table))
		d := strings.TrimSpace(ds)
		if _, sharded := r.tables[name]; sharded || r.broadcastSet.Has(name) {
			appendErr(NewConfigurationError("single table '%s' is already configured as sharding or broadcast table", table))
			continue
		}
		if !r.dataSourceSet.Has(d) {
			appendErr(NewConfigurationError("single table '%s' references unknown data source '%s'", table, ds))
			continue
		}
		r.singleTables[name] = d
	}

	if r.defaultDataSource != "" && !r.dataSourceSet.Has(r.defaultDataSource) {
		appendErr(NewConfigurationError("default data source '%s' is not found", r.defaultDataSource))
	}

	if r.props.MaxCartesianUnits < 0 {
		appendErr(NewConfigurationError("property '%s' can not be negative", PropMaxCartesianUnits))
	}

	if errs != nil {
		return nil, errs
	}
	return r, nil
}

func (r *ShardingRule) addBindingGroup(index int, group []string) error {
	names := DistinctSliceAndTrim(group)
	if len(names) < 2 {
		return NewConfigurationError("binding group #%d requires at least two tables", index)
	}
	var first *TableRule
	for _, name := range names {
		key := strings.ToLower(name)
		t, ok := r.tables[key]
		if !ok {
			return NewConfigurationError("binding table '%s' is not a sharding table", name)
		}
		if _, bound := r.bindingIndex[key]; bound {
			return NewConfigurationError("table '%s' belongs to more than one binding group", name)
		}
		if first == nil {
			first = t
			continue
		}
		if len(t.ActualDataNodes()) != len(first.ActualDataNodes()) {
			return NewConfigurationError("binding tables '%s' and '%s' have different actual data node count", first.LogicTable, t.LogicTable)
		}
		for i, n := range t.ActualDataNodes() {
			if n.DataSource != first.ActualDataNodes()[i].DataSource {
				return NewConfigurationError("binding tables '%s' and '%s' are not in the same data source at node #%d", first.LogicTable, t.LogicTable, i)
			}
		}
	}
	for _, name := range names {
		r.bindingIndex[strings.ToLower(name)] = len(r.bindingGroups)
	}
	r.bindingGroups = append(r.bindingGroups, names)
	return nil
}

//DataSources returns data sources sorted by name
func (r *ShardingRule) DataSources() []DataSource {
	return r.dataSources
}

func (r *ShardingRule) DataSourceNames() []string {
	return r.dataSourceNames
}

func (r *ShardingRule) HasDataSource(name string) bool {
	return r.dataSourceSet.Has(name)
}

func (r *ShardingRule) TableRules() []*TableRule {
	return r.tableOrder
}

func (r *ShardingRule) FindTableRule(logicTable string) (*TableRule, bool) {
	t, ok := r.tables[strings.ToLower(strings.TrimSpace(logicTable))]
	return t, ok
}

func (r *ShardingRule) IsShardingTable(logicTable string) bool {
	_, ok := r.FindTableRule(logicTable)
	return ok
}

func (r *ShardingRule) IsBroadcastTable(logicTable string) bool {
	return r.broadcastSet.Has(strings.ToLower(strings.TrimSpace(logicTable)))
}

func (r *ShardingRule) BroadcastTables() []string {
	return r.broadcastTables
}

func (r *ShardingRule) IsAllBroadcastTables(logicTables []string) bool {
	if len(logicTables) == 0 {
		return false
	}
	for _, t := range logicTables {
		if !r.IsBroadcastTable(t) {
			return false
		}
	}
	return true
}

//IsAllBindingTables reports whether the tables are sharding tables of one binding group
func (r *ShardingRule) IsAllBindingTables(logicTables []string) bool {
	if len(logicTables) == 0 {
		return false
	}
	group := -1
	for _, t := range logicTables {
		idx, ok := r.bindingIndex[strings.ToLower(strings.TrimSpace(t))]
		if !ok {
			return false
		}
		if group >= 0 && group != idx {
			return false
		}
		group = idx
	}
	return true
}

func (r *ShardingRule) BindingGroupOf(logicTable string) ([]string, bool) {
	idx, ok := r.bindingIndex[strings.ToLower(strings.TrimSpace(logicTable))]
	if !ok {
		return nil, false
	}
	return r.bindingGroups[idx], true
}

func (r *ShardingRule) BindingGroups() [][]string {
	return r.bindingGroups
}

func (r *ShardingRule) SingleTableDataSource(logicTable string) (string, bool) {
	ds, ok := r.singleTables[strings.ToLower(strings.TrimSpace(logicTable))]
	return ds, ok
}

func (r *ShardingRule) DefaultDataSource() string {
	return r.defaultDataSource
}

//IsKnownTable reports whether the table appears in the rule model or the schema metadata
func (r *ShardingRule) IsKnownTable(logicTable string) bool {
	if r.IsShardingTable(logicTable) || r.IsBroadcastTable(logicTable) {
		return true
	}
	_, ok := r.SingleTableDataSource(logicTable)
	return ok
}

func (r *ShardingRule) ShardingAlgorithm(name string) (ShardingAlgorithm, bool) {
	a, ok := r.algorithms[name]
	return a, ok
}

func (r *ShardingRule) KeyGenerator(name string) (KeyGenerator, bool) {
	g, ok := r.keyGenerators[name]
	return g, ok
}

//DefaultDatabaseStrategy is never nil, it is NoneStrategy when not configured
func (r *ShardingRule) DefaultDatabaseStrategy() *ShardingStrategy {
	return r.defaultDbStrategy
}

func (r *ShardingRule) DefaultKeyGenerate() *KeyGenerateStrategy {
	return r.defaultKey
}

func (r *ShardingRule) Props() RuleProps {
	return r.props
}

//InstanceDataSources returns the first data source of every distinct instance in data source order,
//a data source without instance is its own instance
func (r *ShardingRule) InstanceDataSources() []string {
	seen := strset.New()
	var result []string
	for _, ds := range r.dataSources {
		key := IfBlank(ds.Instance, ds.Name)
		if !seen.Has(key) {
			seen.Add(key)
			result = append(result, ds.Name)
		}
	}
	return result
}
