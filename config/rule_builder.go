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

package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/endink/shardroute/algorithm"
	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/core/script"
	"github.com/endink/shardroute/keygen"
	"go.uber.org/config"
	"go.uber.org/multierr"
)

const (
	strategyNone     = "none"
	strategyInline   = "inline"
	strategyStandard = "standard"
	strategyComplex  = "complex"
	strategyHint     = "hint"
)

type algorithmSettings struct {
	Type string `yaml:"type"`
}

type strategySettings struct {
	ShardingColumn  string `yaml:"sharding-column"`
	ShardingColumns string `yaml:"sharding-columns"`
	Expression      string `yaml:"expression"`
	Algorithm       string `yaml:"algorithm"`
	AllowRangeQuery bool   `yaml:"allow-range-query"`
}

func (s *strategySettings) columns() []string {
	text := s.ShardingColumns
	if strings.TrimSpace(text) == "" {
		text = s.ShardingColumn
	}
	var cols []string
	for _, c := range core.DistinctSliceAndTrim(strings.Split(text, ",")) {
		if c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

type keyGeneratorSettings struct {
	Type   string `yaml:"type"`
	Column string `yaml:"column"`
}

type tableSettings struct {
	Resources string `yaml:"resources"`
}

type ruleSettings struct {
	BroadcastTables []string          `yaml:"broadcast-tables"`
	SingleTables    map[string]string `yaml:"single-tables"`
}

type ruleBuilder struct {
	settings      *Settings
	value         config.Value
	algorithms    map[string]core.ShardingAlgorithm
	keyGenerators map[string]core.KeyGenerator
	errs          error
}

func newRuleBuilder(settings *Settings, value config.Value) *ruleBuilder {
	return &ruleBuilder{
		settings:      settings,
		value:         value,
		algorithms:    make(map[string]core.ShardingAlgorithm),
		keyGenerators: make(map[string]core.KeyGenerator),
	}
}

func (b *ruleBuilder) fail(format string, args ...interface{}) {
	b.errs = multierr.Append(b.errs, core.NewConfigurationError(format, args...))
}

func (b *ruleBuilder) build() (*core.ShardingRule, error) {
	raw := &ruleSettings{}
	if err := b.value.Populate(raw); err != nil {
		b.fail("bad rule section: %v", err)
	}

	opts := &core.RuleOptions{
		DataSources:        b.dataSources(),
		BroadcastTables:    raw.BroadcastTables,
		SingleTables:       raw.SingleTables,
		DefaultDataSource:  b.settings.DefaultSource,
		ShardingAlgorithms: b.algorithms,
		KeyGenerators:      b.keyGenerators,
	}

	b.loadAlgorithms()
	opts.DefaultDatabaseStrategy = b.strategy("default db strategy", b.value.Get("default-db-strategy"))
	opts.DefaultTableStrategy = b.strategy("default table strategy", b.value.Get("default-table-strategy"))
	opts.DefaultKeyGenerate = b.keyGenerate("default", b.value.Get("default-key-generator"))
	opts.Tables = b.tables()
	opts.BindingGroups = b.bindingGroups()
	opts.Props = b.props()

	if b.errs != nil {
		return nil, b.errs
	}
	return core.NewShardingRule(opts)
}

func (b *ruleBuilder) dataSources() []core.DataSource {
	names := b.settings.DataSourceNames()
	list := make([]core.DataSource, 0, len(names))
	for _, n := range names {
		ds := core.DataSource{Name: n}
		if s := b.settings.DataSources[n]; s != nil {
			ds.Instance = strings.TrimSpace(s.Endpoint)
		}
		list = append(list, ds)
	}
	return list
}

//keys returns the child names of a mapping value sorted
func keys(v config.Value) ([]string, error) {
	if !v.HasValue() {
		return nil, nil
	}
	m := make(map[string]interface{})
	if err := v.Populate(&m); err != nil {
		return nil, err
	}
	list := make([]string, 0, len(m))
	for k := range m {
		list = append(list, k)
	}
	sort.Strings(list)
	return list, nil
}

func (b *ruleBuilder) loadAlgorithms() {
	section := b.value.Get("algorithms")
	names, err := keys(section)
	if err != nil {
		b.fail("bad algorithms section: %v", err)
		return
	}
	for _, name := range names {
		v := section.Get(name)
		s := &algorithmSettings{}
		if err = v.Populate(s); err != nil {
			b.fail("algorithm '%s': %v", name, err)
			continue
		}
		props, err := core.NewProperties(v.Get("props"))
		if err != nil {
			b.fail("algorithm '%s' has bad props: %v", name, err)
			continue
		}
		alg, err := algorithm.New(s.Type, props)
		if err != nil {
			b.fail("algorithm '%s': %v", name, err)
			continue
		}
		b.algorithms[name] = alg
	}
}

func (b *ruleBuilder) namedAlgorithm(owner string, name string, columns []string) core.ShardingAlgorithm {
	name = strings.TrimSpace(name)
	alg, ok := b.algorithms[name]
	if !ok {
		b.fail("%s: sharding algorithm '%s' is not defined", owner, name)
		return nil
	}
	if err := algorithm.Prepare(alg, columns); err != nil {
		b.fail("%s: %v", owner, err)
		return nil
	}
	return alg
}

func (b *ruleBuilder) inlineAlgorithm(owner string, typeName string, props map[string]string, columns []string) core.ShardingAlgorithm {
	alg, err := algorithm.New(typeName, core.NewPropertiesFromMap(props))
	if err == nil {
		err = algorithm.Prepare(alg, columns)
	}
	if err != nil {
		b.fail("%s: %v", owner, err)
		return nil
	}
	return alg
}

//strategy returns nil when the value is absent so that the rule falls back to its default
func (b *ruleBuilder) strategy(owner string, v config.Value) *core.ShardingStrategy {
	if !v.HasValue() {
		return nil
	}
	var text string
	if err := v.Populate(&text); err == nil {
		if strings.EqualFold(strings.TrimSpace(text), strategyNone) {
			return core.NoneStrategy
		}
		b.fail("%s: unknown strategy '%s'", owner, text)
		return nil
	}

	kinds, err := keys(v)
	if err != nil {
		b.fail("%s: %v", owner, err)
		return nil
	}
	if len(kinds) != 1 {
		b.fail("%s: exactly one strategy kind is required, given: %s", owner, strings.Join(kinds, ", "))
		return nil
	}
	kind := strings.ToLower(kinds[0])
	if kind == strategyNone {
		return core.NoneStrategy
	}
	s := &strategySettings{}
	if err = v.Get(kinds[0]).Populate(s); err != nil {
		b.fail("%s: %v", owner, err)
		return nil
	}
	columns := s.columns()

	switch kind {
	case strategyInline:
		return b.inlineStrategy(owner, s, columns)
	case strategyStandard:
		if len(columns) != 1 {
			b.fail("%s: standard strategy requires exactly one sharding column", owner)
			return nil
		}
		alg := b.namedAlgorithm(owner, s.Algorithm, columns)
		if alg == nil {
			return nil
		}
		precise, ok := alg.(core.PreciseAlgorithm)
		if !ok {
			b.fail("%s: algorithm '%s' can not be used for precise sharding", owner, s.Algorithm)
			return nil
		}
		return core.NewStandardStrategy(columns[0], s.Algorithm, precise)
	case strategyComplex:
		if len(columns) == 0 {
			b.fail("%s: complex strategy requires sharding columns", owner)
			return nil
		}
		alg := b.namedAlgorithm(owner, s.Algorithm, columns)
		if alg == nil {
			return nil
		}
		complexAlg, ok := alg.(core.ComplexAlgorithm)
		if !ok {
			b.fail("%s: algorithm '%s' can not be used for complex sharding", owner, s.Algorithm)
			return nil
		}
		return core.NewComplexStrategy(columns, s.Algorithm, complexAlg)
	case strategyHint:
		var alg core.ShardingAlgorithm
		name := s.Algorithm
		if strings.TrimSpace(s.Expression) != "" {
			name = algorithm.TypeHintInline
			alg = b.inlineAlgorithm(owner, algorithm.TypeHintInline, map[string]string{
				algorithm.PropAlgorithmExpression: s.Expression,
			}, nil)
		} else {
			alg = b.namedAlgorithm(owner, s.Algorithm, nil)
		}
		if alg == nil {
			return nil
		}
		hint, ok := alg.(core.HintAlgorithm)
		if !ok {
			b.fail("%s: algorithm '%s' can not be used for hint sharding", owner, name)
			return nil
		}
		return core.NewHintStrategy(name, hint)
	default:
		b.fail("%s: unknown strategy '%s'", owner, kinds[0])
		return nil
	}
}

func (b *ruleBuilder) inlineStrategy(owner string, s *strategySettings, columns []string) *core.ShardingStrategy {
	if len(columns) == 0 {
		b.fail("%s: inline strategy requires sharding columns", owner)
		return nil
	}
	if strings.TrimSpace(s.Expression) == "" {
		b.fail("%s: inline strategy requires an expression", owner)
		return nil
	}
	props := map[string]string{
		algorithm.PropAlgorithmExpression: s.Expression,
		algorithm.PropAllowRangeQuery:     strconv.FormatBool(s.AllowRangeQuery),
	}
	if len(columns) == 1 {
		alg := b.inlineAlgorithm(owner, algorithm.TypeInline, props, columns)
		if alg == nil {
			return nil
		}
		return core.NewStandardStrategy(columns[0], algorithm.TypeInline, alg.(core.PreciseAlgorithm))
	}
	props[algorithm.PropShardingColumns] = strings.Join(columns, ",")
	alg := b.inlineAlgorithm(owner, algorithm.TypeComplexInline, props, columns)
	if alg == nil {
		return nil
	}
	return core.NewComplexStrategy(columns, algorithm.TypeComplexInline, alg.(core.ComplexAlgorithm))
}

//keyGenerate creates one generator instance per owner, the owner is a table name or 'default'
func (b *ruleBuilder) keyGenerate(owner string, v config.Value) *core.KeyGenerateStrategy {
	if !v.HasValue() {
		return nil
	}
	s := &keyGeneratorSettings{}
	if err := v.Populate(s); err != nil {
		b.fail("%s: %v", owner, err)
		return nil
	}
	if strings.TrimSpace(s.Column) == "" {
		b.fail("key generator of %s: key column is required", owner)
		return nil
	}
	props, err := core.NewProperties(v.Get("props"))
	if err != nil {
		b.fail("key generator of %s has bad props: %v", owner, err)
		return nil
	}
	gen, err := keygen.New(s.Type, props)
	if err != nil {
		b.fail("%s: %v", owner, err)
		return nil
	}
	name := fmt.Sprintf("%s.%s", owner, strings.ToLower(gen.Type()))
	b.keyGenerators[name] = gen
	return &core.KeyGenerateStrategy{
		Column:        strings.TrimSpace(s.Column),
		GeneratorName: name,
		Generator:     gen,
	}
}

func (b *ruleBuilder) tables() []*core.TableRule {
	section := b.value.Get("tables")
	names, err := keys(section)
	if err != nil {
		b.fail("bad tables section: %v", err)
		return nil
	}
	list := make([]*core.TableRule, 0, len(names))
	for _, name := range names {
		if t := b.table(name, section.Get(name)); t != nil {
			list = append(list, t)
		}
	}
	return list
}

func (b *ruleBuilder) table(name string, v config.Value) *core.TableRule {
	s := &tableSettings{}
	if v.HasValue() {
		if err := v.Populate(s); err != nil {
			b.fail("table '%s': %v", name, err)
			return nil
		}
	}

	var texts []string
	if strings.TrimSpace(s.Resources) == "" {
		for _, ds := range b.settings.DataSourceNames() {
			texts = append(texts, fmt.Sprintf("%s.%s", ds, name))
		}
	} else {
		var err error
		if texts, err = script.FlatInline(s.Resources); err != nil {
			b.fail("table '%s' has bad resources: %v", name, err)
			return nil
		}
	}
	nodes, err := core.ParseDataNodes(texts)
	if err != nil {
		b.fail("table '%s': %v", name, err)
		return nil
	}

	t := core.NewTableRule(name, nodes)
	if db := b.strategy(fmt.Sprintf("table '%s' db strategy", name), v.Get("db-strategy")); db != nil {
		t.DatabaseStrategy = db
	}
	if table := b.strategy(fmt.Sprintf("table '%s' table strategy", name), v.Get("table-strategy")); table != nil {
		t.TableStrategy = table
	}
	t.KeyGenerate = b.keyGenerate(name, v.Get("keyGenerator"))
	return t
}

//bindingGroups accepts both 't_order, t_order_item' and a yaml list for each group
func (b *ruleBuilder) bindingGroups() [][]string {
	v := b.value.Get("binding-tables")
	if !v.HasValue() {
		return nil
	}
	var raw []interface{}
	if err := v.Populate(&raw); err != nil {
		b.fail("bad binding-tables: %v", err)
		return nil
	}
	groups := make([][]string, 0, len(raw))
	for _, item := range raw {
		var group []string
		switch g := item.(type) {
		case string:
			group = strings.Split(g, ",")
		case []interface{}:
			for _, t := range g {
				group = append(group, fmt.Sprint(t))
			}
		default:
			b.fail("bad binding group: %v", item)
			continue
		}
		groups = append(groups, core.DistinctSliceAndTrim(group))
	}
	return groups
}

func (b *ruleBuilder) props() core.RuleProps {
	var r core.RuleProps
	props, err := core.NewProperties(b.value.Get("props"))
	if err != nil {
		b.fail("bad rule props: %v", err)
		return r
	}
	if r.MaxCartesianUnits, err = props.GetInt(core.PropMaxCartesianUnits, 0); err != nil {
		b.fail("%v", err)
	}
	if r.CartesianWarnThreshold, err = props.GetInt(core.PropCartesianWarnThreshold, 0); err != nil {
		b.fail("%v", err)
	}
	return r
}
