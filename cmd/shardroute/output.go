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

package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/endink/shardroute/config"
	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/engine"
	"gopkg.in/yaml.v3"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

type unitView struct {
	DataSource string        `yaml:"data-source" json:"data-source"`
	SQL        string        `yaml:"sql" json:"sql"`
	Parameters []interface{} `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

type executionView struct {
	Strategy           string        `yaml:"strategy" json:"strategy"`
	Degraded           bool          `yaml:"degraded" json:"degraded"`
	GeneratedKeyColumn string        `yaml:"generated-key-column,omitempty" json:"generated-key-column,omitempty"`
	GeneratedKeys      []interface{} `yaml:"generated-keys,omitempty" json:"generated-keys,omitempty"`
	Units              []unitView    `yaml:"units" json:"units"`
}

type explainView struct {
	Strategy string     `yaml:"strategy" json:"strategy"`
	Degraded bool       `yaml:"degraded" json:"degraded"`
	Route    []string   `yaml:"route" json:"route"`
	Units    []unitView `yaml:"units" json:"units"`
}

type tableView struct {
	Name          string   `yaml:"name" json:"name"`
	Nodes         []string `yaml:"nodes" json:"nodes"`
	DbStrategy    string   `yaml:"db-strategy" json:"db-strategy"`
	TableStrategy string   `yaml:"table-strategy" json:"table-strategy"`
	KeyColumn     string   `yaml:"key-column,omitempty" json:"key-column,omitempty"`
}

type ruleView struct {
	DataSources       []string    `yaml:"data-sources" json:"data-sources"`
	DefaultDataSource string      `yaml:"default-data-source,omitempty" json:"default-data-source,omitempty"`
	Tables            []tableView `yaml:"tables" json:"tables"`
	BindingGroups     []string    `yaml:"binding-groups,omitempty" json:"binding-groups,omitempty"`
	BroadcastTables   []string    `yaml:"broadcast-tables,omitempty" json:"broadcast-tables,omitempty"`
}

func newUnitViews(units []*engine.ExecutionUnit) []unitView {
	views := make([]unitView, len(units))
	for i, u := range units {
		views[i] = unitView{DataSource: u.DataSource, SQL: u.SQL, Parameters: u.Parameters}
	}
	return views
}

func newExecutionView(ec *engine.ExecutionContext) *executionView {
	return &executionView{
		Strategy:           ec.Strategy.String(),
		Degraded:           ec.Degraded,
		GeneratedKeyColumn: ec.GeneratedKeyColumn,
		GeneratedKeys:      ec.GeneratedKeys,
		Units:              newUnitViews(ec.Units),
	}
}

func newExplainView(ex *engine.Explanation) *explainView {
	v := &explainView{
		Strategy: ex.Strategy.String(),
		Degraded: ex.Degraded,
		Units:    newUnitViews(ex.Units),
	}
	for _, u := range ex.Route.Units() {
		v.Route = append(v.Route, u.String())
	}
	return v
}

func strategyText(s *core.ShardingStrategy) string {
	if s.IsNone() {
		return s.Type.String()
	}
	sb := core.NewStringBuilder(s.Type.String())
	if len(s.Columns) > 0 {
		sb.Write("(", strings.Join(s.Columns, ","), ")")
	}
	if s.AlgorithmName != "" {
		sb.Write(" ", s.AlgorithmName)
	}
	return sb.String()
}

func newRuleView(settings *config.Settings) *ruleView {
	rule := settings.Rule
	v := &ruleView{
		DataSources:       rule.DataSourceNames(),
		DefaultDataSource: rule.DefaultDataSource(),
		BroadcastTables:   rule.BroadcastTables(),
	}
	for _, g := range rule.BindingGroups() {
		v.BindingGroups = append(v.BindingGroups, strings.Join(g, ", "))
	}
	for _, t := range rule.TableRules() {
		tv := tableView{
			Name:          t.LogicTable,
			DbStrategy:    strategyText(t.DatabaseStrategy),
			TableStrategy: strategyText(t.TableStrategy),
		}
		for _, n := range t.ActualDataNodes() {
			tv.Nodes = append(tv.Nodes, n.String())
		}
		if t.KeyGenerate != nil {
			tv.KeyColumn = t.KeyGenerate.Column
		}
		v.Tables = append(v.Tables, tv)
	}
	return v
}

func write(w io.Writer, format string, value interface{}) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	default:
		return unsupportedFormat(format)
	}
}
