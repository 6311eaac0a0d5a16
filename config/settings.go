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
	"sort"

	"github.com/endink/shardroute/core"
	"go.uber.org/config"
)

type DataSourceSettings struct {
	Endpoint string `yaml:"endpoint"`
	Schema   string `yaml:"schema"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

//Settings is one loaded version of the configuration, Rule is ready for routing
type Settings struct {
	DataSources   map[string]*DataSourceSettings
	DefaultSource string
	Rule          *core.ShardingRule
}

//DataSourceNames returns the configured data source names sorted
func (s *Settings) DataSourceNames() []string {
	names := make([]string, 0, len(s.DataSources))
	for n := range s.DataSources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type rawSettings struct {
	Sources       map[string]*DataSourceSettings `yaml:"sources"`
	DefaultSource string                         `yaml:"default-source"`
}

//BuildSettings reads data sources and the sharding rule from the configuration root
func BuildSettings(value config.Value) (*Settings, error) {
	raw := &rawSettings{}
	if err := value.Populate(raw); err != nil {
		return nil, core.NewConfigurationError("bad configuration: %v", err)
	}
	s := &Settings{
		DataSources:   raw.Sources,
		DefaultSource: core.IfBlankAndTrim(raw.DefaultSource, ""),
	}
	if s.DataSources == nil {
		s.DataSources = make(map[string]*DataSourceSettings)
	}

	rule, err := newRuleBuilder(s, value.Get("rule")).build()
	if err != nil {
		return nil, err
	}
	s.Rule = rule
	return s, nil
}
