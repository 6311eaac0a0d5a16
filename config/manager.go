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
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/config"
)

type Manager interface {
	//GetSettings returns the latest successfully loaded settings
	GetSettings() *Settings
	//Watch blocks and calls onChange with every new valid version until ctx is done
	Watch(ctx context.Context, onChange func(settings *Settings)) error
}

//bootSettings is the 'config' section, it selects the source holding the rule configuration
type bootSettings struct {
	Provider string `yaml:"provider"`
}

type cnfManager struct {
	Provider string
	Source   Source

	boot    config.Provider
	current atomic.Value
}

func (m *cnfManager) GetSettings() *Settings {
	return m.current.Load().(*Settings)
}

func (m *cnfManager) initialize(value config.Value) error {
	s, err := BuildSettings(value)
	if err != nil {
		return err
	}
	m.current.Store(s)
	logger.Infof("configuration loaded from %s source, %d data sources", m.Provider, len(s.DataSources))
	return nil
}

func (m *cnfManager) Watch(ctx context.Context, onChange func(settings *Settings)) error {
	w, ok := m.Source.(WatchableSource)
	if !ok {
		return fmt.Errorf("config source '%s' does not support watching", m.Provider)
	}
	return w.Watch(ctx, m.boot, func(value config.Value) {
		s, err := BuildSettings(value)
		if err != nil {
			logger.Warnf("ignore invalid configuration from %s source: %v", m.Provider, err)
			return
		}
		m.current.Store(s)
		if onChange != nil {
			onChange(s)
		}
	})
}
