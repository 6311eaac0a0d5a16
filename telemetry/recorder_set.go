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

package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/label"
	"go.opentelemetry.io/otel/metric"
)

//DurationRecorderSet keeps one duration recorder per key, the recorder of key k is named '<prefix>_<k>' in snake case
type DurationRecorderSet struct {
	prefix    string
	meter     metric.MeterMust
	options   []metric.InstrumentOption
	mutex     sync.RWMutex
	recorders map[string]DurationValueRecorder
}

func newDurationRecorderSet(meter metric.MeterMust, prefix string, mos ...metric.InstrumentOption) *DurationRecorderSet {
	return &DurationRecorderSet{
		prefix:    prefix,
		meter:     meter,
		options:   mos,
		recorders: make(map[string]DurationValueRecorder),
	}
}

//Name returns the instrument name used for the key
func (s *DurationRecorderSet) Name(key string) string {
	return BuildMetricName(s.prefix, key)
}

func (s *DurationRecorderSet) For(key string) DurationValueRecorder {
	s.mutex.RLock()
	r, ok := s.recorders[key]
	s.mutex.RUnlock()
	if ok {
		return r
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if r, ok = s.recorders[key]; !ok {
		r = NewDurationValueRecorder(s.meter, s.Name(key), s.options...)
		s.recorders[key] = r
	}
	return r
}

func (s *DurationRecorderSet) Record(ctx context.Context, key string, duration time.Duration, labels ...label.KeyValue) {
	s.For(key).Record(ctx, duration, labels...)
}
