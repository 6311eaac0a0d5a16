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
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

//https://github.com/open-telemetry/opentelemetry-specification/blob/main/specification/metrics/api.md#interpretation

var meters = struct {
	sync.Mutex
	byName map[string]*Meter
}{byName: make(map[string]*Meter)}

//GetMeter returns the shared meter of the instrumentation, instruments created before Start are delegated to the sdk once it starts
func GetMeter(instrumentationName string) *Meter {
	meters.Lock()
	defer meters.Unlock()
	if m, ok := meters.byName[instrumentationName]; ok {
		return m
	}
	m := &Meter{
		meter:       metric.Must(otel.Meter(instrumentationName)),
		instruments: make(map[instrumentKey]interface{}),
	}
	meters.byName[instrumentationName] = m
	return m
}

type instrumentKind int

const (
	kindCounter instrumentKind = iota
	kindValueRecorder
	kindDurationCounter
	kindDurationRecorder
	kindDurationRecorderSet
)

type instrumentKey struct {
	kind instrumentKind
	name string
}

//Meter caches instruments by kind and name, asking twice for one instrument returns the first one
type Meter struct {
	meter       metric.MeterMust
	mutex       sync.Mutex
	instruments map[instrumentKey]interface{}
}

func (m *Meter) lookup(kind instrumentKind, name string, create func() interface{}) interface{} {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	key := instrumentKey{kind: kind, name: name}
	i, ok := m.instruments[key]
	if !ok {
		i = create()
		m.instruments[key] = i
	}
	return i
}

func (m *Meter) Counter(name, desc string) metric.Int64Counter {
	return m.lookup(kindCounter, name, func() interface{} {
		return m.meter.NewInt64Counter(name, metric.WithDescription(desc))
	}).(metric.Int64Counter)
}

func (m *Meter) ValueRecorder(name, desc string) metric.Int64ValueRecorder {
	return m.lookup(kindValueRecorder, name, func() interface{} {
		return m.meter.NewInt64ValueRecorder(name, metric.WithDescription(desc))
	}).(metric.Int64ValueRecorder)
}

func (m *Meter) DurationCounter(name, desc string) DurationCounter {
	return m.lookup(kindDurationCounter, name, func() interface{} {
		return NewDurationCounter(m.meter, name, metric.WithDescription(desc))
	}).(DurationCounter)
}

func (m *Meter) DurationRecorder(name, desc string) DurationValueRecorder {
	return m.lookup(kindDurationRecorder, name, func() interface{} {
		return NewDurationValueRecorder(m.meter, name, metric.WithDescription(desc))
	}).(DurationValueRecorder)
}

func (m *Meter) DurationRecorderSet(prefix, desc string) *DurationRecorderSet {
	return m.lookup(kindDurationRecorderSet, prefix, func() interface{} {
		return newDurationRecorderSet(m.meter, prefix, metric.WithDescription(desc))
	}).(*DurationRecorderSet)
}
