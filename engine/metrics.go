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

package engine

import (
	"context"
	"time"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/routing"
	"github.com/endink/shardroute/telemetry"
	"go.opentelemetry.io/otel/label"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/endink/shardroute/engine"

type engineMetrics struct {
	routes          metric.Int64Counter
	degraded        metric.Int64Counter
	errors          metric.Int64Counter
	units           metric.Int64ValueRecorder
	latency         telemetry.DurationValueRecorder
	strategyLatency *telemetry.DurationRecorderSet
	busy            telemetry.DurationCounter
}

func newEngineMetrics() *engineMetrics {
	meter := telemetry.GetMeter(instrumentationName)
	return &engineMetrics{
		routes:          meter.Counter("shardroute.route.count", "statements routed"),
		degraded:        meter.Counter("shardroute.route.degraded", "statements routed by complex or unconfigured strategy"),
		errors:          meter.Counter("shardroute.route.errors", "statements failed to route or rewrite"),
		units:           meter.ValueRecorder("shardroute.route.units", "execution units per statement"),
		latency:         meter.DurationRecorder("shardroute.route.latency", "latency of routing and rewriting a statement"),
		strategyLatency: meter.DurationRecorderSet("shardroute.route.latency", "latency per routing strategy"),
		busy:            meter.DurationCounter("shardroute.route.busy", "total time spent in routing and rewriting"),
	}
}

func (m *engineMetrics) routed(ctx context.Context, result *routing.Result, start time.Time) {
	elapsed := time.Since(start)
	strategy := label.String("strategy", result.Strategy.String())
	m.routes.Add(ctx, 1, strategy)
	if result.Degraded {
		m.degraded.Add(ctx, 1, strategy)
	}
	m.units.Record(ctx, int64(result.Len()), strategy)
	m.latency.Record(ctx, elapsed, strategy)
	m.strategyLatency.Record(ctx, result.Strategy.String(), elapsed)
	m.busy.Add(ctx, elapsed)
}

func (m *engineMetrics) failed(ctx context.Context, err error) {
	kind := "internal"
	switch {
	case core.IsRoutingError(err):
		kind = "routing"
	case core.IsRewriteError(err):
		kind = "rewrite"
	case core.IsConfigurationError(err):
		kind = "configuration"
	}
	m.errors.Add(ctx, 1, label.String("kind", kind))
}
