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
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout"
	"go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/export/trace"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	"go.opentelemetry.io/otel/sdk/metric/selector/simple"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const DefaultCollectPeriod = 10 * time.Second

var ErrStarted = errors.New("telemetry is already started")

type options struct {
	writer         io.Writer
	period         time.Duration
	metricExporter metric.Exporter
	spanExporter   trace.SpanExporter
}

type Option func(o *options)

//WithWriter sets the output of the stdout exporter, it is used for exporters not given explicitly
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

func WithCollectPeriod(period time.Duration) Option {
	return func(o *options) {
		o.period = period
	}
}

func WithMetricExporter(exporter metric.Exporter) Option {
	return func(o *options) {
		o.metricExporter = exporter
	}
}

func WithSpanExporter(exporter trace.SpanExporter) Option {
	return func(o *options) {
		o.spanExporter = exporter
	}
}

var global struct {
	sync.Mutex
	ctx    context.Context
	pusher *controller.Controller
	tracer *sdktrace.TracerProvider
}

//Start installs the global meter and tracer providers, it fails with ErrStarted until Shutdown is called
func Start(ctx context.Context, opts ...Option) error {
	o := &options{
		writer: os.Stderr,
		period: DefaultCollectPeriod,
	}
	for _, opt := range opts {
		opt(o)
	}

	global.Lock()
	defer global.Unlock()
	if global.pusher != nil {
		return ErrStarted
	}

	//https://opentelemetry.io/docs/go/getting-started/
	if o.metricExporter == nil || o.spanExporter == nil {
		basicExporter, err := stdout.NewExporter(
			stdout.WithPrettyPrint(),
			stdout.WithWriter(o.writer),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize stdout export pipeline: %v", err)
		}
		if o.metricExporter == nil {
			o.metricExporter = basicExporter
		}
		if o.spanExporter == nil {
			o.spanExporter = basicExporter
		}
	}

	pusher := controller.New(
		processor.New(
			simple.NewWithExactDistribution(),
			o.metricExporter,
		),
		controller.WithPusher(o.metricExporter),
		controller.WithCollectPeriod(o.period),
	)
	if err := pusher.Start(ctx); err != nil {
		return fmt.Errorf("failed to initialize metric controller: %v", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(o.spanExporter)
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bsp))

	otel.SetMeterProvider(pusher.MeterProvider())
	otel.SetTracerProvider(tracer)
	global.ctx = ctx
	global.pusher = pusher
	global.tracer = tracer
	return nil
}

//Shutdown flushes pending metrics and spans, it is a no-op when telemetry is not started
func Shutdown() {
	global.Lock()
	defer global.Unlock()
	if global.pusher != nil {
		_ = global.pusher.Stop(global.ctx)
		global.pusher = nil
	}
	if global.tracer != nil {
		_ = global.tracer.Shutdown(global.ctx)
		global.tracer = nil
	}
	global.ctx = nil
}
