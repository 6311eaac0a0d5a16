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

package logging

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//StandardLogger is the subset of zap.SugaredLogger the engine writes to
type StandardLogger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Panic(args ...interface{})
	Fatal(args ...interface{})
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Panicf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
}

var _ StandardLogger = &zap.SugaredLogger{}

var loggerMutex sync.RWMutex // guards access to global logger state

// loggers is the set of loggers in the system
var loggers = make(map[string]*zap.SugaredLogger)

var levels = make(map[string]zap.AtomicLevel)
var defaultLevel = zapcore.InfoLevel
var output = zapcore.Lock(zapcore.AddSync(os.Stdout))
var format = ColorizedOutput

var logCore = newCore(format, output)

var DefaultLogger = GetLogger("shardroute")

func newCore(f LogFormat, ws zapcore.WriteSyncer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch f {
	case JSONOutput:
		encoder = zapcore.NewJSONEncoder(encCfg)
	case PlaintextOutput:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}
	// level filtering is done per logger by IncreaseLevel
	return zapcore.NewCore(encoder, ws, zapcore.DebugLevel)
}

func GetLogger(name string) *zap.SugaredLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	log, ok := loggers[name]
	if !ok {
		log = buildLogger(name)
		loggers[name] = log
	}

	return log
}

func buildLogger(name string) *zap.SugaredLogger {
	lvl, ok := levels[name]
	if !ok {
		lvl = zap.NewAtomicLevelAt(defaultLevel)
		levels[name] = lvl
	}
	return zap.New(logCore, zap.AddCaller()).
		WithOptions(zap.IncreaseLevel(lvl)).
		Named(name).
		Sugar()
}

//SetLevel changes the level of the named logger, an empty name changes all loggers and the default
func SetLevel(name string, level zapcore.Level) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if name == "" {
		defaultLevel = level
		for _, l := range levels {
			l.SetLevel(level)
		}
		return
	}
	if l, ok := levels[name]; ok {
		l.SetLevel(level)
		return
	}
	levels[name] = zap.NewAtomicLevelAt(level)
}

//Configure replaces the output and encoding of every logger, existing loggers keep their names and levels
func Configure(f LogFormat, w io.Writer) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	format = f
	output = zapcore.Lock(zapcore.AddSync(w))
	logCore = newCore(format, output)
	for name, l := range loggers {
		*l = *buildLogger(name)
	}
}

func Sync() error {
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()
	return output.Sync()
}
