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
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type testLogger struct {
	ch chan string
}

func newLoggerForTest(ch chan string) StandardLogger {
	return testLogger{
		ch: ch,
	}
}

func (t testLogger) Debug(args ...interface{}) {
	t.ch <- "[DEBUG]" + fmt.Sprint(args...)
}

func (t testLogger) Info(args ...interface{}) {
	t.ch <- "[INFO]" + fmt.Sprint(args...)
}

func (t testLogger) Warn(args ...interface{}) {
	t.ch <- "[WARN]" + fmt.Sprint(args...)
}

func (t testLogger) Error(args ...interface{}) {
	t.ch <- "[ERROR]" + fmt.Sprint(args...)
}

func (t testLogger) Panic(args ...interface{}) {
	t.ch <- "[PANIC]" + fmt.Sprint(args...)
}

func (t testLogger) Fatal(args ...interface{}) {
	t.ch <- "[FATAL]" + fmt.Sprint(args...)
}

func (t testLogger) Debugf(template string, args ...interface{}) {
	t.ch <- "[DEBUG]" + fmt.Sprintf(template, args...)
}

func (t testLogger) Infof(template string, args ...interface{}) {
	t.ch <- "[INFO]" + fmt.Sprintf(template, args...)
}

func (t testLogger) Warnf(template string, args ...interface{}) {
	t.ch <- "[WARN]" + fmt.Sprintf(template, args...)
}

func (t testLogger) Errorf(template string, args ...interface{}) {
	t.ch <- "[ERROR]" + fmt.Sprintf(template, args...)
}

func (t testLogger) Panicf(template string, args ...interface{}) {
	t.ch <- "[PANIC]" + fmt.Sprintf(template, args...)
}

func (t testLogger) Fatalf(template string, args ...interface{}) {
	t.ch <- "[FATAL]" + fmt.Sprintf(template, args...)
}

func TestThrottledLogger(t *testing.T) {
	ch := make(chan string, 10)
	tl := NewThrottledLogger("cartesian", newLoggerForTest(ch), 50*time.Millisecond)
	current := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	tl.now = func() time.Time { return current }

	assert.True(t, tl.Warnf("%d units", 100))
	assert.Equal(t, "[WARN]cartesian: 100 units", <-ch)

	assert.False(t, tl.Warnf("%d units", 101))
	assert.False(t, tl.Warnf("%d units", 102))

	select {
	case msg := <-ch:
		assert.Equal(t, "[WARN]cartesian: skipped 2 log messages", msg)
	case <-time.After(2 * time.Second):
		require.Fail(t, "skipped summary was not logged")
	}

	current = current.Add(time.Second)
	assert.True(t, tl.Infof("again"))
	assert.Equal(t, "[INFO]cartesian: again", <-ch)
}

func TestParseLogFormat(t *testing.T) {
	f, err := ParseLogFormat("JSON")
	assert.Nil(t, err)
	assert.Equal(t, JSONOutput, f)
	f, err = ParseLogFormat("")
	assert.Nil(t, err)
	assert.Equal(t, ColorizedOutput, f)
	_, err = ParseLogFormat("xml")
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	l := GetLogger("level-test")
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	SetLevel("level-test", zapcore.ErrorLevel)
	assert.False(t, GetLogger("level-test").Desugar().Core().Enabled(zapcore.WarnLevel))
	SetLevel("level-test", zapcore.InfoLevel)
}
