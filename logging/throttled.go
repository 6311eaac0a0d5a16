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

/*
Copyright 2019 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logging

import (
	"fmt"
	"sync"
	"time"
)

// ThrottledLogger logs at most one message per interval and reports
// how many messages were skipped in between.
type ThrottledLogger struct {
	// set at construction
	name        string
	maxInterval time.Duration
	logger      StandardLogger
	now         func() time.Time

	// mu protects the following members
	mu           sync.Mutex
	lastLogTime  time.Time
	skippedCount int
	flushPending bool
}

// NewThrottledLogger will create a ThrottledLogger with the given
// name and throttling interval, a nil logger writes to the "throttled" logger.
func NewThrottledLogger(name string, logger StandardLogger, maxInterval time.Duration) *ThrottledLogger {
	var log = logger
	if log == nil {
		log = GetLogger("throttled")
	}
	return &ThrottledLogger{
		name:        name,
		maxInterval: maxInterval,
		logger:      log,
		now:         time.Now,
	}
}

type logFunc func(args ...interface{})

func (tl *ThrottledLogger) log(logFunc logFunc, format string, v ...interface{}) bool {
	now := tl.now()

	tl.mu.Lock()
	defer tl.mu.Unlock()
	logWaitTime := tl.maxInterval - now.Sub(tl.lastLogTime)
	if logWaitTime < 0 {
		tl.lastLogTime = now
		logFunc(fmt.Sprintf(tl.name+": "+format, v...))
		return true
	}
	// the first skipped message schedules the summary
	if !tl.flushPending {
		tl.flushPending = true
		time.AfterFunc(logWaitTime, func() {
			tl.mu.Lock()
			defer tl.mu.Unlock()
			if tl.skippedCount > 0 {
				logFunc(fmt.Sprintf("%s: skipped %d log messages", tl.name, tl.skippedCount))
			}
			tl.skippedCount = 0
			tl.flushPending = false
		})
	}
	tl.skippedCount++
	return false
}

// Infof logs an info if not throttled.
func (tl *ThrottledLogger) Infof(format string, v ...interface{}) bool {
	return tl.log(tl.logger.Info, format, v...)
}

// Warnf logs a warning if not throttled.
func (tl *ThrottledLogger) Warnf(format string, v ...interface{}) bool {
	return tl.log(tl.logger.Warn, format, v...)
}

// Errorf logs an error if not throttled.
func (tl *ThrottledLogger) Errorf(format string, v ...interface{}) bool {
	return tl.log(tl.logger.Error, format, v...)
}
