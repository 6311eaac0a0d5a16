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

package keygen

import (
	"fmt"
	"sync"
	"time"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/logging"
)

const (
	TypeSnowflake = "SNOWFLAKE"

	PropWorkerID                    = "worker-id"
	PropMaxVibrationOffset          = "max-vibration-offset"
	PropMaxTolerateTimeDifferenceMs = "max-tolerate-time-difference-milliseconds"

	sequenceBits  = 12
	workerIDBits  = 10
	sequenceMask  = (1 << sequenceBits) - 1
	workerIDShift = sequenceBits
	timeShift     = workerIDBits + sequenceBits
	maxWorkerID   = 1 << workerIDBits
)

//Epoch is 2016-11-01 00:00:00 UTC
var Epoch = time.Date(2016, 11, 1, 0, 0, 0, 0, time.UTC)

var logger = logging.GetLogger("keygen")

func init() {
	Register(TypeSnowflake, func(props core.Properties) (core.KeyGenerator, error) {
		return NewSnowflake(props)
	})
}

type TimeService func() time.Time

//Snowflake generates 64 bit ids: 41 bits of milliseconds since Epoch, 10 bits of worker id, 12 bits of sequence
type Snowflake struct {
	workerID           int64
	maxVibrationOffset int64
	maxTolerateMs      int64
	now                TimeService
	sleep              func(d time.Duration)

	mu             sync.Mutex
	lastMillis     int64
	sequence       int64
	sequenceOffset int64
}

func NewSnowflake(props core.Properties) (*Snowflake, error) {
	workerID, err := props.GetInt64(PropWorkerID, 0)
	if err != nil {
		return nil, err
	}
	if workerID < 0 || workerID >= maxWorkerID {
		return nil, fmt.Errorf("property '%s' must be in [0, %d), given: %d", PropWorkerID, maxWorkerID, workerID)
	}
	vibration, err := props.GetInt64(PropMaxVibrationOffset, 1)
	if err != nil {
		return nil, err
	}
	if vibration < 0 || vibration > sequenceMask {
		return nil, fmt.Errorf("property '%s' must be in [0, %d], given: %d", PropMaxVibrationOffset, sequenceMask, vibration)
	}
	tolerate, err := props.GetInt64(PropMaxTolerateTimeDifferenceMs, 10)
	if err != nil {
		return nil, err
	}
	return &Snowflake{
		workerID:           workerID,
		maxVibrationOffset: vibration,
		maxTolerateMs:      tolerate,
		now:                time.Now,
		sleep:              time.Sleep,
		sequenceOffset:     -1,
	}, nil
}

func (s *Snowflake) Type() string {
	return TypeSnowflake
}

func (s *Snowflake) WorkerID() int64 {
	return s.workerID
}

func (s *Snowflake) millis() int64 {
	return s.now().Sub(Epoch).Milliseconds()
}

func (s *Snowflake) Generate() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.millis()
	if current < s.lastMillis {
		diff := s.lastMillis - current
		if diff > s.maxTolerateMs {
			return nil, fmt.Errorf("clock is moving backwards, last time is %d milliseconds, current time is %d milliseconds", s.lastMillis, current)
		}
		logger.Warnf("clock is moving backwards %d milliseconds, waiting until it catches up", diff)
		s.sleep(time.Duration(diff) * time.Millisecond)
		current = s.millis()
		if current < s.lastMillis {
			return nil, fmt.Errorf("clock is still behind after waiting, last time is %d milliseconds, current time is %d milliseconds", s.lastMillis, current)
		}
	}

	if current == s.lastMillis {
		s.sequence = (s.sequence + 1) & sequenceMask
		if s.sequence == 0 {
			current = s.waitUntilNextMillis(current)
		}
	} else {
		s.vibrateSequenceOffset()
		s.sequence = s.sequenceOffset
	}
	s.lastMillis = current
	return (current << timeShift) | (s.workerID << workerIDShift) | s.sequence, nil
}

func (s *Snowflake) waitUntilNextMillis(last int64) int64 {
	current := s.millis()
	for current <= last {
		s.sleep(time.Millisecond)
		current = s.millis()
	}
	return current
}

//vibrateSequenceOffset avoids ids always ending with an even sequence when traffic is low
func (s *Snowflake) vibrateSequenceOffset() {
	if s.sequenceOffset >= s.maxVibrationOffset {
		s.sequenceOffset = 0
	} else {
		s.sequenceOffset++
	}
}
