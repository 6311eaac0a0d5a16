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
	"sync"
	"testing"
	"time"

	"github.com/endink/shardroute/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnowflake(t *testing.T, props map[string]string) *Snowflake {
	g, err := NewSnowflake(core.NewPropertiesFromMap(props))
	require.Nil(t, err)
	return g
}

func TestSnowflakeLayout(t *testing.T) {
	g := newSnowflake(t, map[string]string{PropWorkerID: "5", PropMaxVibrationOffset: "0"})
	fixed := Epoch.Add(1000 * time.Millisecond)
	g.now = func() time.Time { return fixed }

	v, err := g.Generate()
	require.Nil(t, err)
	id := v.(int64)
	assert.Equal(t, int64(1000), id>>timeShift)
	assert.Equal(t, int64(5), (id>>workerIDShift)&(maxWorkerID-1))
	assert.Equal(t, int64(0), id&sequenceMask)

	v, err = g.Generate()
	require.Nil(t, err)
	assert.Equal(t, int64(1), v.(int64)&sequenceMask)
}

func TestSnowflakeClockBackwards(t *testing.T) {
	g := newSnowflake(t, map[string]string{PropMaxTolerateTimeDifferenceMs: "5"})
	current := Epoch.Add(time.Hour)
	g.now = func() time.Time { return current }
	var slept time.Duration
	g.sleep = func(d time.Duration) {
		slept += d
		current = current.Add(d)
	}

	_, err := g.Generate()
	require.Nil(t, err)

	current = current.Add(-3 * time.Millisecond)
	_, err = g.Generate()
	assert.Nil(t, err)
	assert.Equal(t, 3*time.Millisecond, slept)

	current = current.Add(-time.Second)
	_, err = g.Generate()
	assert.Error(t, err)
}

func TestSnowflakeClockStillBehind(t *testing.T) {
	g := newSnowflake(t, map[string]string{PropMaxTolerateTimeDifferenceMs: "5"})
	current := Epoch.Add(time.Hour)
	g.now = func() time.Time { return current }
	g.sleep = func(d time.Duration) {}

	first, err := g.Generate()
	require.Nil(t, err)

	current = current.Add(-3 * time.Millisecond)
	_, err = g.Generate()
	assert.Error(t, err)

	current = current.Add(3 * time.Millisecond)
	next, err := g.Generate()
	require.Nil(t, err)
	assert.Greater(t, next.(int64), first.(int64))
}

func TestSnowflakeInvalidWorker(t *testing.T) {
	_, err := NewSnowflake(core.NewPropertiesFromMap(map[string]string{PropWorkerID: "1024"}))
	assert.Error(t, err)
}

func TestSnowflakeConcurrentUnique(t *testing.T) {
	g := newSnowflake(t, nil)
	const workers, per = 8, 500
	ids := make(chan int64, workers*per)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < per; j++ {
				v, err := g.Generate()
				if err == nil {
					ids <- v.(int64)
				}
			}
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[int64]bool, workers*per)
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, workers*per)
}

func TestUUID(t *testing.T) {
	g, err := New("uuid", nil)
	require.Nil(t, err)
	v, err := g.Generate()
	require.Nil(t, err)
	assert.Len(t, v.(string), 32)
	assert.NotContains(t, v.(string), "-")

	_, err = New("none", nil)
	assert.Error(t, err)
}

type sequence struct {
	next int64
}

func (s *sequence) Type() string {
	return "SEQ"
}

func (s *sequence) Generate() (interface{}, error) {
	s.next++
	return s.next, nil
}

func keyRule(t *testing.T, shardingKey bool) *core.ShardingRule {
	nodes, err := core.ParseDataNodes([]string{"ds0.t_order_0", "ds0.t_order_1"})
	require.Nil(t, err)
	tr := core.NewTableRule("t_order", nodes)
	tr.KeyGenerate = &core.KeyGenerateStrategy{Column: "order_id", GeneratorName: "seq", Generator: &sequence{}}
	if shardingKey {
		tr.TableStrategy = core.NewHintStrategy("hint", &hintAll{})
		tr.TableStrategy.Columns = []string{"order_id"}
	}
	rule, err := core.NewShardingRule(&core.RuleOptions{Tables: []*core.TableRule{tr}})
	require.Nil(t, err)
	return rule
}

type hintAll struct{}

func (h *hintAll) Type() string {
	return "HINT_ALL"
}

func (h *hintAll) DoHintSharding(availableTargets []string, _ *core.HintShardingValues) ([]int, error) {
	return core.AllIndexes(len(availableTargets)), nil
}

func TestGenerate(t *testing.T) {
	t.Run("missing key column", func(t *testing.T) {
		gk, err := Generate(keyRule(t, true), "T_ORDER", []string{"user_id"}, 2)
		require.Nil(t, err)
		require.NotNil(t, gk)
		assert.Equal(t, "order_id", gk.Column)
		assert.Equal(t, []interface{}{int64(1), int64(2)}, gk.Values)
		assert.True(t, gk.ShardingColumn)

		in := core.ShardingConditions{core.NewRowConditionGroup(0, core.NewEqualCondition("t_order", "user_id", 1))}
		out := gk.AppendConditions(in)
		require.Len(t, out, 2)
		assert.Len(t, in[0].Conditions, 1)
		assert.Len(t, out[0].Conditions, 2)
		assert.Equal(t, int64(2), out[1].Find("t_order", "order_id")[0].Values[0])
		assert.Equal(t, 1, out[1].Row)
	})

	t.Run("key column present", func(t *testing.T) {
		gk, err := Generate(keyRule(t, true), "t_order", []string{"ORDER_ID", "user_id"}, 1)
		assert.Nil(t, err)
		assert.Nil(t, gk)
	})

	t.Run("not sharding column", func(t *testing.T) {
		gk, err := Generate(keyRule(t, false), "t_order", []string{"user_id"}, 1)
		require.Nil(t, err)
		in := core.ShardingConditions{core.NewRowConditionGroup(0)}
		assert.Equal(t, in, gk.AppendConditions(in))
	})

	t.Run("unknown table", func(t *testing.T) {
		gk, err := Generate(keyRule(t, true), "t_user", []string{"user_id"}, 1)
		assert.Nil(t, err)
		assert.Nil(t, gk)
	})
}
