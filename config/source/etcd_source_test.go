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

package source

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/coreos/etcd/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cnf "go.uber.org/config"
)

const bootYAML = `
config:
  provider: etcd
  etcd:
    endpoints: 127.0.0.1:2379, https://10.0.0.2:2379
    key: /test/rule
`

const ruleYAML = `
default-source: ds0
`

type fakeKeys struct {
	client.KeysAPI
	mu     sync.Mutex
	values map[string]*client.Node
	events chan *client.Response
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{
		values: make(map[string]*client.Node),
		events: make(chan *client.Response, 8),
	}
}

func (f *fakeKeys) put(key string, value string, index uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = &client.Node{Key: key, Value: value, ModifiedIndex: index}
}

func (f *fakeKeys) Get(_ context.Context, key string, _ *client.GetOptions) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.values[key]
	if !ok {
		return nil, client.Error{Code: client.ErrorCodeKeyNotFound, Message: "Key not found", Cause: key}
	}
	return &client.Response{Action: "get", Node: n}, nil
}

func (f *fakeKeys) Watcher(_ string, _ *client.WatcherOptions) client.Watcher {
	return &fakeWatcher{events: f.events}
}

type fakeWatcher struct {
	events chan *client.Response
}

func (w *fakeWatcher) Next(ctx context.Context) (*client.Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-w.events:
		return r, nil
	}
}

func bootProvider(t *testing.T) cnf.Provider {
	yml, err := cnf.NewYAML(cnf.Source(strings.NewReader(bootYAML)), cnf.Permissive())
	require.Nil(t, err)
	return yml
}

func defaultSource(v cnf.Value) string {
	var s string
	_ = v.Get("default-source").Populate(&s)
	return s
}

func TestEtcdEndpoints(t *testing.T) {
	s := &EtcdSettings{Endpoints: "127.0.0.1:2379, https://10.0.0.2:2379,,"}
	assert.Equal(t, []string{"http://127.0.0.1:2379", "https://10.0.0.2:2379"}, s.EndpointList())
	assert.Equal(t, defaultEtcdKey, s.key())
	assert.Equal(t, defaultEtcdTimeout, s.timeout())
}

func TestEtcdLoad(t *testing.T) {
	keys := newFakeKeys()
	var given *EtcdSettings
	source := NewEtcdSourceWith(func(settings *EtcdSettings) (client.KeysAPI, error) {
		given = settings
		return keys, nil
	})
	assert.Equal(t, EtcdConfigProvider, source.GetName())

	t.Run("missing key", func(t *testing.T) {
		_, err := source.Load(bootProvider(t))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "/test/rule")
	})

	t.Run("empty value", func(t *testing.T) {
		keys.put("/test/rule", " ", 1)
		_, err := source.Load(bootProvider(t))
		assert.Equal(t, ErrEmptyEtcdValue, err)
	})

	t.Run("value", func(t *testing.T) {
		keys.put("/test/rule", ruleYAML, 2)
		v, err := source.Load(bootProvider(t))
		require.Nil(t, err)
		assert.Equal(t, "ds0", defaultSource(v))
		assert.Equal(t, []string{"http://127.0.0.1:2379", "https://10.0.0.2:2379"}, given.EndpointList())
	})
}

func TestEtcdWatch(t *testing.T) {
	keys := newFakeKeys()
	keys.put("/test/rule", ruleYAML, 1)
	source := NewEtcdSourceWith(func(_ *EtcdSettings) (client.KeysAPI, error) {
		return keys, nil
	})

	keys.events <- &client.Response{Action: "set", Node: &client.Node{Value: "default-source: ds1", ModifiedIndex: 2}}
	keys.events <- &client.Response{Action: "set", Node: &client.Node{Value: "", ModifiedIndex: 3}}
	keys.events <- &client.Response{Action: "delete", Node: &client.Node{ModifiedIndex: 4}}
	keys.events <- &client.Response{Action: "set", Node: &client.Node{Value: "default-source: ds2", ModifiedIndex: 5}}

	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	done := make(chan error, 1)
	go func() {
		done <- source.Watch(ctx, bootProvider(t), func(value cnf.Value) {
			seen = append(seen, defaultSource(value))
			if len(seen) == 2 {
				cancel()
			}
		})
	}()

	assert.Nil(t, <-done)
	assert.Equal(t, []string{"ds1", "ds2"}, seen)
}
