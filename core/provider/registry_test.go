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

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedProvider string

func (n namedProvider) GetName() string {
	return string(n)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Register(ShardingAlgorithm, namedProvider("Inline")))
	assert.Error(t, r.Register(ShardingAlgorithm, namedProvider(" ")))
	assert.Error(t, r.Register(ShardingAlgorithm, nil))

	p, ok := r.TryLoad(ShardingAlgorithm, "INLINE")
	assert.True(t, ok)
	assert.Equal(t, "Inline", p.GetName())

	_, ok = r.TryLoad(KeyGenerator, "inline")
	assert.False(t, ok)
	_, ok = r.TryLoad(KeyGenerator, "")
	assert.False(t, ok)

	assert.Panics(t, func() {
		r.Load(ConfigSource, "etcd")
	})

	v, loaded := r.LoadOrStore(ConfigSource, "file", func() Provider { return namedProvider("file") })
	assert.False(t, loaded)
	assert.Equal(t, "file", v.GetName())
	_, loaded = r.LoadOrStore(ConfigSource, "FILE", func() Provider { return namedProvider("other") })
	assert.True(t, loaded)

	assert.Equal(t, []string{"file"}, r.Names(ConfigSource))
	r.Delete(ConfigSource, "file")
	assert.Empty(t, r.Names(ConfigSource))
}
