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
	"strings"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/core/provider"
)

type Factory interface {
	provider.Provider
	Create(props core.Properties) (core.KeyGenerator, error)
}

type CreateFunc func(props core.Properties) (core.KeyGenerator, error)

type factory struct {
	name   string
	create CreateFunc
}

func (f *factory) GetName() string {
	return f.name
}

func (f *factory) Create(props core.Properties) (core.KeyGenerator, error) {
	return f.create(props)
}

func Register(typeName string, create CreateFunc) {
	provider.DefaultRegistry().MustRegister(provider.KeyGenerator, &factory{
		name:   strings.ToUpper(strings.TrimSpace(typeName)),
		create: create,
	})
}

func New(typeName string, props core.Properties) (core.KeyGenerator, error) {
	p, ok := provider.DefaultRegistry().TryLoad(provider.KeyGenerator, typeName)
	if !ok {
		return nil, fmt.Errorf("key generator type '%s' is not supported", typeName)
	}
	f, ok := p.(Factory)
	if !ok {
		return nil, fmt.Errorf("provider '%s' is not a key generator factory", typeName)
	}
	if props == nil {
		props = core.EmptyProperties
	}
	return f.Create(props)
}
