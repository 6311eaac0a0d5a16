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
	"errors"
	"fmt"
	"strings"
	"sync"
)

var onceReg sync.Once
var instance Registry

//Registry maps a provider type and a case-insensitive name to a provider, it is populated at startup
type Registry interface {
	TryLoad(tp Type, name string) (Provider, bool)
	Load(tp Type, name string) Provider
	Register(tp Type, provider Provider) error
	MustRegister(tp Type, provider Provider)
	LoadOrStore(tp Type, name string, creation func() Provider) (actual Provider, loaded bool)
	Delete(tp Type, name string)
	Names(tp Type) []string
}

func DefaultRegistry() Registry {
	onceReg.Do(func() {
		instance = NewRegistry()
	})
	return instance
}

func NewRegistry() Registry {
	return &registry{}
}

type registry struct {
	mp sync.Map
}

func getFullName(tp Type, name string) string {
	return fmt.Sprintf("%d:%s", int(tp), strings.ToUpper(strings.TrimSpace(name)))
}

func (r *registry) TryLoad(tp Type, name string) (Provider, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	v, ok := r.mp.Load(getFullName(tp, name))
	if ok {
		p, ok := v.(Provider)
		return p, ok
	}
	return nil, false
}

func (r *registry) Load(tp Type, name string) Provider {
	p, ok := r.TryLoad(tp, name)
	if !ok {
		panic(fmt.Errorf("%s provider named '%s' was not found", tp, name))
	}
	return p
}

func (r *registry) Register(tp Type, provider Provider) error {
	if provider == nil {
		return errors.New("provider can not be null")
	}
	n := strings.TrimSpace(provider.GetName())
	if n == "" {
		return errors.New("provider name can not be empty")
	}
	r.mp.Store(getFullName(tp, n), provider)
	return nil
}

func (r *registry) MustRegister(tp Type, provider Provider) {
	if err := r.Register(tp, provider); err != nil {
		panic(err)
	}
}

func (r *registry) LoadOrStore(tp Type, name string, creation func() Provider) (actual Provider, loaded bool) {
	if v, ok := r.TryLoad(tp, name); ok {
		return v, true
	}
	v, loaded := r.mp.LoadOrStore(getFullName(tp, name), creation())
	return v.(Provider), loaded
}

func (r *registry) Delete(tp Type, name string) {
	r.mp.Delete(getFullName(tp, name))
}

func (r *registry) Names(tp Type) []string {
	prefix := fmt.Sprintf("%d:", int(tp))
	var names []string
	r.mp.Range(func(key, value interface{}) bool {
		if k := key.(string); strings.HasPrefix(k, prefix) {
			names = append(names, value.(Provider).GetName())
		}
		return true
	})
	return names
}
