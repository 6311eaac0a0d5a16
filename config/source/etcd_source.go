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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/etcd/client"
	"github.com/endink/shardroute/logging"
	cnf "go.uber.org/config"
)

const (
	EtcdConfigProvider = "etcd"

	defaultEtcdKey     = "/shardroute/config"
	defaultEtcdTimeout = 3 * time.Second
	retryInterval      = time.Second
)

var logger = logging.GetLogger("config")

// ErrEmptyEtcdValue means the configuration key holds no yaml content
var ErrEmptyEtcdValue = errors.New("etcd configuration value is empty")

//EtcdSettings is the 'config.etcd' section of the boot configuration
type EtcdSettings struct {
	Endpoints string `yaml:"endpoints"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Key       string `yaml:"key"`
	TimeoutMs int    `yaml:"timeout-ms"`
}

func (s *EtcdSettings) timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return defaultEtcdTimeout
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

func (s *EtcdSettings) key() string {
	if strings.TrimSpace(s.Key) == "" {
		return defaultEtcdKey
	}
	return strings.TrimSpace(s.Key)
}

//EndpointList adds the http scheme to endpoints given without one
func (s *EtcdSettings) EndpointList() []string {
	var endpoints []string
	for _, e := range strings.Split(s.Endpoints, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, "http://") && !strings.HasPrefix(e, "https://") {
			e = "http://" + e
		}
		endpoints = append(endpoints, e)
	}
	return endpoints
}

type KeysAPIFactory func(settings *EtcdSettings) (client.KeysAPI, error)

// EtcdSource reads the rule yaml stored in one etcd key
type EtcdSource struct {
	newKeysAPI KeysAPIFactory
}

func NewEtcdSource() *EtcdSource {
	return NewEtcdSourceWith(newKeysAPI)
}

func NewEtcdSourceWith(factory KeysAPIFactory) *EtcdSource {
	return &EtcdSource{newKeysAPI: factory}
}

func newKeysAPI(settings *EtcdSettings) (client.KeysAPI, error) {
	endpoints := settings.EndpointList()
	if len(endpoints) == 0 {
		return nil, errors.New("etcd endpoints are not configured")
	}
	config := client.Config{
		Endpoints:               endpoints,
		Transport:               client.DefaultTransport,
		Username:                settings.Username,
		Password:                settings.Password,
		HeaderTimeoutPerRequest: settings.timeout(),
	}
	c, err := client.New(config)
	if err != nil {
		return nil, err
	}
	return client.NewKeysAPI(c), nil
}

func (c *EtcdSource) GetName() string {
	return EtcdConfigProvider
}

func (c *EtcdSource) settings(boot cnf.Provider) (*EtcdSettings, error) {
	s := &EtcdSettings{}
	if err := boot.Get("config.etcd").Populate(s); err != nil {
		return nil, fmt.Errorf("bad etcd settings: %v", err)
	}
	return s, nil
}

func contextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}

func isErrNoNode(err error) bool {
	if err != nil {
		if e, ok := err.(client.Error); ok {
			return e.Code == client.ErrorCodeKeyNotFound
		}
	}
	return false
}

func (c *EtcdSource) Load(boot cnf.Provider) (cnf.Value, error) {
	s, err := c.settings(boot)
	if err != nil {
		return cnf.Value{}, err
	}
	kapi, err := c.newKeysAPI(s)
	if err != nil {
		return cnf.Value{}, err
	}
	v, _, err := read(context.Background(), kapi, s)
	return v, err
}

func read(ctx context.Context, kapi client.KeysAPI, s *EtcdSettings) (cnf.Value, uint64, error) {
	cntx, canceller := contextWithTimeout(ctx, s.timeout())
	defer canceller()
	resp, err := kapi.Get(cntx, s.key(), nil)
	if err != nil {
		if isErrNoNode(err) {
			return cnf.Value{}, 0, fmt.Errorf("etcd key '%s' was not found", s.key())
		}
		return cnf.Value{}, 0, err
	}
	if resp.Node == nil || resp.Node.Dir {
		return cnf.Value{}, 0, fmt.Errorf("etcd key '%s' is not a value node", s.key())
	}
	v, err := parse(resp.Node.Value)
	return v, resp.Node.ModifiedIndex, err
}

func parse(content string) (cnf.Value, error) {
	if strings.TrimSpace(content) == "" {
		return cnf.Value{}, ErrEmptyEtcdValue
	}
	yml, err := cnf.NewYAML(cnf.Source(strings.NewReader(content)), cnf.Permissive())
	if err != nil {
		return cnf.Value{}, err
	}
	return yml.Get(cnf.Root), nil
}

//Watch blocks until ctx is done, bad versions are logged and skipped
func (c *EtcdSource) Watch(ctx context.Context, boot cnf.Provider, onChange func(value cnf.Value)) error {
	s, err := c.settings(boot)
	if err != nil {
		return err
	}
	kapi, err := c.newKeysAPI(s)
	if err != nil {
		return err
	}
	_, index, err := read(ctx, kapi, s)
	if err != nil {
		return err
	}

	w := kapi.Watcher(s.key(), &client.WatcherOptions{AfterIndex: index})
	for {
		resp, err := w.Next(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Warnf("watch etcd key %s failed: %v", s.key(), err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryInterval):
			}
			continue
		}
		if resp.Node == nil || resp.Action == "delete" || resp.Action == "expire" {
			logger.Warnf("etcd key %s was removed, keep the current configuration", s.key())
			continue
		}
		v, err := parse(resp.Node.Value)
		if err != nil {
			logger.Warnf("skip bad configuration version %d of etcd key %s: %v", resp.Node.ModifiedIndex, s.key(), err)
			continue
		}
		logger.Infof("configuration changed, etcd key %s version %d", s.key(), resp.Node.ModifiedIndex)
		onChange(v)
	}
}
