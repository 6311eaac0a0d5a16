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

package config

import (
	"context"

	"github.com/endink/shardroute/core/provider"
	"go.uber.org/config"
)

const (
	FileProvider = "file"
	EtcdProvider = "etcd"
)

// Configuration source provider, it turns the boot configuration into the rule configuration
type Source interface {
	provider.Provider
	Load(boot config.Provider) (config.Value, error)
}

//WatchableSource pushes every later version of the rule configuration until ctx is done
type WatchableSource interface {
	Source
	Watch(ctx context.Context, boot config.Provider, onChange func(value config.Value)) error
}
