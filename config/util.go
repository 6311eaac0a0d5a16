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
	"os"
	"path/filepath"

	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/core/provider"
	"github.com/endink/shardroute/config/source"
	"github.com/endink/shardroute/logging"
)

var logger = logging.GetLogger("config")

func init() {
	provider.DefaultRegistry().MustRegister(provider.ConfigSource, &source.FileSource{})
	provider.DefaultRegistry().MustRegister(provider.ConfigSource, source.NewEtcdSource())
}

//DefaultConfigFileLocations returns the candidate files in search order, later files override earlier ones
func DefaultConfigFileLocations() []string {
	var files []string
	if !core.IsWindows() {
		files = append(files, "/etc/shardroute/config.yaml", "/etc/shardroute/config.yml")
	}
	dir, err := os.Getwd()
	if err == nil {
		files = append(files, filepath.Join(dir, "config.yaml"))
	} else {
		files = append(files, "config.yaml")
	}
	return files
}
