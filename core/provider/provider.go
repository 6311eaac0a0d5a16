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

//Type groups providers, names are unique inside one type
type Type int

const (
	ShardingAlgorithm Type = iota
	KeyGenerator
	ConfigSource
)

func (t Type) String() string {
	switch t {
	case ShardingAlgorithm:
		return "sharding algorithm"
	case KeyGenerator:
		return "key generator"
	case ConfigSource:
		return "config source"
	default:
		return "unknown"
	}
}

type Provider interface {
	GetName() string
}
