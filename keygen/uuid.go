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
	"strings"

	"github.com/endink/shardroute/core"
	"github.com/google/uuid"
)

const TypeUUID = "UUID"

func init() {
	Register(TypeUUID, func(_ core.Properties) (core.KeyGenerator, error) {
		return &UUIDGenerator{}, nil
	})
}

//UUIDGenerator generates random uuid strings without dashes
type UUIDGenerator struct {
}

func (u *UUIDGenerator) Type() string {
	return TypeUUID
}

func (u *UUIDGenerator) Generate() (interface{}, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
