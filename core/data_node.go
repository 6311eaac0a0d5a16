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

package core

import (
	"fmt"
	"strings"
)

//DataNode is a physical table located in a data source
type DataNode struct {
	DataSource string
	Table      string
}

func (n DataNode) String() string {
	return n.DataSource + "." + n.Table
}

func ParseDataNode(text string) (DataNode, error) {
	s := strings.TrimSpace(text)
	idx := strings.Index(s, ".")
	if idx <= 0 || idx == len(s)-1 || strings.Count(s, ".") > 1 {
		return DataNode{}, fmt.Errorf("invalid data node '%s', format should be 'data_source.table'", text)
	}
	return DataNode{
		DataSource: strings.TrimSpace(s[:idx]),
		Table:      strings.TrimSpace(s[idx+1:]),
	}, nil
}

func ParseDataNodes(texts []string) ([]DataNode, error) {
	nodes := make([]DataNode, 0, len(texts))
	for _, t := range texts {
		n, err := ParseDataNode(t)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
