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

package parser

import "github.com/pingcap/parser/ast"

var _ ast.Visitor = &walker{}

// Visit is called for every node before its children, returning false skips the children
type Visit func(node ast.Node) (descend bool, err error)

// Walk visits the nodes depth first, the first error stops the walk and is returned.
func Walk(visit Visit, nodes ...ast.Node) error {
	w := &walker{visit: visit}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		node.Accept(w)
		if w.err != nil {
			return w.err
		}
	}
	return nil
}

type walker struct {
	err   error
	visit Visit
}

func (w *walker) Enter(n ast.Node) (node ast.Node, skipChildren bool) {
	if w.err != nil {
		return n, true
	}
	descend, err := w.visit(n)
	if err != nil {
		w.err = err
		return n, true
	}
	return n, !descend
}

//Leave stops the traversal once an error was recorded, skipped subtrees never abort their parents
func (w *walker) Leave(n ast.Node) (node ast.Node, ok bool) {
	return n, w.err == nil
}
