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

package algorithm

import (
	"sort"
	"strings"
)

func lookupValues(values map[string][]interface{}, column string) []interface{} {
	if v, ok := values[column]; ok {
		return v
	}
	for k, v := range values {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return nil
}

func sortedCopy(list []string) []string {
	r := append([]string(nil), list...)
	sort.Strings(r)
	return r
}

//permuteValues calls fn for every combination of the lists, the first list varies slowest
func permuteValues(lists [][]interface{}, fn func(combination []interface{}) error) error {
	combination := make([]interface{}, len(lists))
	var walk func(depth int) error
	walk = func(depth int) error {
		if depth == len(lists) {
			return fn(combination)
		}
		for _, v := range lists[depth] {
			combination[depth] = v
			if err := walk(depth + 1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(0)
}
