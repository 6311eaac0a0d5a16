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

package testkit

import (
	"fmt"

	"github.com/emirpasic/gods/utils"
	"github.com/endink/shardroute/core"
	"github.com/endink/shardroute/core/comparison"
	"github.com/stretchr/testify/assert"
)

type equatable interface {
	Equals(v interface{}) bool
}

func sortValues(values []interface{}) {
	utils.Sort(values, func(a, b interface{}) int {
		i, err := comparison.Compare(a, b)
		if err != nil {
			return utils.StringComparator(fmt.Sprint(a), fmt.Sprint(b))
		}
		return i
	})
}

func errorDifferent(expected []interface{}, actual []interface{}) string {
	sb := core.NewStringBuilder()
	sb.WriteLine("array not same")

	sb.Write("expected: ")
	writeArray(sb, expected)
	sb.WriteLine()

	sb.Write("actual: ")
	writeArray(sb, actual)
	sb.WriteLine()
	return sb.String()
}

func writeArray(sb *core.StringBuilder, values []interface{}) {
	if len(values) == 0 {
		sb.Write("<empty array>")
		return
	}
	sorted := make([]interface{}, len(values))
	copy(sorted, values)
	sortValues(sorted)
	sb.WriteJoin(", ", sorted...)
}

//AssertStrArrayEquals asserts both arrays hold the same items regardless of order
func AssertStrArrayEquals(t assert.TestingT, expected []string, actual []string, msgAndArgs ...interface{}) bool {
	return AssertArrayEquals(t, convertStrArray(expected), convertStrArray(actual), msgAndArgs...)
}

func AssertArrayEquals(t assert.TestingT, expected []interface{}, actual []interface{}, msgAndArgs ...interface{}) bool {
	if len(expected) == 0 && len(actual) == 0 {
		return true
	}
	if len(expected) != len(actual) {
		return assert.Fail(t, errorDifferent(expected, actual), msgAndArgs...)
	}
	for _, r := range expected {
		if !arrayContains(actual, r) {
			return assert.Fail(t, errorDifferent(expected, actual), msgAndArgs...)
		}
	}
	return true
}

func convertStrArray(values []string) []interface{} {
	r := make([]interface{}, len(values))
	for i, value := range values {
		r[i] = value
	}
	return r
}

func arrayContains(values []interface{}, value interface{}) bool {
	for _, r := range values {
		if r == value {
			return true
		}
		if eq, ok := value.(equatable); ok && eq.Equals(r) {
			return true
		}
	}
	return false
}
