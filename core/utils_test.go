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
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestPermute(t *testing.T) {
	array1 := []string{"1", "3", "5"}
	array2 := []string{"2", "4", "6"}
	array3 := []string{"7", "8", "9"}

	result := Permute([][]string{array1, array2, array3})

	assert.Equal(t, 27, len(result))
	for _, innerArray := range result {
		assert.Equal(t, 3, len(innerArray))
	}
	assert.Equal(t, []string{"1", "2", "7"}, result[0])
	assert.Equal(t, []string{"1", "2", "8"}, result[1])
	assert.Equal(t, []string{"5", "6", "9"}, result[26])
}

func TestPermuteEmpty(t *testing.T) {
	assert.Nil(t, Permute(nil))
	assert.Nil(t, Permute([][]string{{"a"}, {}}))
}

func TestDistinctSliceAndTrim(t *testing.T) {
	r := DistinctSliceAndTrim([]string{" a", "b ", "a", "", "  ", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, r)
}

func TestValidateIdentifier(t *testing.T) {
	assert.Nil(t, ValidateIdentifier("ds_0"))
	assert.Nil(t, ValidateIdentifier("order-db"))
	assert.NotNil(t, ValidateIdentifier("0ds"))
	assert.NotNil(t, ValidateIdentifier("ds.0"))
}

func TestStringBuilder(t *testing.T) {
	sb := NewStringBuilder("a")
	sb.Write("b", 1, 2)
	sb.WriteJoin(",", "x", "y", "z")
	sb.WriteLine()
	sb.WriteLineF("%d-%s", 3, "c")
	assert.Equal(t, "ab12x,y,z"+LineSeparator+"3-c"+LineSeparator, sb.String())
}
