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

package comparison

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCompareMixedNumeric(t *testing.T) {
	cases := []struct {
		a, b interface{}
		want int
	}{
		{int64(1), int64(2), -1},
		{int(3), int64(3), 0},
		{uint64(5), int64(4), 1},
		{int64(-1), uint64(0), -1},
		{float64(1.5), int64(1), 1},
		{"a", "b", -1},
		{[]byte("b"), "b", 0},
	}
	for _, c := range cases {
		r, err := Compare(c.a, c.b)
		assert.Nil(t, err)
		assert.Equal(t, c.want, r, "%v <> %v", c.a, c.b)
	}
}

func TestCompareStringWithNumber(t *testing.T) {
	_, err := Compare("1", 1)
	assert.NotNil(t, err)
	assert.False(t, IsComparable(nil, 1))
}

func TestMinMax(t *testing.T) {
	min, err := Min(int64(3), int(2))
	assert.Nil(t, err)
	assert.Equal(t, int(2), min)

	max, err := Max("abc", "abd")
	assert.Nil(t, err)
	assert.Equal(t, "abd", max)
}

func TestToInt64(t *testing.T) {
	v, ok := ToInt64(uint8(7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = ToInt64(1.5)
	assert.False(t, ok)

	_, ok = ToInt64("7")
	assert.False(t, ok)
}
