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

package script

import (
	"testing"

	"github.com/endink/shardroute/testkit"
	"github.com/stretchr/testify/assert"
)

func TestFlatNoScript(t *testing.T) {
	expr := "ds_1,ds_2, ds_3"
	list := FlatInlineExpression(expr, t)
	testkit.AssertStrArrayEquals(t, []string{"ds_1", "ds_2", "ds_3"}, list)
}

func TestFlatOneDepth(t *testing.T) {
	expr := "ds_${range(1,3)}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, []string{"ds_1", "ds_2", "ds_3"}, list)
}

func TestFlatTwoDepthOrder(t *testing.T) {
	expr := "ds${range(0,1)}.t_order_${[0,1]}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, []string{"ds0.t_order_0", "ds0.t_order_1", "ds1.t_order_0", "ds1.t_order_1"}, list)
}

func TestFlatThirdDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 24, len(list))
	assert.Equal(t, "ds_1_t2_b5", list[0])
	assert.Equal(t, "ds_1_t2_b6", list[1])
	assert.Equal(t, "ds_3_t3_b8", list[23])
}

func TestMultiFlatThirdDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]},es_${range(2,4)}_t${range(2,3)}_b${[5,6,7,8]}, ts_${range(3,5)}_t${range(2,3)}_b${[5,6,7,8]}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 72, len(list))
	assert.Equal(t, "es_2_t2_b5", list[24])
	assert.Equal(t, "ts_3_t2_b5", list[48])
}

func TestDuplexMultiFlatThirdDepth(t *testing.T) {
	expr := "ds_${range(1,3)}_t${range(2,3)}_b${[5,6,7,8]}, ds_${range(3,4)}_t${range(2,3)}_b${[5,6,7,8]}"
	list := FlatInlineExpression(expr, t)
	assert.Equal(t, 32, len(list))
}

func TestGroovyStyleScript(t *testing.T) {
	list := FlatInlineExpression("ds$->{[0,1]}", t)
	assert.Equal(t, []string{"ds0", "ds1"}, list)
}

func TestFlatWithVariables(t *testing.T) {
	expr, err := NewInlineExpression("t_order_${order_id % 4}", "order_id")
	assert.Nil(t, err)

	name, err := expr.FlatScalar(map[string]interface{}{"order_id": int64(7)})
	assert.Nil(t, err)
	assert.Equal(t, "t_order_3", name)
	assert.Equal(t, []string{"order_id"}, expr.VariableNames())
}

func TestInlineSyntaxError(t *testing.T) {
	cases := []string{
		"ds$range(0,1)",
		"ds${range(0,1)",
		"ds${}",
		"ds${unknown_var}",
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			_, err := NewInlineExpression(c)
			assert.Error(t, err)
		})
	}
}

func TestInlineRuntimeError(t *testing.T) {
	expr, err := NewInlineExpression("t_${a / b}", "a", "b")
	assert.Nil(t, err)
	_, err = expr.FlatWith(map[string]interface{}{"a": int64(1), "b": int64(0)})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a=1, b=0")
}

func FlatInlineExpression(expression string, t *testing.T) []string {
	list, err := FlatInline(expression)
	assert.Nil(t, err, "flat inline expression fault: %s", expression)
	return list
}
