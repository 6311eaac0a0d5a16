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
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange1Function(t *testing.T) {
	s := runTestScript("range(1,10)", t)
	assert.Equal(t, 10, len(s), "result for script fault: %s", strings.Join(s, ", "))
}

func TestRange2Function(t *testing.T) {
	s := runTestScript("range(5,10)", t)
	assert.Equal(t, []string{"5", "6", "7", "8", "9", "10"}, s)
}

func TestRangeInvalidBounds(t *testing.T) {
	c := compileTestScriptVar("range(3,1)", nil, t)
	_, err := c.Run()
	assert.Error(t, err)
}

func TestArray(t *testing.T) {
	s := runTestScript(`[2,3,"a",7]`, t)
	assert.Equal(t, []string{"2", "3", "a", "7"}, s)
}

func TestVar(t *testing.T) {
	vars := map[string]interface{}{
		"a": 3,
		"b": 4,
	}
	s := runTestScriptVar("a+b", vars, t)

	assert.Equal(t, 1, len(s))
	v, _ := strconv.Atoi(s[0])
	assert.Equal(t, 7, v)
}

func TestInvalidReturnType(t *testing.T) {
	c := compileTestScriptVar(`{a: 1}`, nil, t)
	_, err := c.Run()
	assert.Error(t, err)
}

func TestConcurrentRun(t *testing.T) {
	c := compileTestScriptVar("a * 2", map[string]interface{}{"a": 0}, t)
	wg := sync.WaitGroup{}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			r, err := c.RunWith(map[string]interface{}{"a": v})
			assert.Nil(t, err)
			assert.Equal(t, []string{strconv.Itoa(v * 2)}, r)
		}(i)
	}
	wg.Wait()
}

func runTestScript(script string, t *testing.T) []string {
	return runTestScriptVar(script, nil, t)
}

func runTestScriptVar(script string, vars map[string]interface{}, t *testing.T) []string {
	s := compileTestScriptVar(script, vars, t)
	r, err := s.Run()
	assert.Nil(t, err, "run script fault: %s", script)
	return r
}

func compileTestScriptVar(script string, vars map[string]interface{}, t *testing.T) CompiledScript {
	s, err := ParseScript(script, vars)
	if !assert.Nil(t, err, "compile script fault: %s", script) {
		t.FailNow()
	}
	return s
}
