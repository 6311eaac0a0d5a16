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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

//MustMatchFn returns a diff based assertion, nil and empty slices or maps are equal and
//fields whose path step is listed in ignoredFields (for example '.Parameters') are skipped at any depth
func MustMatchFn(ignoredFields []string, extraOpts ...cmp.Option) func(t testing.TB, want, got interface{}, errMsg ...string) {
	diffOpts := append([]cmp.Option{
		cmpopts.EquateEmpty(),
		ignorePathSteps(ignoredFields...),
	}, extraOpts...)
	return func(t testing.TB, want, got interface{}, errMsg ...string) {
		t.Helper()
		if diff := cmp.Diff(want, got, diffOpts...); diff != "" {
			t.Fatalf("%v: (-want +got)\n%v", errMsg, diff)
		}
	}
}

var MustMatch = MustMatchFn(nil)

func ignorePathSteps(steps ...string) cmp.Option {
	if len(steps) == 0 {
		return cmp.Options{}
	}
	skip := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		skip[s] = struct{}{}
	}
	return cmp.FilterPath(func(path cmp.Path) bool {
		for _, ps := range path {
			if _, ok := skip[ps.String()]; ok {
				return true
			}
		}
		return false
	}, cmp.Ignore())
}
