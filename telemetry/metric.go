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

package telemetry

import (
	"errors"
	"strings"
	"unicode"
)

//BuildMetricName converts every segment to snake case and joins them with '_',
//leading and trailing characters other than letters and digits are dropped
func BuildMetricName(segments ...string) string {
	if len(segments) == 0 {
		panic(errors.New("name for 'BuildMetricName' can not be nil or empty"))
	}

	array := make([]string, 0, len(segments))
	sb := &strings.Builder{}
	for _, s := range segments {
		trimmed := strings.TrimFunc(s, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if trimmed == "" {
			continue
		}
		sb.Reset()
		prevLower := false
		for _, r := range trimmed {
			if unicode.IsUpper(r) {
				if prevLower {
					sb.WriteByte('_')
				}
				sb.WriteRune(unicode.ToLower(r))
				prevLower = false
				continue
			}
			if r == '.' || r == '-' || r == ' ' {
				r = '_'
			}
			sb.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
		array = append(array, sb.String())
	}
	return strings.Join(array, "_")
}
