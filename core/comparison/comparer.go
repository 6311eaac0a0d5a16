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
	"fmt"
	"math"
	"reflect"
	"runtime"
	"strings"
)

type valueKind int

const (
	kindUnsupported valueKind = iota
	kindInt
	kindUint
	kindFloat
	kindString
)

func kindOf(value interface{}) valueKind {
	if value == nil {
		return kindUnsupported
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindUint
	case reflect.Float32, reflect.Float64:
		return kindFloat
	case reflect.String:
		return kindString
	}
	if _, ok := value.([]byte); ok {
		return kindString
	}
	return kindUnsupported
}

func IsCompareSupported(value interface{}) bool {
	return kindOf(value) != kindUnsupported
}

//IsComparable reports whether two values can be compared with each other, all numeric kinds are comparable
func IsComparable(a, b interface{}) bool {
	ka, kb := kindOf(a), kindOf(b)
	if ka == kindUnsupported || kb == kindUnsupported {
		return false
	}
	return (ka == kindString) == (kb == kindString)
}

func toInt64(v interface{}) int64 {
	return reflect.ValueOf(v).Int()
}

func toUint64(v interface{}) uint64 {
	return reflect.ValueOf(v).Uint()
}

func toFloat64(v interface{}) float64 {
	rv := reflect.ValueOf(v)
	switch kindOf(v) {
	case kindInt:
		return float64(rv.Int())
	case kindUint:
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}

func toString(v interface{}) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return reflect.ValueOf(v).String()
}

func ToInt64(v interface{}) (int64, bool) {
	switch kindOf(v) {
	case kindInt:
		return toInt64(v), true
	case kindUint:
		u := toUint64(v)
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case kindFloat:
		f := toFloat64(v)
		if f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func Compare(a, b interface{}) (int, error) {
	if !IsComparable(a, b) {
		return 0, fmt.Errorf("values have different types cannot be compared%stype a: %#v%stype b: %#v", lineSeparator(), a, lineSeparator(), b)
	}
	ka, kb := kindOf(a), kindOf(b)
	switch {
	case ka == kindString:
		return strings.Compare(toString(a), toString(b)), nil
	case ka == kindInt && kb == kindInt:
		return compareInt64(toInt64(a), toInt64(b)), nil
	case ka == kindUint && kb == kindUint:
		return compareUint64(toUint64(a), toUint64(b)), nil
	case ka == kindInt && kb == kindUint:
		x := toInt64(a)
		if x < 0 {
			return -1, nil
		}
		return compareUint64(uint64(x), toUint64(b)), nil
	case ka == kindUint && kb == kindInt:
		y := toInt64(b)
		if y < 0 {
			return 1, nil
		}
		return compareUint64(toUint64(a), uint64(y)), nil
	default:
		return compareFloat64(toFloat64(a), toFloat64(b)), nil
	}
}

func Min(a, b interface{}) (interface{}, error) {
	r, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if r <= 0 {
		return a, nil
	}
	return b, nil
}

func Max(a, b interface{}) (interface{}, error) {
	r, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if r >= 0 {
		return a, nil
	}
	return b, nil
}

func compareInt64(x, y int64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func compareUint64(x, y uint64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func compareFloat64(x, y float64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func lineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
