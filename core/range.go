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
	"errors"
	"fmt"
	"github.com/endink/shardroute/core/comparison"
)

type Range interface {
	fmt.Stringer
	LowerBound() interface{}
	UpperBound() interface{}
	HasLower() bool
	HasUpper() bool
	LowerInclusive() bool
	UpperInclusive() bool
	Contains(value interface{}) (bool, error)
	Intersect(value Range) (Range, error)
	HasIntersection(v Range) (bool, error)
}

var (
	ErrRangeBoundTypeNotSame     = errors.New("different types of boundary values cannot create range")
	ErrRangeInvalidBound         = errors.New("the lower bound of the range cannot be greater than the upper bound")
	ErrRangeBoundTypeUnsupported = errors.New("boundary value types for the range are not supported")
)

type defaultRange struct {
	lower     interface{}
	upper     interface{}
	hasL      bool
	hasU      bool
	lowerOpen bool
	upperOpen bool
}

//NewRange creates a closed range, nil means unbounded
func NewRange(min interface{}, max interface{}) (Range, error) {
	return NewRangeBounds(min, true, max, true)
}

//NewRangeOpen creates a range excluding both bounds
func NewRangeOpen(min interface{}, max interface{}) (Range, error) {
	return NewRangeBounds(min, false, max, false)
}

func NewRangeBounds(min interface{}, minInclusive bool, max interface{}, maxInclusive bool) (Range, error) {
	r := &defaultRange{}

	if min != nil {
		if !comparison.IsCompareSupported(min) {
			return nil, ErrRangeBoundTypeUnsupported
		}
		r.hasL = true
		r.lower = min
		r.lowerOpen = !minInclusive
	}

	if max != nil {
		if !comparison.IsCompareSupported(max) {
			return nil, ErrRangeBoundTypeUnsupported
		}
		if r.hasL && !comparison.IsComparable(min, max) {
			return nil, ErrRangeBoundTypeNotSame
		}
		r.hasU = true
		r.upper = max
		r.upperOpen = !maxInclusive
	}

	if r.hasL && r.hasU {
		c, _ := comparison.Compare(r.lower, r.upper)
		if c > 0 || (c == 0 && (r.lowerOpen || r.upperOpen)) {
			return nil, ErrRangeInvalidBound
		}
	}

	return r, nil
}

func (d *defaultRange) LowerBound() interface{} {
	return d.lower
}

func (d *defaultRange) UpperBound() interface{} {
	return d.upper
}

func (d *defaultRange) HasLower() bool {
	return d.hasL
}

func (d *defaultRange) HasUpper() bool {
	return d.hasU
}

func (d *defaultRange) LowerInclusive() bool {
	return d.hasL && !d.lowerOpen
}

func (d *defaultRange) UpperInclusive() bool {
	return d.hasU && !d.upperOpen
}

func (d *defaultRange) Contains(value interface{}) (bool, error) {
	if d.hasL {
		r, err := comparison.Compare(d.lower, value)
		if err != nil {
			return false, err
		}
		if r > 0 || (r == 0 && d.lowerOpen) {
			return false, nil
		}
	}

	if d.hasU {
		r, err := comparison.Compare(d.upper, value)
		if err != nil {
			return false, err
		}
		if r < 0 || (r == 0 && d.upperOpen) {
			return false, nil
		}
	}
	return true, nil
}

func (d *defaultRange) HasIntersection(v Range) (bool, error) {
	r, err := d.Intersect(v)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}

//Intersect returns nil range without error when there is no intersection
func (d *defaultRange) Intersect(v Range) (Range, error) {
	if v == nil {
		return nil, errors.New("the range used to intersect cannot be nil")
	}

	newRange := &defaultRange{}

	switch {
	case d.hasL && v.HasLower():
		c, err := comparison.Compare(d.lower, v.LowerBound())
		if err != nil {
			return nil, err
		}
		newRange.hasL = true
		if c > 0 {
			newRange.lower, newRange.lowerOpen = d.lower, d.lowerOpen
		} else if c < 0 {
			newRange.lower, newRange.lowerOpen = v.LowerBound(), !v.LowerInclusive()
		} else {
			newRange.lower, newRange.lowerOpen = d.lower, d.lowerOpen || !v.LowerInclusive()
		}
	case d.hasL:
		newRange.hasL, newRange.lower, newRange.lowerOpen = true, d.lower, d.lowerOpen
	case v.HasLower():
		newRange.hasL, newRange.lower, newRange.lowerOpen = true, v.LowerBound(), !v.LowerInclusive()
	}

	switch {
	case d.hasU && v.HasUpper():
		c, err := comparison.Compare(d.upper, v.UpperBound())
		if err != nil {
			return nil, err
		}
		newRange.hasU = true
		if c < 0 {
			newRange.upper, newRange.upperOpen = d.upper, d.upperOpen
		} else if c > 0 {
			newRange.upper, newRange.upperOpen = v.UpperBound(), !v.UpperInclusive()
		} else {
			newRange.upper, newRange.upperOpen = d.upper, d.upperOpen || !v.UpperInclusive()
		}
	case d.hasU:
		newRange.hasU, newRange.upper, newRange.upperOpen = true, d.upper, d.upperOpen
	case v.HasUpper():
		newRange.hasU, newRange.upper, newRange.upperOpen = true, v.UpperBound(), !v.UpperInclusive()
	}

	if newRange.hasL && newRange.hasU {
		c, err := comparison.Compare(newRange.lower, newRange.upper)
		if err != nil {
			return nil, err
		}
		if c > 0 || (c == 0 && (newRange.lowerOpen || newRange.upperOpen)) {
			return nil, nil
		}
	}
	return newRange, nil
}

func (d *defaultRange) String() string {
	left, right := "(", ")"
	var min, max string
	if d.hasL {
		min = fmt.Sprint(d.lower)
		if !d.lowerOpen {
			left = "["
		}
	}
	if d.hasU {
		max = fmt.Sprint(d.upper)
		if !d.upperOpen {
			right = "]"
		}
	}
	return fmt.Sprintf("%s%s..%s%s", left, min, max, right)
}
