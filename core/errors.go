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
	"fmt"

	"github.com/pingcap/errors"
	"go.uber.org/multierr"
)

//ConfigurationError is raised when a rule model can not be loaded, it is fatal for the load
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return "sharding configuration error: " + e.msg
}

//RoutingError aborts routing of a single statement
type RoutingError struct {
	msg string
}

func (e *RoutingError) Error() string {
	return "sharding routing error: " + e.msg
}

//RewriteError means an internal invariant of the rewrite engine was broken
type RewriteError struct {
	msg string
}

func (e *RewriteError) Error() string {
	return "sql rewrite error: " + e.msg
}

func NewConfigurationError(format string, args ...interface{}) error {
	return errors.AddStack(&ConfigurationError{msg: fmt.Sprintf(format, args...)})
}

func NewRoutingError(format string, args ...interface{}) error {
	return errors.AddStack(&RoutingError{msg: fmt.Sprintf(format, args...)})
}

func NewRewriteError(format string, args ...interface{}) error {
	return errors.AddStack(&RewriteError{msg: fmt.Sprintf(format, args...)})
}

func IsConfigurationError(err error) bool {
	return matchAll(err, func(e error) bool {
		_, ok := e.(*ConfigurationError)
		return ok
	})
}

func IsRoutingError(err error) bool {
	return matchAll(err, func(e error) bool {
		_, ok := e.(*RoutingError)
		return ok
	})
}

func IsRewriteError(err error) bool {
	return matchAll(err, func(e error) bool {
		_, ok := e.(*RewriteError)
		return ok
	})
}

func matchAll(err error, match func(e error) bool) bool {
	if err == nil {
		return false
	}
	for _, e := range multierr.Errors(err) {
		if !match(errors.Cause(e)) {
			return false
		}
	}
	return true
}
