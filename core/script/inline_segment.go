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
	"errors"
	"strings"

	"github.com/endink/shardroute/core"
)

//inlineSegment is a literal prefix optionally followed by a script
type inlineSegment struct {
	prefix string
	script CompiledScript
}

type inlineSegmentGroup struct {
	segments []*inlineSegment
}

type splitContext struct {
	prefix    strings.Builder
	rawScript strings.Builder
	variables map[string]interface{}
	segments  []*inlineSegment
}

//splitSegments splits 'a${x}b${y}, c' into groups separated by commas outside of scripts,
//both ${...} and $->{...} are accepted as script blocks
func splitSegments(exp string, variables map[string]interface{}) ([]*inlineSegmentGroup, error) {
	syntaxError := func(message string, index int) error {
		var sb = core.NewStringBuilder()
		sb.WriteLine("inline expression syntax error")
		sb.WriteLine(message)
		sb.WriteLineF("expression: %s", exp)
		if index >= 0 {
			sb.WriteLineF("char index: %d", index)
		}
		return errors.New(sb.String())
	}

	context := &splitContext{variables: variables}
	groups := make([]*inlineSegmentGroup, 0)
	depth := 0

	for i := 0; i < len(exp); i++ {
		char := exp[i]
		if depth > 0 {
			switch char {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					if err := context.flushSegment(); err != nil {
						return nil, syntaxError(err.Error(), i)
					}
					continue
				}
			}
			context.rawScript.WriteByte(char)
			continue
		}

		switch char {
		case '$':
			rest := exp[i+1:]
			if strings.HasPrefix(rest, "{") {
				i++
			} else if strings.HasPrefix(rest, "->{") {
				i += 3
			} else {
				return nil, syntaxError("'{' symbol is missing after the symbol '$'", i)
			}
			depth = 1
		case ',':
			g, err := context.flushGroup()
			if err != nil {
				return nil, syntaxError(err.Error(), i)
			}
			if g != nil {
				groups = append(groups, g)
			}
		default:
			context.prefix.WriteByte(char)
		}
	}

	if depth > 0 {
		return nil, syntaxError("symbol '}' used to end the script are missing", -1)
	}

	g, err := context.flushGroup()
	if err != nil {
		return nil, syntaxError(err.Error(), len(exp))
	}
	if g != nil {
		groups = append(groups, g)
	}
	return groups, nil
}

func (context *splitContext) flushGroup() (*inlineSegmentGroup, error) {
	context.flushTrailing()
	segments := context.segments
	context.segments = nil
	if len(segments) == 0 {
		return nil, nil
	}
	//trim the spaces around the comma separated item
	segments[0].prefix = strings.TrimLeft(segments[0].prefix, " \t\r\n")
	last := segments[len(segments)-1]
	if last.script == nil {
		last.prefix = strings.TrimRight(last.prefix, " \t\r\n")
	}
	return &inlineSegmentGroup{segments: segments}, nil
}

func (context *splitContext) flushTrailing() {
	if context.prefix.Len() > 0 {
		if strings.TrimSpace(context.prefix.String()) != "" {
			context.segments = append(context.segments, &inlineSegment{prefix: context.prefix.String()})
		}
		context.prefix.Reset()
	}
}

func (context *splitContext) flushSegment() error {
	raw := strings.TrimSpace(context.rawScript.String())
	if raw == "" {
		return errors.New("script content can not be empty")
	}
	s, err := ParseScript(raw, context.variables)
	if err != nil {
		return err
	}
	context.segments = append(context.segments, &inlineSegment{
		prefix: context.prefix.String(),
		script: s,
	})
	context.prefix.Reset()
	context.rawScript.Reset()
	return nil
}
