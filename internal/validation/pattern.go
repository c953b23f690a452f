// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"fmt"
	"regexp"
)

// channelPattern accepts any pub/sub channel name without whitespace or
// the NATS wildcard tokens, which would subscribe to more than one channel.
var channelPattern = regexp.MustCompile(`^[^\s*>]+$`)

// patternValidator checks a named value against a regular expression
type patternValidator struct {
	name    string
	pattern *regexp.Regexp
	value   string
}

var _ Validator = (*patternValidator)(nil)

// NewPatternValidator creates a validator that fails when value does not match pattern
func NewPatternValidator(name string, pattern *regexp.Regexp, value string) Validator {
	return &patternValidator{
		name:    name,
		pattern: pattern,
		value:   value,
	}
}

// NewChannelValidator validates a normalized channel name
func NewChannelValidator(channel string) Validator {
	return NewPatternValidator("channel", channelPattern, channel)
}

// Validate executes the validation
func (x *patternValidator) Validate() error {
	if !x.pattern.MatchString(x.value) {
		return fmt.Errorf("invalid %s=(%s)", x.name, x.value)
	}
	return nil
}
