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

package redis

import (
	"time"

	"github.com/tochemey/gomsg/internal/validation"
)

const (
	// DefaultDialTimeout bounds a single connection attempt
	DefaultDialTimeout = 2 * time.Second
	// DefaultPoolSize is the number of pooled connections used to publish
	DefaultPoolSize = 10
)

// Config defines the Redis broker settings
type Config struct {
	// Addr is the server address in the format host:port
	Addr string
	// Username is the ACL user, empty for the default user
	Username string
	// Password is the server password, empty when no authentication is set
	Password string
	// DB is the logical database
	DB int
	// DialTimeout bounds a single connection attempt
	DialTimeout time.Duration
	// PoolSize is the number of pooled connections used to publish
	PoolSize int
	// ReconnectBackoff is the wait between a lost subscription and the next
	// attempt. Zero resubscribes immediately.
	ReconnectBackoff time.Duration
}

// Sanitize sets the default values of the unset fields
func (x *Config) Sanitize() {
	if x.DialTimeout <= 0 {
		x.DialTimeout = DefaultDialTimeout
	}

	if x.PoolSize <= 0 {
		x.PoolSize = DefaultPoolSize
	}

	if x.ReconnectBackoff < 0 {
		x.ReconnectBackoff = 0
	}
}

// Validate checks whether the given configuration is valid
func (x *Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewAddressValidator(x.Addr)).
		AddAssertion(x.DB >= 0, "DB must not be negative").
		AddAssertion(x.DialTimeout > 0, "DialTimeout must be positive").
		AddAssertion(x.PoolSize > 0, "PoolSize must be positive").
		Validate()
}
