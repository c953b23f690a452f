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

package nats

import (
	"time"

	"github.com/tochemey/gomsg/broker"
	"github.com/tochemey/gomsg/internal/validation"
)

const (
	// DefaultConnectTimeout is the dial timeout of a single connection attempt
	DefaultConnectTimeout = 2 * time.Second
	// DefaultReconnectWait is the wait between two reconnection attempts
	DefaultReconnectWait = 2 * time.Second
	// DefaultConnectRetries is the number of initial connection attempts
	DefaultConnectRetries = 5
)

// Config defines the NATS broker settings
type Config struct {
	// Servers is a comma separated list of servers in the format nats://host:port
	Servers string
	// ConnectionName is the name reported to the server.
	// It defaults to MS-<channel>.
	ConnectionName string
	// ConnectTimeout bounds a single connection attempt
	ConnectTimeout time.Duration
	// ReconnectWait is the wait between two reconnection attempts
	ReconnectWait time.Duration
	// MaxReconnects is the number of reconnection attempts after a connection
	// loss. A negative value retries forever, zero means the default of forever.
	MaxReconnects int
	// ConnectRetries is the number of attempts of the initial connection before
	// the broker creation fails
	ConnectRetries int
}

// Sanitize sets the default values of the unset fields
func (x *Config) Sanitize() {
	if x.ConnectTimeout <= 0 {
		x.ConnectTimeout = DefaultConnectTimeout
	}

	if x.ReconnectWait <= 0 {
		x.ReconnectWait = DefaultReconnectWait
	}

	if x.MaxReconnects == 0 {
		x.MaxReconnects = -1
	}

	if x.ConnectRetries <= 0 {
		x.ConnectRetries = DefaultConnectRetries
	}
}

// Validate checks whether the given configuration is valid
func (x *Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewServerListValidator(broker.SplitServers(x.Servers))).
		AddAssertion(x.ConnectTimeout > 0, "ConnectTimeout must be positive").
		AddAssertion(x.ReconnectWait > 0, "ReconnectWait must be positive").
		AddAssertion(x.ConnectRetries > 0, "ConnectRetries must be positive").
		Validate()
}
