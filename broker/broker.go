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

// Package broker defines the pub/sub transport a messaging service publishes
// its frames on and receives its peers' frames from.
package broker

import (
	"context"
	"strings"

	gerrors "github.com/tochemey/gomsg/errors"
)

// ErrClosed is returned when publishing on a closed broker
var ErrClosed = gerrors.ErrBrokerClosed

// Handler receives the raw payload of every message delivered on the
// subscribed channel, including the ones published by the same broker.
type Handler func(payload []byte)

// Broker publishes payloads on a single channel and delivers the payloads
// received on that channel to the Handler it was created with.
type Broker interface {
	// Publish sends payload on the channel. It is safe for concurrent use.
	Publish(ctx context.Context, payload []byte) error
	// State returns the connection state
	State() State
	// Close releases the subscription and the connection. It is idempotent.
	Close() error
}

// Dialer creates a Broker bound to channel. The handler is fixed for the
// lifetime of the Broker.
type Dialer func(channel string, handler Handler) (Broker, error)

// NormalizeChannel turns a service name into a channel name: surrounding
// spaces are removed and inner spaces become underscores.
func NormalizeChannel(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// SplitServers splits a comma separated list of servers, dropping the empty entries.
func SplitServers(servers string) []string {
	parts := strings.Split(servers, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
