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

// Package nats implements broker.Broker on top of NATS core pub/sub.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/nats-io/nats.go"

	"github.com/tochemey/gomsg/broker"
	"github.com/tochemey/gomsg/internal/validation"
	"github.com/tochemey/gomsg/log"
)

// Broker publishes and receives on a single NATS subject
type Broker struct {
	config  Config
	channel string
	handler broker.Handler

	connection   *nats.Conn
	subscription *nats.Subscription
	state        *broker.StateMachine

	logger log.Logger
}

// enforce compilation error
var _ broker.Broker = (*Broker)(nil)

// NewBroker connects to NATS and subscribes to channel. Every message received
// on the channel is handed to handler.
func NewBroker(config *Config, channel string, handler broker.Handler, opts ...Option) (*Broker, error) {
	if config == nil {
		config = new(Config)
	}

	b := &Broker{
		config:  *config,
		channel: channel,
		handler: handler,
		state:   broker.NewStateMachine(),
		logger:  log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(b)
	}

	b.config.Sanitize()
	if err := validation.New(validation.FailFast()).
		AddValidator(&b.config).
		AddValidator(validation.NewChannelValidator(channel)).
		AddAssertion(handler != nil, "handler is required").
		Validate(); err != nil {
		return nil, err
	}

	b.logger = b.logger.With("broker", "nats", "channel", channel)
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

// Dialer returns a broker.Dialer creating NATS brokers with the given config
func Dialer(config *Config, opts ...Option) broker.Dialer {
	return func(channel string, handler broker.Handler) (broker.Broker, error) {
		b, err := NewBroker(config, channel, handler, opts...)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// Publish implements broker.Broker
func (b *Broker) Publish(ctx context.Context, payload []byte) error {
	if b.state.Load() == broker.Closed {
		return broker.ErrClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.connection.Publish(b.channel, payload); err != nil {
		if b.state.Load() == broker.Closed {
			return broker.ErrClosed
		}
		return fmt.Errorf("failed to publish on channel=(%s): %w", b.channel, err)
	}
	return nil
}

// State implements broker.Broker
func (b *Broker) State() broker.State {
	return b.state.Load()
}

// Close implements broker.Broker
func (b *Broker) Close() error {
	if !b.state.Close() {
		return nil
	}

	var err error
	if b.subscription != nil && b.subscription.IsValid() {
		err = b.subscription.Unsubscribe()
	}

	b.connection.Close()
	b.logger.Debug("nats broker closed")
	return err
}

// connect dials the servers with bounded retries and subscribes to the channel
func (b *Broker) connect() error {
	opts := nats.GetDefaultOptions()
	opts.Servers = broker.SplitServers(b.config.Servers)
	opts.Name = b.config.ConnectionName
	if opts.Name == "" {
		opts.Name = "MS-" + b.channel
	}
	opts.Timeout = b.config.ConnectTimeout
	opts.ReconnectWait = b.config.ReconnectWait
	opts.MaxReconnect = b.config.MaxReconnects
	opts.DisconnectedErrCB = b.onDisconnected
	opts.ReconnectedCB = b.onReconnected
	opts.ClosedCB = b.onClosed

	var connection *nats.Conn
	retrier := retry.NewRetrier(b.config.ConnectRetries, 100*time.Millisecond, b.config.ReconnectWait)
	if err := retrier.Run(func() error {
		var err error
		connection, err = opts.Connect()
		return err
	}); err != nil {
		return fmt.Errorf("failed to connect to nats servers=(%s): %w", b.config.Servers, err)
	}

	subscription, err := connection.Subscribe(b.channel, func(msg *nats.Msg) {
		b.handler(msg.Data)
	})
	if err != nil {
		connection.Close()
		return fmt.Errorf("failed to subscribe to channel=(%s): %w", b.channel, err)
	}

	// the subscription is confirmed once the server has processed it
	if err := connection.FlushTimeout(b.config.ConnectTimeout); err != nil {
		connection.Close()
		return fmt.Errorf("failed to confirm subscription to channel=(%s): %w", b.channel, err)
	}

	b.connection = connection
	b.subscription = subscription
	b.state.Transition(broker.Subscribed)
	b.logger.Infof("subscribed to nats servers=(%s)", connection.ConnectedUrlRedacted())
	return nil
}

func (b *Broker) onDisconnected(_ *nats.Conn, err error) {
	if _, ok := b.state.Transition(broker.Reconnecting); !ok {
		return
	}

	if err != nil {
		b.logger.Warnf("nats connection lost, reconnecting: %v", err)
		return
	}
	b.logger.Warn("nats connection lost, reconnecting")
}

func (b *Broker) onReconnected(conn *nats.Conn) {
	if _, ok := b.state.Transition(broker.Subscribed); ok {
		b.logger.Infof("nats connection restored to %s", conn.ConnectedUrlRedacted())
	}
}

func (b *Broker) onClosed(_ *nats.Conn) {
	// a connection closed by the client itself is already in the Closed state
	if b.state.Close() {
		b.logger.Error("nats connection closed after exhausting reconnections")
	}
}
