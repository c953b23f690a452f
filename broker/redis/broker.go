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

// Package redis implements broker.Broker on top of Redis pub/sub.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tochemey/gomsg/broker"
	"github.com/tochemey/gomsg/internal/validation"
	"github.com/tochemey/gomsg/log"
)

// Broker publishes with a pooled client and receives on a dedicated
// subscription connection that is restored whenever it is lost.
type Broker struct {
	config  Config
	channel string
	handler broker.Handler

	client *redis.Client
	state  *broker.StateMachine

	mu     sync.Mutex
	pubsub *redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	logger log.Logger
}

// enforce compilation error
var _ broker.Broker = (*Broker)(nil)

// NewBroker connects to Redis and subscribes to channel. Every message received
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
		done:    make(chan struct{}),
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

	b.logger = b.logger.With("broker", "redis", "channel", channel)
	b.client = redis.NewClient(&redis.Options{
		Addr:        b.config.Addr,
		Username:    b.config.Username,
		Password:    b.config.Password,
		DB:          b.config.DB,
		DialTimeout: b.config.DialTimeout,
		PoolSize:    b.config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), b.config.DialTimeout)
	defer cancel()
	if err := b.client.Ping(ctx).Err(); err != nil {
		_ = b.client.Close()
		return nil, fmt.Errorf("failed to connect to redis addr=(%s): %w", b.config.Addr, err)
	}

	b.ctx, b.cancel = context.WithCancel(context.Background())
	subscribed := make(chan struct{})
	go b.subscribe(subscribed)

	// messages published before the subscription is confirmed would be lost
	select {
	case <-subscribed:
	case <-time.After(b.config.DialTimeout):
		_ = b.Close()
		return nil, fmt.Errorf("failed to subscribe to channel=(%s): confirmation timed out", channel)
	}
	return b, nil
}

// Dialer returns a broker.Dialer creating Redis brokers with the given config
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

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
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
	b.mu.Lock()
	if !b.state.Close() {
		b.mu.Unlock()
		return nil
	}
	pubsub := b.pubsub
	b.pubsub = nil
	b.mu.Unlock()

	b.cancel()
	// closing the subscription connection unblocks the pending read
	if pubsub != nil {
		_ = pubsub.Close()
	}
	<-b.done

	err := b.client.Close()
	b.logger.Debug("redis broker closed")
	return err
}

// subscribe runs until the broker is closed, restoring the subscription
// every time the connection is lost.
func (b *Broker) subscribe(subscribed chan<- struct{}) {
	defer close(b.done)

	var once sync.Once
	for {
		pubsub := b.client.Subscribe(b.ctx, b.channel)
		if !b.track(pubsub) {
			return
		}

		if _, err := pubsub.Receive(b.ctx); err == nil {
			if _, ok := b.state.Transition(broker.Subscribed); ok {
				once.Do(func() { close(subscribed) })
				b.receive(pubsub)
			}
		}

		_ = pubsub.Close()
		if b.state.Load() == broker.Closed {
			return
		}

		if previous, ok := b.state.Transition(broker.Reconnecting); ok && previous == broker.Subscribed {
			b.logger.Warn("redis pub/sub disconnected, reconnecting")
		}

		if !b.backoff() {
			return
		}
	}
}

// track records the current subscription so that Close can interrupt it.
// It returns false when the broker was closed in the meantime.
func (b *Broker) track(pubsub *redis.PubSub) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.Load() == broker.Closed {
		_ = pubsub.Close()
		return false
	}

	b.pubsub = pubsub
	return true
}

func (b *Broker) receive(pubsub *redis.PubSub) {
	for {
		msg, err := pubsub.ReceiveMessage(b.ctx)
		if err != nil {
			return
		}

		if msg.Channel != b.channel {
			continue
		}

		b.handler([]byte(msg.Payload))
	}
}

func (b *Broker) backoff() bool {
	if b.config.ReconnectBackoff <= 0 {
		return b.ctx.Err() == nil
	}

	timer := time.NewTimer(b.config.ReconnectBackoff)
	defer timer.Stop()

	select {
	case <-b.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
