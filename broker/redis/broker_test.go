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
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/gomsg/broker"
	"github.com/tochemey/gomsg/log"
)

var redisAddr string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		_ = testcontainers.TerminateContainer(container)
		os.Exit(1)
	}

	redisAddr = endpoint

	code := m.Run()
	_ = testcontainers.TerminateContainer(container)
	os.Exit(code)
}

func newBroker(t *testing.T, channel string, handler broker.Handler) *Broker {
	t.Helper()
	b, err := NewBroker(&Config{Addr: redisAddr}, channel, handler, WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	return b
}

func TestBroker(t *testing.T) {
	t.Run("With publish and receive", func(t *testing.T) {
		received := make(chan []byte, 1)
		first := newBroker(t, "lobby", func(payload []byte) { received <- payload })
		assert.Equal(t, broker.Subscribed, first.State())

		seen := make(chan []byte, 1)
		second := newBroker(t, "lobby", func(payload []byte) { seen <- payload })

		require.NoError(t, second.Publish(context.Background(), []byte{0x00, 0xff, 'a'}))
		for _, ch := range []chan []byte{received, seen} {
			select {
			case payload := <-ch:
				assert.Equal(t, []byte{0x00, 0xff, 'a'}, payload)
			case <-time.After(2 * time.Second):
				t.Fatal("message not delivered")
			}
		}

		require.NoError(t, first.Close())
		require.NoError(t, second.Close())
	})
	t.Run("With channels isolated", func(t *testing.T) {
		received := make(chan []byte, 1)
		lobby := newBroker(t, "isolated-lobby", func(payload []byte) { received <- payload })
		game := newBroker(t, "isolated-game", func([]byte) {})

		require.NoError(t, game.Publish(context.Background(), []byte("not for lobby")))
		select {
		case <-received:
			t.Fatal("message delivered on another channel")
		case <-time.After(200 * time.Millisecond):
		}

		require.NoError(t, lobby.Close())
		require.NoError(t, game.Close())
	})
	t.Run("With close idempotent", func(t *testing.T) {
		b := newBroker(t, "closing", func([]byte) {})
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())
		assert.Equal(t, broker.Closed, b.State())
		require.ErrorIs(t, b.Publish(context.Background(), []byte("late")), broker.ErrClosed)
	})
	t.Run("With subscription restored", func(t *testing.T) {
		received := make(chan []byte, 1)
		b := newBroker(t, "restored", func(payload []byte) { received <- payload })

		// kill the subscription connection from the server side
		admin := goredis.NewClient(&goredis.Options{Addr: redisAddr})
		t.Cleanup(func() { _ = admin.Close() })
		require.NoError(t, admin.Do(context.Background(), "CLIENT", "KILL", "TYPE", "pubsub").Err())

		require.Eventually(t, func() bool {
			count, err := admin.PubSubNumSub(context.Background(), "restored").Result()
			return err == nil && count["restored"] == 1 && b.State() == broker.Subscribed
		}, 5*time.Second, 20*time.Millisecond)

		require.NoError(t, admin.Publish(context.Background(), "restored", "again").Err())
		select {
		case payload := <-received:
			assert.Equal(t, []byte("again"), payload)
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered after resubscription")
		}
		require.NoError(t, b.Close())
	})
	t.Run("With unreachable server", func(t *testing.T) {
		port := dynaport.Get(1)[0]
		config := &Config{
			Addr:        fmt.Sprintf("127.0.0.1:%d", port),
			DialTimeout: 200 * time.Millisecond,
		}
		b, err := NewBroker(config, "lobby", func([]byte) {}, WithLogger(log.DiscardLogger))
		require.Error(t, err)
		assert.Nil(t, b)
	})
	t.Run("With invalid settings", func(t *testing.T) {
		_, err := NewBroker(&Config{}, "lobby", func([]byte) {}, WithLogger(log.DiscardLogger))
		require.Error(t, err)

		_, err = NewBroker(&Config{Addr: redisAddr, DB: -1}, "lobby", func([]byte) {}, WithLogger(log.DiscardLogger))
		require.Error(t, err)

		_, err = NewBroker(&Config{Addr: redisAddr}, "lob by", func([]byte) {}, WithLogger(log.DiscardLogger))
		require.Error(t, err)

		_, err = NewBroker(&Config{Addr: redisAddr}, "lobby", nil, WithLogger(log.DiscardLogger))
		require.Error(t, err)
	})
}

func TestConfig(t *testing.T) {
	config := &Config{Addr: "127.0.0.1:6379", ReconnectBackoff: -time.Second}
	config.Sanitize()
	require.NoError(t, config.Validate())
	assert.Equal(t, DefaultDialTimeout, config.DialTimeout)
	assert.Equal(t, DefaultPoolSize, config.PoolSize)
	assert.Zero(t, config.ReconnectBackoff)
}
