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

package broker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeChannel(t *testing.T) {
	assert.Equal(t, "game_lobby", NormalizeChannel("  game lobby "))
	assert.Equal(t, "a__b", NormalizeChannel("a  b"))
	assert.Equal(t, "proxy", NormalizeChannel("proxy"))
	assert.Empty(t, NormalizeChannel("   "))
}

func TestSplitServers(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitServers("a,b , c"))
	assert.Equal(t, []string{"nats://127.0.0.1:4222"}, SplitServers("nats://127.0.0.1:4222,"))
	assert.Empty(t, SplitServers(" , "))
}

func TestStateMachine(t *testing.T) {
	t.Run("With transitions", func(t *testing.T) {
		machine := NewStateMachine()
		assert.Equal(t, Connecting, machine.Load())

		previous, ok := machine.Transition(Subscribed)
		require.True(t, ok)
		assert.Equal(t, Connecting, previous)

		previous, ok = machine.Transition(Reconnecting)
		require.True(t, ok)
		assert.Equal(t, Subscribed, previous)
		assert.Equal(t, "reconnecting", machine.Load().String())
	})
	t.Run("With closed being terminal", func(t *testing.T) {
		machine := NewStateMachine()
		require.True(t, machine.Close())
		require.False(t, machine.Close())

		_, ok := machine.Transition(Subscribed)
		require.False(t, ok)
		assert.Equal(t, Closed, machine.Load())
	})
	t.Run("With concurrent close", func(t *testing.T) {
		machine := NewStateMachine()
		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			closes int
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if machine.Close() {
					mu.Lock()
					closes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, closes)
	})
	t.Run("With unknown state", func(t *testing.T) {
		assert.Equal(t, "unknown", State(42).String())
	})
}
