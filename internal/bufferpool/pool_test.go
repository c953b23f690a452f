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

package bufferpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPool(t *testing.T) {
	t.Run("With requested capacity", func(t *testing.T) {
		pool := New()
		buf := pool.Get(512)
		require.NotNil(t, buf)
		assert.GreaterOrEqual(t, buf.Cap(), 512)
		assert.Zero(t, buf.Len())
		assert.EqualValues(t, 1, pool.Outstanding())

		pool.Put(buf)
		assert.Zero(t, pool.Outstanding())
	})
	t.Run("With reused buffer reset", func(t *testing.T) {
		pool := New()
		buf := pool.Get(16)
		buf.WriteString("stale")
		pool.Put(buf)

		buf = pool.Get(16)
		assert.Zero(t, buf.Written())
		pool.Put(buf)
	})
	t.Run("With oversized buffer", func(t *testing.T) {
		pool := New()
		buf := pool.Get(maxRetained + 1)
		pool.Put(buf)
		assert.Zero(t, pool.Outstanding())
	})
	t.Run("With nil buffer", func(t *testing.T) {
		pool := New()
		pool.Put(nil)
		assert.Zero(t, pool.Outstanding())
	})
	t.Run("With concurrent use", func(t *testing.T) {
		pool := New()
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					buf := pool.Get(64)
					buf.WriteVarInt(42)
					pool.Put(buf)
				}
			}()
		}
		wg.Wait()
		assert.Zero(t, pool.Outstanding())
	})
}
