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

package workerpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	t.Run("With happy path", func(t *testing.T) {
		pool := New(WithNumShards(256), WithPassivateAfter(time.Millisecond))
		require.NotNil(t, pool)
		require.Equal(t, maxShards, pool.numShards)

		pool.Start()
		require.Zero(t, pool.GetSpawnedWorkers())

		workCount := 1000
		var executedCount atomic.Int64
		for range workCount {
			require.NoError(t, pool.SubmitWork(func() {
				time.Sleep(time.Millisecond)
				executedCount.Add(1)
			}))
		}

		require.NotZero(t, pool.GetSpawnedWorkers())

		pool.Stop()
		require.True(t, pool.Wait(5*time.Second))
		assert.EqualValues(t, workCount, executedCount.Load())

		// already stopped
		pool.Stop()
		pool.Stop()
	})
	t.Run("When not started", func(t *testing.T) {
		pool := New()
		require.NotNil(t, pool)
		require.False(t, pool.started.Load())
		require.ErrorIs(t, pool.SubmitWork(func() {}), ErrStopped)
		pool.Stop()
		require.False(t, pool.stopped.Load())
	})
	t.Run("When stopped", func(t *testing.T) {
		pool := New()
		pool.Start()
		pool.Stop()
		require.ErrorIs(t, pool.SubmitWork(func() {}), ErrStopped)
		require.True(t, pool.Wait(time.Second))

		// a stopped pool cannot be restarted
		pool.Start()
		require.ErrorIs(t, pool.SubmitWork(func() {}), ErrStopped)
	})
	t.Run("With wait timeout", func(t *testing.T) {
		pool := New()
		pool.Start()

		release := make(chan struct{})
		require.NoError(t, pool.SubmitWork(func() { <-release }))

		pool.Stop()
		require.False(t, pool.Wait(50*time.Millisecond))

		close(release)
		require.True(t, pool.Wait(time.Second))
	})
	t.Run("With workers reused", func(t *testing.T) {
		pool := New(WithNumShards(1))
		pool.Start()

		for range 100 {
			done := make(chan struct{})
			require.NoError(t, pool.SubmitWork(func() { close(done) }))
			<-done
		}

		assert.NotZero(t, pool.GetSpawnedWorkers())
		pool.Stop()
		require.True(t, pool.Wait(time.Second))
		require.Eventually(t, func() bool { return pool.GetSpawnedWorkers() == 0 }, time.Second, 10*time.Millisecond)
	})
	t.Run("With worker parked after stop", func(t *testing.T) {
		pool := New(WithNumShards(1))
		pool.Start()
		shard := pool.shards[0]

		worker := &Worker{shard: shard, workChan: make(chan func())}
		// the worker passed the stopped check before Stop emptied the slots
		pool.Stop()

		parked, ok := shard.park(worker)
		assert.True(t, parked)
		assert.False(t, ok)
		assert.Nil(t, shard.idleWorker1.Load())
		assert.Nil(t, shard.idleWorker2.Load())
		assert.False(t, shard.setWorkerIdle(worker))
	})
	t.Run("With stop racing idle workers", func(t *testing.T) {
		for range 200 {
			pool := New(WithNumShards(2))
			pool.Start()

			for range 16 {
				_ = pool.SubmitWork(func() {})
			}

			pool.Stop()
			require.True(t, pool.Wait(time.Second))
			require.Eventually(t, func() bool { return pool.GetSpawnedWorkers() == 0 }, time.Second, time.Millisecond)
		}
	})
}
