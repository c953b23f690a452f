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

// Package workerpool runs fire-and-forget tasks on a sharded set of
// reusable goroutines and can wait for the tasks in flight on shutdown.
package workerpool

import (
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Maximum number of shards supported by the worker pool
	maxShards = 128

	// idleThreshold is the number of idle workers a shard keeps before
	// the cleanup starts passivating the oldest ones
	idleThreshold = 400

	workerStateIdle    int32 = 0
	workerStateWorking int32 = 1
	workerStateClosed  int32 = 2
)

// ErrStopped is returned when submitting to a pool that is not running
var ErrStopped = errors.New("worker pool is not running")

// WorkerPool manages a pool of workers across multiple shards.
//
// Submissions hold the pool read lock for the whole hand-off, so once Stop
// returns no new task can start and Wait observes every submitted task.
type WorkerPool struct {
	passivateAfter time.Duration
	numShards      int
	shards         []*poolShard
	mutex          sync.RWMutex
	started        atomic.Bool
	stopped        atomic.Bool
	spawnedWorkers atomic.Int64
	inflight       sync.WaitGroup
	done           chan struct{}
}

// Worker is a goroutine that executes submitted tasks.
type Worker struct {
	workChan  chan func()
	shard     *poolShard
	lastUsed  atomic.Int64
	isDeleted atomic.Bool
	state     atomic.Int32
}

// poolShard is a subdivision of the pool that owns a subset of the workers
type poolShard struct {
	wp          *WorkerPool
	workers     sync.Pool
	idleWorkers []*Worker
	idleWorker1 atomic.Pointer[Worker]
	idleWorker2 atomic.Pointer[Worker]
	mu          sync.Mutex
	stopped     atomic.Bool
}

func (worker *Worker) doWork() {
	shard := worker.shard
	wp := shard.wp
	wp.spawnedWorkers.Add(1)

	for work := range worker.workChan {
		work()

		worker.state.Store(workerStateIdle)
		if !shard.setWorkerIdle(worker) {
			break
		}
	}

	wp.spawnedWorkers.Add(-1)
	shard.workers.Put(worker)
}

// New creates a new worker pool with the given options.
func New(opts ...Option) *WorkerPool {
	wp := &WorkerPool{
		passivateAfter: time.Second,
		numShards:      1,
		done:           make(chan struct{}),
	}

	for _, opt := range opts {
		opt.Apply(wp)
	}

	wp.numShards = max(1, min(wp.numShards, maxShards))
	return wp
}

// GetSpawnedWorkers returns the current count of live workers.
func (wp *WorkerPool) GetSpawnedWorkers() int {
	return int(wp.spawnedWorkers.Load())
}

// Start initializes the worker pool and begins the cleanup routine.
// It's safe to call Start multiple times.
func (wp *WorkerPool) Start() {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if wp.started.Load() || wp.stopped.Load() {
		return
	}

	wp.shards = make([]*poolShard, wp.numShards)
	for i := range wp.numShards {
		wp.shards[i] = &poolShard{
			wp: wp,
			workers: sync.Pool{
				New: func() any {
					return new(Worker)
				},
			},
			idleWorkers: make([]*Worker, 0, 64),
		}
	}

	wp.started.Store(true)
	go wp.cleanup()
}

// Stop prevents new submissions and releases the idle workers.
// Tasks already running are left to complete; use Wait to block on them.
func (wp *WorkerPool) Stop() {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if !wp.started.Load() || wp.stopped.Swap(true) {
		return
	}

	close(wp.done)
	for _, shard := range wp.shards {
		shard.mu.Lock()
		shard.stopped.Store(true)

		for j, worker := range shard.idleWorkers {
			worker.close()
			shard.idleWorkers[j] = nil
		}
		shard.idleWorkers = shard.idleWorkers[:0]

		if w1 := shard.idleWorker1.Swap(nil); w1 != nil {
			w1.close()
		}

		if w2 := shard.idleWorker2.Swap(nil); w2 != nil {
			w2.close()
		}

		shard.mu.Unlock()
	}
}

// Wait blocks until every submitted task has returned or the timeout
// elapses. It reports whether all the tasks completed. Wait is meant to be
// called after Stop.
func (wp *WorkerPool) Wait(timeout time.Duration) bool {
	completed := make(chan struct{})
	go func() {
		wp.inflight.Wait()
		close(completed)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-completed:
		return true
	case <-timer.C:
		return false
	}
}

// SubmitWork hands a task to an available worker.
// It returns ErrStopped when the pool has not been started or has been stopped.
func (wp *WorkerPool) SubmitWork(task func()) error {
	wp.mutex.RLock()
	defer wp.mutex.RUnlock()

	if !wp.started.Load() || wp.stopped.Load() {
		return ErrStopped
	}

	wp.inflight.Add(1)
	shard := wp.shards[rand.Uint32()%uint32(wp.numShards)]
	shard.acquireWorker(func() {
		defer wp.inflight.Done()
		task()
	})
	return nil
}

// acquireWorker gets an idle worker, or spawns one, and gives it the task.
func (shard *poolShard) acquireWorker(task func()) {
	for _, slot := range []*atomic.Pointer[Worker]{&shard.idleWorker1, &shard.idleWorker2} {
		if w := slot.Swap(nil); w != nil {
			if !w.isDeleted.Load() && w.state.CompareAndSwap(workerStateIdle, workerStateWorking) {
				w.workChan <- task
				return
			}
			if !w.isDeleted.Load() {
				shard.setWorkerIdle(w)
			}
		}
	}

	shard.mu.Lock()
	for length := len(shard.idleWorkers); length > 0; length = len(shard.idleWorkers) {
		worker := shard.idleWorkers[length-1]
		shard.idleWorkers[length-1] = nil
		shard.idleWorkers = shard.idleWorkers[:length-1]

		if !worker.isDeleted.Load() && worker.state.CompareAndSwap(workerStateIdle, workerStateWorking) {
			shard.mu.Unlock()
			worker.workChan <- task
			return
		}
	}
	shard.mu.Unlock()

	// a recycled worker may carry the channel closed by a previous stop or cleanup
	worker := shard.workers.Get().(*Worker)
	worker.shard = shard
	worker.workChan = make(chan func())
	worker.state.Store(workerStateWorking)
	worker.isDeleted.Store(false)
	go worker.doWork()

	worker.workChan <- task
}

// setWorkerIdle makes a worker available for future tasks.
// It returns false when the shard has been stopped.
func (shard *poolShard) setWorkerIdle(worker *Worker) bool {
	worker.lastUsed.Store(time.Now().UnixNano())

	if shard.stopped.Load() {
		return false
	}

	if parked, ok := shard.park(worker); parked {
		return ok
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if shard.stopped.Load() {
		return false
	}

	shard.idleWorkers = append(shard.idleWorkers, worker)
	return true
}

// park places the worker in one of the lock-free idle slots. parked is false
// when both slots are taken. Stop may have emptied the slots between the
// caller's stopped check and the CAS, so a parked worker is taken back out
// when the shard is stopped; if Stop got to it first it closes the worker.
func (shard *poolShard) park(worker *Worker) (parked, ok bool) {
	for _, slot := range []*atomic.Pointer[Worker]{&shard.idleWorker1, &shard.idleWorker2} {
		if !slot.CompareAndSwap(nil, worker) {
			continue
		}

		if shard.stopped.Load() && slot.CompareAndSwap(worker, nil) {
			return true, false
		}
		return true, true
	}
	return false, false
}

func (worker *Worker) close() {
	if !worker.isDeleted.Swap(true) {
		worker.state.Store(workerStateClosed)
		close(worker.workChan)
	}
}

// cleanup periodically passivates the idle workers that have not been used
// for longer than passivateAfter.
func (wp *WorkerPool) cleanup() {
	ticker := time.NewTicker(wp.passivateAfter)
	defer ticker.Stop()

	var workers []*Worker
	for {
		select {
		case <-wp.done:
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-wp.passivateAfter).UnixNano()
		for _, shard := range wp.shards {
			shard.mu.Lock()
			if shard.stopped.Load() || len(shard.idleWorkers) <= idleThreshold {
				shard.mu.Unlock()
				continue
			}

			// idle workers are appended in lastUsed order, oldest first
			pos := 0
			for pos < len(shard.idleWorkers) && shard.idleWorkers[pos].lastUsed.Load() < cutoff {
				pos++
			}

			workers = append(workers[:0], shard.idleWorkers[:pos]...)
			remaining := copy(shard.idleWorkers, shard.idleWorkers[pos:])
			clear(shard.idleWorkers[remaining:])
			shard.idleWorkers = shard.idleWorkers[:remaining]
			shard.mu.Unlock()

			for j, worker := range workers {
				worker.close()
				workers[j] = nil
			}
		}
	}
}
