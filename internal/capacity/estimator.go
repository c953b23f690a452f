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

// Package capacity recommends an initial buffer capacity from the sizes of
// recently built frames.
package capacity

import (
	"math"
	"slices"
	"sync"
)

const (
	// DefaultWindow is the number of samples a recommendation is computed from
	DefaultWindow = 150
	// DefaultPercentile is the percentile of the window that is recommended
	DefaultPercentile = 80
	// DefaultInitial is the recommendation before the first full window
	DefaultInitial = 2048
)

// Estimator keeps a window of observed sizes and recommends the configured
// percentile of the last full window.
//
// The ring and the recommendation have their own locks so that readers
// never wait on a recompute.
type Estimator struct {
	window     int
	percentile float64

	ringMu  sync.Mutex
	samples []int
	next    int

	mu          sync.RWMutex
	recommended int
}

// Option configures an Estimator
type Option interface {
	Apply(*Estimator)
}

// OptionFunc implements Option
type OptionFunc func(*Estimator)

// Apply applies the option
func (f OptionFunc) Apply(e *Estimator) {
	f(e)
}

// WithWindow sets the number of samples per recompute
func WithWindow(size int) Option {
	return OptionFunc(func(e *Estimator) {
		if size > 0 {
			e.window = size
		}
	})
}

// WithPercentile sets the recommended percentile, between 1 and 100
func WithPercentile(percentile float64) Option {
	return OptionFunc(func(e *Estimator) {
		if percentile > 0 && percentile <= 100 {
			e.percentile = percentile
		}
	})
}

// WithInitial sets the recommendation used until the first window is full
func WithInitial(size int) Option {
	return OptionFunc(func(e *Estimator) {
		if size > 0 {
			e.recommended = size
		}
	})
}

// New creates an Estimator
func New(opts ...Option) *Estimator {
	e := &Estimator{
		window:      DefaultWindow,
		percentile:  DefaultPercentile,
		recommended: DefaultInitial,
	}

	for _, opt := range opts {
		opt.Apply(e)
	}

	e.samples = make([]int, e.window)
	return e
}

// Recommended returns the current recommendation
func (e *Estimator) Recommended() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recommended
}

// Record adds an observed size. Non-positive sizes are ignored.
func (e *Estimator) Record(size int) {
	if size <= 0 {
		return
	}

	e.ringMu.Lock()
	e.samples[e.next] = size
	e.next++
	if e.next < e.window {
		e.ringMu.Unlock()
		return
	}

	window := slices.Clone(e.samples)
	e.next = 0
	e.ringMu.Unlock()

	value := percentileOf(window, e.percentile)

	e.mu.Lock()
	e.recommended = value
	e.mu.Unlock()
}

// percentileOf returns the nearest-rank percentile of values. values is sorted in place.
func percentileOf(values []int, percentile float64) int {
	slices.Sort(values)
	rank := int(math.Ceil(percentile/100*float64(len(values)))) - 1
	rank = max(0, min(rank, len(values)-1))
	return values[rank]
}
