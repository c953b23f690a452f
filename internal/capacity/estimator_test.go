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

package capacity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimator(t *testing.T) {
	t.Run("With initial recommendation", func(t *testing.T) {
		estimator := New()
		assert.Equal(t, DefaultInitial, estimator.Recommended())

		for range DefaultWindow - 1 {
			estimator.Record(10)
		}
		assert.Equal(t, DefaultInitial, estimator.Recommended())
	})
	t.Run("With outlier outside the percentile", func(t *testing.T) {
		estimator := New()
		for range DefaultWindow - 1 {
			estimator.Record(100)
		}
		estimator.Record(100_000)
		assert.Equal(t, 100, estimator.Recommended())
	})
	t.Run("With constant samples", func(t *testing.T) {
		estimator := New()
		for range DefaultWindow {
			estimator.Record(512)
		}
		assert.Equal(t, 512, estimator.Recommended())
	})
	t.Run("With a second window", func(t *testing.T) {
		estimator := New()
		for range DefaultWindow {
			estimator.Record(512)
		}
		for range DefaultWindow - 1 {
			estimator.Record(64)
		}
		// still the first window until the second one is full
		assert.Equal(t, 512, estimator.Recommended())
		estimator.Record(64)
		assert.Equal(t, 64, estimator.Recommended())
	})
	t.Run("With nearest rank", func(t *testing.T) {
		estimator := New(WithWindow(10), WithPercentile(80))
		for i := 10; i >= 1; i-- {
			estimator.Record(i)
		}
		// ceil(0.8*10)-1 = index 7 of 1..10
		assert.Equal(t, 8, estimator.Recommended())
	})
	t.Run("With ignored samples", func(t *testing.T) {
		estimator := New(WithWindow(2), WithInitial(7))
		estimator.Record(0)
		estimator.Record(-5)
		assert.Equal(t, 7, estimator.Recommended())
	})
	t.Run("With invalid options", func(t *testing.T) {
		estimator := New(WithWindow(0), WithPercentile(120), WithInitial(-1))
		assert.Equal(t, DefaultWindow, estimator.window)
		assert.EqualValues(t, DefaultPercentile, estimator.percentile)
		assert.Equal(t, DefaultInitial, estimator.Recommended())
	})
	t.Run("With concurrent records", func(t *testing.T) {
		estimator := New()
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range DefaultWindow {
					estimator.Record(256)
					_ = estimator.Recommended()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 256, estimator.Recommended())
	})
}
