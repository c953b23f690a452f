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

package messaging

import (
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/gomsg/compression"
	"github.com/tochemey/gomsg/internal/capacity"
	"github.com/tochemey/gomsg/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a Service.
	Apply(s *Service)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(s *Service)

// Apply applies the option
func (f OptionFunc) Apply(s *Service) {
	f(s)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// WithCompression sets the strategy applied to every frame.
// Every service sharing a channel must use the same strategy.
func WithCompression(strategy compression.Compression) Option {
	return OptionFunc(func(s *Service) {
		if strategy != nil {
			s.compression = strategy
		}
	})
}

// WithDiscardSelf drops the frames this service instance published itself
// instead of delivering them to its own listeners
func WithDiscardSelf(discard bool) Option {
	return OptionFunc(func(s *Service) {
		s.discardSelf = discard
	})
}

// WithShutdownTimeout sets how long Close waits for the in-flight sends
// before aborting them
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(s *Service) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	})
}

// WithWorkerShards sets the number of shards of the asynchronous send pool
func WithWorkerShards(shards int) Option {
	return OptionFunc(func(s *Service) {
		if shards > 0 {
			s.workerShards = shards
		}
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider.
// The global provider is used by default.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(s *Service) {
		s.meterProvider = provider
	})
}

// WithFrameSizing tunes how frame buffers are sized: the recommended
// capacity is the percentile of the last window frame sizes, starting from
// initial. Values out of range keep their defaults (150, 80 and 2048 bytes).
func WithFrameSizing(window int, percentile float64, initial int) Option {
	return OptionFunc(func(s *Service) {
		s.estimator = capacity.New(
			capacity.WithWindow(window),
			capacity.WithPercentile(percentile),
			capacity.WithInitial(initial))
	})
}
