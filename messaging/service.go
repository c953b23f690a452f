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

// Package messaging lets service instances exchange typed packets over a
// shared pub/sub channel.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/tochemey/gomsg/broker"
	"github.com/tochemey/gomsg/codec"
	"github.com/tochemey/gomsg/compression"
	gerrors "github.com/tochemey/gomsg/errors"
	"github.com/tochemey/gomsg/internal/bufferpool"
	"github.com/tochemey/gomsg/internal/capacity"
	imetric "github.com/tochemey/gomsg/internal/metric"
	"github.com/tochemey/gomsg/internal/validation"
	"github.com/tochemey/gomsg/internal/workerpool"
	"github.com/tochemey/gomsg/log"
	"github.com/tochemey/gomsg/packet"
)

const (
	// DefaultShutdownTimeout is how long Close waits for the in-flight sends
	DefaultShutdownTimeout = 3 * time.Second

	dropMalformed = "malformed"
	dropUnknown   = "unknown_packet"
	dropUndecoded = "undecodable"
	dropSelf      = "self"
)

// Service publishes packets on the channel named after the service and
// delivers the packets received on it to the registered listeners.
//
// A frame is [sender uuid][wire id][payload], compressed as a whole.
// Every instance gets a random server id at creation.
type Service struct {
	id       uuid.UUID
	name     string
	channel  string
	registry *packet.Registry
	broker   broker.Broker

	compression     compression.Compression
	discardSelf     bool
	shutdownTimeout time.Duration
	workerShards    int
	meterProvider   metric.MeterProvider

	estimator *capacity.Estimator
	buffers   *bufferpool.BufferPool
	pool      *workerpool.WorkerPool
	listeners mapset.Set[Listener]
	metrics   *imetric.MessagingMetric

	ctx    context.Context
	cancel context.CancelFunc

	// sends hold the read lock while they check the closed flag and
	// register themselves, Close holds the write lock
	shutdownLock sync.RWMutex
	syncSends    sync.WaitGroup
	closed       *atomic.Bool
	closeOnce    sync.Once
	closeErr     error

	logger log.Logger
}

// New creates a Service named name and connects it to its channel through dialer.
// Packets are encoded and decoded with registry, which can keep changing after New.
func New(name string, registry *packet.Registry, dialer broker.Dialer, opts ...Option) (*Service, error) {
	channel := broker.NormalizeChannel(name)
	if err := validation.New(validation.FailFast()).
		AddAssertion(strings.TrimSpace(name) != "", "service name is required").
		AddAssertion(registry != nil, "packet registry is required").
		AddAssertion(dialer != nil, "broker dialer is required").
		AddValidator(validation.NewChannelValidator(channel)).
		Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		id:              uuid.New(),
		name:            name,
		channel:         channel,
		registry:        registry,
		compression:     compression.NoCompression{},
		shutdownTimeout: DefaultShutdownTimeout,
		workerShards:    1,
		buffers:         bufferpool.Pool,
		listeners:       mapset.NewSet[Listener](),
		closed:          atomic.NewBool(false),
		logger:          log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(s)
	}

	if s.estimator == nil {
		s.estimator = capacity.New()
	}

	s.logger = s.logger.With("service", name, "server_id", s.id.String())

	metrics, err := imetric.NewMessagingMetric(imetric.New(imetric.WithMeterProvider(s.meterProvider)).Meter(), channel)
	if err != nil {
		return nil, err
	}
	s.metrics = metrics

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.pool = workerpool.New(workerpool.WithNumShards(s.workerShards))
	s.pool.Start()

	b, err := dialer(channel, s.handle)
	if err != nil {
		s.pool.Stop()
		s.cancel()
		return nil, fmt.Errorf("failed to connect messaging service=(%s): %w", name, err)
	}
	s.broker = b

	s.logger.Infof("messaging service started on channel=(%s)", channel)
	return s, nil
}

// ServerID returns the random id of this service instance
func (s *Service) ServerID() uuid.UUID {
	return s.id
}

// Name returns the service name
func (s *Service) Name() string {
	return s.name
}

// Channel returns the pub/sub channel the service publishes on
func (s *Service) Channel() string {
	return s.channel
}

// Registry returns the packet registry
func (s *Service) Registry() *packet.Registry {
	return s.registry
}

// Send publishes pkt in the background. Only the checks that need no I/O are
// reported: an unregistered packet type, a done ctx or a closed service.
// ctx gates the submission only; once accepted the publish is bound to the
// service lifetime. Encoding and transport failures are logged.
func (s *Service) Send(ctx context.Context, pkt packet.Packet) error {
	id, err := s.wireID(pkt)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.shutdownLock.RLock()
	defer s.shutdownLock.RUnlock()

	if s.closed.Load() {
		return gerrors.ErrServiceClosed
	}

	if err := s.pool.SubmitWork(func() {
		if err := s.publish(s.ctx, id, pkt); err != nil {
			s.logger.Errorf("failed to send packet=(%s): %v", id, err)
		}
	}); err != nil {
		return gerrors.ErrServiceClosed
	}
	return nil
}

// SendSync publishes pkt on the calling goroutine and returns any failure,
// the transport one included. ctx bounds the publish; Close aborts it once
// the shutdown timeout has elapsed.
func (s *Service) SendSync(ctx context.Context, pkt packet.Packet) error {
	id, err := s.wireID(pkt)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.shutdownLock.RLock()
	if s.closed.Load() {
		s.shutdownLock.RUnlock()
		return gerrors.ErrServiceClosed
	}
	s.syncSends.Add(1)
	s.shutdownLock.RUnlock()
	defer s.syncSends.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	return s.publish(ctx, id, pkt)
}

// RegisterListener adds a listener. Registering the same listener twice has no effect.
func (s *Service) RegisterListener(listener Listener) error {
	if listener == nil || !reflect.TypeOf(listener).Comparable() {
		return gerrors.ErrInvalidListener
	}
	s.listeners.Add(listener)
	return nil
}

// UnregisterListener removes a listener. Removing an absent listener has no effect.
func (s *Service) UnregisterListener(listener Listener) {
	if listener == nil || !reflect.TypeOf(listener).Comparable() {
		return
	}
	s.listeners.Remove(listener)
}

// Close stops the service. Sends issued after Close starts fail with
// ErrServiceClosed; in-flight sends get the shutdown timeout to complete
// before they are aborted. Only the first call does anything.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.shutdown()
	})
	return s.closeErr
}

func (s *Service) shutdown() error {
	s.logger.Info("stopping messaging service")
	s.closed.Store(true)
	s.pool.Stop()

	s.shutdownLock.Lock()
	defer s.shutdownLock.Unlock()

	if !s.drain(s.shutdownTimeout) {
		s.logger.Warnf("in-flight sends did not complete within %s, aborting them", s.shutdownTimeout)
	}

	s.cancel()
	if !s.drain(s.shutdownTimeout) {
		s.logger.Error("aborted sends are still running")
	}

	if err := s.broker.Close(); err != nil {
		s.logger.Errorf("failed to close broker: %v", err)
		return err
	}

	s.logger.Info("messaging service stopped")
	return nil
}

// drain waits for the asynchronous and the synchronous sends to complete
func (s *Service) drain(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	if !s.pool.Wait(timeout) {
		return false
	}

	done := make(chan struct{})
	go func() {
		s.syncSends.Wait()
		close(done)
	}()

	timer := time.NewTimer(max(0, time.Until(deadline)))
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (s *Service) wireID(pkt packet.Packet) (string, error) {
	if pkt == nil {
		return "", gerrors.NewErrUnregisteredPacket("<nil>")
	}

	id, ok := s.registry.ID(pkt)
	if !ok {
		return "", gerrors.NewErrUnregisteredPacket(reflect.TypeOf(pkt).String())
	}
	return id, nil
}

// publish builds the frame of pkt and hands it to the broker.
// The frame buffer always goes back to the pool.
func (s *Service) publish(ctx context.Context, id string, pkt packet.Packet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.NewPanicError(fmt.Errorf("%v", r))
		}

		if err != nil {
			s.metrics.RecordSendFailure(s.ctx)
		}
	}()

	buf := s.buffers.Get(s.estimator.Recommended())
	defer s.buffers.Put(buf)

	buf.WriteUUID(s.id)
	buf.WriteString(id)
	if err := pkt.Write(buf); err != nil {
		return fmt.Errorf("failed to encode packet=(%s): %w", id, err)
	}
	s.estimator.Record(buf.Written())

	frame, err := s.compression.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to compress packet=(%s): %w", id, err)
	}

	if err := s.broker.Publish(ctx, frame); err != nil {
		if errors.Is(err, broker.ErrClosed) {
			return gerrors.ErrServiceClosed
		}
		return err
	}

	s.metrics.RecordSent(s.ctx, len(frame))
	return nil
}

// handle decodes a frame received from the broker and dispatches its packet.
// Frames that cannot be decoded are dropped.
func (s *Service) handle(payload []byte) {
	frame, err := s.compression.Decompress(payload)
	if err != nil {
		s.drop(dropMalformed, "dropping undecompressable frame: %v", err)
		return
	}

	buf := codec.Wrap(frame)
	sender, err := buf.ReadUUID()
	if err != nil {
		s.drop(dropMalformed, "dropping frame without sender: %v", err)
		return
	}

	if s.discardSelf && sender == s.id {
		s.metrics.RecordDropped(s.ctx, dropSelf)
		return
	}

	id, err := buf.ReadString()
	if err != nil {
		s.drop(dropMalformed, "dropping frame without packet id: %v", err)
		return
	}

	pkt, known, err := s.registry.Decode(id, buf)
	if !known {
		s.drop(dropUnknown, "dropping unknown packet=(%s) from=(%s)", id, sender)
		return
	}

	if err != nil {
		s.drop(dropUndecoded, "dropping packet=(%s) from=(%s): %v", id, sender, err)
		return
	}

	if aware, ok := pkt.(packet.SenderAware); ok {
		aware.SetSender(sender)
	}

	s.metrics.RecordReceived(s.ctx)
	s.dispatch(contextWithSender(s.ctx, sender), pkt)
}

func (s *Service) drop(reason, format string, args ...any) {
	s.metrics.RecordDropped(s.ctx, reason)
	s.logger.Warnf(format, args...)
}

// dispatch hands pkt to every listener. A panicking listener does not
// prevent the others from being notified.
func (s *Service) dispatch(ctx context.Context, pkt packet.Packet) {
	for _, listener := range s.listeners.ToSlice() {
		s.notify(ctx, listener, pkt)
	}
}

func (s *Service) notify(ctx context.Context, listener Listener, pkt packet.Packet) {
	defer func() {
		if r := recover(); r != nil {
			err := gerrors.NewPanicError(fmt.Errorf("%v", r))
			s.logger.Errorf("listener %T failed on packet %T: %v", listener, pkt, err)
		}
	}()
	listener.OnPacket(ctx, pkt)
}
