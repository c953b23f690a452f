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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MessagingMetric defines the messaging service instrumentation
type MessagingMetric struct {
	// Specifies the total number of frames published
	sentCount metric.Int64Counter
	// Specifies the total number of frames that could not be built or published
	sendFailureCount metric.Int64Counter
	// Specifies the total number of packets delivered to the listeners
	receivedCount metric.Int64Counter
	// Specifies the total number of received frames that were dropped
	droppedCount metric.Int64Counter
	// Specifies the size of the frames published, in bytes
	frameSize metric.Int64Histogram

	attributes metric.MeasurementOption
}

// NewMessagingMetric creates an instance of MessagingMetric for the given channel
func NewMessagingMetric(meter metric.Meter, channel string) (*MessagingMetric, error) {
	messagingMetric := &MessagingMetric{
		attributes: metric.WithAttributeSet(attribute.NewSet(attribute.String("channel", channel))),
	}

	var err error
	if messagingMetric.sentCount, err = meter.Int64Counter(
		"messaging_sent_count",
		metric.WithDescription("Total number of frames published"),
	); err != nil {
		return nil, fmt.Errorf("failed to create sentCount instrument, %w", err)
	}

	if messagingMetric.sendFailureCount, err = meter.Int64Counter(
		"messaging_send_failure_count",
		metric.WithDescription("Total number of frames that failed to be built or published"),
	); err != nil {
		return nil, fmt.Errorf("failed to create sendFailureCount instrument, %w", err)
	}

	if messagingMetric.receivedCount, err = meter.Int64Counter(
		"messaging_received_count",
		metric.WithDescription("Total number of packets dispatched to the listeners"),
	); err != nil {
		return nil, fmt.Errorf("failed to create receivedCount instrument, %w", err)
	}

	if messagingMetric.droppedCount, err = meter.Int64Counter(
		"messaging_dropped_count",
		metric.WithDescription("Total number of received frames dropped"),
	); err != nil {
		return nil, fmt.Errorf("failed to create droppedCount instrument, %w", err)
	}

	if messagingMetric.frameSize, err = meter.Int64Histogram(
		"messaging_frame_size",
		metric.WithDescription("The size of the frames published"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create frameSize instrument, %w", err)
	}

	return messagingMetric, nil
}

// RecordSent records a published frame of the given size
func (x *MessagingMetric) RecordSent(ctx context.Context, size int) {
	x.sentCount.Add(ctx, 1, x.attributes)
	x.frameSize.Record(ctx, int64(size), x.attributes)
}

// RecordSendFailure records a frame that was not published
func (x *MessagingMetric) RecordSendFailure(ctx context.Context) {
	x.sendFailureCount.Add(ctx, 1, x.attributes)
}

// RecordReceived records a packet dispatched to the listeners
func (x *MessagingMetric) RecordReceived(ctx context.Context) {
	x.receivedCount.Add(ctx, 1, x.attributes)
}

// RecordDropped records a received frame that was dropped
func (x *MessagingMetric) RecordDropped(ctx context.Context, reason string) {
	x.droppedCount.Add(ctx, 1, x.attributes, metric.WithAttributes(attribute.String("reason", reason)))
}
