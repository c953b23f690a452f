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
	"context"

	"github.com/google/uuid"

	"github.com/tochemey/gomsg/packet"
)

// Listener is notified of every packet received by a Service.
//
// Listeners are kept in a set: they must be comparable, which in practice
// means a pointer type.
type Listener interface {
	// OnPacket handles a received packet. The context carries the sender id,
	// see SenderFromContext.
	OnPacket(ctx context.Context, pkt packet.Packet)
}

// typedListener only fires for packets of type T
type typedListener[T packet.Packet] struct {
	fn func(ctx context.Context, pkt T)
}

// Listen builds a Listener that calls fn for the packets of type T and
// ignores all the others. The returned value is the handle to unregister.
func Listen[T packet.Packet](fn func(ctx context.Context, pkt T)) Listener {
	return &typedListener[T]{fn: fn}
}

func (l *typedListener[T]) OnPacket(ctx context.Context, pkt packet.Packet) {
	if typed, ok := pkt.(T); ok {
		l.fn(ctx, typed)
	}
}

type senderKey struct{}

// SenderFromContext returns the id of the service instance that sent the
// packet being dispatched
func SenderFromContext(ctx context.Context) (uuid.UUID, bool) {
	sender, ok := ctx.Value(senderKey{}).(uuid.UUID)
	return sender, ok
}

func contextWithSender(ctx context.Context, sender uuid.UUID) context.Context {
	return context.WithValue(ctx, senderKey{}, sender)
}
