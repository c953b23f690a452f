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

package packet

import (
	"github.com/google/uuid"

	"github.com/tochemey/gomsg/codec"
)

// Packet is a message that can travel between services.
//
// Write and Read must be exact inverses for a given concrete type: whatever
// Write appends, Read must consume, field by field and in the same order.
type Packet interface {
	// Write encodes the packet payload into the buffer
	Write(buf *codec.Buffer) error
	// Read decodes the packet payload from the buffer
	Read(buf *codec.Buffer) error
}

// Factory creates a new, empty packet ready to be filled by Read.
type Factory func() Packet

// SenderAware is implemented by packets that want to know which service
// instance sent them. Embedding Base is the simplest way to implement it.
type SenderAware interface {
	Sender() uuid.UUID
	SetSender(id uuid.UUID)
}

// Base can be embedded in a packet to record its sender.
// The sender is not part of the payload; it is taken from the frame header.
type Base struct {
	sender uuid.UUID
}

var _ SenderAware = (*Base)(nil)

// Sender returns the id of the service instance that sent the packet,
// or uuid.Nil for a packet that has not been received.
func (b *Base) Sender() uuid.UUID {
	return b.sender
}

// SetSender sets the packet sender
func (b *Base) SetSender(id uuid.UUID) {
	b.sender = id
}
