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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrFraming is returned when a frame or one of its fields cannot be decoded:
	// bad varint, negative or oversized lengths, truncated input.
	ErrFraming = errors.New("malformed frame")

	// ErrDuplicateRegistration is returned when a packet type, or its wire id, is already registered.
	ErrDuplicateRegistration = errors.New("packet is already registered")

	// ErrPacketNotRegistered is returned when unregistering a packet type that is not registered.
	ErrPacketNotRegistered = errors.New("packet is not registered")

	// ErrUnregisteredPacket is returned when sending a packet whose type has no wire id.
	// The send is rejected before any I/O happens.
	ErrUnregisteredPacket = errors.New("cannot send unregistered packet")

	// ErrInvalidPacketFactory is returned when a packet factory is nil or produces a nil packet.
	ErrInvalidPacketFactory = errors.New("invalid packet factory")

	// ErrServiceClosed is returned when sending through a messaging service that is shutting down or closed.
	ErrServiceClosed = errors.New("messaging service is closed")

	// ErrBrokerClosed is returned when publishing on a broker that has been closed.
	ErrBrokerClosed = errors.New("broker is closed")

	// ErrUnknownCompression is returned when looking up a compression strategy that does not exist.
	ErrUnknownCompression = errors.New("unknown compression")

	// ErrInvalidListener is returned when registering a nil listener or one that cannot be compared.
	ErrInvalidListener = errors.New("invalid listener")
)

// NewErrDuplicateRegistration formats an ErrDuplicateRegistration with the given packet type and wire id.
func NewErrDuplicateRegistration(typeName, id string) error {
	return fmt.Errorf("packet=(%s) id=(%s) %w", typeName, id, ErrDuplicateRegistration)
}

// NewErrPacketNotRegistered formats an ErrPacketNotRegistered with the given packet type.
func NewErrPacketNotRegistered(typeName string) error {
	return fmt.Errorf("packet=(%s) %w", typeName, ErrPacketNotRegistered)
}

// NewErrUnregisteredPacket formats an ErrUnregisteredPacket with the given packet type.
func NewErrUnregisteredPacket(typeName string) error {
	return fmt.Errorf("packet=(%s) %w", typeName, ErrUnregisteredPacket)
}

// FramingError describes why a frame could not be decoded.
// It always matches ErrFraming with errors.Is.
type FramingError struct {
	reason string
}

// enforce compilation error
var _ error = (*FramingError)(nil)

// NewFramingError creates a FramingError with a formatted reason
func NewFramingError(format string, args ...any) *FramingError {
	return &FramingError{reason: fmt.Sprintf(format, args...)}
}

// Error implements the standard error interface
func (e *FramingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFraming.Error(), e.reason)
}

// Reason returns the decoding failure reason
func (e *FramingError) Reason() string {
	return e.reason
}

func (e *FramingError) Unwrap() error {
	return ErrFraming
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
