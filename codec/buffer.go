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

// Package codec implements the primitive wire encoding shared by every packet:
// varints, length-prefixed UTF-8 strings and byte arrays, 128-bit identifiers
// and arrays of integers or strings.
//
// A Buffer is a single cursor used both ways: writers append to its end and
// readers consume from its read offset. Reads are all-or-nothing; when a read
// fails with a framing error the read offset is left where it was.
package codec

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/google/uuid"

	gerrors "github.com/tochemey/gomsg/errors"
)

const (
	// DefaultMaxStringSize is the default maximum string length, in characters.
	DefaultMaxStringSize = 65536

	// maxVarIntGroups is the maximum number of 7-bit groups of a 32-bit varint.
	maxVarIntGroups = 5

	// uuidSize is the fixed width of an encoded UUID
	uuidSize = 16
)

// Buffer is a growable byte cursor.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer creates an empty Buffer able to hold capacity bytes before growing.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, 0, capacity)}
}

// Wrap creates a Buffer reading from data. The Buffer takes ownership of data.
func Wrap(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the unread portion of the buffer.
// The slice aliases the buffer content and is only valid until the next write or Reset.
func (b *Buffer) Bytes() []byte {
	return b.data[b.off:]
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.off
}

// Written returns the total number of bytes held by the buffer, read or not.
func (b *Buffer) Written() int {
	return len(b.data)
}

// Cap returns the capacity of the underlying storage.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Reset empties the buffer while keeping its storage.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.off = 0
}

// Grow makes sure at least n more bytes can be written without reallocation.
func (b *Buffer) Grow(n int) {
	if n <= 0 || cap(b.data)-len(b.data) >= n {
		return
	}
	grown := make([]byte, len(b.data), 2*cap(b.data)+n)
	copy(grown, b.data)
	b.data = grown
}

// Write appends p to the buffer. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	b.data = append(b.data, c)
	return nil
}

// WriteVarInt appends v using 7 bits per byte, least significant group first.
// Negative values are written as their two's-complement bit pattern.
func (b *Buffer) WriteVarInt(v int32) {
	b.data = AppendVarInt(b.data, v)
}

// ReadVarInt reads a varint written by WriteVarInt.
func (b *Buffer) ReadVarInt() (int32, error) {
	v, n, err := varInt(b.data[b.off:])
	if err != nil {
		return 0, err
	}
	b.off += n
	return v, nil
}

// WriteString appends the varint-prefixed UTF-8 bytes of s.
func (b *Buffer) WriteString(s string) {
	b.WriteVarInt(int32(len(s)))
	b.data = append(b.data, s...)
}

// ReadString reads a string of at most DefaultMaxStringSize characters.
func (b *Buffer) ReadString() (string, error) {
	return b.ReadStringCap(DefaultMaxStringSize)
}

// ReadStringCap reads a varint-prefixed UTF-8 string of at most maxChars characters.
func (b *Buffer) ReadStringCap(maxChars int) (string, error) {
	length, n, err := varInt(b.data[b.off:])
	if err != nil {
		return "", err
	}

	if length < 0 {
		return "", gerrors.NewFramingError("got a negative-length string (%d)", length)
	}

	// a UTF-8 character is at most 4 bytes long
	if int64(length) > int64(maxChars)*4 {
		return "", gerrors.NewFramingError("bad string size (got %d, maximum is %d)", length, maxChars)
	}

	start := b.off + n
	if int(length) > len(b.data)-start {
		return "", gerrors.NewFramingError("trying to read a string that is too long (wanted %d, only have %d)", length, len(b.data)-start)
	}

	raw := b.data[start : start+int(length)]
	if !utf8.Valid(raw) {
		return "", gerrors.NewFramingError("string is not valid UTF-8")
	}

	if chars := utf8.RuneCount(raw); chars > maxChars {
		return "", gerrors.NewFramingError("got a too-long string (got %d, max %d)", chars, maxChars)
	}

	b.off = start + int(length)
	return string(raw), nil
}

// WriteByteArray appends the varint-prefixed bytes of p.
func (b *Buffer) WriteByteArray(p []byte) {
	b.WriteVarInt(int32(len(p)))
	b.data = append(b.data, p...)
}

// ReadByteArray reads a byte array of at most DefaultMaxStringSize bytes.
func (b *Buffer) ReadByteArray() ([]byte, error) {
	return b.ReadByteArrayCap(DefaultMaxStringSize)
}

// ReadByteArrayCap reads a varint-prefixed byte array of at most maxBytes bytes.
// The returned slice is a copy.
func (b *Buffer) ReadByteArrayCap(maxBytes int) ([]byte, error) {
	length, n, err := varInt(b.data[b.off:])
	if err != nil {
		return nil, err
	}

	if length < 0 {
		return nil, gerrors.NewFramingError("got a negative-length array (%d)", length)
	}

	if int(length) > maxBytes {
		return nil, gerrors.NewFramingError("bad array size (got %d, maximum is %d)", length, maxBytes)
	}

	start := b.off + n
	if int(length) > len(b.data)-start {
		return nil, gerrors.NewFramingError("trying to read an array that is too long (wanted %d, only have %d)", length, len(b.data)-start)
	}

	out := make([]byte, length)
	copy(out, b.data[start:])
	b.off = start + int(length)
	return out, nil
}

// WriteUUID appends the 16 bytes of id: most significant half first, big-endian.
func (b *Buffer) WriteUUID(id uuid.UUID) {
	b.data = append(b.data, id[:]...)
}

// ReadUUID reads a UUID written by WriteUUID.
func (b *Buffer) ReadUUID() (uuid.UUID, error) {
	var id uuid.UUID
	if b.Len() < uuidSize {
		return id, gerrors.NewFramingError("trying to read a uuid (wanted %d, only have %d)", uuidSize, b.Len())
	}
	copy(id[:], b.data[b.off:b.off+uuidSize])
	b.off += uuidSize
	return id, nil
}

// WriteInt64 appends v as 8 big-endian bytes.
func (b *Buffer) WriteInt64(v int64) {
	b.data = binary.BigEndian.AppendUint64(b.data, uint64(v))
}

// ReadInt64 reads 8 big-endian bytes.
func (b *Buffer) ReadInt64() (int64, error) {
	if b.Len() < 8 {
		return 0, gerrors.NewFramingError("trying to read a long (wanted 8, only have %d)", b.Len())
	}
	v := binary.BigEndian.Uint64(b.data[b.off:])
	b.off += 8
	return int64(v), nil
}

// WriteBool appends a single 0x00/0x01 byte.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.data = append(b.data, 1)
		return
	}
	b.data = append(b.data, 0)
}

// ReadBool reads a byte written by WriteBool. Any non-zero byte is true.
func (b *Buffer) ReadBool() (bool, error) {
	if b.Len() < 1 {
		return false, gerrors.NewFramingError("trying to read a bool from an empty buffer")
	}
	v := b.data[b.off] != 0
	b.off++
	return v, nil
}

// WriteIntArray appends a varint element count followed by each element as a varint.
func (b *Buffer) WriteIntArray(values []int32) {
	b.WriteVarInt(int32(len(values)))
	for _, v := range values {
		b.WriteVarInt(v)
	}
}

// ReadIntArray reads an array written by WriteIntArray.
func (b *Buffer) ReadIntArray() ([]int32, error) {
	start := b.off
	count, err := b.readCount()
	if err != nil {
		return nil, err
	}

	values := make([]int32, count)
	for i := range values {
		if values[i], err = b.ReadVarInt(); err != nil {
			b.off = start
			return nil, err
		}
	}
	return values, nil
}

// WriteStringArray appends a varint element count followed by each string.
func (b *Buffer) WriteStringArray(values []string) {
	b.WriteVarInt(int32(len(values)))
	for _, v := range values {
		b.WriteString(v)
	}
}

// ReadStringArray reads an array written by WriteStringArray.
// Each element is limited to DefaultMaxStringSize characters.
func (b *Buffer) ReadStringArray() ([]string, error) {
	start := b.off
	count, err := b.readCount()
	if err != nil {
		return nil, err
	}

	values := make([]string, count)
	for i := range values {
		if values[i], err = b.ReadString(); err != nil {
			b.off = start
			return nil, err
		}
	}
	return values, nil
}

// readCount reads an array element count. Every element takes at least one
// byte, so a count larger than the remaining bytes is rejected before allocating.
func (b *Buffer) readCount() (int, error) {
	count, n, err := varInt(b.data[b.off:])
	if err != nil {
		return 0, err
	}

	if count < 0 {
		return 0, gerrors.NewFramingError("got a negative-length array (%d)", count)
	}

	if remaining := len(b.data) - b.off - n; int(count) > remaining {
		return 0, gerrors.NewFramingError("array count %d exceeds remaining %d bytes", count, remaining)
	}

	b.off += n
	return int(count), nil
}

// AppendVarInt appends the varint encoding of v to dst and returns the extended slice.
func AppendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for u&^0x7F != 0 {
		dst = append(dst, byte(u&0x7F|0x80))
		u >>= 7
	}
	return append(dst, byte(u))
}

// VarIntSize returns the number of bytes needed to encode v.
func VarIntSize(v int32) int {
	u := uint32(v)
	size := 1
	for u&^0x7F != 0 {
		size++
		u >>= 7
	}
	return size
}

// varInt decodes a varint at the start of p and returns the value and the number of bytes consumed.
func varInt(p []byte) (int32, int, error) {
	var result uint32
	for i := 0; i < maxVarIntGroups; i++ {
		if i >= len(p) {
			return 0, 0, gerrors.NewFramingError("bad varint decoded: buffer ended after %d bytes", i)
		}
		k := p[i]
		result |= uint32(k&0x7F) << (7 * i)
		if k&0x80 == 0 {
			return int32(result), i + 1, nil
		}
	}
	return 0, 0, gerrors.NewFramingError("bad varint decoded: more than %d groups", maxVarIntGroups)
}
