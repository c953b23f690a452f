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

package compression

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
)

// Brotli compresses frames with Brotli
type Brotli struct {
	level   int
	writers sync.Pool
	readers sync.Pool
}

var _ Compression = (*Brotli)(nil)

// NewBrotli creates a Brotli strategy with the default level
func NewBrotli() *Brotli {
	return NewBrotliLevel(brotli.DefaultCompression)
}

// NewBrotliLevel creates a Brotli strategy with the given level.
// Out of range levels are clamped.
func NewBrotliLevel(level int) *Brotli {
	level = max(brotli.BestSpeed, min(level, brotli.BestCompression))
	return &Brotli{level: level}
}

// Name implements Compression
func (b *Brotli) Name() string { return BrotliName }

// Compress implements Compression
func (b *Brotli) Compress(src []byte) ([]byte, error) {
	return seal(src, func(src []byte) ([]byte, error) {
		var out bytes.Buffer
		writer, ok := b.writers.Get().(*brotli.Writer)
		if ok && writer != nil {
			writer.Reset(&out)
		} else {
			writer = brotli.NewWriterLevel(&out, b.level)
		}
		defer b.writers.Put(writer)

		if _, err := writer.Write(src); err != nil {
			return nil, err
		}

		if err := writer.Close(); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	})
}

// Decompress implements Compression
func (b *Brotli) Decompress(src []byte) ([]byte, error) {
	return open(src, func(src []byte, size int) ([]byte, error) {
		reader, ok := b.readers.Get().(*brotli.Reader)
		if ok && reader != nil {
			if err := reader.Reset(bytes.NewReader(src)); err != nil {
				return nil, err
			}
		} else {
			reader = brotli.NewReader(bytes.NewReader(src))
		}
		defer b.readers.Put(reader)

		out := make([]byte, size)
		n, err := io.ReadFull(reader, out)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return out[:n], nil
		case err != nil:
			return nil, err
		}

		// anything past the declared size is a mismatch
		var extra [1]byte
		if m, _ := reader.Read(extra[:]); m > 0 {
			return append(out, extra[0]), nil
		}
		return out, nil
	})
}
