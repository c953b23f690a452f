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

// Package compression holds the strategies used to compress frames before
// they are handed to a broker.
package compression

import (
	"fmt"
	"strings"

	gerrors "github.com/tochemey/gomsg/errors"
)

const (
	// NoneName is the name of the identity strategy
	NoneName = "none"
	// ZstdName is the name of the Zstandard strategy
	ZstdName = "zstd"
	// BrotliName is the name of the Brotli strategy
	BrotliName = "brotli"
)

// Compression transforms a whole frame. Decompress must be the exact inverse
// of Compress for every input, including the empty one.
type Compression interface {
	// Name returns the strategy name
	Name() string
	// Compress returns the compressed form of src
	Compress(src []byte) ([]byte, error)
	// Decompress restores the bytes produced by Compress
	Decompress(src []byte) ([]byte, error)
}

// NoCompression is the identity strategy and the default one.
type NoCompression struct{}

var _ Compression = NoCompression{}

// Name implements Compression
func (NoCompression) Name() string { return NoneName }

// Compress implements Compression
func (NoCompression) Compress(src []byte) ([]byte, error) { return src, nil }

// Decompress implements Compression
func (NoCompression) Decompress(src []byte) ([]byte, error) { return src, nil }

// ByName returns the strategy with the given name using its default settings.
func ByName(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NoneName:
		return NoCompression{}, nil
	case ZstdName:
		return NewZstd(), nil
	case BrotliName:
		return NewBrotli(), nil
	default:
		return nil, fmt.Errorf("compression=(%s) %w", name, gerrors.ErrUnknownCompression)
	}
}
