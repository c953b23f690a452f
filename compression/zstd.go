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
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses frames with Zstandard
type Zstd struct {
	level    zstd.EncoderLevel
	encoders sync.Pool
	decoders sync.Pool
}

var _ Compression = (*Zstd)(nil)

// NewZstd creates a Zstandard strategy with the default speed level
func NewZstd() *Zstd {
	return NewZstdLevel(zstd.SpeedDefault)
}

// NewZstdLevel creates a Zstandard strategy with the given encoder level
func NewZstdLevel(level zstd.EncoderLevel) *Zstd {
	return &Zstd{level: level}
}

// Name implements Compression
func (z *Zstd) Name() string { return ZstdName }

// Compress implements Compression
func (z *Zstd) Compress(src []byte) ([]byte, error) {
	return seal(src, func(src []byte) ([]byte, error) {
		encoder, err := z.encoder()
		if err != nil {
			return nil, err
		}
		defer z.encoders.Put(encoder)
		return encoder.EncodeAll(src, nil), nil
	})
}

// Decompress implements Compression
func (z *Zstd) Decompress(src []byte) ([]byte, error) {
	return open(src, func(src []byte, size int) ([]byte, error) {
		decoder, err := z.decoder()
		if err != nil {
			return nil, err
		}
		defer z.decoders.Put(decoder)
		return decoder.DecodeAll(src, make([]byte, 0, size))
	})
}

// encoder returns a pooled encoder. A single goroutine per encoder keeps
// EncodeAll synchronous.
func (z *Zstd) encoder() (*zstd.Encoder, error) {
	if enc, ok := z.encoders.Get().(*zstd.Encoder); ok && enc != nil {
		return enc, nil
	}
	return zstd.NewWriter(nil,
		zstd.WithEncoderLevel(z.level),
		zstd.WithEncoderConcurrency(1))
}

func (z *Zstd) decoder() (*zstd.Decoder, error) {
	if dec, ok := z.decoders.Get().(*zstd.Decoder); ok && dec != nil {
		return dec, nil
	}
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(MaxFrameSize))
}
