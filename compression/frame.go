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
	"encoding/binary"

	gerrors "github.com/tochemey/gomsg/errors"
)

const (
	tagRaw        byte = 0x00
	tagCompressed byte = 0x01

	// compressedHeaderSize is the tag plus the uncompressed length
	compressedHeaderSize = 5

	// MaxFrameSize bounds the uncompressed size a frame may declare
	MaxFrameSize = 16 << 20
	// RatioTolerance is the minimum ratio between the raw and the compressed
	// size for the compressed form to be kept
	RatioTolerance = 1.1
	// minCompressSize is the size below which compression is not attempted
	minCompressSize = 64
)

type encodeFunc func(src []byte) ([]byte, error)
type decodeFunc func(src []byte, size int) ([]byte, error)

// seal frames src as [tag][payload]. The compressed form is used only when it
// beats the raw one by RatioTolerance.
func seal(src []byte, encode encodeFunc) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}

	if len(src) >= minCompressSize && len(src) <= MaxFrameSize {
		compressed, err := encode(src)
		if err != nil {
			return nil, err
		}

		if float64(len(src)) >= RatioTolerance*float64(len(compressed)+compressedHeaderSize) {
			out := make([]byte, compressedHeaderSize, compressedHeaderSize+len(compressed))
			out[0] = tagCompressed
			binary.BigEndian.PutUint32(out[1:], uint32(len(src)))
			return append(out, compressed...), nil
		}
	}

	out := make([]byte, 1, 1+len(src))
	out[0] = tagRaw
	return append(out, src...), nil
}

// open reverses seal
func open(src []byte, decode decodeFunc) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}

	switch src[0] {
	case tagRaw:
		out := make([]byte, len(src)-1)
		copy(out, src[1:])
		return out, nil
	case tagCompressed:
		if len(src) < compressedHeaderSize {
			return nil, gerrors.NewFramingError("truncated compression header")
		}

		size := binary.BigEndian.Uint32(src[1:compressedHeaderSize])
		if size == 0 || size > MaxFrameSize {
			return nil, gerrors.NewFramingError("declared frame size %d out of range", size)
		}

		out, err := decode(src[compressedHeaderSize:], int(size))
		if err != nil {
			return nil, gerrors.NewFramingError("decompression failed: %v", err)
		}

		if len(out) != int(size) {
			return nil, gerrors.NewFramingError("frame size mismatch: declared %d, got %d", size, len(out))
		}
		return out, nil
	default:
		return nil, gerrors.NewFramingError("unknown compression tag 0x%02x", src[0])
	}
}
