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
	"encoding/binary"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/gomsg/errors"
)

func strategies() []Compression {
	return []Compression{NoCompression{}, NewZstd(), NewBrotli()}
}

func TestRoundTrip(t *testing.T) {
	random := make([]byte, 4096)
	_, _ = rand.New(rand.NewSource(42)).Read(random)

	inputs := map[string][]byte{
		"empty":     {},
		"tiny":      []byte("ping"),
		"repeating": []byte(strings.Repeat("Hello World! ", 200)),
		"random":    random,
	}

	for _, strategy := range strategies() {
		for name, input := range inputs {
			t.Run("With "+strategy.Name()+" and "+name+" input", func(t *testing.T) {
				compressed, err := strategy.Compress(input)
				require.NoError(t, err)

				out, err := strategy.Decompress(compressed)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(input, out))
			})
		}
	}
}

func TestFrameTag(t *testing.T) {
	for _, strategy := range []Compression{NewZstd(), NewBrotli()} {
		t.Run("With "+strategy.Name()+" compressible input", func(t *testing.T) {
			input := []byte(strings.Repeat("abcdefgh", 512))
			out, err := strategy.Compress(input)
			require.NoError(t, err)
			require.Equal(t, tagCompressed, out[0])
			assert.EqualValues(t, len(input), binary.BigEndian.Uint32(out[1:5]))
			assert.Less(t, len(out), len(input))
		})
		t.Run("With "+strategy.Name()+" tiny input", func(t *testing.T) {
			out, err := strategy.Compress([]byte("hi"))
			require.NoError(t, err)
			assert.Equal(t, []byte{tagRaw, 'h', 'i'}, out)
		})
		t.Run("With "+strategy.Name()+" incompressible input", func(t *testing.T) {
			input := make([]byte, 1024)
			_, _ = rand.New(rand.NewSource(7)).Read(input)
			out, err := strategy.Compress(input)
			require.NoError(t, err)
			assert.Equal(t, tagRaw, out[0])
			assert.Len(t, out, len(input)+1)
		})
		t.Run("With empty input", func(t *testing.T) {
			out, err := strategy.Compress(nil)
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestMalformedFrames(t *testing.T) {
	for _, strategy := range []Compression{NewZstd(), NewBrotli()} {
		t.Run("With "+strategy.Name()+" unknown tag", func(t *testing.T) {
			_, err := strategy.Decompress([]byte{0x07, 1, 2, 3})
			require.ErrorIs(t, err, gerrors.ErrFraming)
		})
		t.Run("With "+strategy.Name()+" truncated header", func(t *testing.T) {
			_, err := strategy.Decompress([]byte{tagCompressed, 0, 0})
			require.ErrorIs(t, err, gerrors.ErrFraming)
		})
		t.Run("With "+strategy.Name()+" oversized declaration", func(t *testing.T) {
			frame := []byte{tagCompressed, 0, 0, 0, 0}
			binary.BigEndian.PutUint32(frame[1:], MaxFrameSize+1)
			_, err := strategy.Decompress(frame)
			require.ErrorIs(t, err, gerrors.ErrFraming)
		})
		t.Run("With "+strategy.Name()+" wrong declared size", func(t *testing.T) {
			input := []byte(strings.Repeat("abcdefgh", 512))
			out, err := strategy.Compress(input)
			require.NoError(t, err)
			binary.BigEndian.PutUint32(out[1:5], uint32(len(input)-1))
			_, err = strategy.Decompress(out)
			require.ErrorIs(t, err, gerrors.ErrFraming)
		})
		t.Run("With "+strategy.Name()+" corrupted body", func(t *testing.T) {
			frame := []byte{tagCompressed, 0, 0, 0, 16, 0xde, 0xad, 0xbe, 0xef}
			_, err := strategy.Decompress(frame)
			require.ErrorIs(t, err, gerrors.ErrFraming)
		})
	}
}

func TestConcurrentUse(t *testing.T) {
	input := []byte(strings.Repeat("concurrent frames ", 100))
	for _, strategy := range strategies() {
		t.Run("With "+strategy.Name(), func(t *testing.T) {
			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range 50 {
						compressed, err := strategy.Compress(input)
						assert.NoError(t, err)
						out, err := strategy.Decompress(compressed)
						assert.NoError(t, err)
						assert.Equal(t, input, out)
					}
				}()
			}
			wg.Wait()
		})
	}
}

func TestByName(t *testing.T) {
	t.Run("With known names", func(t *testing.T) {
		for name, expected := range map[string]string{"": NoneName, "none": NoneName, "ZSTD": ZstdName, " brotli ": BrotliName} {
			strategy, err := ByName(name)
			require.NoError(t, err)
			assert.Equal(t, expected, strategy.Name())
		}
	})
	t.Run("With unknown name", func(t *testing.T) {
		_, err := ByName("lz4")
		require.ErrorIs(t, err, gerrors.ErrUnknownCompression)
	})
}
