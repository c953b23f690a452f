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

package bufferpool

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/gomsg/codec"
)

// maxRetained is the largest buffer capacity kept for reuse. Larger buffers
// are dropped so that a single oversized frame does not pin memory.
const maxRetained = 1 << 20

// Pool is the process wide frame buffer pool
var Pool = New()

// BufferPool recycles codec buffers used to build frames
type BufferPool struct {
	pool        sync.Pool
	outstanding *atomic.Int64
}

// New creates a BufferPool
func New() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				return codec.NewBuffer(0)
			},
		},
		outstanding: atomic.NewInt64(0),
	}
}

// Get returns an empty buffer able to hold capacity bytes without growing.
// Every buffer obtained from Get must be handed back with Put.
func (p *BufferPool) Get(capacity int) *codec.Buffer {
	buf := p.pool.Get().(*codec.Buffer)
	buf.Reset()
	buf.Grow(capacity)
	p.outstanding.Inc()
	return buf
}

// Put hands a buffer back to the pool
func (p *BufferPool) Put(buf *codec.Buffer) {
	if buf == nil {
		return
	}

	p.outstanding.Dec()
	if buf.Cap() > maxRetained {
		return
	}

	buf.Reset()
	p.pool.Put(buf)
}

// Outstanding returns the number of buffers obtained and not yet handed back
func (p *BufferPool) Outstanding() int64 {
	return p.outstanding.Load()
}
