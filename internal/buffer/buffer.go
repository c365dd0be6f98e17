// Package buffer implements a thread-safe, append-only byte accumulator
// used for a Connection's
// inbound and outbound directions. It is built on bytebufferpool, a
// pooled byte buffer, to avoid per-connection allocation churn in the
// reactor hot path.
package buffer

import (
	"sync"

	"github.com/valyala/bytebufferpool"
)

// Buffer is a thread-safe, append-only byte container. In the normal
// single-reactor-thread design only one goroutine touches a given Buffer
// at a time, but the lock keeps the contract honest regardless.
type Buffer struct {
	mu  sync.Mutex
	buf *bytebufferpool.ByteBuffer
}

// New returns an empty Buffer backed by a pooled byte slice.
func New() *Buffer {
	return &Buffer{buf: bytebufferpool.Get()}
}

// Append adds p to the end of the buffer.
func (b *Buffer) Append(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(p)
}

// Snapshot returns a read-only copy of every byte currently in the
// buffer. Copying (rather than returning the internal slice) keeps
// callers from observing a later Append or Advance.
func (b *Buffer) Snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

// Size returns the number of bytes currently buffered.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

// Empty reports whether the buffer holds no bytes.
func (b *Buffer) Empty() bool {
	return b.Size() == 0
}

// Clear discards every buffered byte.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Advance drops the first n bytes, keeping the remainder. This is what
// writeOnce uses after a partial send so the buffer holds exactly the
// unsent tail rather than being cleared outright on any positive write.
func (b *Buffer) Advance(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 {
		return
	}
	remaining := b.buf.Bytes()
	if n >= len(remaining) {
		b.buf.Reset()
		return
	}
	tail := append([]byte(nil), remaining[n:]...)
	b.buf.Reset()
	b.buf.Write(tail)
}

// Release returns the underlying pooled storage. Call exactly once, when
// the owning Connection is destroyed.
func (b *Buffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf != nil {
		bytebufferpool.Put(b.buf)
		b.buf = nil
	}
}
