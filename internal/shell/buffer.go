package shell

import (
	"bytes"
	"sync"
)

// CaptureBuffer guards a bytes.Buffer with a mutex. Interpreter commands
// may write from helper goroutines, so capture targets must be safe for
// concurrent writes.
type CaptureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *CaptureBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *CaptureBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
