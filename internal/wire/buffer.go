package wire

import (
	"io"
	"sync"
	"time"
)

// BufferedWriter coalesces small frame writes and flushes them after
// maxDelay, or sooner when maxSize would be exceeded. Motion bursts produce
// many tiny frames, so remote feeds write through one of these.
type BufferedWriter struct {
	w        io.Writer
	maxDelay time.Duration
	maxSize  int

	mu      sync.Mutex
	buf     []byte
	err     error
	pending chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewBufferedWriter(w io.Writer, maxDelay time.Duration, maxSize int) *BufferedWriter {
	bw := &BufferedWriter{
		w:        w,
		maxDelay: maxDelay,
		maxSize:  maxSize,
		buf:      make([]byte, 0, maxSize),
		pending:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go bw.flushLoop()
	return bw
}

// Write buffers p. It returns the first error a background flush hit.
func (bw *BufferedWriter) Write(p []byte) (int, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.err != nil {
		return 0, bw.err
	}

	if len(bw.buf)+len(p) > bw.maxSize {
		if err := bw.flushLocked(); err != nil {
			return 0, err
		}
	}
	bw.buf = append(bw.buf, p...)

	if len(bw.buf) == len(p) {
		select {
		case bw.pending <- struct{}{}:
		default:
		}
	}
	return len(p), nil
}

// Flush writes out anything buffered.
func (bw *BufferedWriter) Flush() error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return bw.flushLocked()
}

func (bw *BufferedWriter) flushLocked() error {
	if bw.err != nil {
		return bw.err
	}
	if len(bw.buf) == 0 {
		return nil
	}
	_, err := bw.w.Write(bw.buf)
	bw.buf = bw.buf[:0]
	if err != nil {
		bw.err = err
	}
	return err
}

func (bw *BufferedWriter) flushLoop() {
	timer := time.NewTimer(bw.maxDelay)
	timer.Stop()

	for {
		select {
		case <-bw.done:
			timer.Stop()
			return
		case <-bw.pending:
			timer.Reset(bw.maxDelay)
		case <-timer.C:
			_ = bw.Flush()
		}
	}
}

// Close stops the flush loop and writes out what is left.
func (bw *BufferedWriter) Close() error {
	bw.once.Do(func() { close(bw.done) })
	return bw.Flush()
}
