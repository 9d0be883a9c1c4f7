package logger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

type sink struct {
	buf *bufio.Writer
	err error
}

// asyncWriter fans log lines out to every sink from a single goroutine.
// A sink that fails is detached and the remaining sinks keep receiving lines.
type asyncWriter struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}

	closeMu sync.RWMutex
	closed  bool

	mu    sync.Mutex
	sinks []*sink
	// failed collects the first error of every detached sink.
	failed []error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	sinks := make([]*sink, 0, len(writers))
	for _, w := range writers {
		if w == nil {
			continue
		}
		sinks = append(sinks, &sink{buf: bufio.NewWriterSize(w, bufSize)})
	}
	aw := &asyncWriter{
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
		sinks:    sinks,
	}
	go aw.loop()
	return aw
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case data, ok := <-w.queue:
			if !ok {
				w.flushAll()
				return
			}
			w.writeAll(data)
		case ack := <-w.flushReq:
			ack <- w.flushAll()
		}
	}
}

// Write copies p and queues it. When the queue is full the caller blocks
// until the loop catches up; lines are never dropped while sinks are healthy.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	if !w.healthy() {
		return w.err()
	}

	data := make([]byte, len(p))
	copy(data, p)
	w.queue <- data
	return nil
}

// Flush waits until every queued line reached the sinks.
func (w *asyncWriter) Flush() error {
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return w.err()
	}
	ack := make(chan error, 1)
	w.flushReq <- ack
	if err := <-ack; err != nil {
		return err
	}
	return w.err()
}

// Close drains the queue and reports the errors of detached sinks.
func (w *asyncWriter) Close() error {
	w.closeMu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.closeMu.Unlock()
	<-w.done
	return w.err()
}

func (w *asyncWriter) writeAll(p []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if s.err != nil {
			continue
		}
		if _, err := s.buf.Write(p); err != nil {
			w.detach(s, err)
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.detach(s, err)
		}
	}
}

func (w *asyncWriter) flushAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if s.err != nil {
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.detach(s, err)
		}
	}
	return nil
}

// detach must be called with w.mu held.
func (w *asyncWriter) detach(s *sink, err error) {
	s.err = err
	w.failed = append(w.failed, fmt.Errorf("logger: sink detached: %w", err))
}

func (w *asyncWriter) healthy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.sinks {
		if s.err == nil {
			return true
		}
	}
	return len(w.sinks) == 0
}

func (w *asyncWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return errors.Join(w.failed...)
}
