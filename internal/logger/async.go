package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer allows flushing and stopping the async handler.
type Closer interface {
	Close()
}

// nopCloser is a no-op Closer for synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// pending pairs a record with the handler that must write it, so that
// attributes added through With survive the hop to a worker.
type pending struct {
	h   slog.Handler
	rec slog.Record
}

// asyncCore is shared by an AsyncHandler and every handler derived from it.
type asyncCore struct {
	ch      chan pending
	wg      sync.WaitGroup
	dropped atomic.Int64
	once    sync.Once
}

// AsyncHandler wraps an slog.Handler with a buffered channel and worker pool.
// When the buffer is full, records are dropped and counted.
type AsyncHandler struct {
	inner slog.Handler
	core  *asyncCore
}

// NewAsyncHandler creates an AsyncHandler with the given channel capacity and worker count.
func NewAsyncHandler(inner slog.Handler, chanSize, workers int) *AsyncHandler {
	core := &asyncCore{ch: make(chan pending, chanSize)}
	for range workers {
		core.wg.Add(1)
		go core.drain()
	}
	return &AsyncHandler{inner: inner, core: core}
}

func (c *asyncCore) drain() {
	defer c.wg.Done()
	for p := range c.ch {
		_ = p.h.Handle(context.Background(), p.rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record. Drops if the channel is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.core.ch <- pending{h: h.inner, rec: rec.Clone()}:
	default:
		h.core.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the same queue with attrs added.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), core: h.core}
}

// WithGroup returns a handler sharing the same queue with a group opened.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), core: h.core}
}

// DroppedCount returns the number of dropped records.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.core.dropped.Load()
}

// Close closes the queue and waits for all workers to drain. It must not
// race with Handle; call it once logging has stopped.
func (h *AsyncHandler) Close() {
	h.core.once.Do(func() { close(h.core.ch) })
	h.core.wg.Wait()
}
