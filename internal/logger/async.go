package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Closer flushes and stops a handler. The synchronous handler returns a
// no-op implementation so main can always defer Close.
type Closer interface {
	Close()
}

type nopCloser struct{}

func (nopCloser) Close() {}

// AsyncHandler decouples log emission from I/O. A scheduler tick over a
// large fleet produces a burst of records; handing them to a buffered
// queue keeps the tick from blocking on stdout. When the queue is full
// the record is dropped and counted rather than applying backpressure.
type AsyncHandler struct {
	inner   slog.Handler
	queue   chan slog.Record
	workers *sync.WaitGroup
	dropped *atomic.Int64
}

// NewAsyncHandler starts workers goroutines draining a queue of the given
// capacity into the inner handler.
func NewAsyncHandler(inner slog.Handler, capacity, workers int) *AsyncHandler {
	h := &AsyncHandler{
		inner:   inner,
		queue:   make(chan slog.Record, capacity),
		workers: &sync.WaitGroup{},
		dropped: &atomic.Int64{},
	}
	for i := 0; i < workers; i++ {
		h.workers.Add(1)
		go h.run()
	}
	return h
}

func (h *AsyncHandler) run() {
	defer h.workers.Done()
	for rec := range h.queue {
		_ = h.inner.Handle(context.Background(), rec)
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it when the queue is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.queue <- rec:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs wraps the derived inner handler while sharing the queue, so
// child loggers drain through the same workers.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithAttrs(attrs),
		queue:   h.queue,
		workers: h.workers,
		dropped: h.dropped,
	}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithGroup(name),
		queue:   h.queue,
		workers: h.workers,
		dropped: h.dropped,
	}
}

// Dropped returns how many records were discarded on a full queue.
func (h *AsyncHandler) Dropped() int64 {
	return h.dropped.Load()
}

// Close stops accepting records, waits for the workers to drain the queue,
// and reports drops if any occurred.
func (h *AsyncHandler) Close() {
	close(h.queue)
	h.workers.Wait()

	if n := h.dropped.Load(); n > 0 {
		rec := slog.NewRecord(time.Now(), slog.LevelWarn, "async logger dropped records", 0)
		rec.AddAttrs(slog.Int64("count", n))
		_ = h.inner.Handle(context.Background(), rec)
	}
}
