package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultSaveDelay = 500 * time.Millisecond

// SaveFunc persists one snapshot.
type SaveFunc[T any] func(ctx context.Context, v T) error

// SaveQueue coalesces rapid edits into debounced writes. Every Submit gets a
// new version; only the newest pending snapshot is ever written, and a
// version is never written after a newer one.
type SaveQueue[T any] struct {
	save   SaveFunc[T]
	delay  time.Duration
	logger *slog.Logger

	writeMu sync.Mutex

	mu         sync.Mutex
	version    uint64
	pending    T
	hasPending bool
	written    uint64
	timer      *time.Timer
	armed      uint64
	closed     bool
	lastErr    error
}

func NewSaveQueue[T any](save SaveFunc[T], delay time.Duration, logger *slog.Logger) *SaveQueue[T] {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveQueue[T]{save: save, delay: delay, logger: logger}
}

// Submit records v as the latest snapshot and restarts the debounce timer.
// It returns the version assigned to v.
func (q *SaveQueue[T]) Submit(v T) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.version++
	q.pending = v
	q.hasPending = true
	if q.closed {
		return q.version
	}
	q.arm(true)
	return q.version
}

// arm restarts the debounce timer; q.mu must be held. A failed timed write
// is retried once after another delay; after that the snapshot stays
// pending until the next Submit or Flush.
func (q *SaveQueue[T]) arm(retry bool) {
	if q.timer != nil {
		q.timer.Stop()
	}
	q.armed++
	gen := q.armed
	q.timer = time.AfterFunc(q.delay, func() {
		err := q.write(context.Background())
		if err == nil {
			return
		}
		q.logger.Warn("debounced save failed", "error", err, "retrying", retry)
		if !retry {
			return
		}
		q.mu.Lock()
		defer q.mu.Unlock()
		if !q.closed && q.hasPending && q.armed == gen {
			q.arm(false)
		}
	})
}

// Flush writes the pending snapshot now, if any.
func (q *SaveQueue[T]) Flush(ctx context.Context) error {
	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.armed++
	q.mu.Unlock()
	return q.write(ctx)
}

// Close flushes and stops scheduling further timed writes.
func (q *SaveQueue[T]) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return q.Flush(ctx)
}

// Version is the newest submitted version.
func (q *SaveQueue[T]) Version() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.version
}

// Written is the newest version that reached storage.
func (q *SaveQueue[T]) Written() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.written
}

// Err returns the result of the most recent write attempt.
func (q *SaveQueue[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

func (q *SaveQueue[T]) write(ctx context.Context) error {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()

	q.mu.Lock()
	if !q.hasPending || q.version <= q.written {
		q.mu.Unlock()
		return nil
	}
	v, ver := q.pending, q.version
	q.mu.Unlock()

	err := q.save(ctx, v)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastErr = err
	if err != nil {
		return err
	}
	if ver > q.written {
		q.written = ver
	}
	if ver == q.version {
		q.hasPending = false
	}
	return nil
}
