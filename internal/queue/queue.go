package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront/internal/obs"
)

// Queue is an unbounded job backlog feeding a buffered output channel
// through a background broker. Enqueue never blocks.
type Queue[T any] struct {
	mu           sync.Mutex
	backlog      []T
	notify       chan struct{}
	out          chan T
	shuttingDown atomic.Bool

	enqueued  atomic.Uint64
	processed atomic.Uint64
	failed    atomic.Uint64
}

// New creates a Queue with a buffered output channel.
func New[T any](outBuffer int) *Queue[T] {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &Queue[T]{
		notify: make(chan struct{}, 1),
		out:    make(chan T, outBuffer),
	}
}

// run moves backlog items to the output channel until ctx is done.
func (q *Queue[T]) run(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	warned := false
	for {
		q.flushOnce()
		if highWatermark > 0 {
			sz := q.BacklogSize()
			if sz > highWatermark && !warned {
				obs.Logger.Warnw("queue_high_watermark", "backlog_size", sz, "high_watermark", highWatermark)
			}
			warned = sz > highWatermark
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

func (q *Queue[T]) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.backlog) > 0 && len(q.out) < cap(q.out) {
		item := q.backlog[0]
		var zero T
		q.backlog[0] = zero
		q.backlog = q.backlog[1:]
		q.out <- item
	}
}

// Enqueue appends a job. It reports false once intake is closed.
func (q *Queue[T]) Enqueue(job T) bool {
	if q.shuttingDown.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, job)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

func (q *Queue[T]) Out() <-chan T { return q.out }

// BacklogSize returns the number of jobs not yet handed to the output channel.
func (q *Queue[T]) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Depth returns backlog plus buffered output jobs.
func (q *Queue[T]) Depth() int {
	q.mu.Lock()
	bl := len(q.backlog)
	q.mu.Unlock()
	return bl + len(q.out)
}

func (q *Queue[T]) markDone(err error) {
	q.processed.Add(1)
	if err != nil {
		q.failed.Add(1)
	}
}

// Metrics is a point-in-time view of a queue and its workers.
type Metrics struct {
	Enqueued    uint64 `json:"enqueued"`
	Processed   uint64 `json:"processed"`
	Failed      uint64 `json:"failed"`
	Backlog     int    `json:"backlog"`
	Depth       int    `json:"depth"`
	WorkerCount int    `json:"worker_count"`
}

func (q *Queue[T]) metrics() Metrics {
	return Metrics{
		Enqueued:  q.enqueued.Load(),
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Backlog:   q.BacklogSize(),
		Depth:     q.Depth(),
	}
}

// CloseIntake rejects future enqueues.
func (q *Queue[T]) CloseIntake() { q.shuttingDown.Store(true) }

func (q *Queue[T]) IsShuttingDown() bool { return q.shuttingDown.Load() }
