// Package queue implements an in-memory job queue and an autoscaling worker
// manager. Jobs are handled at most once; failures are counted, not retried.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/storefront/internal/config"
	"github.com/fairyhunter13/storefront/internal/obs"
)

// Handler processes one job.
type Handler[T any] func(ctx context.Context, job T) error

// Options tune worker scaling.
type Options struct {
	InitialWorkers          int
	MinWorkers              int
	MaxWorkers              int
	ScaleInterval           time.Duration
	ScaleUpBacklogPerWorker int
	ScaleDownIdleTicks      int
	HighWatermark           int
}

// OptionsFromConfig maps the worker settings of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		InitialWorkers:          cfg.InitialWorkerCount,
		MinWorkers:              cfg.WorkerMin,
		MaxWorkers:              cfg.WorkerMax,
		ScaleInterval:           cfg.ScaleInterval,
		ScaleUpBacklogPerWorker: cfg.ScaleUpBacklogPerWorker,
		ScaleDownIdleTicks:      cfg.ScaleDownIdleTicks,
		HighWatermark:           cfg.QueueHighWatermark,
	}
}

// Manager runs workers that feed queued jobs to a handler and scales them
// between MinWorkers and MaxWorkers based on backlog.
type Manager[T any] struct {
	opts    Options
	q       *Queue[T]
	handler Handler[T]
	name    string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

func NewManager[T any](name string, opts Options, q *Queue[T], h Handler[T]) *Manager[T] {
	if opts.ScaleInterval <= 0 {
		opts.ScaleInterval = 500 * time.Millisecond
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 1
	}
	if opts.MinWorkers < 0 {
		opts.MinWorkers = 0
	}
	if opts.InitialWorkers < opts.MinWorkers {
		opts.InitialWorkers = opts.MinWorkers
	}
	if opts.InitialWorkers > opts.MaxWorkers {
		opts.InitialWorkers = opts.MaxWorkers
	}
	return &Manager[T]{name: name, opts: opts, q: q, handler: h}
}

// Start launches the broker, the initial workers and the scaler.
func (m *Manager[T]) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.q.run(m.ctx, m.opts.HighWatermark)
	}()
	m.addWorkers(m.opts.InitialWorkers)
	go func() {
		defer m.wg.Done()
		m.scaler()
	}()
}

// Stop cancels every background goroutine and waits for them to exit.
func (m *Manager[T]) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Manager[T]) scaler() {
	t := time.NewTicker(m.opts.ScaleInterval)
	defer t.Stop()
	idleTicks := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-t.C:
			backlog := m.q.BacklogSize()
			wc := m.WorkerCount()
			if backlog > wc*m.opts.ScaleUpBacklogPerWorker && wc < m.opts.MaxWorkers {
				m.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog == 0 {
				idleTicks++
				if idleTicks >= m.opts.ScaleDownIdleTicks && wc > m.opts.MinWorkers {
					m.removeWorkers(1)
					idleTicks = 0
				}
			} else {
				idleTicks = 0
			}
		}
	}
}

func (m *Manager[T]) addWorkers(n int) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.worker(wctx)
		}()
	}
	obs.Logger.Infow("workers_scaled", "queue", m.name, "worker_count", len(m.workerCancels))
}

func (m *Manager[T]) removeWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.workerCancels) {
		n = len(m.workerCancels)
	}
	for i := 0; i < n; i++ {
		c := m.workerCancels[len(m.workerCancels)-1]
		m.workerCancels = m.workerCancels[:len(m.workerCancels)-1]
		c()
	}
	obs.Logger.Infow("workers_scaled", "queue", m.name, "worker_count", len(m.workerCancels))
}

// worker hands jobs to the handler. A job already taken is finished under
// the manager context even if this worker is scaled away meanwhile.
func (m *Manager[T]) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-m.q.Out():
			err := m.handler(m.ctx, job)
			if err != nil {
				obs.Logger.Warnw("job_failed", "queue", m.name, "error", err)
			}
			m.q.markDone(err)
		}
	}
}

// Enqueue proxies to the underlying queue.
func (m *Manager[T]) Enqueue(job T) bool { return m.q.Enqueue(job) }

func (m *Manager[T]) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

func (m *Manager[T]) IsShuttingDown() bool { return m.q.IsShuttingDown() }

// CloseIntake rejects future enqueues.
func (m *Manager[T]) CloseIntake() { m.q.CloseIntake() }

func (m *Manager[T]) Metrics() Metrics {
	mt := m.q.metrics()
	mt.WorkerCount = m.WorkerCount()
	return mt
}

// DrainUntil blocks until every enqueued job is processed or ctx is done.
func (m *Manager[T]) DrainUntil(ctx context.Context) bool {
	for {
		mt := m.q.metrics()
		if mt.Backlog == 0 && mt.Depth == 0 && mt.Enqueued == mt.Processed {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
