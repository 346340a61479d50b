// Package idempotency remembers the outcome of keyed checkout requests so a
// retried request replays the original order instead of placing another.
package idempotency

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Status of a key after Begin.
type Status int

const (
	// StatusNew means the caller now owns the key and must Complete or Release it.
	StatusNew Status = iota
	// StatusPending means another request owns the key and has not finished.
	StatusPending
	// StatusDone means the key already produced OrderID.
	StatusDone
)

type Result struct {
	Status  Status
	OrderID int64
}

// Store reserves keys and records their outcome.
type Store interface {
	Begin(ctx context.Context, key string) (Result, error)
	Complete(ctx context.Context, key string, orderID int64) error
	Release(ctx context.Context, key string) error
}

// Scope namespaces a client key by user.
func Scope(userID int64, key string) string {
	return "idem:order:" + strconv.FormatInt(userID, 10) + ":" + key
}

type memEntry struct {
	orderID int64
	done    bool
	expires time.Time
}

// Memory is a process-local Store with per-key expiry.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, entries: make(map[string]memEntry), now: time.Now}
}

func (m *Memory) Begin(_ context.Context, key string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.entries[key]; ok && now.Before(e.expires) {
		if e.done {
			return Result{Status: StatusDone, OrderID: e.orderID}, nil
		}
		return Result{Status: StatusPending}, nil
	}
	m.entries[key] = memEntry{expires: now.Add(m.ttl)}
	m.sweep(now)
	return Result{Status: StatusNew}, nil
}

func (m *Memory) Complete(_ context.Context, key string, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{orderID: orderID, done: true, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// sweep drops expired entries. Caller holds mu.
func (m *Memory) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}
