// Package limiter implements fixed-window attempt counting per client and action.
package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type ActionConfig struct {
	Limit  int64
	Window time.Duration
}

const ActionLogin = "login"

var DefaultLimits = map[string]ActionConfig{
	ActionLogin: {Limit: 10, Window: time.Minute},
}

// Storage increments a counter and returns it with the time left in its window.
type Storage interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Limiter struct {
	storage Storage
	limits  map[string]ActionConfig
	now     func() time.Time
}

type CheckResult struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
	ResetAt   int64 `json:"reset_at"`
	Limit     int64 `json:"limit"`
}

func NewLimiter(storage Storage, limits map[string]ActionConfig) *Limiter {
	if limits == nil {
		limits = DefaultLimits
	}
	return &Limiter{storage: storage, limits: limits, now: time.Now}
}

func (l *Limiter) Check(ctx context.Context, clientID, action string) (*CheckResult, error) {
	config, ok := l.limits[action]
	if !ok {
		// Default limit for unknown actions
		config = ActionConfig{Limit: 100, Window: time.Minute}
	}

	key := fmt.Sprintf("rate:%s:%s", clientID, action)

	count, ttl, err := l.storage.Incr(ctx, key, config.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to increment counter: %w", err)
	}

	remaining := config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &CheckResult{
		Allowed:   count <= config.Limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl).Unix(),
		Limit:     config.Limit,
	}, nil
}

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

// MemoryStorage is a process-local Storage for single instances and tests.
type MemoryStorage struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{counters: make(map[string]*memoryCounter), now: time.Now}
}

func (m *MemoryStorage) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	c, ok := m.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &memoryCounter{expiresAt: now.Add(window)}
		m.counters[key] = c
	}
	c.count++
	return c.count, c.expiresAt.Sub(now), nil
}
