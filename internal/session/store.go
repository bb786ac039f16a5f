package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned by Load when id is unknown or expired.
var ErrNoSession = errors.New("session not found")

type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, s *State) error
	Delete(ctx context.Context, id string) error
}

type memoryItem struct {
	state     State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory with a sliding TTL.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, ErrNoSession
	}
	if m.now().After(item.expiresAt) {
		delete(m.items, id)
		return nil, ErrNoSession
	}
	return item.state.clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, id string, s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeExpired()
	m.items[id] = memoryItem{state: *s.clone(), expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryStore) purgeExpired() {
	now := m.now()
	for id, item := range m.items {
		if now.After(item.expiresAt) {
			delete(m.items, id)
		}
	}
}
