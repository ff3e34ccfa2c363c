package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	token   string
	expires time.Time
}

// Memory is a process-local Locker.
type Memory struct {
	mu   sync.Mutex
	keys map[string]entry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{keys: make(map[string]entry), now: time.Now}
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.keys[key]; ok && now.Before(e.expires) {
		return nil, ErrHeld
	}
	token := uuid.NewString()
	m.keys[key] = entry{token: token, expires: now.Add(ttl)}
	m.sweep(now)

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if e, ok := m.keys[key]; ok && e.token == token {
			delete(m.keys, key)
		}
		return nil
	}, nil
}

// sweep drops expired keys. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	for k, e := range m.keys {
		if !now.Before(e.expires) {
			delete(m.keys, k)
		}
	}
}
