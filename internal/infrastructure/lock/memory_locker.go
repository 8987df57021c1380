package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type held struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker bloqueo por clave dentro del proceso, con la misma semántica que
// RedisLocker (token + expiración).
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]held
	ttl   time.Duration
	clock func() time.Time
}

// NewMemoryLocker construye el locker en memoria.
func NewMemoryLocker(ttl time.Duration) *MemoryLocker {
	return &MemoryLocker{held: make(map[string]held), ttl: ttl, clock: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = held{token: token, expiresAt: now.Add(l.ttl)}
	return token, true, nil
}

func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.held[key]; ok && h.token == token {
		delete(l.held, key)
	}
	return nil
}
