package service

import (
	"strings"
	"sync"
	"time"
)

// CounterStore lleva contadores de requests por cliente dentro de una ventana.
// Incr devuelve el conteo actual y cuanto falta para el reinicio de la ventana.
type CounterStore interface {
	Incr(key string, window time.Duration) (count int, retryAfter time.Duration, err error)
}

type counterEntry struct {
	count   int
	resetAt time.Time
}

type memoryCounterStore struct {
	mu    sync.Mutex
	items map[string]*counterEntry
	now   func() time.Time
}

// NewMemoryCounterStore crea un CounterStore en memoria para un solo proceso.
func NewMemoryCounterStore() *memoryCounterStore {
	return &memoryCounterStore{
		items: make(map[string]*counterEntry),
		now:   time.Now,
	}
}

func (s *memoryCounterStore) Incr(key string, window time.Duration) (int, time.Duration, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	if window <= 0 {
		window = time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.items[key]
	if !ok || now.After(entry.resetAt) {
		entry = &counterEntry{count: 0, resetAt: now.Add(window)}
		s.items[key] = entry
	}
	entry.count++
	return entry.count, entry.resetAt.Sub(now), nil
}

// Reset limpia todos los contadores. Pensado para tests.
func (s *memoryCounterStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*counterEntry)
}
