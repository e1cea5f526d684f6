package storage

import "sync"

// MemoryStore implements Store and Watcher with in-memory state. Every
// write (Set or Delete) is fanned out to watchers; consumers that react
// to credential changes are expected to re-derive their state from the
// store, which makes self-triggered notifications harmless.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	watchers map[int]func(Change)
	nextID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		watchers: make(map[int]func(Change)),
	}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.data[key] = stored
	watchers := s.watcherSnapshot()
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(Change{Key: key, Value: stored})
	}
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	_, existed := s.data[key]
	delete(s.data, key)
	watchers := s.watcherSnapshot()
	s.mu.Unlock()

	if existed {
		for _, fn := range watchers {
			fn(Change{Key: key, Value: nil})
		}
	}
	return nil
}

func (s *MemoryStore) Watch(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// caller must hold s.mu
func (s *MemoryStore) watcherSnapshot() []func(Change) {
	out := make([]func(Change), 0, len(s.watchers))
	for _, fn := range s.watchers {
		out = append(out, fn)
	}
	return out
}
