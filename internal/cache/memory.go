package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultMemoryMaxEntries bounds the fallback store when no limit is
// configured.
const DefaultMemoryMaxEntries = 4096

// MemoryStore implements Store with an in-process LRU map and per-entry
// expiry. Expired entries are cleaned lazily on access; the LRU bound
// evicts on insert. Used when the shared store is unreachable; entries
// are lost at restart, which is an accepted weakening of the shared
// backend's guarantees.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates an in-process store bounded to maxEntries
// (DefaultMemoryMaxEntries when <= 0).
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryMaxEntries
	}
	return &MemoryStore{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key, expiring it lazily if its TTL elapsed.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}

	entry := elem.Value.(*memoryEntry)
	if s.now().After(entry.expiresAt) {
		s.removeLocked(elem)
		return nil, false, nil
	}

	s.order.MoveToFront(elem)
	return entry.value, true, nil
}

// Set stores a value, evicting the least recently used entry when full.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl is mandatory for cache writes")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expiresAt = s.now().Add(ttl)
		s.order.MoveToFront(elem)
		return nil
	}

	for len(s.entries) >= s.maxEntries {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.removeLocked(oldest)
	}

	entry := &memoryEntry{key: key, value: value, expiresAt: s.now().Add(ttl)}
	s.entries[key] = s.order.PushFront(entry)
	return nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.removeLocked(elem)
	}
	return nil
}

// Healthy always reports true for the in-process store.
func (s *MemoryStore) Healthy(_ context.Context) bool { return true }

// Name identifies the backend.
func (s *MemoryStore) Name() string { return "memory" }

// Close is a no-op for the in-process store.
func (s *MemoryStore) Close() error { return nil }

// Len reports the current entry count.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) removeLocked(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	delete(s.entries, entry.key)
	s.order.Remove(elem)
}
