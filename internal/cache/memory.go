package cache

import (
	"sync"
)

// memoryTier keeps artifacts already loaded by this process. RWMutex lets many
// report builders read concurrently while a miss takes the write lock.
type memoryTier struct {
	mu      sync.RWMutex
	entries map[string]*artifact
}

func newMemoryTier() *memoryTier {
	return &memoryTier{entries: make(map[string]*artifact)}
}

func (m *memoryTier) get(key string) (*artifact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.entries[key]
	return a, ok
}

func (m *memoryTier) put(a *artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[a.Key] = a
}

func (m *memoryTier) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *memoryTier) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*artifact)
}

func (m *memoryTier) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
