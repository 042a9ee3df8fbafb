package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultMemoryEntries bounds the in-process cache.
const DefaultMemoryEntries = 256

// Memory is an in-process LRU cache with a fixed TTL.
type Memory struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
}

type memoryItem struct {
	key       string
	value     string
	expiresAt time.Time
}

// NewMemory creates an LRU cache holding at most maxSize entries for ttl each.
func NewMemory(maxSize int, ttl time.Duration) *Memory {
	if maxSize <= 0 {
		maxSize = DefaultMemoryEntries
	}
	return &Memory{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

// Get retrieves a live value and marks it most recently used.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return "", false
	}

	item := elem.Value.(*memoryItem)
	if m.now().After(item.expiresAt) {
		m.remove(elem)
		return "", false
	}

	m.lru.MoveToFront(elem)
	return item.value, true
}

// Set stores value, evicting the least recently used entry when full.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := &memoryItem{key: key, value: value, expiresAt: m.now().Add(m.ttl)}

	if elem, ok := m.items[key]; ok {
		elem.Value = item
		m.lru.MoveToFront(elem)
		return nil
	}

	m.items[key] = m.lru.PushFront(item)
	if m.lru.Len() > m.maxSize {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

func (m *Memory) remove(elem *list.Element) {
	delete(m.items, elem.Value.(*memoryItem).key)
	m.lru.Remove(elem)
}
