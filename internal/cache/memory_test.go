package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, time.Hour)

	if _, ok := m.Get(ctx, "missing"); ok {
		t.Errorf("Get() on empty cache should miss")
	}
	if err := m.Set(ctx, "a", "first"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, ok := m.Get(ctx, "a"); !ok || got != "first" {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	_ = m.Set(ctx, "a", "second")
	if got, _ := m.Get(ctx, "a"); got != "second" {
		t.Errorf("Set() should replace, got %q", got)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", m.Len())
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(10, time.Minute)
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "k", "v")

	now = now.Add(59 * time.Second)
	if _, ok := m.Get(ctx, "k"); !ok {
		t.Errorf("entry expired early")
	}

	now = now.Add(2 * time.Second)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Errorf("entry should have expired")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry was not removed")
	}
}

func TestMemoryEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, time.Hour)

	_ = m.Set(ctx, "a", "1")
	_ = m.Set(ctx, "b", "2")
	// Touch a so b is the least recently used.
	m.Get(ctx, "a")
	_ = m.Set(ctx, "c", "3")

	if _, ok := m.Get(ctx, "b"); ok {
		t.Errorf("least recently used entry should have been evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := m.Get(ctx, key); !ok {
			t.Errorf("entry %q should still be cached", key)
		}
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(50, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = m.Set(ctx, key, "v")
			m.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if m.Len() != 5 {
		t.Errorf("Len() = %d, expected 5", m.Len())
	}
}
