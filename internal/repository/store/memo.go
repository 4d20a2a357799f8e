package store

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// Memo keeps recently read values in memory in front of another Store.
// Misses and writes are serialized so a slow read can never re-insert a value
// that a concurrent write already replaced.
type Memo struct {
	inner Store
	cache *lru.Cache
	mu    sync.Mutex
}

// NewMemo wraps inner with an LRU of the given size.
func NewMemo(inner Store, size int) (*Memo, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create memo cache: %w", err)
	}
	return &Memo{inner: inner, cache: cache}, nil
}

// Get serves from memory when possible; absent keys are not remembered.
func (m *Memo) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.cache.Get(key); ok {
		return v.(string), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.cache.Get(key); ok {
		return v.(string), nil
	}

	value, err := m.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	m.cache.Add(key, value)
	return value, nil
}

func (m *Memo) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.inner.Set(ctx, key, value); err != nil {
		m.cache.Remove(key)
		return err
	}
	m.cache.Add(key, value)
	return nil
}

func (m *Memo) Remove(ctx context.Context, key string) error {
	return m.RemoveMany(ctx, []string{key})
}

func (m *Memo) RemoveMany(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		m.cache.Remove(key)
	}
	return m.inner.RemoveMany(ctx, keys)
}

func (m *Memo) ListKeys(ctx context.Context) ([]string, error) {
	return m.inner.ListKeys(ctx)
}

func (m *Memo) Close(ctx context.Context) error {
	m.cache.Purge()
	return m.inner.Close(ctx)
}
