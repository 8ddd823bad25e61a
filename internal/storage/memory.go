package storage

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// Memory keeps values in an in-process cache. Nothing survives the process.
type Memory struct {
	cache *cache.Cache
}

// NewMemory returns an empty memory store whose entries never expire.
func NewMemory() *Memory {
	return &Memory{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Get implements Storage.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if x, found := m.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

// Set implements Storage.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

// Remove implements Storage.
func (m *Memory) Remove(ctx context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

// Close implements Storage.
func (m *Memory) Close() error {
	m.cache.Flush()
	return nil
}
