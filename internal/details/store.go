package details

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Record is the details API response for one feature.
type Record struct {
	Found      bool            `json:"found"`
	Source     string          `json:"source"`
	ViewerID   string          `json:"viewer_id"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
}

// Store caches successful detail responses for a short TTL.
type Store interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Set(ctx context.Context, key string, rec Record) error
	Purge(ctx context.Context) error
}

// MemoryStore is the default single-process cache.
type MemoryStore struct {
	lru *expirable.LRU[string, Record]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 512
	}
	return &MemoryStore{lru: expirable.NewLRU[string, Record](size, nil, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	rec, ok := m.lru.Get(key)
	return rec, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, rec Record) error {
	m.lru.Add(key, rec)
	return nil
}

func (m *MemoryStore) Purge(_ context.Context) error {
	m.lru.Purge()
	return nil
}
