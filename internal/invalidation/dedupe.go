package invalidation

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type revisionDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func newRevisionDedupe(size int) *revisionDedupe {
	if size <= 0 {
		size = 1024
	}
	c, _ := lru.New[string, uint64](size)
	return &revisionDedupe{lru: c}
}

// returns true if rev is greater than the last applied revision
func (d *revisionDedupe) shouldApply(dataset string, rev uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(dataset); ok {
		if rev <= last {
			return false
		}
	}
	d.lru.Add(dataset, rev)
	return true
}
