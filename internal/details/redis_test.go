package details

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), ttl)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisStore(t, time.Minute)

	rec := Record{Found: true, Source: "or_dogami", ViewerID: "5517", Properties: map[string]any{"confidence": "Medium"}}
	if err := s.Set(ctx, "details:k", rec); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "details:k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.ViewerID != "5517" || got.Properties["confidence"] != "Medium" {
		t.Errorf("record = %+v", got)
	}
}

func TestRedisStoreMiss(t *testing.T) {
	s, _ := newRedisStore(t, time.Minute)
	if _, ok, err := s.Get(context.Background(), "details:missing"); ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v, want clean miss", ok, err)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, time.Minute)

	_ = s.Set(ctx, "details:k", Record{Found: true})
	if _, ok, _ := s.Get(ctx, "details:k"); !ok {
		t.Fatal("expected a hit before the TTL elapses")
	}

	mr.FastForward(61 * time.Second)
	if _, ok, _ := s.Get(ctx, "details:k"); ok {
		t.Fatal("expected a miss after the TTL elapses")
	}
}

func TestRedisStorePurge(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, time.Minute)

	_ = s.Set(ctx, "details:a", Record{Found: true})
	_ = s.Set(ctx, "details:b", Record{Found: true})
	mr.Set("other:key", "stays")

	if err := s.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "details:a"); ok {
		t.Error("purged entry still present")
	}
	if !mr.Exists("other:key") {
		t.Error("purge must only remove the details keyspace")
	}
}
