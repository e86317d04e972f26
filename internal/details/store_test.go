package details

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(8, time.Minute)

	rec := Record{Found: true, Source: "wa_dnr", ViewerID: "1", Properties: map[string]any{"material": "Rock"}}
	if err := s.Set(ctx, "details:k", rec); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, "details:k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Source != "wa_dnr" || got.Properties["material"] != "Rock" {
		t.Errorf("record = %+v", got)
	}

	if _, ok, _ := s.Get(ctx, "details:other"); ok {
		t.Error("unexpected hit for an unknown key")
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(8, 30*time.Millisecond)

	_ = s.Set(ctx, "details:k", Record{Found: true})
	if _, ok, _ := s.Get(ctx, "details:k"); !ok {
		t.Fatal("expected a hit before the TTL elapses")
	}

	time.Sleep(80 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "details:k"); ok {
		t.Fatal("expected a miss after the TTL elapses")
	}
}

func TestMemoryStorePurge(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(8, time.Minute)

	_ = s.Set(ctx, "details:a", Record{Found: true})
	_ = s.Set(ctx, "details:b", Record{Found: true})
	if err := s.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "details:a"); ok {
		t.Error("purged entry still present")
	}
}
