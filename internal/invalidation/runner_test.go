package invalidation

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/config"
)

type countingPurger struct {
	calls atomic.Int64
}

func (p *countingPurger) Purge(context.Context) error {
	p.calls.Add(1)
	return nil
}

func event(t *testing.T, dataset string, rev uint64) []byte {
	t.Helper()
	buf, err := json.Marshal(Event{Version: 1, Dataset: dataset, Revision: rev, TS: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestHandleMessagePurges(t *testing.T) {
	p := &countingPurger{}
	r := New(config.InvalidationCfg{}, p, nil)

	if err := r.HandleMessage(context.Background(), event(t, "landslide_v2", 7)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if n := p.calls.Load(); n != 1 {
		t.Errorf("purges = %d, want 1", n)
	}
}

func TestHandleMessageIgnoresReplays(t *testing.T) {
	p := &countingPurger{}
	r := New(config.InvalidationCfg{}, p, nil)

	ctx := context.Background()
	for _, rev := range []uint64{7, 7, 5, 8} {
		if err := r.HandleMessage(ctx, event(t, "landslide_v2", rev)); err != nil {
			t.Fatalf("HandleMessage(rev=%d): %v", rev, err)
		}
	}
	// 7 applies, the replay and the older 5 are skipped, 8 applies
	if n := p.calls.Load(); n != 2 {
		t.Errorf("purges = %d, want 2", n)
	}
}

func TestHandleMessageTracksDatasetsSeparately(t *testing.T) {
	p := &countingPurger{}
	r := New(config.InvalidationCfg{}, p, nil)

	ctx := context.Background()
	_ = r.HandleMessage(ctx, event(t, "landslide_v2", 3))
	_ = r.HandleMessage(ctx, event(t, "landslide_points", 3))
	if n := p.calls.Load(); n != 2 {
		t.Errorf("purges = %d, want 2 for distinct datasets", n)
	}
}

func TestHandleMessageRejectsBadEvents(t *testing.T) {
	p := &countingPurger{}
	r := New(config.InvalidationCfg{}, p, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		raw  []byte
	}{
		{"not json", []byte("republish!")},
		{"wrong version", []byte(`{"version":2,"dataset":"d","revision":1,"ts":"2026-08-28T00:00:00Z"}`)},
		{"missing dataset", []byte(`{"version":1,"dataset":" ","revision":1,"ts":"2026-08-28T00:00:00Z"}`)},
		{"zero revision", []byte(`{"version":1,"dataset":"d","revision":0,"ts":"2026-08-28T00:00:00Z"}`)},
		{"zero ts", []byte(`{"version":1,"dataset":"d","revision":1}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := r.HandleMessage(ctx, tc.raw); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if n := p.calls.Load(); n != 0 {
		t.Errorf("purges = %d, bad events must never purge", n)
	}
}

func TestStartDisabled(t *testing.T) {
	r := New(config.InvalidationCfg{Enabled: false}, &countingPurger{}, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start with invalidation disabled: %v", err)
	}
	r.Stop()
}

func TestShouldApply(t *testing.T) {
	d := newRevisionDedupe(4)
	if !d.shouldApply("a", 1) {
		t.Error("first revision must apply")
	}
	if d.shouldApply("a", 1) {
		t.Error("replay must not apply")
	}
	if !d.shouldApply("a", 2) {
		t.Error("newer revision must apply")
	}
	if d.shouldApply("a", 1) {
		t.Error("older revision must not apply")
	}
}
