package goSession

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseSchedule(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"@every 1m", time.Minute},
		{"@every 90s", 90 * time.Second},
		{"  @every  250ms ", 250 * time.Millisecond},
		{"45s", 45 * time.Second},
	}
	for _, tc := range cases {
		got, err := parseSchedule(tc.in)
		if err != nil {
			t.Fatalf("parseSchedule(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseSchedule(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "@every", "@every soon", "@every -1m", "-5s", "@hourly"} {
		if _, err := parseSchedule(bad); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("parseSchedule(%q): expected ErrInvalidConfig, got %v", bad, err)
		}
	}
}

func TestNewSweeperValidation(t *testing.T) {
	store, _, done := newStoreTest(t, FlushModeOnSave)
	defer done()

	if _, err := NewSweeper(nil, ""); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewSweeper(store, "@every never"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	w, err := NewSweeper(store, "")
	if err != nil {
		t.Fatalf("default schedule rejected: %v", err)
	}
	if w.interval != time.Minute {
		t.Fatalf("default interval: got %v want %v", w.interval, time.Minute)
	}
}

func TestRunOnceSkipsWhenSweepInFlight(t *testing.T) {
	store, _, done := newStoreTest(t, FlushModeOnSave)
	defer done()

	w, err := NewSweeper(store, "@every 1m")
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	w.running.Store(true)
	swept, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("guarded run: %v", err)
	}
	if swept != 0 {
		t.Fatalf("guarded run swept %d rows", swept)
	}

	w.running.Store(false)
	saveBackdated(t, store, "", 2*time.Hour, time.Hour)
	swept, err = w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept: got %d want 1", swept)
	}
}

func TestSweeperLifecycle(t *testing.T) {
	store, rdb, done := newStoreTest(t, FlushModeOnSave)
	defer done()
	ctx := context.Background()

	expired := saveBackdated(t, store, "", 2*time.Hour, time.Hour)

	w, err := NewSweeper(store, "@every 10ms")
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	w.Start()
	w.Start() // idempotent

	deadline := time.Now().Add(5 * time.Second)
	for {
		n, err := rdb.Exists(ctx, store.key(expired.ID())).Result()
		if err != nil {
			t.Fatalf("exists: %v", err)
		}
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sweeper never evicted the expired session")
		}
		time.Sleep(5 * time.Millisecond)
	}

	w.Stop()
	w.Stop() // idempotent
}

func TestSweeperStopWithoutStart(t *testing.T) {
	store, _, done := newStoreTest(t, FlushModeOnSave)
	defer done()

	w, err := NewSweeper(store, "@every 1m")
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	finished := make(chan struct{})
	go func() {
		w.Stop()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running loop")
	}
}
