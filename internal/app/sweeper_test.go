package app

import (
	"context"
	"testing"
	"time"

	"github.com/hushcall/hush/internal/core"
)

func TestSweeperEvictsStaleRooms(t *testing.T) {
	registry := core.NewRegistry(20 * time.Millisecond)
	if _, _, _, err := registry.CreateRoom("Alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Sweeper{Registry: registry, Period: 10 * time.Millisecond}
	go s.Run(ctx)

	deadline := time.After(2 * time.Second)
	for registry.Count() != 0 {
		select {
		case <-deadline:
			t.Fatalf("room not swept, count = %d", registry.Count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSweeperStopsOnCancel(t *testing.T) {
	registry := core.NewRegistry(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	s := &Sweeper{Registry: registry, Period: 10 * time.Millisecond}
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop on ctx cancel")
	}
}
