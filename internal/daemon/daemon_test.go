package daemon

import (
	"context"
	"testing"
)

func TestDaemonSingleInstance(t *testing.T) {
	h := newTestHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.daemon.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.daemon.Stop()

	if h.daemon.Addr() == "" {
		t.Fatal("expected bound api address")
	}

	second, err := New(h.daemon.cfg, h.store, h.hub, h.service, h.runner, h.daemon.logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be rejected")
	}

	h.daemon.Stop()

	if err := second.Start(ctx); err != nil {
		t.Fatalf("restart after release: %v", err)
	}
	second.Stop()
}
