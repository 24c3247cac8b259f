package kv

import (
	"context"
	"errors"
	"testing"
)

func newTestGateway(t *testing.T) *BoltGateway {
	t.Helper()
	g, err := NewBoltGateway(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltGateway: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestBoltGatewayRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)

	if err := g.Set(ctx, "clusters/u/p/v/1/instance_name", "hadoop-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := g.Get(ctx, "clusters/u/p/v/1/instance_name")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "hadoop-1" {
		t.Fatalf("Get = %q, want hadoop-1", got)
	}
}

func TestBoltGatewayGetMissing(t *testing.T) {
	g := newTestGateway(t)
	_, err := g.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing key: err = %v, want ErrNotFound", err)
	}
}

func TestBoltGatewayRecurse(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)

	keys := map[string]string{
		"clusters/u/p/v/1/nodes/n1/name":   "n1",
		"clusters/u/p/v/1/nodes/n1/status": "running",
		"clusters/u/p/v/1/nodes/n2/name":   "n2",
		"clusters/u/p/v/1/status":          "ready",
	}
	for k, v := range keys {
		if err := g.Set(ctx, k, v); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	got, err := g.Recurse(ctx, "clusters/u/p/v/1/nodes")
	if err != nil {
		t.Fatalf("Recurse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recurse returned %d keys, want 3: %v", len(got), got)
	}
	if _, ok := got["clusters/u/p/v/1/status"]; ok {
		t.Fatalf("Recurse leaked a sibling key outside the prefix")
	}
}

func TestBoltGatewayRecurseMissing(t *testing.T) {
	g := newTestGateway(t)
	_, err := g.Recurse(context.Background(), "clusters/nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Recurse missing prefix: err = %v, want ErrNotFound", err)
	}
}

func TestBoltGatewayDeleteRecursive(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)

	_ = g.Set(ctx, "clusters/u/p/v/1/nodes/n1/name", "n1")
	_ = g.Set(ctx, "clusters/u/p/v/1/nodes/n1/status", "running")
	_ = g.Set(ctx, "clusters/u/p/v/1/status", "ready")

	if err := g.Delete(ctx, "clusters/u/p/v/1/nodes/n1", true); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := g.Get(ctx, "clusters/u/p/v/1/nodes/n1/name"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted key to be gone, got err = %v", err)
	}
	if _, err := g.Get(ctx, "clusters/u/p/v/1/status"); err != nil {
		t.Fatalf("sibling key should survive recursive delete: %v", err)
	}
}

func TestBoltGatewayNoPrefixCollision(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t)

	_ = g.Set(ctx, "clusters/u/p/v/1/nodes", "")
	_ = g.Set(ctx, "clusters/u/p/v/1/nodes-extra/name", "sneaky")

	got, err := g.Recurse(ctx, "clusters/u/p/v/1/nodes")
	if err != nil {
		t.Fatalf("Recurse: %v", err)
	}
	if _, ok := got["clusters/u/p/v/1/nodes-extra/name"]; ok {
		t.Fatalf("Recurse matched a key that only shares a string prefix, not a path prefix")
	}
}
