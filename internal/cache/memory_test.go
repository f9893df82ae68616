package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGetDelete(t *testing.T) {
	t.Parallel()

	c := NewMemory("test")
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	v, err := c.Get(ctx, "k")
	if err != nil || v != "v" {
		t.Fatalf("Get: %q %v", v, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestMemory_SetNX(t *testing.T) {
	t.Parallel()

	c := NewMemory("test")
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "once", "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX: ok=%v err=%v", ok, err)
	}
	ok, err = c.SetNX(ctx, "once", "2", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("second SetNX succeeded for existing key")
	}

	// original value untouched
	v, _ := c.Get(ctx, "once")
	if v != "1" {
		t.Fatalf("value overwritten: %q", v)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	t.Parallel()

	c := NewMemory("test")
	ctx := context.Background()

	if err := c.Set(ctx, "short", "v", 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); !IsNotFound(err) {
		t.Fatalf("expected expiry, got %v", err)
	}

	// expired key can be re-acquired via SetNX
	ok, _ := c.SetNX(ctx, "short", "again", time.Minute)
	if !ok {
		t.Fatal("SetNX failed on expired key")
	}
}

func TestNew_DriverSelection(t *testing.T) {
	t.Parallel()

	c, err := New(Config{Driver: "memory"})
	if err != nil || c == nil {
		t.Fatalf("memory driver: %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("memory ping: %v", err)
	}
}
