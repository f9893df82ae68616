package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d unexpectedly limited", i)
		}
		if want := int64(3 - i); res.Remaining != want {
			t.Fatalf("hit %d remaining: got %d want %d", i, res.Remaining, want)
		}
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("fourth hit allowed past the limit")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter not set: %v", res.RetryAfter)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "a"); !res.Allowed {
		t.Fatal("first hit for a limited")
	}
	if res, _ := l.Allow(ctx, "a"); res.Allowed {
		t.Fatal("second hit for a allowed")
	}
	if res, _ := l.Allow(ctx, "b"); !res.Allowed {
		t.Fatal("b limited by a's window")
	}
}

func TestMemoryLimiter_WindowReset(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(1, 40*time.Millisecond)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatal("first hit limited")
	}
	if res, _ := l.Allow(ctx, "k"); res.Allowed {
		t.Fatal("second hit in same window allowed")
	}

	time.Sleep(90 * time.Millisecond)
	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatal("hit after window rollover limited")
	}
}
