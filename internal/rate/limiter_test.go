package rate

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/idgate/internal/cache"
)

func TestRedisLimiterWindowKey(t *testing.T) {
	t.Parallel()

	l := NewRedisLimiter(cache.Config{Host: "127.0.0.1", Port: 6379}, "rl:login:", 30, time.Minute)

	start := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	key := l.windowKey("203.0.113.7", start)

	if !strings.HasPrefix(key, "rl:login:203.0.113.7:") {
		t.Fatalf("key = %q, want prefix + client key", key)
	}
	if !strings.HasSuffix(key, strconv.FormatInt(start.Unix(), 10)) {
		t.Fatalf("key = %q, must end with the window start", key)
	}

	// Distintas ventanas no comparten contador.
	next := l.windowKey("203.0.113.7", start.Add(time.Minute))
	if next == key {
		t.Fatal("consecutive windows must map to distinct counters")
	}

	// Espacios en la key no rompen el formato del contador.
	if got := l.windowKey("bad key", start); strings.Contains(got, " ") {
		t.Fatalf("key = %q, spaces must be sanitized", got)
	}
}

func TestRedisLimiterDefaults(t *testing.T) {
	t.Parallel()

	l := NewRedisLimiter(cache.Config{Host: "127.0.0.1"}, "", 10, time.Minute)
	if l.prefix != "rl:" {
		t.Fatalf("prefix = %q, want default rl:", l.prefix)
	}
	if l.max != 10 || l.window != time.Minute {
		t.Fatalf("limits = %d/%v", l.max, l.window)
	}
}
