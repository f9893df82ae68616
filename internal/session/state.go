package session

import (
	"context"
	"time"

	"github.com/dropDatabas3/idgate/internal/cache"
	tokens "github.com/dropDatabas3/idgate/internal/security/token"
)

// AuthState is the transient per-login-attempt state. Held only until a
// matching callback consumes it or the TTL elapses.
type AuthState struct {
	State        string
	Nonce        string
	CodeVerifier string
}

// StateGuard enforces single-use consumption of auth state across concurrent
// callbacks. Cookies alone can be replayed; the guard makes the first
// consumer win and every later attempt fail, on success and failure paths
// alike.
type StateGuard struct {
	cache cache.Client
	ttl   time.Duration
}

// NewStateGuard builds a guard over the shared keyed store. The TTL should
// match the auth-state TTL: after that the sealed value is dead anyway.
func NewStateGuard(c cache.Client, ttl time.Duration) *StateGuard {
	return &StateGuard{cache: c, ttl: ttl}
}

// Consume marks state as used. Returns false when it was already consumed.
// The state value is hashed before keying so the raw CSRF token never lands
// in a shared store.
func (g *StateGuard) Consume(ctx context.Context, state string) (bool, error) {
	key := "authstate:used:" + tokens.SHA256Base64URL(state)
	return g.cache.SetNX(ctx, key, "1", g.ttl)
}
