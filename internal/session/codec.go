// Package session seals the authenticated session and the transient per-login
// state into opaque, time-bounded tokens for cookie transport.
package session

import (
	"encoding/json"
	"time"

	"github.com/dropDatabas3/idgate/internal/identity"
	"github.com/dropDatabas3/idgate/internal/security/sealer"
)

// Session is the server-side view of an authenticated user. Created at
// callback completion, read on every request, gone on logout or expiry.
type Session struct {
	Identity    identity.Canonical `json:"identity"`
	AccessToken string             `json:"access_token"`
	IDToken     string             `json:"id_token"`
	ExpiresAt   time.Time          `json:"expires_at"`
}

// Codec seals/opens sessions and short-lived state values. An invalid or
// expired token opens as absent, indistinguishable from "never logged in".
type Codec struct {
	sealer   *sealer.Sealer
	ttl      time.Duration
	stateTTL time.Duration
}

// NewCodec builds a codec. ttl bounds sessions, stateTTL bounds the transient
// login state (long enough for the provider round trip, no longer).
func NewCodec(s *sealer.Sealer, ttl, stateTTL time.Duration) *Codec {
	return &Codec{sealer: s, ttl: ttl, stateTTL: stateTTL}
}

// TTL returns the session lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// StateTTL returns the transient state lifetime.
func (c *Codec) StateTTL() time.Duration { return c.stateTTL }

// Seal produces the opaque session token. ExpiresAt is stamped here when the
// caller left it zero.
func (c *Codec) Seal(s *Session) (string, error) {
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().Add(c.ttl)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return c.sealer.Seal(b), nil
}

// Open returns the session carried by token, or absent on any signature
// failure or expiry.
func (c *Codec) Open(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	b, ok := c.sealer.Open(token)
	if !ok {
		return nil, false
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false
	}
	if time.Now().After(s.ExpiresAt) {
		return nil, false
	}
	return &s, true
}

// stateEnvelope wraps one transient value. The kind tag prevents a sealed
// nonce from being replayed as a verifier and vice versa.
type stateEnvelope struct {
	Kind      string    `json:"k"`
	Value     string    `json:"v"`
	ExpiresAt time.Time `json:"exp"`
}

// State kinds for the three values that cross the provider redirect.
const (
	StateKindCSRF     = "state"
	StateKindNonce    = "nonce"
	StateKindVerifier = "verifier"
)

// SealState seals one transient value under its kind with the state TTL.
func (c *Codec) SealState(kind, value string) (string, error) {
	b, err := json.Marshal(stateEnvelope{
		Kind:      kind,
		Value:     value,
		ExpiresAt: time.Now().Add(c.stateTTL),
	})
	if err != nil {
		return "", err
	}
	return c.sealer.Seal(b), nil
}

// OpenState opens a transient value, absent on tamper, expiry or kind
// mismatch.
func (c *Codec) OpenState(kind, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	b, ok := c.sealer.Open(token)
	if !ok {
		return "", false
	}
	var env stateEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return "", false
	}
	if env.Kind != kind || time.Now().After(env.ExpiresAt) {
		return "", false
	}
	return env.Value, true
}
