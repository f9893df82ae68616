package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/dropDatabas3/idgate/internal/identity"
	"github.com/dropDatabas3/idgate/internal/security/sealer"
)

func newTestCodec(t *testing.T, ttl, stateTTL time.Duration) *Codec {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	s, err := sealer.New(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatal(err)
	}
	return NewCodec(s, ttl, stateTTL)
}

func TestCodec_SessionRoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour, 10*time.Minute)

	in := &Session{
		Identity: identity.Canonical{
			Subject: "abc-123",
			Email:   "user@example.com",
			Tier:    identity.Tier2,
		},
		AccessToken: "at",
		IDToken:     "idt",
	}
	tok, err := c.Seal(in)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if in.ExpiresAt.IsZero() {
		t.Fatal("Seal must stamp ExpiresAt")
	}

	out, ok := c.Open(tok)
	if !ok {
		t.Fatal("Open returned absent for a fresh session")
	}
	if out.Identity.Subject != "abc-123" || out.Identity.Tier != identity.Tier2 {
		t.Fatalf("identity mismatch: %+v", out.Identity)
	}
	if out.AccessToken != "at" || out.IDToken != "idt" {
		t.Fatal("tokens lost in round trip")
	}
}

func TestCodec_ExpiredSessionIsAbsent(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour, 10*time.Minute)

	in := &Session{ExpiresAt: time.Now().Add(-time.Minute)}
	tok, err := c.Seal(in)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Open(tok); ok {
		t.Fatal("expired session opened as present")
	}
}

func TestCodec_TamperedSessionIsAbsent(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour, 10*time.Minute)
	tok, err := c.Seal(&Session{AccessToken: "at"})
	if err != nil {
		t.Fatal(err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)/2] ^= 0x01
	if _, ok := c.Open(base64.RawURLEncoding.EncodeToString(raw)); ok {
		t.Fatal("tampered session opened as present")
	}
	if _, ok := c.Open(""); ok {
		t.Fatal("empty token opened as present")
	}
}

func TestCodec_StateRoundTripAndKindIsolation(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour, 10*time.Minute)

	tok, err := c.SealState(StateKindNonce, "nonce-value")
	if err != nil {
		t.Fatal(err)
	}

	v, ok := c.OpenState(StateKindNonce, tok)
	if !ok || v != "nonce-value" {
		t.Fatalf("nonce round trip failed: %q %v", v, ok)
	}

	// A sealed nonce must not open as a verifier or a csrf state.
	if _, ok := c.OpenState(StateKindVerifier, tok); ok {
		t.Fatal("nonce token opened under verifier kind")
	}
	if _, ok := c.OpenState(StateKindCSRF, tok); ok {
		t.Fatal("nonce token opened under state kind")
	}
}

func TestCodec_StateExpiry(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, time.Hour, 30*time.Millisecond)

	tok, err := c.SealState(StateKindCSRF, "s")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.OpenState(StateKindCSRF, tok); ok {
		t.Fatal("expired state opened as present")
	}
}
