package sealer

import (
	"encoding/base64"
	"testing"
)

func testKey(seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	t.Parallel()

	s, err := New(testKey(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	msg := []byte(`{"sub":"abc-123","tier":"TIER2"} ✓`)
	tok := s.Seal(msg)

	got, ok := s.Open(tok)
	if !ok {
		t.Fatal("Open returned false for a valid token")
	}
	if string(got) != string(msg) {
		t.Fatalf("plaintext mismatch: got %q want %q", got, msg)
	}
}

func TestOpen_DetectsTamper(t *testing.T) {
	t.Parallel()

	s, err := New(testKey(7))
	if err != nil {
		t.Fatal(err)
	}
	tok := s.Seal([]byte("top secret"))

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0x01 // flip
	corrupted := base64.RawURLEncoding.EncodeToString(raw)

	if _, ok := s.Open(corrupted); ok {
		t.Fatal("Open accepted a tampered token")
	}
}

func TestOpen_WrongKey(t *testing.T) {
	t.Parallel()

	a, _ := New(testKey(1))
	b, _ := New(testKey(2))

	tok := a.Seal([]byte("cross-key"))
	if _, ok := b.Open(tok); ok {
		t.Fatal("token sealed with one key opened with another")
	}
}

func TestOpen_GarbageInput(t *testing.T) {
	t.Parallel()

	s, _ := New(testKey(3))
	for _, tok := range []string{"", "x", "not$base64url", base64.RawURLEncoding.EncodeToString([]byte("short"))} {
		if _, ok := s.Open(tok); ok {
			t.Fatalf("Open accepted garbage input %q", tok)
		}
	}
}

func TestNew_RejectsBadKeys(t *testing.T) {
	t.Parallel()

	if _, err := New("not base64"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	if _, err := New(short); err == nil {
		t.Fatal("expected error for short key")
	}
}
