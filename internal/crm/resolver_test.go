package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idgate/internal/identity"
)

// searchCall is one recorded POST /users body.
type searchCall struct {
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	CustomFields map[string]string `json:"customFields"`
}

func (c searchCall) label() string {
	switch {
	case len(c.CustomFields) > 0:
		for k := range c.CustomFields {
			return "cf:" + k
		}
		return "cf"
	case c.Email != "":
		return "email"
	case c.Phone != "":
		return "phone"
	}
	return "?"
}

// crmFake is a scripted CRM for resolver tests: each search body is matched
// against the configured responders in order.
type crmFake struct {
	mu    sync.Mutex
	calls []searchCall

	// respond decides the reply for one search body.
	respond func(c searchCall) (status int, accounts []Account)
}

func (f *crmFake) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			http.NotFound(w, r)
			return
		}
		var c searchCall
		_ = json.NewDecoder(r.Body).Decode(&c)

		f.mu.Lock()
		f.calls = append(f.calls, c)
		f.mu.Unlock()

		status, accounts := f.respond(c)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status/100 == 2 {
			_ = json.NewEncoder(w).Encode(accounts)
		} else {
			_, _ = w.Write([]byte(`{"message":"boom"}`))
		}
	})
}

func (f *crmFake) callLabels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.label())
	}
	return out
}

func newTestResolver(t *testing.T, fake *crmFake) *Resolver {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{
		BaseURL:  srv.URL,
		APIToken: "test-token",
		Version:  "1.0",
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)
	return NewResolver(client)
}

func TestFindExisting_LinkageEmailBeatsPlainEmail(t *testing.T) {
	t.Parallel()

	linked := Account{ID: "linked-1", Email: "linked@crm.test"}
	plain := Account{ID: "plain-2", Email: "user@example.com"}

	fake := &crmFake{respond: func(c searchCall) (int, []Account) {
		if c.CustomFields[FieldIdPEmail] == "user@example.com" {
			return 200, []Account{linked}
		}
		if c.Email == "user@example.com" {
			return 200, []Account{plain}
		}
		return 200, nil
	}}

	r := newTestResolver(t, fake)
	acc, err := r.FindExisting(context.Background(), identity.Canonical{
		Subject: "s",
		Email:   "user@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "linked-1", acc.ID, "linkage custom field must win over plain email")
	require.Equal(t, []string{"cf:" + FieldIdPEmail}, fake.callLabels(), "search must stop at the first hit")
}

func TestFindExisting_PrecedenceOrderOnExhaustion(t *testing.T) {
	t.Parallel()

	fake := &crmFake{respond: func(c searchCall) (int, []Account) {
		return 200, nil
	}}

	r := newTestResolver(t, fake)
	_, err := r.FindExisting(context.Background(), identity.Canonical{
		Subject:    "s",
		UUID:       "uuid-1",
		Email:      "user@example.com",
		NationalID: "784199012345678",
		Mobile:     "971501234567",
	})
	require.ErrorIs(t, err, ErrNoMatch)

	require.Equal(t, []string{
		"cf:" + FieldIdPEmail,
		"cf:" + FieldIdPUUID,
		"email",
		"cf:" + FieldIdPNationalID,
		"phone",
	}, fake.callLabels())

	// The phone search must carry the normalized leading "+".
	require.Equal(t, "+971501234567", fake.calls[len(fake.calls)-1].Phone)
}

func TestFindExisting_LookupFailureDegradesToNextIdentifier(t *testing.T) {
	t.Parallel()

	plain := Account{ID: "plain-2", Email: "user@example.com"}
	fake := &crmFake{respond: func(c searchCall) (int, []Account) {
		if len(c.CustomFields) > 0 {
			return 500, nil // CF index down
		}
		if c.Email == "user@example.com" {
			return 200, []Account{plain}
		}
		return 200, nil
	}}

	r := newTestResolver(t, fake)
	acc, err := r.FindExisting(context.Background(), identity.Canonical{
		Subject: "s",
		UUID:    "uuid-1",
		Email:   "user@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "plain-2", acc.ID, "failed CF lookups must degrade, not abort")
}

func TestFindExisting_SkipsUnavailableIdentifiers(t *testing.T) {
	t.Parallel()

	fake := &crmFake{respond: func(c searchCall) (int, []Account) {
		return 200, nil
	}}

	r := newTestResolver(t, fake)
	_, err := r.FindExisting(context.Background(), identity.Canonical{
		Subject: "s",
		Email:   identity.Unavailable,
		Mobile:  "971501234567",
	})
	require.ErrorIs(t, err, ErrNoMatch)
	require.Equal(t, []string{"phone"}, fake.callLabels(), "sentinel identifiers must not be searched")
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	require.Equal(t, "+971501234567", NormalizePhone("971501234567"))
	require.Equal(t, "+971501234567", NormalizePhone("+971501234567"))
	require.Equal(t, "", NormalizePhone("  "))
}
