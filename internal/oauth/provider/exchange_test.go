package provider

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeTransport replays a scripted sequence of round-trip outcomes and
// records every request it saw.
type fakeTransport struct {
	mu    sync.Mutex
	steps []func(*http.Request) (*http.Response, error)
	reqs  []*http.Request
	forms []url.Values
}

func (t *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reqs = append(t.reqs, req)
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		form, _ := url.ParseQuery(string(raw))
		t.forms = append(t.forms, form)
	}

	i := len(t.reqs) - 1
	if i >= len(t.steps) {
		i = len(t.steps) - 1
	}
	return t.steps[i](req)
}

func (t *fakeTransport) calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.reqs)
}

func jsonResponse(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func failWith(err error) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) { return nil, err }
}

const tokenOK = `{"access_token":"at-1","id_token":"idt-1","token_type":"Bearer","expires_in":3600}`

type staticResolver struct {
	addrs []string
	calls int
}

func (r *staticResolver) LookupHost(context.Context, string) ([]string, error) {
	r.calls++
	return r.addrs, nil
}

func testConfig(tokenEndpoint string) Config {
	return Config{
		ClientID:              "client-1",
		ClientSecret:          "secret-1",
		RedirectURI:           "https://gateway.test/auth/callback",
		Scope:                 "openid profile",
		AuthorizationEndpoint: "https://idp.test/authorize",
		TokenEndpoint:         tokenEndpoint,
		UserInfoEndpoint:      "https://idp.test/userinfo",
		JWKSEndpoint:          "https://idp.test/jwks",
		LogoutEndpoint:        "https://idp.test/logout",
		ACRValues:             "urn:assurance:substantial",
		ExchangeTimeout:       5 * time.Second,
	}
}

func newTestClient(t *testing.T, cfg Config, opts ...Option) *Client {
	t.Helper()
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestExchangeCode_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	refused := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	ft := &fakeTransport{steps: []func(*http.Request) (*http.Response, error){
		failWith(refused),
		failWith(refused),
		jsonResponse(200, tokenOK),
	}}
	c := newTestClient(t, testConfig("https://idp.test/token"), WithTransport(ft))

	start := time.Now()
	tokens, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if tokens.AccessToken != "at-1" || tokens.IDToken != "idt-1" {
		t.Fatalf("unexpected token set: %+v", tokens)
	}
	if got := ft.calls(); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
	// Backoff between attempts: 200ms then 400ms.
	if elapsed := time.Since(start); elapsed < 600*time.Millisecond {
		t.Fatalf("elapsed = %v, expected backoff of at least 600ms", elapsed)
	}

	form := ft.forms[len(ft.forms)-1]
	if form.Get("grant_type") != "authorization_code" {
		t.Fatalf("grant_type = %q", form.Get("grant_type"))
	}
	if form.Get("code") != "code-1" || form.Get("code_verifier") != "verifier-1" {
		t.Fatalf("unexpected form: %v", form)
	}
}

func TestExchangeCode_ProviderRejectionDoesNotRetry(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{steps: []func(*http.Request) (*http.Response, error){
		jsonResponse(400, `{"error":"invalid_grant","error_description":"code expired"}`),
	}}
	c := newTestClient(t, testConfig("https://idp.test/token"), WithTransport(ft))

	_, err := c.ExchangeCode(context.Background(), "stale-code", "verifier-1")

	var exchErr *ExchangeError
	if !errors.As(err, &exchErr) {
		t.Fatalf("error = %v, want *ExchangeError", err)
	}
	if exchErr.Kind != KindProvider {
		t.Fatalf("kind = %q, want %q", exchErr.Kind, KindProvider)
	}
	if got := ft.calls(); got != 1 {
		t.Fatalf("attempts = %d, a provider rejection must not be retried", got)
	}
}

func TestExchangeCode_MissingAccessTokenIsProviderError(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{steps: []func(*http.Request) (*http.Response, error){
		jsonResponse(200, `{"token_type":"Bearer"}`),
	}}
	c := newTestClient(t, testConfig("https://idp.test/token"), WithTransport(ft))

	_, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")

	var exchErr *ExchangeError
	if !errors.As(err, &exchErr) || exchErr.Kind != KindProvider {
		t.Fatalf("error = %v, want provider-kind ExchangeError", err)
	}
	if got := ft.calls(); got != 1 {
		t.Fatalf("attempts = %d, want 1", got)
	}
}

func TestExchangeCode_DeadlineYieldsTimeoutKind(t *testing.T) {
	t.Parallel()

	ft := &fakeTransport{steps: []func(*http.Request) (*http.Response, error){
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}}
	cfg := testConfig("https://idp.test/token")
	cfg.ExchangeTimeout = 50 * time.Millisecond
	c := newTestClient(t, cfg, WithTransport(ft))

	_, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")

	var exchErr *ExchangeError
	if !errors.As(err, &exchErr) {
		t.Fatalf("error = %v, want *ExchangeError", err)
	}
	if exchErr.Kind != KindTimeout {
		t.Fatalf("kind = %q, want %q", exchErr.Kind, KindTimeout)
	}
}

func TestExchangeCode_PinsIPAfterRepeatedDNSFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tokenOK))
	}))
	defer srv.Close()

	port := srv.Listener.Addr().(*net.TCPAddr).Port

	dnsErr := &net.DNSError{Err: "no such host", Name: "idp.unresolvable.invalid", IsNotFound: true}
	ft := &fakeTransport{steps: []func(*http.Request) (*http.Response, error){
		failWith(dnsErr),
		failWith(dnsErr),
		failWith(dnsErr),
	}}
	resolver := &staticResolver{addrs: []string{"127.0.0.1"}}

	// The endpoint host never resolves; the final attempt must dial the
	// pre-resolved IP directly with the same port.
	cfg := testConfig("http://idp.unresolvable.invalid:" + strconv.Itoa(port) + "/token")
	c := newTestClient(t, cfg, WithTransport(ft), WithResolver(resolver))

	tokens, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")
	if err != nil {
		t.Fatalf("ExchangeCode with pinned fallback: %v", err)
	}
	if tokens.AccessToken != "at-1" {
		t.Fatalf("access token = %q", tokens.AccessToken)
	}
	if got := ft.calls(); got != 2 {
		t.Fatalf("standard transport attempts = %d, want 2 before the pinned fallback", got)
	}
	if resolver.calls != 1 {
		t.Fatalf("resolver calls = %d, want 1", resolver.calls)
	}
}

func TestAuthURL(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, testConfig("https://idp.test/token"))
	raw := c.AuthURL("state-1", "nonce-1", "challenge-1")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	q := u.Query()
	for key, want := range map[string]string{
		"response_type":         "code",
		"client_id":             "client-1",
		"redirect_uri":          "https://gateway.test/auth/callback",
		"scope":                 "openid profile",
		"state":                 "state-1",
		"nonce":                 "nonce-1",
		"code_challenge":        "challenge-1",
		"code_challenge_method": "S256",
		"acr_values":            "urn:assurance:substantial",
	} {
		if got := q.Get(key); got != want {
			t.Fatalf("%s = %q, want %q", key, got, want)
		}
	}
}
