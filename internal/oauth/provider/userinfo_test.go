package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchUserInfo(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"subject-1","fullnameEN":"Test User","acr":"urn:assurance:level:substantial"}`))
	}))
	defer srv.Close()

	cfg := testConfig("https://idp.test/token")
	cfg.UserInfoEndpoint = srv.URL
	c := newTestClient(t, cfg)

	profile, err := c.FetchUserInfo(context.Background(), "access-token-1")
	if err != nil {
		t.Fatalf("FetchUserInfo: %v", err)
	}
	if gotAuth != "Bearer access-token-1" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if profile["sub"] != "subject-1" {
		t.Fatalf("profile sub = %v", profile["sub"])
	}
	if profile["fullnameEN"] != "Test User" {
		t.Fatalf("profile fullnameEN = %v", profile["fullnameEN"])
	}
}

func TestFetchUserInfo_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testConfig("https://idp.test/token")
	cfg.UserInfoEndpoint = srv.URL
	c := newTestClient(t, cfg)

	_, err := c.FetchUserInfo(context.Background(), "stale-token")

	var pfErr *ProfileFetchError
	if !errors.As(err, &pfErr) {
		t.Fatalf("error = %v, want *ProfileFetchError", err)
	}
	if pfErr.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", pfErr.Status)
	}
}

func TestFetchUserInfo_NullBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	cfg := testConfig("https://idp.test/token")
	cfg.UserInfoEndpoint = srv.URL
	c := newTestClient(t, cfg)

	profile, err := c.FetchUserInfo(context.Background(), "access-token-1")

	var pfErr *ProfileFetchError
	if !errors.As(err, &pfErr) {
		t.Fatalf("error = %v, want *ProfileFetchError", err)
	}
	if profile != nil {
		t.Fatalf("profile = %v, want nil", profile)
	}
}
