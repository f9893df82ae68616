package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
provider:
  client_id: client-1
  client_secret: secret-1
  redirect_uri: https://gateway.test/auth/callback
  authorization_endpoint: https://idp.test/authorize
  token_endpoint: https://idp.test/token
  userinfo_endpoint: https://idp.test/userinfo
  jwks_endpoint: https://idp.test/jwks
  logout_endpoint: https://idp.test/logout
crm:
  base_url: https://crm.test/api
  api_token: crm-token-1
  version: "1.0"
  redirect_url: https://portal.test/home
session:
  secret: c2VjcmV0LXNlY3JldC1zZWNyZXQtc2VjcmV0ISE=
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Env != "dev" {
		t.Fatalf("env = %q, want dev", cfg.App.Env)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Provider.Scope != "openid profile email" {
		t.Fatalf("scope = %q", cfg.Provider.Scope)
	}
	if cfg.Provider.ExchangeTimeout != 30*time.Second {
		t.Fatalf("exchange timeout = %v", cfg.Provider.ExchangeTimeout)
	}
	if cfg.Provider.StrictIDToken {
		t.Fatal("strict id token must default to false")
	}
	if cfg.Session.CookieName != "idgate_session" || cfg.Session.Path != "/auth" {
		t.Fatalf("session cookie defaults: %q %q", cfg.Session.CookieName, cfg.Session.Path)
	}
	if cfg.Session.TTL != time.Hour || cfg.Session.StateTTL != 10*time.Minute {
		t.Fatalf("session ttl defaults: %v %v", cfg.Session.TTL, cfg.Session.StateTTL)
	}
	if cfg.Cache.Driver != "memory" {
		t.Fatalf("cache driver = %q", cfg.Cache.Driver)
	}
	if cfg.CRM.DefaultNationality != cfg.CRM.DefaultCountry {
		t.Fatalf("default nationality must follow default country, got %q", cfg.CRM.DefaultNationality)
	}
	if cfg.IsProd() {
		t.Fatal("dev must not report prod")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	yaml := strings.Replace(minimalYAML, "client_secret: secret-1", "", 1)

	_, err := Load(writeConfig(t, yaml))
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "provider.client_secret") {
		t.Fatalf("error must name the missing key, got: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PROVIDER_CLIENT_ID", "env-client")
	t.Setenv("PROVIDER_STRICT_ID_TOKEN", "true")
	t.Setenv("CACHE_DRIVER", "redis")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.ClientID != "env-client" {
		t.Fatalf("client id = %q, env must win over yaml", cfg.Provider.ClientID)
	}
	if !cfg.Provider.StrictIDToken {
		t.Fatal("strict id token env override not applied")
	}
	if cfg.Cache.Driver != "redis" {
		t.Fatalf("cache driver = %q", cfg.Cache.Driver)
	}
	if !cfg.IsProd() {
		t.Fatal("APP_ENV=prod must report prod")
	}
}

func TestLoad_NoFileFailsValidation(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("empty config must fail required-value validation")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file must error")
	}
}
