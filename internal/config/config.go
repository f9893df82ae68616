// Package config carga la configuración del proceso una sola vez (YAML +
// overrides por environment) y la valida de forma estricta en el arranque.
// Los componentes reciben la struct por inyección; nadie lee os.Getenv en
// caliente.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Provider: endpoints y credenciales del IdP OIDC upstream.
	Provider struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURI  string `yaml:"redirect_uri"`
		Scope        string `yaml:"scope"`
		Issuer       string `yaml:"issuer"`

		AuthorizationEndpoint string `yaml:"authorization_endpoint"`
		TokenEndpoint         string `yaml:"token_endpoint"`
		UserInfoEndpoint      string `yaml:"userinfo_endpoint"`
		JWKSEndpoint          string `yaml:"jwks_endpoint"`
		LogoutEndpoint        string `yaml:"logout_endpoint"`

		// ACRValues es el hint fijo de nivel mínimo de assurance pedido al IdP.
		ACRValues string `yaml:"acr_values"`

		// StrictIDToken: si true, una validación fallida del id_token aborta el
		// flujo. Default false (comportamiento observado del proveedor: log y
		// seguir). Ver DESIGN.md.
		StrictIDToken bool `yaml:"strict_id_token"`

		ExchangeTimeout time.Duration `yaml:"exchange_timeout"` // default 30s
		HTTPTimeout     time.Duration `yaml:"http_timeout"`     // default 10s
	} `yaml:"provider"`

	CRM struct {
		BaseURL  string `yaml:"base_url"`
		APIToken string `yaml:"api_token"`
		Version  string `yaml:"version"`

		DefaultCountry     string `yaml:"default_country"`     // ISO 3166-1 alpha-2
		DefaultLocale      string `yaml:"default_locale"`      // ej: "en"
		DefaultNationality string `yaml:"default_nationality"` // fallback alpha-2
		PlaceholderDomain  string `yaml:"placeholder_domain"`  // para emails sintetizados

		// RequireNationalID: política de acceso. Si true, identidades TIER1 sin
		// national ID bien formado no pasan el gate.
		RequireNationalID bool `yaml:"require_national_id"`

		RedirectURL string `yaml:"redirect_url"` // destino post direct-login
		LogoutURL   string `yaml:"logout_url"`

		Timeout time.Duration `yaml:"timeout"` // default 10s
	} `yaml:"crm"`

	Session struct {
		// Secret: base64(32 bytes) para sellar session y auth-state.
		Secret     string        `yaml:"secret"`
		CookieName string        `yaml:"cookie_name"`
		Path       string        `yaml:"path"`
		Secure     bool          `yaml:"secure"`
		TTL        time.Duration `yaml:"ttl"`       // default 1h
		StateTTL   time.Duration `yaml:"state_ttl"` // default 10m
	} `yaml:"session"`

	Cache struct {
		Driver string `yaml:"driver"` // "memory" | "redis"
		Redis  struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Audit struct {
		// PostgresDSN: si está presente, los eventos de auditoría se persisten
		// en Postgres; si no, van al log estructurado.
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"audit"`
}

// Load lee el YAML (opcional), aplica overrides de environment, defaults y
// valida. Falla rápido y ruidoso ante configuración requerida faltante.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	envStr("APP_ENV", &c.App.Env)
	envStr("SERVER_ADDR", &c.Server.Addr)
	envStr("LOG_LEVEL", &c.Log.Level)

	envStr("PROVIDER_CLIENT_ID", &c.Provider.ClientID)
	envStr("PROVIDER_CLIENT_SECRET", &c.Provider.ClientSecret)
	envStr("PROVIDER_REDIRECT_URI", &c.Provider.RedirectURI)
	envStr("PROVIDER_SCOPE", &c.Provider.Scope)
	envStr("PROVIDER_ISSUER", &c.Provider.Issuer)
	envStr("PROVIDER_AUTHORIZATION_ENDPOINT", &c.Provider.AuthorizationEndpoint)
	envStr("PROVIDER_TOKEN_ENDPOINT", &c.Provider.TokenEndpoint)
	envStr("PROVIDER_USERINFO_ENDPOINT", &c.Provider.UserInfoEndpoint)
	envStr("PROVIDER_JWKS_ENDPOINT", &c.Provider.JWKSEndpoint)
	envStr("PROVIDER_LOGOUT_ENDPOINT", &c.Provider.LogoutEndpoint)
	envStr("PROVIDER_ACR_VALUES", &c.Provider.ACRValues)
	envBool("PROVIDER_STRICT_ID_TOKEN", &c.Provider.StrictIDToken)

	envStr("CRM_BASE_URL", &c.CRM.BaseURL)
	envStr("CRM_API_TOKEN", &c.CRM.APIToken)
	envStr("CRM_VERSION", &c.CRM.Version)
	envStr("CRM_DEFAULT_COUNTRY", &c.CRM.DefaultCountry)
	envStr("CRM_DEFAULT_LOCALE", &c.CRM.DefaultLocale)
	envStr("CRM_DEFAULT_NATIONALITY", &c.CRM.DefaultNationality)
	envStr("CRM_REDIRECT_URL", &c.CRM.RedirectURL)
	envStr("CRM_LOGOUT_URL", &c.CRM.LogoutURL)
	envBool("CRM_REQUIRE_NATIONAL_ID", &c.CRM.RequireNationalID)

	envStr("SESSION_SECRET", &c.Session.Secret)
	envStr("SESSION_COOKIE_NAME", &c.Session.CookieName)
	envBool("SESSION_SECURE", &c.Session.Secure)

	envStr("CACHE_DRIVER", &c.Cache.Driver)
	envStr("CACHE_REDIS_HOST", &c.Cache.Redis.Host)
	envInt("CACHE_REDIS_PORT", &c.Cache.Redis.Port)
	envStr("CACHE_REDIS_PASSWORD", &c.Cache.Redis.Password)

	envStr("AUDIT_POSTGRES_DSN", &c.Audit.PostgresDSN)
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Provider.Scope == "" {
		c.Provider.Scope = "openid profile email"
	}
	if c.Provider.ExchangeTimeout <= 0 {
		c.Provider.ExchangeTimeout = 30 * time.Second
	}
	if c.Provider.HTTPTimeout <= 0 {
		c.Provider.HTTPTimeout = 10 * time.Second
	}
	if c.CRM.Timeout <= 0 {
		c.CRM.Timeout = 10 * time.Second
	}
	if c.CRM.DefaultCountry == "" {
		c.CRM.DefaultCountry = "AE"
	}
	if c.CRM.DefaultLocale == "" {
		c.CRM.DefaultLocale = "en"
	}
	if c.CRM.DefaultNationality == "" {
		c.CRM.DefaultNationality = c.CRM.DefaultCountry
	}
	if c.CRM.PlaceholderDomain == "" {
		c.CRM.PlaceholderDomain = "placeholder.invalid"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "idgate_session"
	}
	if c.Session.Path == "" {
		c.Session.Path = "/auth"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = time.Hour
	}
	if c.Session.StateTTL <= 0 {
		c.Session.StateTTL = 10 * time.Minute
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Rate.Login.Limit <= 0 {
		c.Rate.Login.Limit = 30
	}
	if c.Rate.Login.Window <= 0 {
		c.Rate.Login.Window = time.Minute
	}
}

// Validate verifica los valores requeridos. Se llama una vez en el arranque;
// un error acá debe tumbar el proceso.
func (c *Config) Validate() error {
	var missing []string

	req := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}

	req("provider.client_id", c.Provider.ClientID)
	req("provider.client_secret", c.Provider.ClientSecret)
	req("provider.redirect_uri", c.Provider.RedirectURI)
	req("provider.authorization_endpoint", c.Provider.AuthorizationEndpoint)
	req("provider.token_endpoint", c.Provider.TokenEndpoint)
	req("provider.userinfo_endpoint", c.Provider.UserInfoEndpoint)
	req("provider.jwks_endpoint", c.Provider.JWKSEndpoint)
	req("provider.logout_endpoint", c.Provider.LogoutEndpoint)
	req("crm.base_url", c.CRM.BaseURL)
	req("crm.api_token", c.CRM.APIToken)
	req("crm.version", c.CRM.Version)
	req("crm.redirect_url", c.CRM.RedirectURL)
	req("session.secret", c.Session.Secret)

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required values: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsProd reporta si el entorno es producción (afecta cookies Secure y logging).
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

func envStr(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}
