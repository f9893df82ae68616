// Package provider implements the OIDC client against the upstream identity
// provider: authorization URL construction, the authorization-code exchange
// with its retry/DNS-fallback policy, ID token verification and userinfo
// retrieval.
package provider

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Config holds the static provider configuration. All endpoints are
// configured, not discovered: the provider contract is fixed.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string

	// Issuer is the expected iss claim. When empty it defaults to the
	// authorization endpoint origin.
	Issuer string

	AuthorizationEndpoint string
	TokenEndpoint         string
	UserInfoEndpoint      string
	JWKSEndpoint          string
	LogoutEndpoint        string

	// ACRValues is the fixed minimum assurance hint sent on every
	// authorization request.
	ACRValues string

	// ExchangeTimeout bounds the whole ExchangeCode operation, retries and
	// fallback included. Default 30s.
	ExchangeTimeout time.Duration

	// HTTPTimeout bounds the shorter calls (JWKS, userinfo). Default 10s.
	HTTPTimeout time.Duration
}

func (c *Config) validate() error {
	var missing []string
	for name, v := range map[string]string{
		"client_id":              c.ClientID,
		"client_secret":          c.ClientSecret,
		"redirect_uri":           c.RedirectURI,
		"authorization_endpoint": c.AuthorizationEndpoint,
		"token_endpoint":         c.TokenEndpoint,
		"userinfo_endpoint":      c.UserInfoEndpoint,
		"jwks_endpoint":          c.JWKSEndpoint,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("provider: missing config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Client is the OIDC client. Safe for concurrent use.
type Client struct {
	cfg Config

	transport Transport
	resolver  Resolver

	// jwksGroup dedupes concurrent key-set fetches; the key set itself is
	// refetched per validation to tolerate provider key rotation.
	jwksGroup singleflight.Group
}

// Option customizes the client (tests swap transport and resolver).
type Option func(*Client)

// WithTransport replaces the HTTP transport used for provider calls.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithResolver replaces the DNS resolver used by the pinned-IP fallback.
func WithResolver(r Resolver) Option {
	return func(c *Client) { c.resolver = r }
}

// New builds a provider client, failing fast on incomplete configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.ExchangeTimeout <= 0 {
		cfg.ExchangeTimeout = 30 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}

	c := &Client{
		cfg:       cfg,
		transport: newStandardTransport(cfg.HTTPTimeout),
		resolver:  systemResolver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AuthURL builds the authorization request URL. Pure function of its inputs
// plus static configuration.
func (c *Client) AuthURL(state, nonce, challenge string) string {
	u, _ := url.Parse(c.cfg.AuthorizationEndpoint)
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("scope", c.cfg.Scope)
	q.Set("state", state)
	q.Set("nonce", nonce)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	if c.cfg.ACRValues != "" {
		q.Set("acr_values", c.cfg.ACRValues)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// LogoutURL returns the provider's logout endpoint.
func (c *Client) LogoutURL() string {
	return c.cfg.LogoutEndpoint
}

func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
