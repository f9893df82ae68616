package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/idgate/internal/observability/logger"
)

// TokenSet is the result of a successful code exchange. Produced once per
// exchange and never persisted beyond the session lifetime.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// ErrorKind classifies an exchange failure.
type ErrorKind string

const (
	// KindNetwork: transport failure (connect refused, DNS, reset).
	KindNetwork ErrorKind = "network"
	// KindTimeout: the overall exchange deadline elapsed.
	KindTimeout ErrorKind = "timeout"
	// KindProvider: the provider answered and rejected the exchange.
	KindProvider ErrorKind = "provider"
)

// ExchangeError wraps any failure of the code exchange with its kind.
type ExchangeError struct {
	Kind  ErrorKind
	Cause error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed (%s): %v", e.Kind, e.Cause)
}

func (e *ExchangeError) Unwrap() error { return e.Cause }

const (
	maxAttempts  = 3
	backoffUnit  = 200 * time.Millisecond
	dnsThreshold = 2 // consecutive DNS failures before pinning an IP
)

// ExchangeCode exchanges an authorization code for tokens.
//
// Policy: up to 3 attempts with linearly increasing backoff (200ms × attempt).
// When attempts keep failing on name resolution, the host IP is pre-resolved
// with a direct lookup and the final attempt goes straight to that IP with
// identical request semantics. The whole operation is bounded by the
// configured exchange timeout.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenSet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ExchangeTimeout)
	defer cancel()

	log := logger.From(ctx).With(logger.Component("provider.exchange"))

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}
	body := form.Encode()

	var lastErr error
	dnsFailures := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		transport := c.transport

		// Last attempt with persistent DNS trouble: resolve the IP ourselves
		// and dial it directly, Host header preserved.
		if attempt == maxAttempts && dnsFailures >= dnsThreshold {
			if ip := c.resolveHostIP(ctx); ip != "" {
				log.Warn("falling back to pinned-IP transport",
					logger.String("ip", ip),
					logger.Attempt(attempt),
				)
				transport = newPinnedTransport(ip, c.cfg.ExchangeTimeout)
			}
		}

		tokens, err := c.postTokenEndpoint(ctx, transport, body)
		if err == nil {
			return tokens, nil
		}
		lastErr = err

		var exchErr *ExchangeError
		if errors.As(err, &exchErr) && exchErr.Kind == KindProvider {
			// The provider saw and rejected the request; retrying won't help.
			return nil, err
		}
		if isDNSError(err) {
			dnsFailures++
		}
		if ctx.Err() != nil {
			return nil, &ExchangeError{Kind: KindTimeout, Cause: ctx.Err()}
		}

		log.Warn("token exchange attempt failed",
			logger.Attempt(attempt),
			logger.Err(err),
		)

		if attempt < maxAttempts {
			select {
			case <-time.After(backoffUnit * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, &ExchangeError{Kind: KindTimeout, Cause: ctx.Err()}
			}
		}
	}

	if ctx.Err() != nil {
		return nil, &ExchangeError{Kind: KindTimeout, Cause: ctx.Err()}
	}
	var exchErr *ExchangeError
	if errors.As(lastErr, &exchErr) {
		return nil, lastErr
	}
	return nil, &ExchangeError{Kind: KindNetwork, Cause: lastErr}
}

// postTokenEndpoint performs one POST to the token endpoint.
func (c *Client) postTokenEndpoint(ctx context.Context, transport Transport, body string) (*TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenEndpoint, strings.NewReader(body))
	if err != nil {
		return nil, &ExchangeError{Kind: KindNetwork, Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := transport.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &ExchangeError{Kind: KindTimeout, Cause: err}
		}
		return nil, &ExchangeError{Kind: KindNetwork, Cause: err}
	}
	defer closeBody(resp)

	if resp.StatusCode/100 != 2 {
		var b struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		return nil, &ExchangeError{
			Kind:  KindProvider,
			Cause: fmt.Errorf("token http %d: %s %s", resp.StatusCode, b.Error, b.ErrorDescription),
		}
	}

	var ts TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&ts); err != nil {
		return nil, &ExchangeError{Kind: KindProvider, Cause: fmt.Errorf("decode token response: %w", err)}
	}

	// A 2xx without an access token is still an invalid exchange.
	if ts.AccessToken == "" {
		return nil, &ExchangeError{Kind: KindProvider, Cause: errors.New("token response missing access_token")}
	}
	return &ts, nil
}

// resolveHostIP looks up the token endpoint host directly, returning the
// first address or "" when resolution fails too.
func (c *Client) resolveHostIP(ctx context.Context) string {
	u, err := url.Parse(c.cfg.TokenEndpoint)
	if err != nil {
		return ""
	}
	addrs, err := c.resolver.LookupHost(ctx, u.Hostname())
	if err != nil || len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}
