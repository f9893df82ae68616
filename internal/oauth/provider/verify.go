package provider

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ValidationError wraps any ID token validation failure. Orchestration treats
// it as advisory unless strict mode is enabled.
type ValidationError struct {
	Cause error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("id token validation: %v", e.Cause) }
func (e *ValidationError) Unwrap() error { return e.Cause }

// Claims are the verified ID token claims this system cares about.
type Claims struct {
	Subject  string
	Issuer   string
	Nonce    string
	ACR      string
	IssuedAt int64
	Raw      jwtv5.MapClaims
}

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// VerifyIDToken validates signature (against a freshly fetched key set),
// issuer, audience, nonce and expiry. The key set is refetched per validation
// so provider key rotation never strands us on a stale key; concurrent
// validations share one fetch.
func (c *Client) VerifyIDToken(ctx context.Context, idToken, expectedNonce string) (*Claims, error) {
	var header struct {
		Alg string `json:"alg"`
		Kid string `json:"kid"`
	}
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, &ValidationError{Cause: errors.New("bad jwt format")}
	}
	hb, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, &ValidationError{Cause: err}
	}
	if err := json.Unmarshal(hb, &header); err != nil {
		return nil, &ValidationError{Cause: err}
	}
	if header.Alg != "RS256" {
		return nil, &ValidationError{Cause: fmt.Errorf("unexpected alg: %s", header.Alg)}
	}

	key, err := c.rsaKeyForKid(ctx, header.Kid)
	if err != nil {
		return nil, &ValidationError{Cause: err}
	}

	tok, err := jwtv5.Parse(idToken,
		func(t *jwtv5.Token) (any, error) { return key, nil },
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithoutClaimsValidation(),
	)
	if err != nil || !tok.Valid {
		return nil, &ValidationError{Cause: errors.New("invalid signature")}
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, &ValidationError{Cause: errors.New("unexpected claims type")}
	}

	iss, _ := claims["iss"].(string)
	if !c.issuerMatches(iss) {
		return nil, &ValidationError{Cause: fmt.Errorf("bad iss: %s", iss)}
	}

	if !audienceMatches(claims["aud"], c.cfg.ClientID) {
		return nil, &ValidationError{Cause: errors.New("bad aud")}
	}

	if expectedNonce != "" {
		if got, _ := claims["nonce"].(string); got != expectedNonce {
			return nil, &ValidationError{Cause: errors.New("bad nonce")}
		}
	}

	if expf, ok := claims["exp"].(float64); ok {
		if time.Unix(int64(expf), 0).Before(time.Now().Add(-30 * time.Second)) {
			return nil, &ValidationError{Cause: errors.New("token expired")}
		}
	} else {
		return nil, &ValidationError{Cause: errors.New("missing exp")}
	}

	out := &Claims{
		Raw:     claims,
		Subject: strClaim(claims, "sub"),
		Issuer:  iss,
		Nonce:   strClaim(claims, "nonce"),
		ACR:     strClaim(claims, "acr"),
	}
	if iatf, ok := claims["iat"].(float64); ok {
		out.IssuedAt = int64(iatf)
	}
	return out, nil
}

// issuerMatches compares against the configured issuer, tolerating a trailing
// slash; the provider has shipped both spellings.
func (c *Client) issuerMatches(iss string) bool {
	if iss == "" {
		return false
	}
	expected := c.cfg.Issuer
	if expected == "" {
		expected = endpointOrigin(c.cfg.AuthorizationEndpoint)
	}
	return strings.TrimSuffix(iss, "/") == strings.TrimSuffix(expected, "/")
}

func audienceMatches(aud any, clientID string) bool {
	switch a := aud.(type) {
	case string:
		return a == clientID
	case []any:
		for _, v := range a {
			if s, _ := v.(string); s == clientID {
				return true
			}
		}
	}
	return false
}

// rsaKeyForKid fetches the current key set and returns the RSA key for kid.
func (c *Client) rsaKeyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v, err, _ := c.jwksGroup.Do(kid, func() (any, error) {
		set, err := c.fetchJWKS(ctx)
		if err != nil {
			return nil, err
		}
		for _, k := range set.Keys {
			if k.Kid == kid && strings.EqualFold(k.Kty, "RSA") {
				return parseRSAKey(k)
			}
		}
		return nil, fmt.Errorf("kid %q not found in key set", kid)
	})
	if err != nil {
		return nil, err
	}
	return v.(*rsa.PublicKey), nil
}

func (c *Client) fetchJWKS(ctx context.Context) (*jwks, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.JWKSEndpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("jwks http %d", resp.StatusCode)
	}
	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, err
	}
	return &set, nil
}

func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(nb)
	e := 65537
	if len(eb) > 0 {
		e = 0
		for _, b := range eb {
			e = (e << 8) | int(b)
		}
	}
	return &rsa.PublicKey{N: n, E: e}, nil
}

func strClaim(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}

func endpointOrigin(ep string) string {
	i := strings.Index(ep, "://")
	if i < 0 {
		return ""
	}
	rest := ep[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return ep[:i+3] + rest
}
