package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ClientConfig configures the CRM REST client.
type ClientConfig struct {
	BaseURL  string
	APIToken string
	Version  string
	Timeout  time.Duration
}

// Client is a thin CRM REST client. One base URL, one static bearer token,
// one version query param on every call.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient builds a CRM client, failing fast on missing configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	var missing []string
	for name, v := range map[string]string{
		"base_url":  cfg.BaseURL,
		"api_token": cfg.APIToken,
		"version":   cfg.Version,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("crm: missing config: %s", strings.Join(missing, ", "))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	u += "?" + url.Values{"version": {c.cfg.Version}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode/100 != 2 {
		return &apiError{Status: resp.StatusCode, Body: raw}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("crm: decode response: %w", err)
		}
	}
	return nil
}

// search runs POST /users with the given body and returns the first hit, or
// (nil, nil) when the result set is empty.
func (c *Client) search(ctx context.Context, body any) (*Account, error) {
	var accounts []Account
	if err := c.post(ctx, "/users", body, &accounts); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

// SearchByEmail looks up an account by its plain email field.
func (c *Client) SearchByEmail(ctx context.Context, email string) (*Account, error) {
	return c.search(ctx, map[string]string{"email": email})
}

// SearchByPhone looks up an account by phone number.
func (c *Client) SearchByPhone(ctx context.Context, phone string) (*Account, error) {
	return c.search(ctx, map[string]string{"phone": phone})
}

// SearchByCustomField looks up an account by one linkage custom field.
func (c *Client) SearchByCustomField(ctx context.Context, key, value string) (*Account, error) {
	return c.search(ctx, map[string]any{
		"customFields": map[string]string{key: value},
	})
}

// Register creates a new account via POST /users/new.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	var acc Account
	if err := c.post(ctx, "/users/new", req, &acc); err != nil {
		if apiErr, ok := err.(*apiError); ok {
			return nil, classifyRegistration(apiErr)
		}
		return nil, &RegistrationError{
			Category: RegOtherValidation,
			Message:  "registration request failed",
			Cause:    err,
		}
	}
	return &acc, nil
}

// UpdateCustomFields writes linkage fields onto an existing account.
func (c *Client) UpdateCustomFields(ctx context.Context, userID string, fields map[string]string) error {
	return c.post(ctx, "/users/update", map[string]any{
		"user":         userID,
		"customFields": fields,
	}, nil)
}

// DirectLoginURL requests a one-time authenticated redirect URL for the
// account.
func (c *Client) DirectLoginURL(ctx context.Context, userID, locale, redirectURL, logoutURL string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := c.post(ctx, "/user/direct_login", map[string]any{
		"user":        userID,
		"locale":      locale,
		"redirectUrl": redirectURL,
		"logoutUrl":   logoutURL,
		"isClientApi": false,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("crm: direct_login response missing url")
	}
	return out.URL, nil
}

// classifyRegistration translates a CRM validation response into one of the
// fixed registration categories. Field-level errors win over message text.
func classifyRegistration(apiErr *apiError) *RegistrationError {
	var parsed struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(apiErr.Body, &parsed)

	dup := func(msgs []string) bool {
		for _, m := range msgs {
			lm := strings.ToLower(m)
			if strings.Contains(lm, "already") || strings.Contains(lm, "registered") || strings.Contains(lm, "exists") {
				return true
			}
		}
		return false
	}

	if msgs, ok := parsed.Errors["phone"]; ok && dup(msgs) {
		return &RegistrationError{
			Category: RegDuplicatePhone,
			Message:  "an account with this phone number already exists",
			Cause:    apiErr,
		}
	}
	if msgs, ok := parsed.Errors["email"]; ok && dup(msgs) {
		return &RegistrationError{
			Category: RegDuplicateEmail,
			Message:  "an account with this email already exists",
			Cause:    apiErr,
		}
	}

	lm := strings.ToLower(parsed.Message)
	if strings.Contains(lm, "phone") && (strings.Contains(lm, "already") || strings.Contains(lm, "registered")) {
		return &RegistrationError{
			Category: RegDuplicatePhone,
			Message:  "an account with this phone number already exists",
			Cause:    apiErr,
		}
	}
	if strings.Contains(lm, "email") && (strings.Contains(lm, "already") || strings.Contains(lm, "registered")) {
		return &RegistrationError{
			Category: RegDuplicateEmail,
			Message:  "an account with this email already exists",
			Cause:    apiErr,
		}
	}

	return &RegistrationError{
		Category: RegOtherValidation,
		Message:  "the CRM rejected the registration",
		Cause:    apiErr,
	}
}
