package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dropDatabas3/idgate/internal/identity"
)

// ProfileFetchError wraps a userinfo retrieval failure. Always fatal for the
// flow: without a profile there is nothing to normalize.
type ProfileFetchError struct {
	Status int
	Cause  error
}

func (e *ProfileFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("userinfo fetch failed: http %d", e.Status)
	}
	return fmt.Sprintf("userinfo fetch failed: %v", e.Cause)
}

func (e *ProfileFetchError) Unwrap() error { return e.Cause }

// FetchUserInfo retrieves the raw profile with Bearer auth. The loose shape
// goes straight to identity.Normalize and no further.
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (identity.RawProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoEndpoint, nil)
	if err != nil {
		return nil, &ProfileFetchError{Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, &ProfileFetchError{Cause: err}
	}
	defer closeBody(resp)

	if resp.StatusCode/100 != 2 {
		return nil, &ProfileFetchError{Status: resp.StatusCode}
	}

	var raw identity.RawProfile
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &ProfileFetchError{Cause: fmt.Errorf("decode userinfo: %w", err)}
	}
	// A literal `null` body decodes without error but leaves the map nil.
	if raw == nil {
		return nil, &ProfileFetchError{Cause: fmt.Errorf("decode userinfo: body was null")}
	}
	return raw, nil
}
