// Package auth resolves the current user against the external identity
// collaborator. Resolution is best-effort: any failure is treated as
// "no identity" so chat availability never depends on auth being up.
package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

// Identity is an authenticated user as reported by the collaborator.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// Client queries the identity endpoint over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds an auth client. An empty baseURL yields a disabled
// client whose CurrentUser always reports no identity.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether the client has an endpoint to talk to.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// CurrentUser fetches the authenticated identity. The second return is
// false for anonymous visitors and for every kind of failure.
func (c *Client) CurrentUser(ctx context.Context) (Identity, bool) {
	if !c.Enabled() {
		return Identity{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return Identity{}, false
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[auth] identity lookup failed: %v", err)
		return Identity{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, false
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		log.Printf("[auth] malformed identity payload: %v", err)
		return Identity{}, false
	}
	if identity.UserID == "" {
		return Identity{}, false
	}
	return identity, true
}
