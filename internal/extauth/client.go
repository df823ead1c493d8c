// Package extauth talks to the external identity provider that the
// mobile app's social login goes through. The app hands us the
// provider's session ID and we exchange it for a verified identity.
package extauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Identity is what the provider vouches for.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if a provider URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// VerifySession exchanges the provider's session ID for the identity it
// belongs to. An unknown or expired session ID yields an error.
func (c *Client) VerifySession(ctx context.Context, sessionID string) (*Identity, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("external auth not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/session/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify session: provider returned %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	if id.Email == "" {
		return nil, fmt.Errorf("provider returned identity without email")
	}
	return &id, nil
}
