package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SessionGrant is what the token-issuing collaborator returns: a short-lived
// bearer token plus fallback defaults for voice and instructions.
type SessionGrant struct {
	Token        string
	ExpiresAt    time.Time
	Voice        string
	Instructions string
}

type TokenClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTokenClient(baseURL string) *TokenClient {
	return &TokenClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
}

type sessionResponse struct {
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
	Voice        string `json:"voice"`
	Instructions string `json:"instructions"`
	Error        string `json:"error,omitempty"`
}

// Fetch requests a short-lived authorization token. No input beyond the
// implicit caller identity is required.
func (c *TokenClient) Fetch(ctx context.Context) (SessionGrant, error) {
	ctx, span := tracer.Start(ctx, "fetch session token")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session", nil)
	if err != nil {
		return SessionGrant{}, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SessionGrant{}, fmt.Errorf("failed to request session token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SessionGrant{}, fmt.Errorf("failed to create session (status %d)", resp.StatusCode)
	}

	var parsed sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return SessionGrant{}, fmt.Errorf("failed to decode session response: %w", err)
	}
	if parsed.Error != "" {
		return SessionGrant{}, fmt.Errorf("session endpoint rejected request: %s", parsed.Error)
	}
	if parsed.ClientSecret.Value == "" {
		return SessionGrant{}, fmt.Errorf("session response missing token")
	}

	grant := SessionGrant{
		Token:        parsed.ClientSecret.Value,
		Voice:        parsed.Voice,
		Instructions: parsed.Instructions,
	}
	if parsed.ClientSecret.ExpiresAt > 0 {
		grant.ExpiresAt = time.Unix(parsed.ClientSecret.ExpiresAt, 0)
	}
	return grant, nil
}
