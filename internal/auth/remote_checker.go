package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var errMissingLoginURL = errors.New("auth: login url required")

// LoginRequest is the body accepted by the API login endpoint.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// LoginResponse is returned by the API login endpoint.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Subject     string `json:"subject"`
	Email       string `json:"email,omitempty"`
}

// RemoteChecker delegates the credential check to the roster API login endpoint
// and keeps the bearer token it hands back on the returned Identity.
type RemoteChecker struct {
	loginURL   string
	httpClient *http.Client
}

// NewRemoteChecker constructs a checker posting to baseURL + "/auth/login".
func NewRemoteChecker(baseURL string, httpClient *http.Client) (*RemoteChecker, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errMissingLoginURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteChecker{loginURL: trimmed + "/auth/login", httpClient: httpClient}, nil
}

// Check posts the credential pair and maps a 401 onto ErrAuthFailed.
func (c *RemoteChecker) Check(ctx context.Context, identifier, secret string) (Identity, error) {
	body, err := json.Marshal(LoginRequest{Identifier: identifier, Secret: secret})
	if err != nil {
		return Identity{}, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, bytes.NewReader(body))
	if err != nil {
		return Identity{}, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return Identity{}, fmt.Errorf("login request failed: %w", err)
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusBadRequest:
		return Identity{}, ErrAuthFailed
	default:
		return Identity{}, fmt.Errorf("login returned status %d", response.StatusCode)
	}

	var payload LoginResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return Identity{}, fmt.Errorf("decode login response: %w", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" || strings.TrimSpace(payload.Subject) == "" {
		return Identity{}, ErrAuthFailed
	}
	return Identity{Subject: payload.Subject, Email: payload.Email, Token: payload.AccessToken}, nil
}
