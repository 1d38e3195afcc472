package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteCheckerReturnsTokenBearingIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil || r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if request.Secret != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(LoginResponse{
			AccessToken: "token-abc",
			ExpiresIn:   60,
			TokenType:   "Bearer",
			Subject:     request.Identifier,
			Email:       request.Identifier,
		})
	}))
	t.Cleanup(server.Close)

	checker, err := NewRemoteChecker(server.URL, server.Client())
	if err != nil {
		t.Fatalf("failed to construct checker: %v", err)
	}

	identity, err := checker.Check(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if identity.Token != "token-abc" || identity.Subject != "a@b.com" {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if _, err := checker.Check(context.Background(), "a@b.com", "wrong"); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestNewRemoteCheckerRequiresURL(t *testing.T) {
	if _, err := NewRemoteChecker(" ", nil); err == nil {
		t.Fatalf("expected error for missing url")
	}
}
