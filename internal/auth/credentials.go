package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrAuthFailed indicates that the credential pair was rejected.
	ErrAuthFailed = errors.New("auth: credentials rejected")
	// ErrNotAuthenticated indicates that the gate has no authenticated session.
	ErrNotAuthenticated = errors.New("auth: not authenticated")
)

// Identity describes an authenticated caller.
type Identity struct {
	Subject string `json:"subject"`
	Email   string `json:"email,omitempty"`
	// Token is the bearer token issued by a remote checker, if any.
	Token string `json:"-"`
}

// CredentialChecker decides whether an identifier/secret pair is accepted.
type CredentialChecker interface {
	Check(ctx context.Context, identifier, secret string) (Identity, error)
}

// DemoChecker accepts any well-formed credential pair without verifying it.
// It is a demonstration stand-in, not a security boundary.
type DemoChecker struct{}

// NewDemoChecker returns the non-verifying checker.
func NewDemoChecker() DemoChecker {
	return DemoChecker{}
}

// Check accepts the pair when both values are non-blank.
func (DemoChecker) Check(ctx context.Context, identifier, secret string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	normalized := strings.TrimSpace(identifier)
	if normalized == "" || strings.TrimSpace(secret) == "" {
		return Identity{}, ErrAuthFailed
	}
	identity := Identity{Subject: strings.ToLower(normalized)}
	if strings.Contains(normalized, "@") {
		identity.Email = normalized
	}
	return identity, nil
}
