package auth

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newDemoGate(t *testing.T) *Gate {
	t.Helper()
	gate, err := NewGate(GateConfig{Checker: NewDemoChecker()})
	if err != nil {
		t.Fatalf("failed to construct gate: %v", err)
	}
	return gate
}

func TestNewGateRequiresChecker(t *testing.T) {
	if _, err := NewGate(GateConfig{}); err == nil {
		t.Fatalf("expected error for missing checker")
	}
}

func TestGateStartsUnauthenticated(t *testing.T) {
	gate := newDemoGate(t)

	if gate.IsAuthenticated() {
		t.Fatalf("expected new gate to be closed")
	}
	if _, ok := gate.Session().CurrentUser(); ok {
		t.Fatalf("expected no current user")
	}
	if err := gate.Require(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestGateAuthenticateAcceptsWellFormedPair(t *testing.T) {
	gate := newDemoGate(t)

	session, err := gate.Authenticate(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if !session.IsAuthenticated() {
		t.Fatalf("expected authenticated session")
	}
	identity, ok := session.CurrentUser()
	if !ok || identity.Subject != "a@b.com" || identity.Email != "a@b.com" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if err := gate.Require(); err != nil {
		t.Fatalf("expected open gate, got %v", err)
	}
}

func TestGateAuthenticateRejectsMalformedPair(t *testing.T) {
	testCases := []struct {
		name       string
		identifier string
		secret     string
	}{
		{name: "empty-identifier", identifier: "", secret: "pw"},
		{name: "blank-secret", identifier: "a@b.com", secret: "   "},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			gate, err := NewGate(GateConfig{Checker: NewDemoChecker(), Logger: zap.New(core)})
			if err != nil {
				t.Fatalf("failed to construct gate: %v", err)
			}

			session, err := gate.Authenticate(context.Background(), testCase.identifier, testCase.secret)
			if !errors.Is(err, ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			if session.IsAuthenticated() || gate.IsAuthenticated() {
				t.Fatalf("expected gate to stay closed")
			}
			if logs.FilterMessage("authentication rejected").Len() != 1 {
				t.Fatalf("expected rejection to be logged, got %v", logs.All())
			}
		})
	}
}

func TestGateLogoutNotifiesListeners(t *testing.T) {
	gate := newDemoGate(t)

	var transitions [][2]bool
	gate.OnChange(func(previous, current Session) {
		transitions = append(transitions, [2]bool{previous.IsAuthenticated(), current.IsAuthenticated()})
	})

	if _, err := gate.Authenticate(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	gate.Logout()
	gate.Logout()

	if gate.IsAuthenticated() {
		t.Fatalf("expected gate closed after logout")
	}
	want := [][2]bool{{false, true}, {true, false}}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions %v", transitions)
	}
	for index := range want {
		if transitions[index] != want[index] {
			t.Fatalf("unexpected transitions %v", transitions)
		}
	}
}
