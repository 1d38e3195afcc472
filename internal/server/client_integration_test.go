package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/MarcoPoloResearchLab/roster/internal/auth"
	"github.com/MarcoPoloResearchLab/roster/internal/forms"
	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/MarcoPoloResearchLab/roster/internal/projection"
	"github.com/MarcoPoloResearchLab/roster/internal/roster"
	"github.com/MarcoPoloResearchLab/roster/internal/users"
)

func TestClientCoreAgainstAPI(t *testing.T) {
	harness := newAPIHarness(t, nil)
	server := httptest.NewServer(harness.handler)
	t.Cleanup(server.Close)

	checker, err := auth.NewRemoteChecker(server.URL, server.Client())
	if err != nil {
		t.Fatalf("failed to construct remote checker: %v", err)
	}
	gate, err := auth.NewGate(auth.GateConfig{Checker: checker})
	if err != nil {
		t.Fatalf("failed to construct gate: %v", err)
	}
	store, err := users.NewRemoteStore(users.RemoteStoreConfig{
		BaseURL:     server.URL,
		HTTPClient:  server.Client(),
		TokenSource: func() string { return gate.Session().Token() },
	})
	if err != nil {
		t.Fatalf("failed to construct remote store: %v", err)
	}
	core, err := roster.New(roster.Config{Store: store, Gate: gate, Feed: notify.NewFeed(notify.FeedConfig{})})
	if err != nil {
		t.Fatalf("failed to construct core: %v", err)
	}

	if _, err := core.Authenticate(context.Background(), "", "pw"); !errors.Is(err, auth.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
	if _, err := core.Authenticate(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if view := core.View(); view.Total != 2 {
		t.Fatalf("expected seeded users after login, got %+v", view)
	}

	if _, err := core.CreateUser(context.Background(), forms.Draft{Name: "New User", Age: 20, Email: "n@x.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	view := core.View()
	if view.Total != 3 || view.Records[2].AgeCategory != projection.AgeCategoryYoung || view.NewCount != 1 {
		t.Fatalf("unexpected view after create %+v", view)
	}

	err = core.UpdateUser(context.Background(), "user-404", forms.Draft{Name: "X", Age: 1, Email: "x@y"})
	if !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound through the API, got %v", err)
	}

	if len(harness.feed.Active()) != 1 || len(core.Notifications()) != 1 {
		t.Fatalf("expected one server and one client notification")
	}
}
