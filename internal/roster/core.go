// Package roster is the client core consumed by a presentation layer: it gates
// access behind the session, drives the form controllers, and keeps the
// projected view of the record store current.
package roster

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/MarcoPoloResearchLab/roster/internal/auth"
	"github.com/MarcoPoloResearchLab/roster/internal/forms"
	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/MarcoPoloResearchLab/roster/internal/projection"
	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"go.uber.org/zap"
)

var (
	errMissingStore = errors.New("roster: record store required")
	errMissingGate  = errors.New("roster: session gate required")
	errMissingFeed  = errors.New("roster: notification feed required")
)

// Config wires the core to its collaborators.
type Config struct {
	Store  users.Store
	Gate   *auth.Gate
	Feed   *notify.Feed
	Logger *zap.Logger
}

// Core owns the cached view and routes user intents to the store.
type Core struct {
	store      users.Store
	gate       *auth.Gate
	feed       *notify.Feed
	logger     *zap.Logger
	createForm *forms.CreateForm

	mu       sync.RWMutex
	view     projection.View
	newCount int
}

// New constructs the core. The cached view starts empty until the first refresh.
func New(cfg Config) (*Core, error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	if cfg.Gate == nil {
		return nil, errMissingGate
	}
	if cfg.Feed == nil {
		return nil, errMissingFeed
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	core := &Core{
		store:  cfg.Store,
		gate:   cfg.Gate,
		feed:   cfg.Feed,
		logger: logger,
		view:   projection.EmptyView(0),
	}
	createForm, err := forms.NewCreateForm(forms.CreateFormConfig{
		Store:     cfg.Store,
		Notifier:  cfg.Feed,
		OnCreated: core.handleCreated,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	core.createForm = createForm
	cfg.Gate.OnChange(core.handleSessionChange)
	return core, nil
}

// Authenticate opens the session and loads the list.
// A failed load leaves the session open with an empty view and returns the fetch error.
func (c *Core) Authenticate(ctx context.Context, identifier, secret string) (auth.Session, error) {
	wasAuthenticated := c.gate.IsAuthenticated()
	session, err := c.gate.Authenticate(ctx, identifier, secret)
	if err != nil {
		return session, err
	}
	if wasAuthenticated {
		return session, nil
	}
	if _, err := c.ListUsers(ctx); err != nil {
		return session, err
	}
	return session, nil
}

// Logout closes the session. The cached view is dropped when the gate closes.
func (c *Core) Logout() {
	c.gate.Logout()
}

// Session returns the current session.
func (c *Core) Session() auth.Session {
	return c.gate.Session()
}

// ListUsers fetches the collection and rebuilds the view.
// On failure the cached view resets to empty rather than keeping stale records.
func (c *Core) ListUsers(ctx context.Context) (projection.View, error) {
	if err := c.gate.Require(); err != nil {
		return projection.View{}, err
	}
	records, err := c.store.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn("user list fetch failed", zap.Error(err))
		c.view = projection.EmptyView(c.newCount)
		return c.view, err
	}
	c.view = projection.BuildView(records, c.newCount)
	return c.view, nil
}

// View returns the most recently built view.
func (c *Core) View() projection.View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// CreateForm returns the shared create form.
func (c *Core) CreateForm() (*forms.CreateForm, error) {
	if err := c.gate.Require(); err != nil {
		return nil, err
	}
	return c.createForm, nil
}

// CreateUser fills the create form with draft and submits it.
func (c *Core) CreateUser(ctx context.Context, draft forms.Draft) (users.UserRecord, error) {
	form, err := c.CreateForm()
	if err != nil {
		return users.UserRecord{}, err
	}
	form.Fill(draft)
	return form.Submit(ctx)
}

// EditForm opens an edit form on record. The list refreshes after a successful submit.
func (c *Core) EditForm(record users.UserRecord) (*forms.EditForm, error) {
	if err := c.gate.Require(); err != nil {
		return nil, err
	}
	return forms.NewEditForm(forms.EditFormConfig{
		Record:    record,
		Store:     c.store,
		Notifier:  c.feed,
		OnUpdated: c.handleUpdated,
		Logger:    c.logger,
	})
}

// OpenEditForm loads the stored record with id and opens an edit form seeded from it.
func (c *Core) OpenEditForm(ctx context.Context, id string) (*forms.EditForm, error) {
	if err := c.gate.Require(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, forms.ErrMissingIdentity
	}
	record, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.EditForm(record)
}

// UpdateUser replaces the fields of the stored record with id by draft.
func (c *Core) UpdateUser(ctx context.Context, id string, draft forms.Draft) error {
	form, err := c.OpenEditForm(ctx, id)
	if err != nil {
		return err
	}
	form.Fill(draft)
	return form.Submit(ctx)
}

// Notifications returns the notifications that have not yet expired.
func (c *Core) Notifications() []notify.Event {
	return c.feed.Active()
}

// DismissNotification hides a notification before it expires.
func (c *Core) DismissNotification(eventID int64) bool {
	return c.feed.Dismiss(eventID)
}

// SubscribeNotifications streams future notifications until ctx ends.
func (c *Core) SubscribeNotifications(ctx context.Context) (<-chan notify.Event, func()) {
	return c.feed.Subscribe(ctx)
}

func (c *Core) handleSessionChange(previous, current auth.Session) {
	if !previous.IsAuthenticated() || current.IsAuthenticated() {
		return
	}
	c.mu.Lock()
	c.view = projection.EmptyView(c.newCount)
	c.mu.Unlock()
}

func (c *Core) handleCreated(ctx context.Context, _ users.UserRecord) {
	c.mu.Lock()
	c.newCount++
	c.mu.Unlock()
	c.refreshAfterMutation(ctx)
}

func (c *Core) handleUpdated(ctx context.Context, _ users.UserRecord) {
	c.refreshAfterMutation(ctx)
}

func (c *Core) refreshAfterMutation(ctx context.Context) {
	if _, err := c.ListUsers(ctx); err != nil {
		c.logger.Warn("refresh after mutation failed", zap.Error(err))
	}
}
