package forms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"go.uber.org/zap"
)

var errMissingCreator = errors.New("forms: record creator required")

// RecordCreator is the store capability the create form needs.
type RecordCreator interface {
	Create(ctx context.Context, fields users.Fields) (users.UserRecord, error)
}

// CreateFormConfig wires a create form.
type CreateFormConfig struct {
	Store     RecordCreator
	Notifier  Notifier
	OnCreated func(ctx context.Context, record users.UserRecord)
	Logger    *zap.Logger
}

// CreateForm accumulates a draft for a new record and submits it.
type CreateForm struct {
	mu        sync.Mutex
	draft     Draft
	state     State
	outcome   Outcome
	store     RecordCreator
	notifier  Notifier
	onCreated func(ctx context.Context, record users.UserRecord)
	logger    *zap.Logger
}

// NewCreateForm constructs an empty create form.
func NewCreateForm(cfg CreateFormConfig) (*CreateForm, error) {
	if cfg.Store == nil {
		return nil, errMissingCreator
	}
	return &CreateForm{
		state:     StateEditing,
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		onCreated: cfg.OnCreated,
		logger:    loggerOrNop(cfg.Logger),
	}, nil
}

// SetField updates one draft field from raw input without validating it.
func (f *CreateForm) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	updated, err := f.draft.withField(name, value)
	if err != nil {
		return err
	}
	f.draft = updated
	return nil
}

// Fill replaces the whole draft.
func (f *CreateForm) Fill(draft Draft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = draft
}

// Draft returns the current draft.
func (f *CreateForm) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// State returns the current submit state.
func (f *CreateForm) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Outcome returns how the last submit ended.
func (f *CreateForm) Outcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Clear resets the draft.
func (f *CreateForm) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = Draft{}
}

// Submit validates the draft and creates the record.
// Invalid drafts never reach the store. On store failure the draft is kept.
func (f *CreateForm) Submit(ctx context.Context) (users.UserRecord, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return users.UserRecord{}, ErrSubmitInFlight
	}
	if err := f.draft.Validate(); err != nil {
		f.mu.Unlock()
		return users.UserRecord{}, err
	}
	f.state = StateSubmitting
	fields := f.draft.Fields()
	f.mu.Unlock()

	record, err := f.store.Create(ctx, fields)

	f.mu.Lock()
	f.state = StateEditing
	if err != nil {
		f.outcome = OutcomeFailed
		f.mu.Unlock()
		f.logger.Warn("create form submit failed", zap.Error(err))
		return users.UserRecord{}, fmt.Errorf("create user: %w", err)
	}
	f.outcome = OutcomeSucceeded
	f.draft = Draft{}
	f.mu.Unlock()

	notifyOrSkip(f.notifier, notify.KindRecordCreated, record.ID, fmt.Sprintf("User %s added", record.Name))
	if f.onCreated != nil {
		f.onCreated(ctx, record)
	}
	return record, nil
}
