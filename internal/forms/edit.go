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

var errMissingUpdater = errors.New("forms: record updater required")

// RecordUpdater is the store capability the edit form needs.
type RecordUpdater interface {
	Update(ctx context.Context, id string, fields users.Fields) error
}

// EditFormConfig wires an edit form to the record it edits.
type EditFormConfig struct {
	Record    users.UserRecord
	Store     RecordUpdater
	Notifier  Notifier
	OnUpdated func(ctx context.Context, record users.UserRecord)
	OnCancel  func()
	Logger    *zap.Logger
}

// EditForm edits an existing record. It closes after a successful submit or a cancel.
type EditForm struct {
	mu        sync.Mutex
	record    users.UserRecord
	draft     Draft
	state     State
	outcome   Outcome
	closed    bool
	store     RecordUpdater
	notifier  Notifier
	onUpdated func(ctx context.Context, record users.UserRecord)
	onCancel  func()
	logger    *zap.Logger
}

// NewEditForm seeds a draft from the record.
func NewEditForm(cfg EditFormConfig) (*EditForm, error) {
	if cfg.Store == nil {
		return nil, errMissingUpdater
	}
	return &EditForm{
		record:    cfg.Record,
		draft:     DraftFrom(cfg.Record.Fields),
		state:     StateEditing,
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		onUpdated: cfg.OnUpdated,
		onCancel:  cfg.OnCancel,
		logger:    loggerOrNop(cfg.Logger),
	}, nil
}

// Record returns the record the form was opened on.
func (f *EditForm) Record() users.UserRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record
}

// SetField updates one draft field. Age and phone coerce empty or invalid input to 0.
// TODO: surface the coercion to the user instead of silently storing 0 once the UI can show inline numeric errors.
func (f *EditForm) SetField(name, value string) error {
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
func (f *EditForm) Fill(draft Draft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = draft
}

// Draft returns the current draft.
func (f *EditForm) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// State returns the current submit state.
func (f *EditForm) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Outcome returns how the last submit ended.
func (f *EditForm) Outcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Closed reports whether the form has been submitted successfully or cancelled.
func (f *EditForm) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Submit sends the draft as a full replacement of the record's fields.
// On failure the form stays open with its draft. A closed form never reaches the store.
func (f *EditForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.record.HasIdentity() {
		f.mu.Unlock()
		return ErrMissingIdentity
	}
	if f.closed {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.state = StateSubmitting
	id := f.record.ID
	fields := f.draft.Fields()
	f.mu.Unlock()

	err := f.store.Update(ctx, id, fields)

	f.mu.Lock()
	f.state = StateEditing
	if err != nil {
		f.outcome = OutcomeFailed
		f.mu.Unlock()
		f.logger.Warn("edit form submit failed", zap.String("record_id", id), zap.Error(err))
		return fmt.Errorf("update user %s: %w", id, err)
	}
	f.outcome = OutcomeSucceeded
	f.record = users.UserRecord{ID: id, Fields: fields}
	f.draft = Draft{}
	f.closed = true
	updated := f.record
	f.mu.Unlock()

	if f.onUpdated != nil {
		f.onUpdated(ctx, updated)
	}
	notifyOrSkip(f.notifier, notify.KindRecordUpdated, id, fmt.Sprintf("User %s updated", updated.Name))
	return nil
}

// Cancel discards the draft and closes the form without touching the store.
func (f *EditForm) Cancel() {
	f.mu.Lock()
	f.draft = Draft{}
	f.closed = true
	onCancel := f.onCancel
	f.mu.Unlock()

	if onCancel != nil {
		onCancel()
	}
}
