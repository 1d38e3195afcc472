package forms

import (
	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"go.uber.org/zap"
)

// Notifier receives the notification emitted after a successful submit.
type Notifier interface {
	Notify(kind notify.Kind, recordID, message string) notify.Event
}

// Outcome records how the most recent submit ended.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// State is the form's position in its submit cycle.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
)

func notifyOrSkip(notifier Notifier, kind notify.Kind, recordID, message string) {
	if notifier == nil {
		return
	}
	notifier.Notify(kind, recordID, message)
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
