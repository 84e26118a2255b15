package datasource

import (
	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

// Level is the severity of a Feedback.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Feedback is a user-visible outcome of a mutation or refetch.
type Feedback struct {
	Level   Level
	Message string
	Action  string
	ID      entity.ID
	Err     error
}

// Notifier displays Feedback (toast, status line, stderr).
type Notifier interface {
	Notify(Feedback)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Feedback)

func (f NotifierFunc) Notify(fb Feedback) {
	f(fb)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Feedback) {}
