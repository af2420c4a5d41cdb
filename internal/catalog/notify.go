package catalog

import (
	"log/slog"

	"github.com/google/uuid"
)

// NotificationKind classifies a user-facing event.
type NotificationKind string

const (
	NoteSuccess NotificationKind = "success"
	NoteWarning NotificationKind = "warning"
	NoteError   NotificationKind = "error"
)

// Notification is one discrete user-facing event. The core only emits
// these; rendering them is the collaborator's responsibility.
type Notification struct {
	ID     string           `json:"id"`
	Kind   NotificationKind `json:"kind"`
	Text   string           `json:"text"`
	Detail any              `json:"detail,omitempty"`
}

// Notifier receives user-facing notifications from the core.
type Notifier interface {
	Notify(Notification)
}

// NewNotification builds a notification with a fresh id.
func NewNotification(kind NotificationKind, text string, detail any) Notification {
	return Notification{ID: uuid.NewString(), Kind: kind, Text: text, Detail: detail}
}

// LogNotifier writes notifications to the structured log. It is the
// default sink when no UI collaborator is attached.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	switch n.Kind {
	case NoteError:
		slog.Error(n.Text, "notification_id", n.ID, "detail", n.Detail)
	case NoteWarning:
		slog.Warn(n.Text, "notification_id", n.ID, "detail", n.Detail)
	default:
		slog.Info(n.Text, "notification_id", n.ID, "detail", n.Detail)
	}
}

// NopNotifier discards notifications. Useful in tests.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
