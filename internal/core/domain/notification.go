package domain

import (
	"encoding/json"
	"time"
)

// Severity classifies a toast.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultToastDuration is how long a toast stays visible unless dismissed.
const DefaultToastDuration = 4500 * time.Millisecond

// Notification is an ephemeral, user-facing toast.
type Notification struct {
	ID       string
	Title    string
	Message  string
	Severity Severity
	Duration time.Duration
}

type notificationJSON struct {
	ID                string   `json:"id"`
	Title             string   `json:"title,omitempty"`
	Message           string   `json:"message"`
	Severity          Severity `json:"severity"`
	DisplayDurationMs int64    `json:"displayDurationMs"`
}

func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(notificationJSON{
		ID:                n.ID,
		Title:             n.Title,
		Message:           n.Message,
		Severity:          n.Severity,
		DisplayDurationMs: n.Duration.Milliseconds(),
	})
}
