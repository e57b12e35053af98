// Package alert persists user notifications and runs the server-side
// detection routines that create them.
package alert

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeCreditScoreChange Type = "credit_score_change"
	TypeDropOff           Type = "drop_off"
	TypeEMIReminder       Type = "emi_reminder"
	TypeSystem            Type = "system"
	TypeWelcome           Type = "welcome"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert content is immutable after creation; only the Read flag flips.
// DedupKey discriminates trigger events so one event never produces two
// alerts of the same type for a user.
type Alert struct {
	ID        uuid.UUID      `json:"id"`
	UserID    int64          `json:"userId"`
	Type      Type           `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Severity  Severity       `json:"severity"`
	Read      bool           `json:"read"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	DedupKey  string         `json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (t Type) Valid() bool {
	switch t {
	case TypeCreditScoreChange, TypeDropOff, TypeEMIReminder, TypeSystem, TypeWelcome:
		return true
	}
	return false
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}
