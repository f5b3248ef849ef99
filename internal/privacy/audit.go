// Package privacy implements the privacy ledger and encrypted vault for
// Chronicle. Every operation that touches stored personal data produces an
// immutable AuditEntry describing the operation's shape but never its
// content; secrets are encrypted at rest with a key derived from a
// persisted device salt and an optional passphrase.
package privacy

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of privacy-relevant operation an audit entry
// records.
type Action string

// Valid audit actions.
const (
	ActionDataAccess      Action = "data_access"
	ActionContentAnalysis Action = "content_analysis"
	ActionEntryGeneration Action = "entry_generation"
	ActionDataExport      Action = "data_export"
	ActionConsentChange   Action = "consent_change"
	ActionDataDeletion    Action = "data_deletion"
	ActionDataCleanup     Action = "data_cleanup"
)

var actions = []Action{
	ActionDataAccess,
	ActionContentAnalysis,
	ActionEntryGeneration,
	ActionDataExport,
	ActionConsentChange,
	ActionDataDeletion,
	ActionDataCleanup,
}

// Actions returns the list of valid audit actions.
func Actions() []Action {
	return actions
}

// ParseAction validates a string as a known audit action.
func ParseAction(s string) (Action, error) {
	v := Action(s)
	if !slices.Contains(actions, v) {
		return "", ErrInvalidAction
	}
	return v, nil
}

// AuditEntry is an immutable record of one privacy-relevant operation.
// Details carries counts and durations only, never raw content. Entries are
// removed exclusively by the retention sweep or a full data deletion.
type AuditEntry struct {
	ID          uuid.UUID      `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Action      Action         `json:"action"`
	Source      string         `json:"source"`
	Details     map[string]any `json:"details,omitempty"`
	RetainUntil time.Time      `json:"retain_until"`
	AutoDelete  bool           `json:"auto_delete"`
}
