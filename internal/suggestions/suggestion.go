// Package suggestions implements the suggestion lifecycle domain for
// Chronicle. It provides the Suggestion model and its status state machine,
// pure construction and validation logic, a PostgreSQL repository with
// race-free transition guards, and HTTP endpoints for listing and
// disposition.
package suggestions

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/internal/analysis"
)

// Status is the lifecycle state of a suggestion.
type Status string

// Lifecycle states. pending is the only non-terminal state; approved and
// rejected are terminal and permit no further transitions.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// Statuses returns the list of valid lifecycle states.
func Statuses() []Status {
	return statuses
}

// ParseStatus validates a string as a known lifecycle state.
// Returns ErrInvalidStatus if the value is not recognized.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", ErrInvalidStatus
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known status value.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SystemActor is recorded as the approver when the auto-approval policy
// dispositions a suggestion without human action.
const SystemActor = "system"

// Suggestion is a proposed work-record awaiting disposition. It is owned
// exclusively by the store from creation until a terminal state; callers
// mutate it only through Approve and Reject.
type Suggestion struct {
	ID         uuid.UUID `json:"id"`
	ActivityID uuid.UUID `json:"activity_id"`

	Source   activities.SourceKind `json:"source"`
	SourceID string                `json:"source_id"`
	Sources  []string              `json:"sources"`

	Date        time.Time  `json:"date"`
	Start       *time.Time `json:"start,omitempty"`
	Hours       float64    `json:"hours"`
	Project     *string    `json:"project,omitempty"`
	Client      *string    `json:"client,omitempty"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags,omitempty"`

	Category    analysis.Category `json:"category"`
	Billable    bool              `json:"billable"`
	MeetingType *string           `json:"meeting_type,omitempty"`
	Confidence  float64           `json:"confidence"`
	RuleBased   bool              `json:"rule_based"`
	Reasoning   string            `json:"reasoning"`

	GeneratedAt time.Time `json:"generated_at"`

	Status          Status     `json:"status"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	DisposedAt      *time.Time `json:"disposed_at,omitempty"`
	DispositionNote *string    `json:"disposition_note,omitempty"`
}

// GuardTransition checks whether the suggestion may move to the target
// state. Only pending suggestions may transition, and only to a terminal
// state. Returns ErrInvalidTransition otherwise.
func (s *Suggestion) GuardTransition(to Status) error {
	if s.Status != StatusPending {
		return ErrInvalidTransition
	}
	if to != StatusApproved && to != StatusRejected {
		return ErrInvalidTransition
	}
	return nil
}

// AutoApproved reports whether the suggestion was dispositioned by the
// auto-approval policy rather than a human.
func (s *Suggestion) AutoApproved() bool {
	return s.Status == StatusApproved && s.ApprovedBy != nil && *s.ApprovedBy == SystemActor
}
