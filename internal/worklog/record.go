// Package worklog implements the work-record boundary for Chronicle.
// It defines the authoritative WorkRecord shape emitted on suggestion
// approval, the Sink and Catalog contracts the core depends on, and a
// PostgreSQL implementation of both.
package worklog

import (
	"time"

	"github.com/google/uuid"
)

// Record is an authoritative, approved unit of tracked time, carrying
// provenance back to the suggestion and analysis that produced it.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	Date        time.Time  `json:"date"`
	Start       *time.Time `json:"start,omitempty"`
	Hours       float64    `json:"hours"`
	Client      *string    `json:"client,omitempty"`
	Project     *string    `json:"project,omitempty"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Billable    bool       `json:"billable"`
	Tags        []string   `json:"tags,omitempty"`

	// Provenance fields.
	SuggestionID *uuid.UUID `json:"suggestion_id,omitempty"`
	Confidence   *float64   `json:"confidence,omitempty"`
	Sources      []string   `json:"sources,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
