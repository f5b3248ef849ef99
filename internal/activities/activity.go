// Package activities implements the activity intake domain for Chronicle.
// It provides the normalized Activity model produced by source connectors,
// validation and duration derivation, content fingerprinting for the
// analysis cache, and the batching queue that feeds the analysis pipeline.
package activities

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies the connector family an Activity originated from.
type SourceKind string

// Valid source kinds.
const (
	SourceCalendar SourceKind = "calendar"
	SourceChat     SourceKind = "chat"
	SourceTicket   SourceKind = "ticket"
	SourceEmail    SourceKind = "email"
	SourceDocument SourceKind = "document"
)

var sourceKinds = []SourceKind{
	SourceCalendar,
	SourceChat,
	SourceTicket,
	SourceEmail,
	SourceDocument,
}

// SourceKinds returns the list of valid source kinds.
func SourceKinds() []SourceKind {
	return sourceKinds
}

// ParseSourceKind validates a string as a known source kind.
// Returns ErrInvalidSource if the value is not recognized.
func ParseSourceKind(s string) (SourceKind, error) {
	v := SourceKind(s)
	if !slices.Contains(sourceKinds, v) {
		return "", ErrInvalidSource
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known source kind.
func (k *SourceKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseSourceKind(raw)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Activity is a normalized unit of observed work ingested from a source
// connector. Activities are immutable after creation: connectors build them,
// the queue batches them, and the pipeline consumes each exactly once,
// keyed by (Source, SourceID).
type Activity struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Start        time.Time  `json:"start"`
	End          *time.Time `json:"end,omitempty"`
	Hours        *float64   `json:"hours,omitempty"`
	Participants []string   `json:"participants,omitempty"`
	Location     string     `json:"location,omitempty"`
	Source       SourceKind `json:"source"`
	SourceID     string     `json:"source_id"`
	IngestedAt   time.Time  `json:"ingested_at"`
	RawRef       string     `json:"raw_ref,omitempty"`
}

// Validate checks structural invariants: title, source kind, source-native
// id, and start timestamp must be present; any explicit or derivable
// duration must be non-negative.
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidActivity)
	}
	if _, err := ParseSourceKind(string(a.Source)); err != nil {
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidActivity, a.Source)
	}
	if strings.TrimSpace(a.SourceID) == "" {
		return fmt.Errorf("%w: source_id required", ErrInvalidActivity)
	}
	if a.Start.IsZero() {
		return fmt.Errorf("%w: start timestamp required", ErrInvalidActivity)
	}
	if a.Hours != nil && *a.Hours < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidActivity)
	}
	if a.End != nil && a.End.Before(a.Start) {
		return fmt.Errorf("%w: end precedes start", ErrInvalidActivity)
	}
	return nil
}

// DurationHours returns the activity's duration in hours: the explicit
// value when present, otherwise the start/end delta. The second return
// reports whether a duration could be determined.
func (a *Activity) DurationHours() (float64, bool) {
	if a.Hours != nil {
		return *a.Hours, true
	}
	if a.End != nil {
		return a.End.Sub(a.Start).Hours(), true
	}
	return 0, false
}

// Fingerprint derives the deterministic analysis cache key from the fields
// that identify an activity's analyzable content: source kind, title, and
// start timestamp. Re-ingesting an unchanged activity always produces the
// same fingerprint; any change to title or timing produces a new one.
func (a *Activity) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s", a.Source, a.Title, a.Start.UTC().Format(time.RFC3339))
	return hex.EncodeToString(h.Sum(nil))
}

// HighPriority reports whether the activity's title or description contains
// any of the given keywords (case-insensitive).
func (a *Activity) HighPriority(keywords []string) bool {
	text := strings.ToLower(a.Title + " " + a.Description)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
