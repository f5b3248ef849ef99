package workflow

import (
	"time"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/internal/analysis"
)

// State bag keys shared across pipeline nodes.
const (
	KeyBatch   = "batch"
	KeyContext = "context"
	KeyResults = "results"
	KeyOutcome = "outcome"
)

// analyzedItem pairs an activity with its analysis result. cached marks
// results served from the fingerprint cache without an inference call.
type analyzedItem struct {
	activity activities.Activity
	result   analysis.Result
	cached   bool
}

// BatchOutcome summarizes one pipeline run over a flushed batch.
type BatchOutcome struct {
	Received     int       `json:"received"`
	Analyzed     int       `json:"analyzed"`
	Cached       int       `json:"cached"`
	RuleBased    int       `json:"rule_based"`
	Suggested    int       `json:"suggested"`
	AutoApproved int       `json:"auto_approved"`
	Duplicates   int       `json:"duplicates"`
	Discarded    int       `json:"discarded"`
	Failed       int       `json:"failed"`
	CompletedAt  time.Time `json:"completed_at"`
}
