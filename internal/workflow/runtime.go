// Package workflow implements the activity intake pipeline as a state
// graph: load catalog context, analyze each activity, build suggestions,
// and record the batch outcome.
package workflow

import (
	"log/slog"

	"github.com/JaimeStill/chronicle/internal/analysis"
	"github.com/JaimeStill/chronicle/internal/privacy"
	"github.com/JaimeStill/chronicle/internal/prompts"
	"github.com/JaimeStill/chronicle/internal/suggestions"
	"github.com/JaimeStill/chronicle/internal/worklog"
)

// Runtime bundles the dependencies that pipeline nodes require.
// It is constructed by higher-level composition code from Infrastructure
// and Domain systems.
type Runtime struct {
	Analyzer    analysis.System
	Cache       *analysis.Cache
	Prompts     prompts.System
	Suggestions suggestions.System
	Worklog     worklog.System
	Ledger      privacy.Ledger
	Policy      suggestions.Policy

	// Workers bounds the analysis fan-out per batch.
	Workers int
	// RecentLimit bounds the recent-history window sent as context.
	RecentLimit int

	Logger *slog.Logger
}
