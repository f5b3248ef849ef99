package api

import (
	"context"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/internal/analysis"
	"github.com/JaimeStill/chronicle/internal/privacy"
	"github.com/JaimeStill/chronicle/internal/prompts"
	"github.com/JaimeStill/chronicle/internal/suggestions"
	"github.com/JaimeStill/chronicle/internal/workflow"
	"github.com/JaimeStill/chronicle/internal/worklog"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Queue       *activities.Queue
	Analyzer    analysis.System
	Cache       *analysis.Cache
	Suggestions suggestions.System
	Prompts     prompts.System
	Worklog     worklog.System
	Ledger      privacy.Ledger
	Vault       privacy.Vault
	Privacy     privacy.System
}

// NewDomain creates all domain systems from the API runtime and wires the
// intake pipeline behind the activity queue.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	worklogSystem := worklog.New(db, runtime.Logger)

	ledger := privacy.NewLedger(
		db,
		runtime.Privacy.RetentionDays,
		runtime.Logger,
		runtime.Pagination,
	)

	vault := privacy.NewVault(
		runtime.Storage,
		ledger,
		runtime.Privacy.VaultPassphrase(),
		runtime.Logger,
	)

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	suggestionsSystem := suggestions.New(
		db,
		worklogSystem,
		ledger,
		runtime.Logger,
		runtime.Pagination,
	)

	analyzer := analysis.NewClient(
		runtime.Agent,
		analysis.ClientConfig{
			Timeout:       runtime.Pipeline.InferenceTimeoutDuration(),
			ProbeInterval: runtime.Pipeline.ProbeIntervalDuration(),
		},
		runtime.Logger,
	)

	cache := analysis.NewCache(
		runtime.Pipeline.CacheSize,
		runtime.Pipeline.CacheTTLDuration(),
	)

	pipeline := &workflow.Runtime{
		Analyzer:    analyzer,
		Cache:       cache,
		Prompts:     promptsSystem,
		Suggestions: suggestionsSystem,
		Worklog:     worklogSystem,
		Ledger:      ledger,
		Policy: suggestions.Policy{
			DiscardFloor: runtime.Pipeline.DiscardFloor,
			AutoApprove:  runtime.Pipeline.AutoApprove,
		},
		Workers:     runtime.Pipeline.Workers,
		RecentLimit: runtime.Pipeline.RecentLimit,
		Logger:      runtime.Logger,
	}

	queue := activities.NewQueue(
		activities.QueueConfig{
			FlushInterval:    runtime.Pipeline.FlushIntervalDuration(),
			BatchSize:        runtime.Pipeline.BatchSize,
			PriorityKeywords: runtime.Pipeline.PriorityKeywords,
		},
		workflow.NewProcessor(pipeline),
		runtime.Logger,
	)

	privacySystem := privacy.New(
		ledger,
		vault,
		[]privacy.Source{
			&suggestionSource{suggestionsSystem},
			&worklogSource{worklogSystem},
		},
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Queue:       queue,
		Analyzer:    analyzer,
		Cache:       cache,
		Suggestions: suggestionsSystem,
		Prompts:     promptsSystem,
		Worklog:     worklogSystem,
		Ledger:      ledger,
		Vault:       vault,
		Privacy:     privacySystem,
	}
}

type suggestionSource struct {
	sys suggestions.System
}

func (s *suggestionSource) Name() string { return "suggestions" }

func (s *suggestionSource) Export(ctx context.Context) (any, error) {
	return s.sys.Export(ctx)
}

func (s *suggestionSource) Purge(ctx context.Context) (int, error) {
	return s.sys.Purge(ctx)
}

type worklogSource struct {
	sys worklog.System
}

func (s *worklogSource) Name() string { return "work_records" }

func (s *worklogSource) Export(ctx context.Context) (any, error) {
	return s.sys.Export(ctx)
}

func (s *worklogSource) Purge(ctx context.Context) (int, error) {
	return s.sys.Purge(ctx)
}
