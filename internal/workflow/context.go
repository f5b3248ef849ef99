package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/internal/analysis"
)

// ContextNode returns a state node that loads the known-world slice sent
// alongside every inference request: valid project and client names plus a
// bounded window of recent work records.
func ContextNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		batch, err := extractBatch(s)
		if err != nil {
			return s, fmt.Errorf("context: %w", err)
		}

		analysisCtx, err := loadContext(ctx, rt)
		if err != nil {
			return s, fmt.Errorf("context: %w", err)
		}

		rt.Logger.InfoContext(
			ctx, "context node complete",
			"batch_size", len(batch),
			"projects", len(analysisCtx.Projects),
			"clients", len(analysisCtx.Clients),
			"recent", len(analysisCtx.Recent),
		)

		s = s.Set(KeyContext, analysisCtx)
		return s, nil
	})
}

func loadContext(ctx context.Context, rt *Runtime) (analysis.Context, error) {
	projects, err := rt.Worklog.Projects(ctx)
	if err != nil {
		return analysis.Context{}, fmt.Errorf("%w: projects: %w", ErrContextFailed, err)
	}

	clients, err := rt.Worklog.Clients(ctx)
	if err != nil {
		return analysis.Context{}, fmt.Errorf("%w: clients: %w", ErrContextFailed, err)
	}

	records, err := rt.Worklog.Recent(ctx, rt.RecentLimit)
	if err != nil {
		return analysis.Context{}, fmt.Errorf("%w: recent records: %w", ErrContextFailed, err)
	}

	recent := make([]analysis.RecentRecord, 0, len(records))
	for _, rec := range records {
		rr := analysis.RecentRecord{
			Date:        rec.Date,
			Description: rec.Description,
			Hours:       rec.Hours,
		}
		if rec.Project != nil {
			rr.Project = *rec.Project
		}
		if rec.Client != nil {
			rr.Client = *rec.Client
		}
		recent = append(recent, rr)
	}

	return analysis.Context{
		Projects: projects,
		Clients:  clients,
		Recent:   recent,
	}, nil
}

func extractBatch(s state.State) ([]activities.Activity, error) {
	val, ok := s.Get(KeyBatch)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in state", ErrContextFailed, KeyBatch)
	}

	batch, ok := val.([]activities.Activity)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not []activities.Activity", ErrContextFailed, KeyBatch)
	}

	return batch, nil
}
