package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/chronicle/internal/suggestions"
)

// SuggestNode returns a state node that turns analysis results into pending
// suggestions. Activities that already have a suggestion for their source
// identity are skipped; results below the discard floor are dropped; new
// suggestions at or above the auto-approve threshold are approved on behalf
// of the system immediately.
func SuggestNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		items, err := extractResults(s)
		if err != nil {
			return s, fmt.Errorf("suggest: %w", err)
		}

		outcome, err := emitSuggestions(ctx, rt, items)
		if err != nil {
			return s, fmt.Errorf("suggest: %w", err)
		}

		rt.Logger.InfoContext(
			ctx, "suggest node complete",
			"suggested", outcome.Suggested,
			"auto_approved", outcome.AutoApproved,
			"duplicates", outcome.Duplicates,
			"discarded", outcome.Discarded,
			"failed", outcome.Failed,
		)

		s = s.Set(KeyOutcome, *outcome)
		return s, nil
	})
}

func emitSuggestions(ctx context.Context, rt *Runtime, items []analyzedItem) (*BatchOutcome, error) {
	known, err := loadKnown(ctx, rt)
	if err != nil {
		return nil, err
	}

	outcome := &BatchOutcome{
		Received: len(items),
		Analyzed: len(items),
	}

	// Failures past this point are local to one activity: log them, count
	// them, and keep going so one bad item never takes down the batch.
	for _, item := range items {
		if item.cached {
			outcome.Cached++
		}
		if item.result.RuleBased {
			outcome.RuleBased++
		}

		existing, err := rt.Suggestions.FindBySource(ctx, item.activity.Source, item.activity.SourceID)
		if err != nil && !errors.Is(err, suggestions.ErrNotFound) {
			outcome.Failed++
			rt.Logger.ErrorContext(
				ctx, "dedupe lookup failed",
				"activity_id", item.activity.ID,
				"error", err,
			)
			continue
		}
		if existing != nil {
			outcome.Duplicates++
			continue
		}

		sug, ok := suggestions.Build(item.activity, item.result, known, rt.Policy)
		if !ok {
			outcome.Discarded++
			rt.Logger.DebugContext(
				ctx, "suggestion discarded",
				"activity_id", item.activity.ID,
				"confidence", item.result.Confidence,
			)
			continue
		}

		if err := rt.Suggestions.Create(ctx, sug); err != nil {
			if errors.Is(err, suggestions.ErrDuplicate) {
				outcome.Duplicates++
				continue
			}
			outcome.Failed++
			rt.Logger.ErrorContext(
				ctx, "suggestion create failed",
				"activity_id", item.activity.ID,
				"error", err,
			)
			continue
		}
		outcome.Suggested++

		if sug.Confidence >= rt.Policy.AutoApprove {
			if err := autoApprove(ctx, rt, sug.ID); err != nil {
				outcome.Failed++
				rt.Logger.ErrorContext(
					ctx, "auto-approve failed, suggestion left pending",
					"suggestion_id", sug.ID,
					"error", err,
				)
				continue
			}
			outcome.AutoApproved++
		}
	}

	return outcome, nil
}

// autoApprove dispositions a freshly created suggestion on behalf of the
// system. A concurrent human disposition is not an error; the suggestion is
// simply left as they decided it.
func autoApprove(ctx context.Context, rt *Runtime, id uuid.UUID) error {
	_, err := rt.Suggestions.Approve(ctx, id, suggestions.ApproveCommand{
		ApprovedBy: suggestions.SystemActor,
	})
	if err != nil && !errors.Is(err, suggestions.ErrInvalidTransition) {
		return fmt.Errorf("%w: auto-approve %s: %w", ErrSuggestFailed, id, err)
	}
	return nil
}

func loadKnown(ctx context.Context, rt *Runtime) (suggestions.Known, error) {
	projects, err := rt.Worklog.Projects(ctx)
	if err != nil {
		return suggestions.Known{}, fmt.Errorf("%w: projects: %w", ErrSuggestFailed, err)
	}

	clients, err := rt.Worklog.Clients(ctx)
	if err != nil {
		return suggestions.Known{}, fmt.Errorf("%w: clients: %w", ErrSuggestFailed, err)
	}

	return suggestions.Known{Projects: projects, Clients: clients}, nil
}

func extractResults(s state.State) ([]analyzedItem, error) {
	val, ok := s.Get(KeyResults)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in state", ErrSuggestFailed, KeyResults)
	}

	items, ok := val.([]analyzedItem)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not []analyzedItem", ErrSuggestFailed, KeyResults)
	}

	return items, nil
}
