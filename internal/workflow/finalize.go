package workflow

import (
	"context"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/chronicle/internal/privacy"
)

// FinalizeNode returns a state node that records the batch's audit entry
// and ensures an outcome is present even when the suggest node was skipped.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		outcome := resolveOutcome(s)

		rt.Ledger.Record(privacy.ActionContentAnalysis, "workflow", map[string]any{
			"received":      outcome.Received,
			"analyzed":      outcome.Analyzed,
			"cached":        outcome.Cached,
			"rule_based":    outcome.RuleBased,
			"suggested":     outcome.Suggested,
			"auto_approved": outcome.AutoApproved,
			"duplicates":    outcome.Duplicates,
			"discarded":     outcome.Discarded,
			"failed":        outcome.Failed,
		})

		rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"received", outcome.Received,
			"suggested", outcome.Suggested,
			"auto_approved", outcome.AutoApproved,
		)

		s = s.Set(KeyOutcome, outcome)
		return s, nil
	})
}

// resolveOutcome returns the outcome set by the suggest node, or a zero
// outcome sized to the batch when the batch produced nothing to suggest.
func resolveOutcome(s state.State) BatchOutcome {
	if val, ok := s.Get(KeyOutcome); ok {
		if outcome, ok := val.(BatchOutcome); ok {
			return outcome
		}
	}

	var outcome BatchOutcome
	if batch, err := extractBatch(s); err == nil {
		outcome.Received = len(batch)
	}
	return outcome
}
