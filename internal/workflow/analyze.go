package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/internal/analysis"
	"github.com/JaimeStill/chronicle/internal/prompts"
)

// AnalyzeNode returns a state node that analyzes each activity in the
// batch using bounded errgroup concurrency. Results for previously seen
// activities are served from the fingerprint cache without an inference
// call; fresh results are cached on the way out.
func AnalyzeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		batch, err := extractBatch(s)
		if err != nil {
			return s, fmt.Errorf("analyze: %w", err)
		}

		analysisCtx, err := extractContext(s)
		if err != nil {
			return s, fmt.Errorf("analyze: %w", err)
		}

		items, err := analyzeBatch(ctx, rt, batch, analysisCtx)
		if err != nil {
			return s, fmt.Errorf("analyze: %w", err)
		}

		cached := 0
		for _, item := range items {
			if item.cached {
				cached++
			}
		}

		rt.Logger.InfoContext(
			ctx, "analyze node complete",
			"batch_size", len(batch),
			"cached", cached,
		)

		s = s.Set(KeyResults, items)
		return s, nil
	})
}

func analyzeBatch(
	ctx context.Context,
	rt *Runtime,
	batch []activities.Activity,
	analysisCtx analysis.Context,
) ([]analyzedItem, error) {
	instructions, err := ComposePrompt(ctx, rt.Prompts, prompts.StageAnalyze)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
	}

	items := make([]analyzedItem, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(rt, len(batch)))

	for i, a := range batch {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			fingerprint := a.Fingerprint()
			if result, ok := rt.Cache.Get(fingerprint); ok {
				items[i] = analyzedItem{activity: a, result: result, cached: true}
				return nil
			}

			result := rt.Analyzer.Analyze(gctx, analysis.NewRequest(a, analysisCtx), instructions)
			rt.Cache.Put(fingerprint, *result)

			items[i] = analyzedItem{activity: a, result: *result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalyzeFailed, err)
	}

	return items, nil
}

// ComposePrompt builds the system prompt for a stage by combining its
// effective instructions (active override or default) with its immutable
// output specification.
func ComposePrompt(ctx context.Context, ps prompts.System, stage prompts.Stage) (string, error) {
	instructions, err := ps.Resolve(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("resolve instructions for %s: %w", stage, err)
	}

	spec, err := prompts.Spec(stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	return sb.String(), nil
}

func extractContext(s state.State) (analysis.Context, error) {
	val, ok := s.Get(KeyContext)
	if !ok {
		return analysis.Context{}, fmt.Errorf("%w: missing %s in state", ErrAnalyzeFailed, KeyContext)
	}

	analysisCtx, ok := val.(analysis.Context)
	if !ok {
		return analysis.Context{}, fmt.Errorf("%w: %s is not analysis.Context", ErrAnalyzeFailed, KeyContext)
	}

	return analysisCtx, nil
}
