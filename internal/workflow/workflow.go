package workflow

import (
	"context"
	"fmt"
	"runtime"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/chronicle/internal/activities"
)

// Execute runs the intake pipeline for one flushed batch. It builds the
// state graph (context → analyze → suggest → finalize), executes it, and
// extracts the BatchOutcome from the final state. Batches that produce no
// analyzable results skip the suggest node.
func Execute(ctx context.Context, rt *Runtime, batch []activities.Activity) (*BatchOutcome, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyBatch, batch)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractOutcome(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("chronicle-intake")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("context", ContextNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("analyze", AnalyzeNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("suggest", SuggestNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	// context → analyze (unconditional)
	if err := graph.AddEdge("context", "analyze", nil); err != nil {
		return nil, err
	}

	// analyze → suggest (when any activity produced a result)
	if err := graph.AddEdge("analyze", "suggest", hasResults); err != nil {
		return nil, err
	}

	// analyze → finalize (empty batch)
	if err := graph.AddEdge("analyze", "finalize", state.Not(hasResults)); err != nil {
		return nil, err
	}

	// suggest → finalize (unconditional)
	if err := graph.AddEdge("suggest", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("context"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractOutcome(s state.State) (*BatchOutcome, error) {
	val, ok := s.Get(KeyOutcome)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyOutcome)
	}

	outcome, ok := val.(BatchOutcome)
	if !ok {
		return nil, fmt.Errorf("%s is not BatchOutcome", KeyOutcome)
	}

	outcome.CompletedAt = time.Now().UTC()
	return &outcome, nil
}

func hasResults(s state.State) bool {
	val, ok := s.Get(KeyResults)
	if !ok {
		return false
	}

	items, ok := val.([]analyzedItem)
	return ok && len(items) > 0
}

func workerCount(rt *Runtime, batchSize int) int {
	workers := rt.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return max(min(workers, batchSize), 1)
}
