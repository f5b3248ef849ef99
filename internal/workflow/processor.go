package workflow

import (
	"context"

	"github.com/JaimeStill/chronicle/internal/activities"
)

// Processor adapts the pipeline to the activity queue's flush contract.
// Batch failures are logged, never propagated; the queue does not retry and
// submitted activities remain recoverable through their source systems.
type Processor struct {
	rt *Runtime
}

// NewProcessor creates a queue processor over the given runtime.
func NewProcessor(rt *Runtime) *Processor {
	return &Processor{rt: rt}
}

// ProcessBatch runs the intake pipeline for one flushed batch.
func (p *Processor) ProcessBatch(ctx context.Context, batch []activities.Activity) {
	if len(batch) == 0 {
		return
	}

	outcome, err := Execute(ctx, p.rt, batch)
	if err != nil {
		p.rt.Logger.ErrorContext(
			ctx, "batch pipeline failed",
			"batch_size", len(batch),
			"error", err,
		)
		return
	}

	p.rt.Logger.InfoContext(
		ctx, "batch pipeline complete",
		"received", outcome.Received,
		"suggested", outcome.Suggested,
		"auto_approved", outcome.AutoApproved,
		"cached", outcome.Cached,
		"discarded", outcome.Discarded,
		"failed", outcome.Failed,
	)
}
