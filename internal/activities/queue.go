package activities

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/chronicle/pkg/lifecycle"
)

// Processor receives flushed batches from the queue. Failures inside a batch
// are the processor's responsibility to isolate; the queue never retries.
type Processor interface {
	ProcessBatch(ctx context.Context, batch []Activity)
}

// QueueConfig holds the flush policy for the activity queue.
type QueueConfig struct {
	// FlushInterval is the maximum wall-clock time between flushes.
	FlushInterval time.Duration
	// BatchSize triggers an immediate flush when the pending count reaches it.
	BatchSize int
	// PriorityKeywords trigger an immediate flush of the whole queue when any
	// submitted activity matches one of them.
	PriorityKeywords []string
}

// Queue accumulates submitted activities and flushes them to a Processor on
// a timer, on a size threshold, or on a priority keyword match. Flushes are
// serialized: a single background loop performs them one at a time, and
// activities submitted mid-flush form the next batch.
type Queue struct {
	mu        sync.Mutex
	pending   []Activity
	closed    bool
	lastFlush time.Time

	wake   chan struct{}
	cfg    QueueConfig
	proc   Processor
	logger *slog.Logger
}

// NewQueue creates a Queue that hands batches to proc.
func NewQueue(cfg QueueConfig, proc Processor, logger *slog.Logger) *Queue {
	return &Queue{
		wake:   make(chan struct{}, 1),
		cfg:    cfg,
		proc:   proc,
		logger: logger.With("system", "queue"),
	}
}

// Submit enqueues an activity for analysis and returns immediately.
// A size-threshold or priority-keyword trigger wakes the flush loop but
// never blocks the caller.
func (q *Queue) Submit(a Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.IngestedAt.IsZero() {
		a.IngestedAt = time.Now().UTC()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, a)
	trigger := len(q.pending) >= q.cfg.BatchSize || a.HighPriority(q.cfg.PriorityKeywords)
	depth := len(q.pending)
	q.mu.Unlock()

	if trigger {
		q.Kick()
	}

	q.logger.Debug("activity submitted",
		"source", a.Source,
		"source_id", a.SourceID,
		"depth", depth,
		"triggered", trigger,
	)
	return nil
}

// Kick wakes the flush loop without blocking. Safe to call at any time.
func (q *Queue) Kick() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Depth returns the number of activities waiting for the next flush.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// LastFlush returns the time of the most recent completed flush.
func (q *Queue) LastFlush() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastFlush
}

// Start launches the flush loop and registers a shutdown hook that drains
// any remaining activities before the coordinator completes shutdown.
func (q *Queue) Start(lc *lifecycle.Coordinator) error {
	q.logger.Info("starting activity queue",
		"flush_interval", q.cfg.FlushInterval,
		"batch_size", q.cfg.BatchSize,
	)

	done := make(chan struct{})
	go q.run(lc.Context(), done)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
	})

	return nil
}

func (q *Queue) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(q.cfg.FlushInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			q.drain()
			return
		case <-q.wake:
		case <-timer.C:
		}

		q.flush(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(q.cfg.FlushInterval)
	}
}

// flush swaps out the entire pending batch under the lock and processes it
// outside the lock, so Submit stays non-blocking during processing.
func (q *Queue) flush(ctx context.Context) {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.lastFlush = time.Now().UTC()
	q.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	q.logger.Info("flushing batch", "count", len(batch))
	q.proc.ProcessBatch(ctx, batch)
}

// drain closes the queue to new submissions and processes whatever is left.
// It runs with a background context so an in-flight shutdown does not abort
// the final batch mid-item.
func (q *Queue) drain() {
	q.mu.Lock()
	q.closed = true
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	q.logger.Info("draining queue on shutdown", "count", len(batch))
	q.proc.ProcessBatch(context.Background(), batch)
}
