package suggestions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/internal/privacy"
	"github.com/JaimeStill/chronicle/internal/worklog"
	"github.com/JaimeStill/chronicle/pkg/pagination"
	"github.com/JaimeStill/chronicle/pkg/query"
	"github.com/JaimeStill/chronicle/pkg/repository"
)

type repo struct {
	db         *sql.DB
	sink       worklog.Sink
	ledger     privacy.Ledger
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a suggestion repository implementing the System interface.
func New(
	db *sql.DB,
	sink worklog.Sink,
	ledger privacy.Ledger,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		sink:       sink,
		ledger:     ledger,
		logger:     logger.With("system", "suggestions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Suggestion], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Description", "Reasoning")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count suggestions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSuggestion)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}

	r.ledger.Record(privacy.ActionDataAccess, "suggestions", map[string]any{
		"operation": "list",
		"count":     len(items),
	})

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Suggestion, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSuggestion)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) FindBySource(
	ctx context.Context,
	source activities.SourceKind,
	sourceID string,
) (*Suggestion, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("Source", source).
		WhereEquals("SourceID", sourceID).
		BuildSingleOrNull()

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSuggestion)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

// Create persists a new pending suggestion. Idempotent on (source,
// source_id): re-ingesting a previously seen source-native id returns
// ErrDuplicate without inserting a second row.
func (r *repo) Create(ctx context.Context, s *Suggestion) error {
	sources, err := json.Marshal(s.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	tags, err := json.Marshal(s.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	q := `
		INSERT INTO suggestions(
			id, activity_id, source, source_id, sources, date, start_time,
			hours, project, client, description, tags, category, billable,
			meeting_type, confidence, rule_based, reasoning, generated_at, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20)
		ON CONFLICT (source, source_id) DO NOTHING`

	args := []any{
		s.ID, s.ActivityID, s.Source, s.SourceID, sources, s.Date, s.Start,
		s.Hours, s.Project, s.Client, s.Description, tags, s.Category,
		s.Billable, s.MeetingType, s.Confidence, s.RuleBased, s.Reasoning,
		s.GeneratedAt, s.Status,
	}

	result, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert suggestion: %w", err)
	}
	if rows == 0 {
		return ErrDuplicate
	}

	r.ledger.Record(privacy.ActionEntryGeneration, string(s.Source), map[string]any{
		"suggestion_id": s.ID.String(),
		"confidence":    s.Confidence,
		"rule_based":    s.RuleBased,
	})

	r.logger.Info("suggestion created",
		"id", s.ID,
		"source", s.Source,
		"confidence", s.Confidence,
	)
	return nil
}

// Approve claims the pending suggestion with a conditional update, builds
// the work record from the proposed fields merged with overrides, and
// forwards it to the sink. The conditional claim makes concurrent approvals
// race-free: exactly one caller wins, every other caller observes
// ErrInvalidTransition. A sink failure releases the claim so no approval is
// recorded without its work record.
func (r *repo) Approve(ctx context.Context, id uuid.UUID, cmd ApproveCommand) (*worklog.Record, error) {
	s, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.GuardTransition(StatusApproved); err != nil {
		return nil, err
	}

	approvedBy := cmd.ApprovedBy
	if approvedBy == "" {
		approvedBy = "user"
	}
	disposedAt := time.Now().UTC()

	if err := r.claim(ctx, id, StatusApproved, approvedBy, nil, disposedAt); err != nil {
		return nil, err
	}

	rec := buildRecord(s, cmd.Overrides)
	if err := r.sink.Create(ctx, rec); err != nil {
		r.release(ctx, id)
		return nil, fmt.Errorf("%w: %w", ErrSinkFailed, err)
	}

	r.ledger.Record(privacy.ActionEntryGeneration, string(s.Source), map[string]any{
		"operation":      "approve",
		"suggestion_id":  id.String(),
		"work_record_id": rec.ID.String(),
		"approved_by":    approvedBy,
	})

	r.logger.Info("suggestion approved",
		"id", id,
		"approved_by", approvedBy,
		"work_record", rec.ID,
	)
	return rec, nil
}

func (r *repo) Reject(ctx context.Context, id uuid.UUID, cmd RejectCommand) error {
	s, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.GuardTransition(StatusRejected); err != nil {
		return err
	}

	var reason *string
	if cmd.Reason != "" {
		reason = &cmd.Reason
	}

	if err := r.claim(ctx, id, StatusRejected, cmd.RejectedBy, reason, time.Now().UTC()); err != nil {
		return err
	}

	r.ledger.Record(privacy.ActionDataAccess, string(s.Source), map[string]any{
		"operation":     "reject",
		"suggestion_id": id.String(),
	})

	r.logger.Info("suggestion rejected", "id", id, "reason", cmd.Reason)
	return nil
}

// ClearStale removes non-pending suggestions older than the threshold.
// Pending suggestions are never dropped regardless of age.
func (r *repo) ClearStale(ctx context.Context, olderThanDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	result, err := r.db.ExecContext(
		ctx,
		"DELETE FROM suggestions WHERE generated_at < $1 AND status <> $2",
		cutoff, StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("clear stale suggestions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear stale suggestions: %w", err)
	}

	if rows > 0 {
		r.ledger.Record(privacy.ActionDataCleanup, "suggestions", map[string]any{
			"removed":         rows,
			"older_than_days": olderThanDays,
		})
		r.logger.Info("stale suggestions cleared", "count", rows, "older_than_days", olderThanDays)
	}

	return int(rows), nil
}

// claim performs the race-free transition out of pending. The status guard
// in the WHERE clause is the arbiter under concurrency; a raced caller
// affects zero rows and receives ErrInvalidTransition.
func (r *repo) claim(
	ctx context.Context,
	id uuid.UUID,
	to Status,
	actor string,
	note *string,
	disposedAt time.Time,
) error {
	q := `
		UPDATE suggestions
		SET status = $1, approved_by = $2, disposition_note = $3, disposed_at = $4
		WHERE id = $5 AND status = $6`

	err := repository.ExecExpectOne(ctx, r.db, q, to, actor, note, disposedAt, id, StatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidTransition
		}
		return fmt.Errorf("transition suggestion %s: %w", id, err)
	}
	return nil
}

// release reverts a claim after a sink failure so the suggestion can be
// approved again once the sink recovers.
func (r *repo) release(ctx context.Context, id uuid.UUID) {
	q := `
		UPDATE suggestions
		SET status = $1, approved_by = NULL, disposition_note = NULL, disposed_at = NULL
		WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, q, StatusPending, id); err != nil {
		r.logger.Error("failed to release claimed suggestion", "id", id, "error", err)
	}
}

func buildRecord(s *Suggestion, o Overrides) *worklog.Record {
	rec := &worklog.Record{
		ID:           uuid.New(),
		Date:         s.Date,
		Start:        s.Start,
		Hours:        s.Hours,
		Client:       s.Client,
		Project:      s.Project,
		Description:  s.Description,
		Category:     string(s.Category),
		Billable:     s.Billable,
		Tags:         s.Tags,
		SuggestionID: &s.ID,
		Confidence:   &s.Confidence,
		Sources:      s.Sources,
	}

	if o.Date != nil {
		rec.Date = *o.Date
	}
	if o.Hours != nil {
		rec.Hours = *o.Hours
	}
	if o.Client != nil {
		rec.Client = o.Client
	}
	if o.Project != nil {
		rec.Project = o.Project
	}
	if o.Description != nil {
		rec.Description = *o.Description
	}
	if o.Billable != nil {
		rec.Billable = *o.Billable
	}
	if len(o.Tags) > 0 {
		rec.Tags = o.Tags
	}

	return rec
}

func (r *repo) Export(ctx context.Context) ([]Suggestion, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()

	suggestions, err := repository.QueryMany(ctx, r.db, q, args, scanSuggestion)
	if err != nil {
		return nil, fmt.Errorf("export suggestions: %w", err)
	}
	return suggestions, nil
}

func (r *repo) Purge(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM suggestions")
	if err != nil {
		return 0, fmt.Errorf("purge suggestions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge suggestions: %w", err)
	}

	r.logger.Info("suggestions purged", "count", rows)
	return int(rows), nil
}
