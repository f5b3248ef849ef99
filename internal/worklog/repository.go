package worklog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/chronicle/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a work-record repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "worklog"),
	}
}

func (r *repo) Create(ctx context.Context, rec *Record) error {
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	q := `
		INSERT INTO work_records(
			id, date, start_time, hours, client, project, description,
			category, billable, tags, suggestion_id, confidence, sources
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	args := []any{
		rec.ID, rec.Date, rec.Start, rec.Hours, rec.Client, rec.Project,
		rec.Description, rec.Category, rec.Billable, tags,
		rec.SuggestionID, rec.Confidence, sources,
	}

	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&rec.CreatedAt); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("work record created",
		"id", rec.ID,
		"hours", rec.Hours,
		"billable", rec.Billable,
	)
	return nil
}

func (r *repo) Projects(ctx context.Context) ([]string, error) {
	return r.names(ctx, "SELECT name FROM projects ORDER BY name")
}

func (r *repo) Clients(ctx context.Context) ([]string, error) {
	return r.names(ctx, "SELECT name FROM clients ORDER BY name")
}

func (r *repo) Recent(ctx context.Context, limit int) ([]Record, error) {
	q := `
		SELECT id, date, start_time, hours, client, project, description,
		       category, billable, tags, suggestion_id, confidence, sources,
		       created_at
		FROM work_records
		ORDER BY date DESC, created_at DESC
		LIMIT $1`

	records, err := repository.QueryMany(ctx, r.db, q, []any{limit}, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query recent work records: %w", err)
	}
	return records, nil
}

func (r *repo) names(ctx context.Context, q string) ([]string, error) {
	names, err := repository.QueryMany(ctx, r.db, q, nil, func(s repository.Scanner) (string, error) {
		var name string
		err := s.Scan(&name)
		return name, err
	})
	if err != nil {
		return nil, fmt.Errorf("query catalog names: %w", err)
	}
	return names, nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		rec     Record
		tags    []byte
		sources []byte
	)

	err := s.Scan(
		&rec.ID,
		&rec.Date,
		&rec.Start,
		&rec.Hours,
		&rec.Client,
		&rec.Project,
		&rec.Description,
		&rec.Category,
		&rec.Billable,
		&tags,
		&rec.SuggestionID,
		&rec.Confidence,
		&sources,
		&rec.CreatedAt,
	)
	if err != nil {
		return rec, err
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &rec.Tags); err != nil {
			return rec, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &rec.Sources); err != nil {
			return rec, fmt.Errorf("unmarshal sources: %w", err)
		}
	}

	return rec, nil
}

func (r *repo) Export(ctx context.Context) ([]Record, error) {
	q := `
		SELECT id, date, start_time, hours, client, project, description,
		       category, billable, tags, suggestion_id, confidence, sources,
		       created_at
		FROM work_records
		ORDER BY date DESC, created_at DESC`

	records, err := repository.QueryMany(ctx, r.db, q, nil, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("export work records: %w", err)
	}
	return records, nil
}

func (r *repo) Purge(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM work_records")
	if err != nil {
		return 0, fmt.Errorf("purge work records: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge work records: %w", err)
	}

	r.logger.Info("work records purged", "count", rows)
	return int(rows), nil
}
