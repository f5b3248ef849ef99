package privacy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/chronicle/pkg/lifecycle"
	"github.com/JaimeStill/chronicle/pkg/pagination"
	"github.com/JaimeStill/chronicle/pkg/query"
	"github.com/JaimeStill/chronicle/pkg/repository"
)

// Ledger is the append-only audit trail of privacy-relevant operations.
//
// Record is fire-and-forget: the entry is accepted synchronously and
// persisted by a background writer so hot paths never block on the audit
// write. Write failures are never swallowed silently; they are logged with
// the entry's shape. RecordSync persists inline for operations whose audit
// entry must durably precede the operation itself (data deletion).
type Ledger interface {
	Record(action Action, source string, details map[string]any)
	RecordSync(ctx context.Context, action Action, source string, details map[string]any) error

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[AuditEntry], error)
	Cleanup(ctx context.Context, retentionDays int) (int, error)

	Start(lc *lifecycle.Coordinator) error
}

var auditProjection = query.
	NewProjectionMap("public", "audit_log", "a").
	Project("id", "ID").
	Project("timestamp", "Timestamp").
	Project("action", "Action").
	Project("source", "Source").
	Project("details", "Details").
	Project("retain_until", "RetainUntil").
	Project("auto_delete", "AutoDelete")

var auditSort = query.SortField{
	Field:      "Timestamp",
	Descending: true,
}

const recordBuffer = 256

type ledger struct {
	db            *sql.DB
	retentionDays int
	entries       chan AuditEntry
	logger        *slog.Logger
	pagination    pagination.Config
}

// NewLedger creates a PostgreSQL-backed audit ledger. retentionDays sets
// the retain-until deadline stamped on every entry.
func NewLedger(
	db *sql.DB,
	retentionDays int,
	logger *slog.Logger,
	pagination pagination.Config,
) Ledger {
	return &ledger{
		db:            db,
		retentionDays: retentionDays,
		entries:       make(chan AuditEntry, recordBuffer),
		logger:        logger.With("system", "ledger"),
		pagination:    pagination,
	}
}

func (l *ledger) Record(action Action, source string, details map[string]any) {
	entry := l.newEntry(action, source, details)

	select {
	case l.entries <- entry:
	default:
		// Buffer full: write inline rather than drop the entry.
		if err := l.insert(context.Background(), entry); err != nil {
			l.logger.Error("audit write failed",
				"action", action,
				"source", source,
				"error", err,
			)
		}
	}
}

func (l *ledger) RecordSync(ctx context.Context, action Action, source string, details map[string]any) error {
	entry := l.newEntry(action, source, details)
	if err := l.insert(ctx, entry); err != nil {
		return fmt.Errorf("%w: audit write: %w", ErrStorage, err)
	}
	return nil
}

func (l *ledger) List(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[AuditEntry], error) {
	page.Normalize(l.pagination)

	qb := query.NewBuilder(auditProjection, auditSort)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := l.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, l.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}

// Cleanup prunes auto-deletable entries past their retention deadline. The
// sweep itself is audited.
func (l *ledger) Cleanup(ctx context.Context, retentionDays int) (int, error) {
	cutoff := time.Now().UTC()

	result, err := l.db.ExecContext(
		ctx,
		"DELETE FROM audit_log WHERE auto_delete = true AND retain_until < $1",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup audit entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup audit entries: %w", err)
	}

	if rows > 0 {
		l.Record(ActionDataCleanup, "audit_log", map[string]any{
			"removed":        rows,
			"retention_days": retentionDays,
		})
		l.logger.Info("audit entries pruned", "count", rows)
	}

	return int(rows), nil
}

// Start launches the background writer and registers a shutdown hook that
// drains buffered entries before the coordinator completes shutdown.
func (l *ledger) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting audit ledger", "retention_days", l.retentionDays)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-lc.Context().Done():
				l.drainEntries()
				return
			case entry := <-l.entries:
				if err := l.insert(context.Background(), entry); err != nil {
					l.logger.Error("audit write failed",
						"action", entry.Action,
						"source", entry.Source,
						"error", err,
					)
				}
			}
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
	})

	return nil
}

func (l *ledger) drainEntries() {
	for {
		select {
		case entry := <-l.entries:
			if err := l.insert(context.Background(), entry); err != nil {
				l.logger.Error("audit drain write failed", "action", entry.Action, "error", err)
			}
		default:
			return
		}
	}
}

func (l *ledger) newEntry(action Action, source string, details map[string]any) AuditEntry {
	now := time.Now().UTC()
	return AuditEntry{
		ID:          uuid.New(),
		Timestamp:   now,
		Action:      action,
		Source:      source,
		Details:     details,
		RetainUntil: now.AddDate(0, 0, l.retentionDays),
		AutoDelete:  true,
	}
}

func (l *ledger) insert(ctx context.Context, entry AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	q := `
		INSERT INTO audit_log(id, timestamp, action, source, details, retain_until, auto_delete)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = l.db.ExecContext(ctx, q,
		entry.ID, entry.Timestamp, entry.Action, entry.Source,
		details, entry.RetainUntil, entry.AutoDelete,
	)
	return err
}

func scanEntry(s repository.Scanner) (AuditEntry, error) {
	var (
		entry   AuditEntry
		details []byte
	)

	err := s.Scan(
		&entry.ID,
		&entry.Timestamp,
		&entry.Action,
		&entry.Source,
		&details,
		&entry.RetainUntil,
		&entry.AutoDelete,
	)
	if err != nil {
		return entry, err
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return entry, fmt.Errorf("unmarshal details: %w", err)
		}
	}

	return entry, nil
}
