package privacy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/chronicle/pkg/pagination"
)

// Source is a domain data set that participates in privacy operations.
// Each registered source contributes its records to exports and removes
// them on erasure.
type Source interface {
	Name() string
	Export(ctx context.Context) (any, error)
	Purge(ctx context.Context) (int, error)
}

// ExportBundle is the complete portable copy of a user's stored data.
type ExportBundle struct {
	ExportedAt time.Time         `json:"exported_at"`
	Audit      []AuditEntry      `json:"audit"`
	Secrets    map[string]string `json:"secrets"`
	Sources    map[string]any    `json:"sources"`
}

// EraseSummary reports what an erasure removed, keyed by source name.
type EraseSummary struct {
	ErasedAt time.Time      `json:"erased_at"`
	Removed  map[string]int `json:"removed"`
}

// System coordinates the audit ledger, the encrypted vault, and the
// registered data sources behind the privacy surface.
type System interface {
	Handler() *Handler

	Audit(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[AuditEntry], error)
	Export(ctx context.Context) (*ExportBundle, error)
	Erase(ctx context.Context) (*EraseSummary, error)
}

type system struct {
	ledger     Ledger
	vault      Vault
	sources    []Source
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the privacy system over the given ledger, vault, and data
// sources.
func New(
	ledger Ledger,
	vault Vault,
	sources []Source,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &system{
		ledger:     ledger,
		vault:      vault,
		sources:    sources,
		logger:     logger.With("system", "privacy"),
		pagination: pagination,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *system) Audit(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[AuditEntry], error) {
	return s.ledger.List(ctx, page)
}

// Export assembles a complete copy of the user's stored data: the audit
// trail, decrypted vault secrets, and every registered source's records.
func (s *system) Export(ctx context.Context) (*ExportBundle, error) {
	bundle := &ExportBundle{
		ExportedAt: time.Now().UTC(),
		Secrets:    make(map[string]string),
		Sources:    make(map[string]any),
	}

	audit, err := s.collectAudit(ctx)
	if err != nil {
		return nil, fmt.Errorf("export audit trail: %w", err)
	}
	bundle.Audit = audit

	keys, err := s.vault.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("export secrets: %w", err)
	}
	for _, key := range keys {
		value, err := s.vault.Load(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("export secret %s: %w", key, err)
		}
		bundle.Secrets[key] = string(value)
	}

	for _, src := range s.sources {
		data, err := src.Export(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", src.Name(), err)
		}
		bundle.Sources[src.Name()] = data
	}

	s.ledger.Record(ActionDataExport, "privacy", map[string]any{
		"audit_entries": len(bundle.Audit),
		"secrets":       len(bundle.Secrets),
		"sources":       len(bundle.Sources),
	})

	return bundle, nil
}

// Erase removes all user data from every registered source and the vault.
// The deletion intent is written to the audit trail synchronously before
// any record is removed, so an interrupted erasure always leaves evidence
// of what was attempted.
func (s *system) Erase(ctx context.Context) (*EraseSummary, error) {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}

	err := s.ledger.RecordSync(ctx, ActionDataDeletion, "privacy", map[string]any{
		"sources": names,
		"vault":   true,
	})
	if err != nil {
		return nil, err
	}

	summary := &EraseSummary{
		ErasedAt: time.Now().UTC(),
		Removed:  make(map[string]int),
	}

	for _, src := range s.sources {
		removed, err := src.Purge(ctx)
		if err != nil {
			return nil, fmt.Errorf("erase %s: %w", src.Name(), err)
		}
		summary.Removed[src.Name()] = removed
	}

	secrets, err := s.vault.Purge(ctx)
	if err != nil {
		return nil, fmt.Errorf("erase vault: %w", err)
	}
	summary.Removed["vault"] = secrets

	s.logger.Info("user data erased", "removed", summary.Removed)
	return summary, nil
}

const exportPageSize = 500

func (s *system) collectAudit(ctx context.Context) ([]AuditEntry, error) {
	var entries []AuditEntry

	for page := 1; ; page++ {
		result, err := s.ledger.List(ctx, pagination.PageRequest{
			Page:     page,
			PageSize: exportPageSize,
		})
		if err != nil {
			return nil, err
		}

		entries = append(entries, result.Data...)
		if page >= result.TotalPages || len(result.Data) == 0 {
			break
		}
	}

	return entries, nil
}
