package suggestions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/chronicle/internal/activities"
	"github.com/JaimeStill/chronicle/internal/worklog"
	"github.com/JaimeStill/chronicle/pkg/pagination"
)

// Overrides carries caller-supplied field overrides applied when building
// the work record during approval. Nil fields keep the proposed values.
type Overrides struct {
	Project     *string    `json:"project,omitempty"`
	Client      *string    `json:"client,omitempty"`
	Description *string    `json:"description,omitempty"`
	Hours       *float64   `json:"hours,omitempty"`
	Billable    *bool      `json:"billable,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// ApproveCommand carries the data needed to approve a suggestion.
// ApprovedBy identifies the human approver; the auto-approval policy uses
// SystemActor.
type ApproveCommand struct {
	ApprovedBy string    `json:"approved_by"`
	Overrides  Overrides `json:"overrides"`
}

// RejectCommand carries the data needed to reject a suggestion.
type RejectCommand struct {
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason"`
}

// System defines the public contract for suggestion lifecycle operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Suggestion], error)

	Find(ctx context.Context, id uuid.UUID) (*Suggestion, error)
	FindBySource(ctx context.Context, source activities.SourceKind, sourceID string) (*Suggestion, error)
	Create(ctx context.Context, s *Suggestion) error
	Approve(ctx context.Context, id uuid.UUID, cmd ApproveCommand) (*worklog.Record, error)
	Reject(ctx context.Context, id uuid.UUID, cmd RejectCommand) error
	ClearStale(ctx context.Context, olderThanDays int) (int, error)

	Export(ctx context.Context) ([]Suggestion, error)
	Purge(ctx context.Context) (int, error)
}
