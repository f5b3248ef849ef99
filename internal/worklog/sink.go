package worklog

import "context"

// Sink is the system of record for approved time entries. The suggestion
// lifecycle emits into it exactly once per approval; implementations must
// treat Create as non-idempotent and rely on the caller's transition guards
// for exactly-once semantics.
type Sink interface {
	Create(ctx context.Context, rec *Record) error
}

// Catalog exposes the known-world slice used to validate suggestions and
// build inference context: valid project and client names plus a bounded
// recent-history window.
type Catalog interface {
	Projects(ctx context.Context) ([]string, error)
	Clients(ctx context.Context) ([]string, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// System combines the sink and catalog contracts with the privacy surface:
// a full export of stored records and a complete purge.
type System interface {
	Sink
	Catalog

	Export(ctx context.Context) ([]Record, error)
	Purge(ctx context.Context) (int, error)
}
