package content

import "context"

// Repository stores content records keyed by canonical slug.
type Repository interface {
	// GetByCanonicalSlug reads the current row, bypassing any cache.
	GetByCanonicalSlug(ctx context.Context, canonical string) (*Record, error)
	// Lookup reads a row and may be served from a read cache.
	Lookup(ctx context.Context, canonical string) (*Record, error)
	// Upsert inserts record or replaces the content of the row holding its
	// canonical slug in one atomic statement. The stored row is returned.
	Upsert(ctx context.Context, record *Record) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
}

// Relocator applies a relocation plan atomically across locations and content.
type Relocator interface {
	Apply(ctx context.Context, plan RelocationPlan) error
}
