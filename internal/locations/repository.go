package locations

import "context"

// Repository abstracts storage of location nodes.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Node, error)
	GetByCanonicalSlug(ctx context.Context, canonical string) (*Node, error)
	List(ctx context.Context) ([]*Node, error)
	// InsertIfAbsent stores node unless a row with the same id exists, and
	// returns whichever row is stored afterwards.
	InsertIfAbsent(ctx context.Context, node *Node) (*Node, error)
	// Upsert inserts node or replaces the row sharing its id.
	Upsert(ctx context.Context, node *Node) (*Node, error)
	// SetCanonicalSlug writes the denormalised canonical slug of one node.
	SetCanonicalSlug(ctx context.Context, id, canonical string) error
}
