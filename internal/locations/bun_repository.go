package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/internal/schemacaps"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

var baseColumns = []string{"id", "name", "slug", "type", "parent_id", "created_at", "updated_at"}

// BunRepository stores nodes in the locations table. Column sets follow the
// capabilities probe so rows can be read and written before the optional
// canonical_slug and editable columns are migrated.
type BunRepository struct {
	db     bun.IDB
	caps   schemacaps.Capabilities
	logger interfaces.Logger
	clock  func() time.Time
}

// BunOption configures a BunRepository.
type BunOption func(*BunRepository)

// WithBunLogger sets the logger used to report schema drift retries.
func WithBunLogger(logger interfaces.Logger) BunOption {
	return func(r *BunRepository) {
		r.logger = logging.Ensure(logger)
	}
}

// NewBunRepository returns a repository over db. A nil caps assumes every optional column exists.
func NewBunRepository(db bun.IDB, caps schemacaps.Capabilities, opts ...BunOption) *BunRepository {
	if caps == nil {
		caps = schemacaps.All()
	}
	repo := &BunRepository{db: db, caps: caps, logger: logging.NoOp(), clock: time.Now}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (r *BunRepository) columns() []string {
	return schemacaps.Columns(r.caps, schemacaps.TableLocations, baseColumns,
		schemacaps.ColumnCanonicalSlug, schemacaps.ColumnEditable)
}

func (r *BunRepository) GetByID(ctx context.Context, id string) (*Node, error) {
	nodes, err := r.selectNodes(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id).Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, &NotFoundError{Resource: "location", Key: id}
	}
	return nodes[0], nil
}

func (r *BunRepository) GetByCanonicalSlug(ctx context.Context, canonical string) (*Node, error) {
	if !r.caps.Has(schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug) {
		return nil, &NotFoundError{Resource: "location", Key: canonical}
	}
	nodes, err := r.selectNodes(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("canonical_slug = ?", canonical).Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, &NotFoundError{Resource: "location", Key: canonical}
	}
	return nodes[0], nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Node, error) {
	return r.selectNodes(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("id ASC")
	})
}

func (r *BunRepository) InsertIfAbsent(ctx context.Context, node *Node) (*Node, error) {
	record := r.prepare(node)
	retried, err := schemacaps.RunWithDrift(ctx, r.caps, r.columns, func(cols []string) error {
		_, err := r.db.NewInsert().
			Model(record).
			Column(cols...).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		return err
	})
	r.reportRetry(retried, "locations.insert.schema_retry", node.ID)
	if err != nil {
		return nil, fmt.Errorf("location repository insert %s: %w", node.ID, err)
	}
	return r.GetByID(ctx, node.ID)
}

func (r *BunRepository) Upsert(ctx context.Context, node *Node) (*Node, error) {
	record := r.prepare(node)
	retried, err := schemacaps.RunWithDrift(ctx, r.caps, r.columns, func(cols []string) error {
		q := r.db.NewInsert().
			Model(record).
			Column(cols...).
			On("CONFLICT (id) DO UPDATE")
		for _, col := range cols {
			if col == "id" || col == "created_at" {
				continue
			}
			q = q.Set(col + " = EXCLUDED." + col)
		}
		_, err := q.Exec(ctx)
		return err
	})
	r.reportRetry(retried, "locations.upsert.schema_retry", node.ID)
	if err != nil {
		return nil, fmt.Errorf("location repository upsert %s: %w", node.ID, err)
	}
	return r.GetByID(ctx, node.ID)
}

func (r *BunRepository) SetCanonicalSlug(ctx context.Context, id, canonical string) error {
	if !r.caps.Has(schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug) {
		return ErrColumnUnavailable
	}
	res, err := r.db.NewUpdate().
		Table(schemacaps.TableLocations).
		Set("canonical_slug = ?", canonical).
		Set("updated_at = ?", r.clock().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("location repository set canonical %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "location", Key: id}
	}
	return nil
}

func (r *BunRepository) selectNodes(ctx context.Context, apply func(*bun.SelectQuery) *bun.SelectQuery) ([]*Node, error) {
	var nodes []*Node
	var cols []string
	retried, err := schemacaps.RunWithDrift(ctx, r.caps, r.columns, func(selected []string) error {
		nodes = nil
		cols = selected
		err := apply(r.db.NewSelect().Model(&nodes).Column(selected...)).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	})
	r.reportRetry(retried, "locations.select.schema_retry", "")
	if err != nil {
		return nil, fmt.Errorf("location repository select: %w", err)
	}
	if !slices.Contains(cols, schemacaps.ColumnEditable) {
		for _, node := range nodes {
			node.Editable = true
		}
	}
	return nodes, nil
}

func (r *BunRepository) prepare(node *Node) *Node {
	record := cloneNode(node)
	now := r.clock().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	return record
}

func (r *BunRepository) reportRetry(retried bool, event, id string) {
	if !retried {
		return
	}
	r.logger.Warn(event, "location_id", id)
}
