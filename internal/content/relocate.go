package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/internal/schemacaps"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

// BunRelocator applies relocation plans in a single transaction over the
// locations and location_content tables.
type BunRelocator struct {
	db         *bun.DB
	caps       schemacaps.Capabilities
	invalidate func(context.Context) error
	logger     interfaces.Logger
	clock      func() time.Time
}

// RelocatorOption configures a BunRelocator.
type RelocatorOption func(*BunRelocator)

func WithRelocatorLogger(logger interfaces.Logger) RelocatorOption {
	return func(r *BunRelocator) {
		r.logger = logging.Ensure(logger)
	}
}

func WithRelocatorCapabilities(caps schemacaps.Capabilities) RelocatorOption {
	return func(r *BunRelocator) {
		if caps != nil {
			r.caps = caps
		}
	}
}

// WithCacheInvalidation registers a hook run after a committed relocation.
func WithCacheInvalidation(invalidate func(context.Context) error) RelocatorOption {
	return func(r *BunRelocator) {
		r.invalidate = invalidate
	}
}

func NewBunRelocator(db *bun.DB, opts ...RelocatorOption) *BunRelocator {
	r := &BunRelocator{db: db, caps: schemacaps.All(), logger: logging.NoOp(), clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *BunRelocator) Apply(ctx context.Context, plan RelocationPlan) error {
	if !r.caps.Has(schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug) {
		return locations.ErrColumnUnavailable
	}
	now := r.clock().UTC()

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := checkSibling(ctx, tx, plan); err != nil {
			return err
		}
		if err := checkLocationTargets(ctx, tx, plan.Moves); err != nil {
			return err
		}
		if err := checkTargetsTx(ctx, tx, plan.Moves); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Table(schemacaps.TableLocations).
			Set("slug = ?", plan.Slug).
			Set("updated_at = ?", now).
			Where("id = ?", plan.LocationID).
			Exec(ctx); err != nil {
			return fmt.Errorf("relocate slug %s: %w", plan.LocationID, err)
		}

		for _, move := range plan.Moves {
			if _, err := tx.NewUpdate().
				Table(schemacaps.TableLocations).
				Set("canonical_slug = ?", move.To).
				Set("updated_at = ?", now).
				Where("id = ?", move.LocationID).
				Exec(ctx); err != nil {
				return fmt.Errorf("relocate canonical %s: %w", move.LocationID, err)
			}
		}

		for _, move := range plan.Moves {
			if move.From == "" || move.From == move.To {
				continue
			}
			if _, err := tx.NewUpdate().
				Table(schemacaps.TableContent).
				Set("canonical_slug = ?", move.To).
				Set("updated_at = ?", now).
				Where("canonical_slug = ?", move.From).
				Exec(ctx); err != nil {
				return fmt.Errorf("relocate content %s: %w", move.From, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if r.invalidate != nil {
		if err := r.invalidate(ctx); err != nil {
			r.logger.Warn("content.relocate.cache_invalidate_failed", "error", err)
		}
	}
	return nil
}

func checkSibling(ctx context.Context, tx bun.Tx, plan RelocationPlan) error {
	q := tx.NewSelect().
		Table(schemacaps.TableLocations).
		Where("slug = ?", plan.Slug).
		Where("id <> ?", plan.LocationID)
	if plan.ParentID == "" {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", plan.ParentID)
	}
	taken, err := q.Exists(ctx)
	if err != nil {
		return fmt.Errorf("relocate sibling check: %w", err)
	}
	if taken {
		return errors.Join(ErrRelocationConflict, locations.ErrSlugTaken)
	}
	return nil
}

func checkLocationTargets(ctx context.Context, tx bun.Tx, moves []Move) error {
	ids := make([]string, 0, len(moves))
	targets := make([]string, 0, len(moves))
	for _, move := range moves {
		ids = append(ids, move.LocationID)
		targets = append(targets, move.To)
	}
	taken, err := tx.NewSelect().
		Table(schemacaps.TableLocations).
		Where("canonical_slug IN (?)", bun.In(targets)).
		Where("id NOT IN (?)", bun.In(ids)).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("relocate canonical check: %w", err)
	}
	if taken {
		return errors.Join(ErrRelocationConflict, locations.ErrCanonicalTaken)
	}
	return nil
}

func checkTargetsTx(ctx context.Context, tx bun.Tx, moves []Move) error {
	var lookupErr error
	err := checkTargets(moves, func(key string) bool {
		if lookupErr != nil {
			return false
		}
		exists, err := tx.NewSelect().
			Table(schemacaps.TableContent).
			Where("canonical_slug = ?", key).
			Exists(ctx)
		if err != nil {
			lookupErr = fmt.Errorf("relocate content check: %w", err)
			return false
		}
		return exists
	})
	if lookupErr != nil {
		return lookupErr
	}
	return err
}
