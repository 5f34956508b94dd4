package content

import (
	"context"
	"fmt"
	"slices"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/internal/schemacaps"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

const recordNamespace = "location_content"

var recordColumns = []string{"id", "canonical_slug", "content_json", "created_at", "updated_at"}

// NewRecordRepository creates a generic repository for content records
// identified by canonical slug.
func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(r *Record) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Record, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "canonical_slug"
		},
		GetIdentifierValue: func(r *Record) string {
			return r.CanonicalSlug
		},
	})
}

// BunRepository stores records in location_content. Lookup goes through the
// optional read cache; every other read hits the database.
type BunRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Record]
	cached       repository.Repository[*Record]
	cacheService cache.CacheService
	cachePrefix  string
	caps         schemacaps.Capabilities
	logger       interfaces.Logger
	clock        func() time.Time
}

// BunOption configures a BunRepository.
type BunOption func(*BunRepository)

func WithBunLogger(logger interfaces.Logger) BunOption {
	return func(r *BunRepository) {
		r.logger = logging.Ensure(logger)
	}
}

// WithBunCapabilities sets the schema probe consulted for template_type.
func WithBunCapabilities(caps schemacaps.Capabilities) BunOption {
	return func(r *BunRepository) {
		if caps != nil {
			r.caps = caps
		}
	}
}

// NewBunRepository creates a content repository without caching.
func NewBunRepository(db *bun.DB, opts ...BunOption) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil, opts...)
}

// NewBunRepositoryWithCache creates a content repository whose Lookup reads
// through cacheService.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, opts ...BunOption) *BunRepository {
	base := NewRecordRepository(db)
	repo := &BunRepository{
		db:     db,
		repo:   base,
		cached: base,
		caps:   schemacaps.All(),
		logger: logging.NoOp(),
		clock:  time.Now,
	}
	if cacheService != nil && serializer != nil {
		repo.cached = repositorycache.New(base, cacheService, serializer)
		repo.cacheService = cacheService
		repo.cachePrefix = recordNamespace + cache.KeySeparator
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (r *BunRepository) columns() []string {
	return schemacaps.Columns(r.caps, schemacaps.TableContent, recordColumns, schemacaps.ColumnTemplateType)
}

func (r *BunRepository) GetByCanonicalSlug(ctx context.Context, canonical string) (*Record, error) {
	return r.find(ctx, r.repo, canonical)
}

// Lookup reads through the cache by identifier. Schemas without
// template_type skip the cache, since the cached read selects every column.
func (r *BunRepository) Lookup(ctx context.Context, canonical string) (*Record, error) {
	if r.cacheService == nil || !r.caps.Has(schemacaps.TableContent, schemacaps.ColumnTemplateType) {
		return r.find(ctx, r.repo, canonical)
	}
	record, err := r.cached.GetByIdentifier(ctx, canonical)
	if err != nil {
		return nil, mapRepositoryError(err, "content", canonical)
	}
	return record, nil
}

func (r *BunRepository) find(ctx context.Context, repo repository.Repository[*Record], canonical string) (*Record, error) {
	var records []*Record
	retried, err := schemacaps.RunWithDrift(ctx, r.caps, r.columns, func(cols []string) error {
		var err error
		records, _, err = repo.List(ctx,
			repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
				return excludeMissing(q, cols).Where("?TableAlias.canonical_slug = ?", canonical)
			}),
			repository.SelectPaginate(1, 0),
		)
		return err
	})
	r.reportRetry(retried, "content.select.schema_retry", canonical)
	if err != nil {
		return nil, mapRepositoryError(err, "content", canonical)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "content", Key: canonical}
	}
	return records[0], nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Record, error) {
	var records []*Record
	retried, err := schemacaps.RunWithDrift(ctx, r.caps, r.columns, func(cols []string) error {
		var err error
		records, _, err = r.repo.List(ctx,
			repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
				return excludeMissing(q, cols).OrderExpr("?TableAlias.canonical_slug ASC")
			}),
		)
		return err
	})
	r.reportRetry(retried, "content.list.schema_retry", "")
	if err != nil {
		return nil, mapRepositoryError(err, "content", "")
	}
	return records, nil
}

// Upsert writes record with a single INSERT ... ON CONFLICT (canonical_slug)
// statement so concurrent first saves converge on one row.
func (r *BunRepository) Upsert(ctx context.Context, record *Record) (*Record, error) {
	row := cloneRecord(record)
	now := r.clock().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	retried, err := schemacaps.RunWithDrift(ctx, r.caps, r.columns, func(cols []string) error {
		q := r.db.NewInsert().
			Model(row).
			Column(cols...).
			On("CONFLICT (canonical_slug) DO UPDATE").
			Set("content_json = EXCLUDED.content_json").
			Set("updated_at = EXCLUDED.updated_at")
		if slices.Contains(cols, schemacaps.ColumnTemplateType) {
			q = q.Set("template_type = EXCLUDED.template_type")
		}
		_, err := q.Exec(ctx)
		return err
	})
	r.reportRetry(retried, "content.upsert.schema_retry", record.CanonicalSlug)
	if err != nil {
		return nil, fmt.Errorf("content repository upsert %s: %w", record.CanonicalSlug, err)
	}
	r.invalidate(ctx)
	return r.GetByCanonicalSlug(ctx, record.CanonicalSlug)
}

// InvalidateCache drops every cached content lookup.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func (r *BunRepository) invalidate(ctx context.Context) {
	if err := r.InvalidateCache(ctx); err != nil {
		r.logger.Warn("content.cache.invalidate_failed", "error", err)
	}
}

func (r *BunRepository) reportRetry(retried bool, event, canonical string) {
	if !retried {
		return
	}
	r.logger.Warn(event, "canonical_slug", canonical)
}

func excludeMissing(q *bun.SelectQuery, cols []string) *bun.SelectQuery {
	if !slices.Contains(cols, schemacaps.ColumnTemplateType) {
		q = q.ExcludeColumn(schemacaps.ColumnTemplateType)
	}
	return q
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
