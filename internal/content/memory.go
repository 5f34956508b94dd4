package content

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-directory/internal/locations"
)

// MemoryRepository is an in-memory Repository for tests and the memory storage provider.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
	clock   func() time.Time
}

// NewMemoryRepository creates an empty in-memory content repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*Record), clock: time.Now}
}

func (m *MemoryRepository) GetByCanonicalSlug(_ context.Context, canonical string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[canonical]
	if !ok {
		return nil, &NotFoundError{Resource: "content", Key: canonical}
	}
	return cloneRecord(rec), nil
}

func (m *MemoryRepository) Lookup(ctx context.Context, canonical string) (*Record, error) {
	return m.GetByCanonicalSlug(ctx, canonical)
}

func (m *MemoryRepository) Upsert(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneRecord(record)
	if existing, ok := m.records[record.CanonicalSlug]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.clock()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = m.clock()
	}
	m.records[stored.CanonicalSlug] = stored
	return cloneRecord(stored), nil
}

func (m *MemoryRepository) List(_ context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CanonicalSlug < out[j].CanonicalSlug })
	return out, nil
}

// MemoryRelocator applies relocation plans to in-memory repositories.
type MemoryRelocator struct {
	locations *locations.MemoryRepository
	records   *MemoryRepository
}

func NewMemoryRelocator(locs *locations.MemoryRepository, records *MemoryRepository) *MemoryRelocator {
	return &MemoryRelocator{locations: locs, records: records}
}

// Apply validates every target key before changing anything. The content
// lock is held for the whole plan.
func (r *MemoryRelocator) Apply(ctx context.Context, plan RelocationPlan) error {
	r.records.mu.Lock()
	defer r.records.mu.Unlock()

	if err := checkTargets(plan.Moves, func(key string) bool {
		_, ok := r.records.records[key]
		return ok
	}); err != nil {
		return err
	}

	slugs := map[string]string{plan.LocationID: plan.Slug}
	canonicals := make(map[string]string, len(plan.Moves))
	for _, move := range plan.Moves {
		canonicals[move.LocationID] = move.To
	}
	if err := r.locations.Move(ctx, slugs, canonicals); err != nil {
		if errors.Is(err, locations.ErrCanonicalTaken) || errors.Is(err, locations.ErrSlugTaken) {
			return errors.Join(ErrRelocationConflict, err)
		}
		return err
	}

	now := r.records.clock()
	moved := make(map[string]*Record, len(plan.Moves))
	for _, move := range plan.Moves {
		if rec, ok := r.records.records[move.From]; ok && move.From != move.To {
			moved[move.To] = rec
			delete(r.records.records, move.From)
		}
	}
	for to, rec := range moved {
		rec.CanonicalSlug = to
		rec.UpdatedAt = now
		r.records.records[to] = rec
	}
	return nil
}

// checkTargets returns ErrCanonicalSlugTaken when a move targets a key that
// holds content and is not itself being vacated by the same plan.
func checkTargets(moves []Move, exists func(string) bool) error {
	vacated := make(map[string]bool, len(moves))
	for _, move := range moves {
		vacated[move.From] = true
	}
	for _, move := range moves {
		if move.From == move.To || vacated[move.To] {
			continue
		}
		if exists(move.To) {
			return errors.Join(ErrCanonicalSlugTaken, errors.New(move.To))
		}
	}
	return nil
}
