// Package schemacaps records which optional columns exist in the live schema.
// Repositories consult it to build column sets, so environments that have not
// run every migration keep working with the columns they do have.
package schemacaps

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const (
	TableLocations = "locations"
	TableContent   = "location_content"

	ColumnCanonicalSlug = "canonical_slug"
	ColumnEditable      = "editable"
	ColumnTemplateType  = "template_type"
)

// Capabilities answers column presence questions. Refresh re-reads the source
// of truth; implementations without one treat it as a no-op.
type Capabilities interface {
	Has(table, column string) bool
	Refresh(ctx context.Context) error
}

// Tracker probes a bun database for the columns of the directory tables.
type Tracker struct {
	db     *bun.DB
	tables []string

	mu      sync.RWMutex
	columns map[string]map[string]bool
}

var _ Capabilities = (*Tracker)(nil)

// NewTracker returns a tracker for tables, defaulting to the directory tables.
// Call Probe before use; an unprobed tracker reports every column absent.
func NewTracker(db *bun.DB, tables ...string) *Tracker {
	if len(tables) == 0 {
		tables = []string{TableLocations, TableContent}
	}
	return &Tracker{db: db, tables: tables, columns: map[string]map[string]bool{}}
}

// Probe reads the column list of every tracked table. A missing table probes
// as an empty column set.
func (t *Tracker) Probe(ctx context.Context) error {
	if t == nil || t.db == nil {
		return nil
	}
	next := make(map[string]map[string]bool, len(t.tables))
	for _, table := range t.tables {
		names, err := t.columnNames(ctx, table)
		if err != nil {
			return fmt.Errorf("schemacaps: probe %s: %w", table, err)
		}
		set := make(map[string]bool, len(names))
		for _, name := range names {
			set[strings.ToLower(name)] = true
		}
		next[table] = set
	}

	t.mu.Lock()
	t.columns = next
	t.mu.Unlock()
	return nil
}

// Refresh re-probes the schema.
func (t *Tracker) Refresh(ctx context.Context) error {
	return t.Probe(ctx)
}

func (t *Tracker) Has(table, column string) bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.columns[table][strings.ToLower(column)]
}

// Snapshot returns a copy of the probed column sets.
func (t *Tracker) Snapshot() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string][]string, len(t.columns))
	for table, set := range t.columns {
		for name := range set {
			out[table] = append(out[table], name)
		}
	}
	return out
}

func (t *Tracker) columnNames(ctx context.Context, table string) ([]string, error) {
	var names []string
	var err error
	switch t.db.Dialect().Name() {
	case dialect.PG:
		err = t.db.NewRaw(
			"SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ?",
			table,
		).Scan(ctx, &names)
	default:
		err = t.db.NewRaw("SELECT name FROM pragma_table_info(?)", table).Scan(ctx, &names)
	}
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Static is a fixed capability set for in-memory storage and tests.
type Static map[string]map[string]bool

var _ Capabilities = Static(nil)

// All reports every optional column as present.
func All() Static {
	return Static{
		TableLocations: {ColumnCanonicalSlug: true, ColumnEditable: true},
		TableContent:   {ColumnTemplateType: true},
	}
}

func (s Static) Has(table, column string) bool {
	return s[table][column]
}

func (Static) Refresh(context.Context) error { return nil }
