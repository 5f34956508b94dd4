package migrations_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/migrations"
	"github.com/goliatone/go-directory/internal/schemacaps"
	"github.com/goliatone/go-directory/pkg/testsupport"
)

const migrationsDir = "data/sql/migrations"

func setup(t *testing.T) (*bun.DB, *migrations.Backfill, []migrations.Migration) {
	t.Helper()
	db := testsupport.NewBunSQLite(t)
	backfill := migrations.NewBackfill(db, locations.NewDeriver("foster-agency"))
	fsys := os.DirFS(filepath.Join("..", ".."))
	return db, backfill, migrations.Default(fsys, migrationsDir, backfill)
}

func applyBase(t *testing.T, db *bun.DB, list []migrations.Migration) {
	t.Helper()
	if err := list[0].Up(context.Background(), db); err != nil {
		t.Fatalf("base schema: %v", err)
	}
}

func seedLegacy(t *testing.T, db *bun.DB) {
	t.Helper()
	statements := []string{
		`INSERT INTO locations (id, name, slug, type, parent_id) VALUES ('c-1', 'England', 'england', 'country', NULL)`,
		`INSERT INTO locations (id, name, slug, type, parent_id) VALUES ('c-2', 'Wales', 'wales', 'country', NULL)`,
		`INSERT INTO locations (id, name, slug, type, parent_id) VALUES ('r-1', 'Greater London', 'greater-london', 'region', 'c-1')`,
		`INSERT INTO locations (id, name, slug, type, parent_id) VALUES ('x-1', 'London', 'london', 'city', 'r-1')`,
		`INSERT INTO locations (id, name, slug, type, parent_id) VALUES ('x-2', 'Cardiff', 'cardiff', 'city', 'c-2')`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

type canonicalRow struct {
	ID        string  `bun:"id"`
	Canonical *string `bun:"canonical_slug"`
}

func canonicalSlugs(t *testing.T, db *bun.DB) map[string]string {
	t.Helper()
	var rows []canonicalRow
	if err := db.NewRaw(`SELECT id, canonical_slug FROM locations ORDER BY id`).Scan(context.Background(), &rows); err != nil {
		t.Fatalf("select canonical slugs: %v", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Canonical != nil {
			out[row.ID] = *row.Canonical
		} else {
			out[row.ID] = ""
		}
	}
	return out
}

func TestBackfillUpPopulatesInOrder(t *testing.T) {
	ctx := context.Background()
	db, backfill, list := setup(t)
	applyBase(t, db, list)
	seedLegacy(t, db)

	report, err := backfill.Up(ctx)
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	want := map[string]string{
		"c-1": "/foster-agency/england",
		"c-2": "/foster-agency/wales",
		"r-1": "/foster-agency/england/greater-london",
		"x-1": "/foster-agency/england/greater-london/london",
		"x-2": "",
	}
	got := canonicalSlugs(t, db)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected canonical slugs:\n got %v\nwant %v", got, want)
	}
	if report.Unresolved() != 1 {
		t.Fatalf("expected the city under a country to stay unresolved, got %+v", report)
	}
	if len(report.Levels) != 3 || report.Levels[0].Type != locations.TypeCountry || report.Levels[2].Type != locations.TypeCity {
		t.Fatalf("unexpected level order %+v", report.Levels)
	}

	if _, err := backfill.Up(ctx); err != nil {
		t.Fatalf("second Up: %v", err)
	}
	if again := canonicalSlugs(t, db); !reflect.DeepEqual(again, got) {
		t.Fatalf("expected idempotent backfill:\nfirst  %v\nsecond %v", got, again)
	}

	violations, err := backfill.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(violations) != 1 || violations[0].ID != "x-2" || violations[0].Reason != "ancestor_missing" {
		t.Fatalf("unexpected violations %+v", violations)
	}
}

func TestBackfillRerunKeepsShallowCanonical(t *testing.T) {
	ctx := context.Background()
	db, backfill, list := setup(t)
	applyBase(t, db, list)
	if _, err := backfill.Up(ctx); err != nil {
		t.Fatalf("Up: %v", err)
	}

	tracker := schemacaps.NewTracker(db)
	if err := tracker.Probe(ctx); err != nil {
		t.Fatalf("probe: %v", err)
	}
	nodes := locations.NewService(locations.NewBunRepository(db, tracker), locations.NewDeriver("foster-agency"))
	svc := content.NewService(nodes, content.NewBunRepository(db, content.WithBunCapabilities(tracker)))

	saved, err := svc.Save(ctx, "new-id", content.SaveRequest{Title: "New Location", Slug: "new-location", Type: "city"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.CanonicalSlug != "/foster-agency/england/new-location" {
		t.Fatalf("unexpected shallow canonical %q", saved.CanonicalSlug)
	}

	report, err := backfill.Up(ctx)
	if err != nil {
		t.Fatalf("second Up: %v", err)
	}
	if report.Unresolved() != 1 {
		t.Fatalf("expected the parentless city counted unresolved, got %+v", report)
	}
	if got := canonicalSlugs(t, db)["new-id"]; got != saved.CanonicalSlug {
		t.Fatalf("expected stored canonical kept, got %q", got)
	}

	loaded, err := svc.Load(ctx, "new-id")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Empty() || loaded.CanonicalSlug != saved.CanonicalSlug {
		t.Fatalf("expected content still reachable, got %+v", loaded)
	}

	violations, err := backfill.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(violations) != 1 || violations[0].ID != "new-id" || violations[0].Reason != "ancestor_missing" {
		t.Fatalf("unexpected violations %+v", violations)
	}
}

func TestBackfillOrderingViolationIsDetectable(t *testing.T) {
	ctx := context.Background()
	db, backfill, list := setup(t)
	applyBase(t, db, list)
	seedLegacy(t, db)
	if err := backfill.EnsureColumn(ctx); err != nil {
		t.Fatalf("EnsureColumn: %v", err)
	}

	regions, err := backfill.RunLevel(ctx, locations.TypeRegion)
	if err != nil {
		t.Fatalf("RunLevel region: %v", err)
	}
	if regions.Unresolved != 1 || regions.Updated != 0 {
		t.Fatalf("expected regions unresolved before countries, got %+v", regions)
	}

	violations, err := backfill.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	reasons := map[string]string{}
	for _, v := range violations {
		reasons[v.ID] = v.Reason
	}
	if reasons["r-1"] != "missing" {
		t.Fatalf("expected region flagged, got %v", reasons)
	}

	if _, err := db.ExecContext(ctx, `UPDATE locations SET canonical_slug = '/foster-agency/old-england' WHERE id = 'c-1'`); err != nil {
		t.Fatalf("stale country: %v", err)
	}
	if _, err := backfill.RunLevel(ctx, locations.TypeRegion); err != nil {
		t.Fatalf("RunLevel region: %v", err)
	}
	violations, err = backfill.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	reasons = map[string]string{}
	for _, v := range violations {
		reasons[v.ID] = v.Reason
	}
	if reasons["c-1"] != "mismatch" || reasons["r-1"] != "mismatch" {
		t.Fatalf("expected stale parent to propagate as mismatches, got %v", reasons)
	}
}

func TestBackfillDownDropsColumn(t *testing.T) {
	ctx := context.Background()
	db, backfill, list := setup(t)
	applyBase(t, db, list)
	seedLegacy(t, db)
	if _, err := backfill.Up(ctx); err != nil {
		t.Fatalf("Up: %v", err)
	}
	first := canonicalSlugs(t, db)

	if err := backfill.Down(ctx); err != nil {
		t.Fatalf("Down: %v", err)
	}
	tracker := schemacaps.NewTracker(db)
	if err := tracker.Probe(ctx); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if tracker.Has(schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug) {
		t.Fatalf("expected canonical_slug dropped")
	}
	if _, err := backfill.Verify(ctx); !errors.Is(err, locations.ErrColumnUnavailable) {
		t.Fatalf("expected ErrColumnUnavailable, got %v", err)
	}
	if err := backfill.Down(ctx); err != nil {
		t.Fatalf("second Down: %v", err)
	}

	if _, err := backfill.Up(ctx); err != nil {
		t.Fatalf("Up after Down: %v", err)
	}
	if again := canonicalSlugs(t, db); !reflect.DeepEqual(again, first) {
		t.Fatalf("expected regenerated slugs, got %v want %v", again, first)
	}
}

func TestRunnerAppliesAndReverts(t *testing.T) {
	ctx := context.Background()
	db, _, list := setup(t)
	runner := migrations.NewRunner(db, list)

	ran, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	if !reflect.DeepEqual(ran, []string{migrations.BaseSchemaName, migrations.CanonicalBackfillName}) {
		t.Fatalf("unexpected applied list %v", ran)
	}
	if again, err := runner.Up(ctx); err != nil || len(again) != 0 {
		t.Fatalf("expected nothing pending, got %v (%v)", again, err)
	}

	status, err := runner.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, s := range status {
		if !s.Applied || s.AppliedAt == nil {
			t.Fatalf("expected %s applied", s.Name)
		}
	}

	tracker := schemacaps.NewTracker(db)
	if err := tracker.Probe(ctx); err != nil {
		t.Fatalf("probe: %v", err)
	}
	for _, col := range []struct{ table, column string }{
		{schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug},
		{schemacaps.TableLocations, schemacaps.ColumnEditable},
		{schemacaps.TableContent, schemacaps.ColumnTemplateType},
	} {
		if !tracker.Has(col.table, col.column) {
			t.Fatalf("expected %s.%s after migrations", col.table, col.column)
		}
	}

	reverted, err := runner.Down(ctx)
	if err != nil || reverted != migrations.CanonicalBackfillName {
		t.Fatalf("expected backfill reverted first, got %q (%v)", reverted, err)
	}
	reverted, err = runner.Down(ctx)
	if err != nil || reverted != migrations.BaseSchemaName {
		t.Fatalf("expected base schema reverted, got %q (%v)", reverted, err)
	}
	if reverted, err = runner.Down(ctx); err != nil || reverted != "" {
		t.Fatalf("expected nothing to revert, got %q (%v)", reverted, err)
	}
}

func TestRunLevelRejectsUnknownType(t *testing.T) {
	_, backfill, _ := setup(t)
	if _, err := backfill.RunLevel(context.Background(), locations.Type("district")); !errors.Is(err, locations.ErrTypeUnknown) {
		t.Fatalf("expected ErrTypeUnknown, got %v", err)
	}
}
