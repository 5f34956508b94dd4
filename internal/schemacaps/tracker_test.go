package schemacaps_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-directory/internal/schemacaps"
	"github.com/goliatone/go-directory/pkg/testsupport"
)

func TestTrackerProbesColumns(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunSQLite(t)

	if _, err := db.ExecContext(ctx, `CREATE TABLE locations (id TEXT PRIMARY KEY, slug TEXT, editable BOOLEAN)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	tracker := schemacaps.NewTracker(db)
	if tracker.Has(schemacaps.TableLocations, schemacaps.ColumnEditable) {
		t.Fatalf("expected unprobed tracker to report absent columns")
	}
	if err := tracker.Probe(ctx); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !tracker.Has(schemacaps.TableLocations, schemacaps.ColumnEditable) {
		t.Fatalf("expected editable column present")
	}
	if tracker.Has(schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug) {
		t.Fatalf("expected canonical_slug absent")
	}
	if tracker.Has(schemacaps.TableContent, schemacaps.ColumnTemplateType) {
		t.Fatalf("expected missing table to report no columns")
	}

	if _, err := db.ExecContext(ctx, `ALTER TABLE locations ADD COLUMN canonical_slug TEXT`); err != nil {
		t.Fatalf("alter table: %v", err)
	}
	if err := tracker.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !tracker.Has(schemacaps.TableLocations, schemacaps.ColumnCanonicalSlug) {
		t.Fatalf("expected canonical_slug present after refresh")
	}
}

func TestStaticAll(t *testing.T) {
	caps := schemacaps.All()
	if !caps.Has(schemacaps.TableContent, schemacaps.ColumnTemplateType) {
		t.Fatalf("expected template_type present")
	}
	if caps.Has(schemacaps.TableContent, "missing") {
		t.Fatalf("expected unknown column absent")
	}
}
