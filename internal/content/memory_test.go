package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-directory/internal/content"
)

func TestMemoryRelocateRekeysContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedHierarchy(t, f.locations)
	for _, id := range []string{"country-1", "city-1"} {
		if _, err := f.service.Save(ctx, id, content.SaveRequest{}); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	result, err := f.service.Relocate(ctx, "country-1", "england-uk")
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if len(result.Moves) != 3 {
		t.Fatalf("expected three moves, got %+v", result.Moves)
	}

	records, _ := f.records.List(ctx)
	got := map[string]bool{}
	for _, rec := range records {
		got[rec.CanonicalSlug] = true
	}
	if !got["/foster-agency/england-uk"] || !got["/foster-agency/england-uk/greater-london/london"] || len(got) != 2 {
		t.Fatalf("unexpected content keys %v", got)
	}

	region, err := f.nodes.Get(ctx, "region-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if region.Canonical() != "/foster-agency/england-uk/greater-london" {
		t.Fatalf("unexpected region canonical %q", region.Canonical())
	}
}

func TestMemoryRelocateNoop(t *testing.T) {
	f := newFixture(t)
	seedHierarchy(t, f.locations)
	result, err := f.service.Relocate(context.Background(), "city-1", "London")
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if len(result.Moves) != 0 || result.Location.Slug != "london" {
		t.Fatalf("expected no-op relocation, got %+v", result)
	}
}

func TestMemoryRelocateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedHierarchy(t, f.locations)
	if _, err := f.records.Upsert(ctx, &content.Record{CanonicalSlug: "/foster-agency/england/greater-london/camden"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := f.service.Relocate(ctx, "city-1", "camden"); !errors.Is(err, content.ErrCanonicalSlugTaken) {
		t.Fatalf("expected ErrCanonicalSlugTaken, got %v", err)
	}
	node, _ := f.nodes.Get(ctx, "city-1")
	if node.Slug != "london" {
		t.Fatalf("expected node untouched, got %q", node.Slug)
	}
}

func TestRelocateWithoutRelocator(t *testing.T) {
	f := newFixture(t)
	svc := content.NewService(f.nodes, f.records)
	if _, err := svc.Relocate(context.Background(), "city-1", "x"); !errors.Is(err, content.ErrRelocatorUnavailable) {
		t.Fatalf("expected ErrRelocatorUnavailable, got %v", err)
	}
}
