package seed_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-directory/internal/sections"
	"github.com/goliatone/go-directory/internal/seed"
)

const londonSeed = `---
location_id: city-1
title: London
type: city
country: england
region: greater-london
hero:
  heading: Foster care in London
sections:
  - key: faqs
    type: faqs
    data:
      title: Questions
      items:
        - question: Can I foster?
          answer: Yes.
---
# About London

Fostering in the capital.
`

func TestParseSeed(t *testing.T) {
	entry, err := seed.Parse("london.md", []byte(londonSeed))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if entry.LocationID != "city-1" || entry.Request.Region != "greater-london" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if string(entry.Request.Hero) != `{"heading":"Foster care in London"}` {
		t.Fatalf("unexpected hero %s", entry.Request.Hero)
	}
	if len(entry.Request.Sections) != 2 {
		t.Fatalf("expected faqs and overview sections, got %d", len(entry.Request.Sections))
	}
	faqs, ok := entry.Request.Sections[0].Data.(sections.FAQsData)
	if !ok || len(faqs.Items) != 1 || faqs.Items[0].Answer != "Yes." {
		t.Fatalf("unexpected faqs %#v", entry.Request.Sections[0].Data)
	}
	overview, ok := entry.Request.Sections[1].Data.(sections.OverviewData)
	if !ok || overview.Body != "# About London\n\nFostering in the capital." {
		t.Fatalf("unexpected overview %#v", entry.Request.Sections[1].Data)
	}
}

func TestParseRequiresLocationID(t *testing.T) {
	_, err := seed.Parse("blank.md", []byte("---\ntitle: Nowhere\n---\nbody\n"))
	if !errors.Is(err, seed.ErrLocationIDMissing) {
		t.Fatalf("expected ErrLocationIDMissing, got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"seed/b.md":       {Data: []byte("---\nlocation_id: b\n---\n")},
		"seed/a.md":       {Data: []byte(londonSeed)},
		"seed/readme.txt": {Data: []byte("ignored")},
	}
	entries, err := seed.LoadDir(context.Background(), fsys, "seed")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(entries) != 2 || entries[0].Path != "seed/a.md" || entries[1].LocationID != "b" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if len(entries[1].Request.Sections) != 0 {
		t.Fatalf("expected no sections for empty body, got %d", len(entries[1].Request.Sections))
	}
}
