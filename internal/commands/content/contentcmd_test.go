package contentcmd_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	goerrors "github.com/goliatone/go-errors"

	contentcmd "github.com/goliatone/go-directory/internal/commands/content"
	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/seed"
)

const kentSeed = `---
location_id: region-kent
title: Kent
type: region
country: england
---
Fostering across Kent.
`

func newService() content.Service {
	nodes := locations.NewService(locations.NewMemoryRepository(), locations.NewDeriver("foster-agency"))
	return content.NewService(nodes, content.NewMemoryRepository())
}

func TestSaveContentCommandValidation(t *testing.T) {
	cases := []struct {
		name  string
		msg   contentcmd.SaveContentCommand
		valid bool
	}{
		{name: "minimal", msg: contentcmd.SaveContentCommand{LocationID: "city-1"}, valid: true},
		{name: "typed", msg: contentcmd.SaveContentCommand{LocationID: "city-1", Request: content.SaveRequest{Type: " City "}}, valid: true},
		{name: "missing id", msg: contentcmd.SaveContentCommand{LocationID: "  "}},
		{name: "unknown type", msg: contentcmd.SaveContentCommand{LocationID: "x", Request: content.SaveRequest{Type: "borough"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSaveContentHandler(t *testing.T) {
	var saved *content.Record
	handler := contentcmd.NewSaveContentHandler(newService(), nil, func(r *content.Record) { saved = r })

	err := handler.Execute(context.Background(), contentcmd.SaveContentCommand{
		LocationID: "country-1",
		Request:    content.SaveRequest{Title: "England", Type: "country"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if saved == nil || saved.CanonicalSlug != "/foster-agency/england" {
		t.Fatalf("unexpected record %+v", saved)
	}
	if len(saved.Content.Sections) == 0 {
		t.Fatalf("expected scaffolded sections")
	}

	err = handler.Execute(context.Background(), contentcmd.SaveContentCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSeedContentHandler(t *testing.T) {
	fsys := fstest.MapFS{
		"seeds/kent.md":   {Data: []byte(kentSeed)},
		"seeds/notes.txt": {Data: []byte("ignored")},
	}
	var result contentcmd.SeedResult
	handler := contentcmd.NewSeedContentHandler(newService(), fsys, nil, func(r contentcmd.SeedResult) { result = r })

	if err := handler.Execute(context.Background(), contentcmd.SeedContentCommand{Dir: "/seeds/"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Saved) != 1 {
		t.Fatalf("expected one record, got %d", len(result.Saved))
	}
	if got := result.Saved[0].CanonicalSlug; got != "/foster-agency/england/kent" {
		t.Fatalf("unexpected canonical %q", got)
	}
	if _, ok := result.Saved[0].Content.Find("overview"); !ok {
		t.Fatalf("expected overview section from body")
	}
}

func TestSeedContentHandlerStopsOnBadFile(t *testing.T) {
	fsys := fstest.MapFS{"seeds/blank.md": {Data: []byte("---\ntitle: Nowhere\n---\n")}}
	handler := contentcmd.NewSeedContentHandler(newService(), fsys, nil, nil)

	err := handler.Execute(context.Background(), contentcmd.SeedContentCommand{Dir: "seeds"})
	if !errors.Is(err, seed.ErrLocationIDMissing) {
		t.Fatalf("expected ErrLocationIDMissing, got %v", err)
	}
}
