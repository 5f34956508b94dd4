package locations_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-directory/internal/locations"
)

func TestTreeNestsAndSortsLevels(t *testing.T) {
	svc, repo := newService(t)
	seedHierarchy(t, repo)
	ctx := context.Background()
	if _, err := repo.Upsert(ctx, &locations.Node{ID: "c0", Name: "Cymru", Slug: "wales", Type: locations.TypeCountry}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tree, err := svc.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 2 || tree[0].Name != "Cymru" || tree[1].Name != "England" {
		t.Fatalf("expected countries sorted by name, got %+v", tree)
	}
	england := tree[1]
	if len(england.Children) != 1 || england.Children[0].ID != "r1" {
		t.Fatalf("expected region under england")
	}
	cities := england.Children[0].Children
	if len(cities) != 2 || cities[0].Name != "Croydon" || cities[1].Name != "London" {
		t.Fatalf("expected cities sorted by name, got %+v", cities)
	}
}

func TestBuildTreeKeepsOrphansVisible(t *testing.T) {
	nodes := []*locations.Node{
		{ID: "c1", Name: "England", Slug: "england", Type: locations.TypeCountry},
		{ID: "lost", Name: "Lost City", Slug: "lost-city", Type: locations.TypeCity, ParentID: strptr("gone")},
		{ID: "loose", Name: "Loose Region", Slug: "loose-region", Type: locations.TypeRegion},
		{ID: "a", Name: "Loop A", Slug: "a", Type: locations.TypeRegion, ParentID: strptr("b")},
		{ID: "b", Name: "Loop B", Slug: "b", Type: locations.TypeRegion, ParentID: strptr("a")},
	}

	tree := locations.BuildTree(nodes)
	if len(tree) != 5 {
		t.Fatalf("expected every node at the root, got %d", len(tree))
	}
	orphans := 0
	for _, item := range tree {
		if item.Orphan {
			orphans++
		}
	}
	if orphans != 4 {
		t.Fatalf("expected four orphans, got %d", orphans)
	}
}
