package locations_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-directory/internal/locations"
)

func strptr(v string) *string { return &v }

func fixtureChain() (*locations.Node, *locations.Node, *locations.Node) {
	country := &locations.Node{ID: "c1", Slug: "england", Type: locations.TypeCountry}
	region := &locations.Node{ID: "r1", Slug: "greater-london", Type: locations.TypeRegion, ParentID: strptr("c1")}
	city := &locations.Node{ID: "t1", Slug: "london", Type: locations.TypeCity, ParentID: strptr("r1")}
	return country, region, city
}

func TestDeriverExampleScenarios(t *testing.T) {
	d := locations.NewDeriver("foster-agency")
	country, region, city := fixtureChain()

	cases := []struct {
		name      string
		node      *locations.Node
		ancestors []*locations.Node
		want      string
	}{
		{"country", country, nil, "/foster-agency/england"},
		{"region", region, []*locations.Node{country}, "/foster-agency/england/greater-london"},
		{"city", city, []*locations.Node{country, region}, "/foster-agency/england/greater-london/london"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.Derive(tc.node, tc.ancestors)
			if err != nil {
				t.Fatalf("Derive: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			if !d.WellFormed(got, tc.node.Type) {
				t.Fatalf("expected %s to be well formed", got)
			}
		})
	}
}

func TestDeriverCityExtendsRegion(t *testing.T) {
	d := locations.NewDeriver("foster-agency")
	triples := [][3]string{
		{"england", "greater-london", "london"},
		{"scotland", "highlands", "inverness"},
		{"wales", "south-wales", "cardiff"},
	}
	for _, triple := range triples {
		country := &locations.Node{ID: "c", Slug: triple[0], Type: locations.TypeCountry}
		region := &locations.Node{ID: "r", Slug: triple[1], Type: locations.TypeRegion, ParentID: strptr("c")}
		city := &locations.Node{ID: "t", Slug: triple[2], Type: locations.TypeCity, ParentID: strptr("r")}

		regionSlug, err := d.Derive(region, []*locations.Node{country})
		if err != nil {
			t.Fatalf("region: %v", err)
		}
		citySlug, err := d.Derive(city, []*locations.Node{country, region})
		if err != nil {
			t.Fatalf("city: %v", err)
		}
		if citySlug != regionSlug+"/"+triple[2] {
			t.Fatalf("city %s does not extend region %s", citySlug, regionSlug)
		}
		if citySlug != "/foster-agency/"+triple[0]+"/"+triple[1]+"/"+triple[2] {
			t.Fatalf("unexpected city slug %s", citySlug)
		}
		child, err := d.Child(regionSlug, triple[2])
		if err != nil || child != citySlug {
			t.Fatalf("Child = %s, %v", child, err)
		}
	}
}

func TestDeriverRefusesToGuess(t *testing.T) {
	d := locations.NewDeriver("foster-agency")
	country, region, city := fixtureChain()
	otherRegion := &locations.Node{ID: "r2", Slug: "kent", Type: locations.TypeRegion, ParentID: strptr("c1")}

	cases := []struct {
		name      string
		node      *locations.Node
		ancestors []*locations.Node
		want      error
	}{
		{"unknown type", &locations.Node{ID: "x", Slug: "x", Type: "district"}, nil, locations.ErrTypeUnknown},
		{"region without country", region, nil, locations.ErrAncestorMissing},
		{"city without region", city, []*locations.Node{country}, locations.ErrAncestorMissing},
		{"country with ancestors", country, []*locations.Node{country}, locations.ErrAncestorMismatch},
		{"wrong ancestor order", city, []*locations.Node{region, country}, locations.ErrAncestorMismatch},
		{"city under other region", city, []*locations.Node{country, otherRegion}, locations.ErrAncestorMismatch},
		{"invalid slug", &locations.Node{ID: "c", Slug: "Not A Slug", Type: locations.TypeCountry}, nil, locations.ErrSlugInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.Derive(tc.node, tc.ancestors)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v (%q)", tc.want, err, got)
			}
			if got != "" {
				t.Fatalf("expected no slug on error, got %s", got)
			}
		})
	}
}

func TestDeriverWellFormed(t *testing.T) {
	d := locations.NewDeriver("/foster-agency/")
	if d.Prefix() != "/foster-agency" {
		t.Fatalf("unexpected prefix %s", d.Prefix())
	}
	if d.WellFormed("/foster-agency/greater-london", locations.TypeRegion) {
		t.Fatalf("region slug missing its country must not be well formed")
	}
	if d.WellFormed("/other/england", locations.TypeCountry) {
		t.Fatalf("foreign namespace must not be well formed")
	}
	if _, err := d.Child("/foster-agency", "london"); !errors.Is(err, locations.ErrAncestorMissing) {
		t.Fatalf("expected bare namespace parent to be rejected, got %v", err)
	}
}
