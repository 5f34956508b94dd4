package sections

import "testing"

func keys(list []Section) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Key
	}
	return out
}

func TestScaffoldSlots(t *testing.T) {
	cases := map[string]int{
		TemplateCountry: 8,
		TemplateRegion:  7,
		TemplateCity:    7,
		"unknown":       7,
	}
	for template, want := range cases {
		if got := len(Scaffold(template, "X")); got != want {
			t.Fatalf("%s: expected %d slots, got %d", template, want, got)
		}
	}
	region := Slots(TemplateRegion)
	for _, sectionType := range region {
		if sectionType == TypeSystem {
			t.Fatalf("region scaffold should not include system")
		}
	}
}

func TestMergeEmptyKeepsEverySlot(t *testing.T) {
	scaffold := Scaffold(TemplateCity, "Leeds")
	merged := Merge(scaffold, nil, nil)
	if len(merged) != len(scaffold) {
		t.Fatalf("expected %d sections, got %d", len(scaffold), len(merged))
	}
	for i := range scaffold {
		if merged[i].Key != scaffold[i].Key {
			t.Fatalf("slot %d changed: %s -> %s", i, scaffold[i].Key, merged[i].Key)
		}
	}
}

func TestMergeOverridesInPlaceAndAppends(t *testing.T) {
	scaffold := Scaffold(TemplateCity, "Leeds")
	supplied := []Section{
		{Type: TypeFAQs, Data: FAQsData{Title: "Custom FAQs"}},
		{Key: "extra", Type: "testimonial", Data: UnknownData{Raw: []byte(`{"title":"Hi"}`)}},
	}

	merged := Merge(scaffold, supplied, HeroData{Heading: "Override"})

	want := append(Slots(TemplateCity), "extra")
	got := keys(merged)
	if len(got) != len(want) {
		t.Fatalf("expected keys %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected keys %v, got %v", want, got)
		}
	}

	faqs, _ := Document{Sections: merged}.Find(TypeFAQs)
	if faqs.Data.(FAQsData).Title != "Custom FAQs" {
		t.Fatalf("expected supplied faqs to replace slot, got %+v", faqs.Data)
	}
	hero, _ := Document{Sections: merged}.Find(TypeHero)
	if hero.Data.(HeroData).Heading != "Override" {
		t.Fatalf("expected hero override, got %+v", hero.Data)
	}
	if scaffold[0].Data.(HeroData).Heading != "Foster care in Leeds" {
		t.Fatalf("scaffold must not be mutated")
	}
}
