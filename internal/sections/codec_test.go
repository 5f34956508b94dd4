package sections

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUnmarshalKnownSection(t *testing.T) {
	var s Section
	raw := `{"type":"hero","data":{"heading":"Foster in Leeds","cta":{"label":"Apply","href":"/apply"}}}`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Key != "hero" {
		t.Fatalf("expected key to default to type, got %q", s.Key)
	}
	hero, ok := s.Data.(HeroData)
	if !ok {
		t.Fatalf("expected HeroData, got %T", s.Data)
	}
	if hero.Heading != "Foster in Leeds" || hero.CTA == nil || hero.CTA.Href != "/apply" {
		t.Fatalf("unexpected hero %+v", hero)
	}
}

func TestUnmarshalUnknownTypeKeepsRaw(t *testing.T) {
	var s Section
	raw := `{"type":"testimonial","key":"t1","data":{"title":"Great","content":{"stars":5}}}`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	unknown, ok := s.Data.(UnknownData)
	if !ok {
		t.Fatalf("expected UnknownData, got %T", s.Data)
	}
	if unknown.Reason != "" || s.Degraded() {
		t.Fatalf("unknown type must not be marked degraded")
	}

	encoded, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(encoded), `"data":{"title":"Great","content":{"stars":5}}`) {
		t.Fatalf("expected raw data preserved, got %s", encoded)
	}
}

func TestUnmarshalInvalidKnownDataDegrades(t *testing.T) {
	var s Section
	raw := `{"type":"faqs","data":{"items":[{"question":42}]}}`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !s.Degraded() {
		t.Fatalf("expected degraded section, got %T", s.Data)
	}
	if !strings.Contains(s.Data.(UnknownData).Reason, "/items/0/question") {
		t.Fatalf("expected reason to point at the bad field, got %q", s.Data.(UnknownData).Reason)
	}

	doc := Document{Sections: []Section{s}}
	if keys := doc.Degraded(); len(keys) != 1 || keys[0] != "faqs" {
		t.Fatalf("unexpected degraded keys %v", keys)
	}
}

func TestNullDataDecodesAsEmptyPayload(t *testing.T) {
	var s Section
	if err := json.Unmarshal([]byte(`{"type":"trustbar","data":null}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := s.Data.(TrustbarData); !ok {
		t.Fatalf("expected TrustbarData, got %T", s.Data)
	}
}

func TestDocumentValueScanRoundTrip(t *testing.T) {
	doc := Document{Sections: Scaffold(TemplateCity, "Leeds")}
	value, err := doc.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var scanned Document
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(scanned.Sections) != len(doc.Sections) {
		t.Fatalf("expected %d sections, got %d", len(doc.Sections), len(scanned.Sections))
	}
	hero, ok := scanned.Find(TypeHero)
	if !ok || hero.Data.(HeroData).Heading != "Foster care in Leeds" {
		t.Fatalf("unexpected hero %+v", hero)
	}

	var empty Document
	if err := empty.Scan(nil); err != nil || empty.Sections == nil {
		t.Fatalf("expected NULL to scan as empty document, got %+v %v", empty, err)
	}
	encoded, _ := json.Marshal(Document{})
	if string(encoded) != `{"sections":[]}` {
		t.Fatalf("expected empty sections array, got %s", encoded)
	}
}

func TestStableKey(t *testing.T) {
	cases := []struct {
		section Section
		want    string
	}{
		{Section{ID: "abc", Key: "hero", Type: "hero"}, "abc"},
		{Section{Key: "hero-2", Type: "hero"}, "hero-2"},
		{Section{Type: "hero"}, "hero-3"},
		{Section{}, "section-3"},
	}
	for _, tc := range cases {
		if got := tc.section.StableKey(3); got != tc.want {
			t.Fatalf("StableKey = %s, want %s", got, tc.want)
		}
	}
}
