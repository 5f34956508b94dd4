package sections

import (
	"encoding/json"
)

// Known section types.
const (
	TypeHero          = "hero"
	TypeOverview      = "overview"
	TypeSystem        = "system"
	TypeReasons       = "reasons"
	TypeFeaturedAreas = "featuredAreas"
	TypeFAQs          = "faqs"
	TypeTrustbar      = "trustbar"
	TypeFinalCTA      = "finalcta"
)

// KnownTypes lists the types with a typed payload, in scaffold order.
var KnownTypes = []string{
	TypeHero, TypeOverview, TypeFeaturedAreas, TypeSystem, TypeReasons, TypeFAQs, TypeTrustbar, TypeFinalCTA,
}

// Section is one typed block of page content.
type Section struct {
	ID   string
	Key  string
	Type string
	Data Payload
}

// Payload is the sum of section data shapes. Every known type has its own
// struct; anything else decodes to UnknownData.
type Payload interface {
	sectionType() string
}

// Link is a labelled href used by call-to-action blocks.
type Link struct {
	Label string `json:"label,omitempty"`
	Href  string `json:"href,omitempty"`
}

type HeroData struct {
	Heading    string `json:"heading,omitempty"`
	Subheading string `json:"subheading,omitempty"`
	Image      string `json:"image,omitempty"`
	CTA        *Link  `json:"cta,omitempty"`
}

// OverviewData carries a markdown body.
type OverviewData struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type Step struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// SystemData describes how the fostering process works, step by step.
type SystemData struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Steps       []Step `json:"steps,omitempty"`
}

type Reason struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type ReasonsData struct {
	Title string   `json:"title,omitempty"`
	Items []Reason `json:"items,omitempty"`
}

type Area struct {
	Name string `json:"name,omitempty"`
	Href string `json:"href,omitempty"`
}

type FeaturedAreasData struct {
	Title string `json:"title,omitempty"`
	Areas []Area `json:"areas,omitempty"`
}

type FAQ struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
}

type FAQsData struct {
	Title string `json:"title,omitempty"`
	Items []FAQ  `json:"items,omitempty"`
}

type TrustItem struct {
	Label string `json:"label,omitempty"`
	Value string `json:"value,omitempty"`
}

type TrustbarData struct {
	Items []TrustItem `json:"items,omitempty"`
}

type FinalCTAData struct {
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
	CTA     *Link  `json:"cta,omitempty"`
}

// UnknownData keeps the raw document of a section whose type is not known, or
// whose data did not match its type's schema. Reason is set in the latter case.
type UnknownData struct {
	Raw    json.RawMessage
	Reason string
}

func (HeroData) sectionType() string          { return TypeHero }
func (OverviewData) sectionType() string      { return TypeOverview }
func (SystemData) sectionType() string        { return TypeSystem }
func (ReasonsData) sectionType() string       { return TypeReasons }
func (FeaturedAreasData) sectionType() string { return TypeFeaturedAreas }
func (FAQsData) sectionType() string          { return TypeFAQs }
func (TrustbarData) sectionType() string      { return TypeTrustbar }
func (FinalCTAData) sectionType() string      { return TypeFinalCTA }
func (UnknownData) sectionType() string       { return "" }

// Fields decodes the raw document as an object. It reports false for
// anything that is not a JSON object.
func (u UnknownData) Fields() (map[string]any, bool) {
	if len(u.Raw) == 0 {
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal(u.Raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

// Degraded reports whether s is a known type carried as raw data.
func (s Section) Degraded() bool {
	u, ok := s.Data.(UnknownData)
	return ok && u.Reason != ""
}

// StableKey returns the identity used when rendering lists: id, else key,
// else type joined with the index, else a positional key.
func (s Section) StableKey(index int) string {
	switch {
	case s.ID != "":
		return s.ID
	case s.Key != "":
		return s.Key
	case s.Type != "":
		return s.Type + "-" + itoa(index)
	default:
		return "section-" + itoa(index)
	}
}
