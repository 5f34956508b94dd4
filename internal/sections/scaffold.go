package sections

import "strings"

// Template type hints. They mirror the location levels.
const (
	TemplateCountry = "country"
	TemplateRegion  = "region"
	TemplateCity    = "city"
)

var slots = map[string][]string{
	TemplateCountry: {TypeHero, TypeOverview, TypeFeaturedAreas, TypeSystem, TypeReasons, TypeFAQs, TypeTrustbar, TypeFinalCTA},
	TemplateRegion:  {TypeHero, TypeOverview, TypeFeaturedAreas, TypeReasons, TypeFAQs, TypeTrustbar, TypeFinalCTA},
	TemplateCity:    {TypeHero, TypeOverview, TypeSystem, TypeReasons, TypeFAQs, TypeTrustbar, TypeFinalCTA},
}

// Slots returns the section types every page of templateType carries, in
// order. Unknown template types use the city slots.
func Slots(templateType string) []string {
	if list, ok := slots[strings.ToLower(strings.TrimSpace(templateType))]; ok {
		return append([]string(nil), list...)
	}
	return append([]string(nil), slots[TemplateCity]...)
}

// Scaffold returns default sections for templateType. name is the location's
// display name and seeds headings.
func Scaffold(templateType, name string) []Section {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "your area"
	}
	types := Slots(templateType)
	out := make([]Section, 0, len(types))
	for _, sectionType := range types {
		out = append(out, Section{Key: sectionType, Type: sectionType, Data: defaultData(sectionType, name)})
	}
	return out
}

func defaultData(sectionType, name string) Payload {
	switch sectionType {
	case TypeHero:
		return HeroData{
			Heading: "Foster care in " + name,
			CTA:     &Link{Label: "Find an agency", Href: "#agencies"},
		}
	case TypeOverview:
		return OverviewData{Title: "Fostering in " + name}
	case TypeFeaturedAreas:
		return FeaturedAreasData{Title: "Areas in " + name}
	case TypeSystem:
		return SystemData{Title: "How fostering works"}
	case TypeReasons:
		return ReasonsData{Title: "Why foster in " + name}
	case TypeFAQs:
		return FAQsData{Title: "Frequently asked questions"}
	case TypeTrustbar:
		return TrustbarData{}
	case TypeFinalCTA:
		return FinalCTAData{
			Heading: "Start your fostering journey",
			CTA:     &Link{Label: "Get in touch", Href: "#contact"},
		}
	}
	return UnknownData{Raw: emptyObject}
}
