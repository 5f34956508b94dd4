package sections

// Merge lays supplied sections over scaffold. A supplied section whose key
// matches a scaffold slot replaces that slot in place; the others are appended
// in the order given. When hero is non-nil it replaces the data of the hero
// slot. Every scaffold slot is present in the result. Neither input is mutated.
func Merge(scaffold, supplied []Section, hero Payload) []Section {
	out := make([]Section, len(scaffold), len(scaffold)+len(supplied))
	copy(out, scaffold)

	position := make(map[string]int, len(out))
	for i, section := range out {
		if _, seen := position[section.Key]; !seen {
			position[section.Key] = i
		}
	}

	for _, section := range supplied {
		if section.Key == "" {
			section.Key = section.Type
		}
		if i, ok := position[section.Key]; ok && section.Key != "" {
			out[i] = section
			continue
		}
		out = append(out, section)
		if section.Key != "" {
			position[section.Key] = len(out) - 1
		}
	}

	if hero != nil {
		if i, ok := position[TypeHero]; ok {
			out[i].Data = hero
		} else {
			out = append([]Section{{Key: TypeHero, Type: TypeHero, Data: hero}}, out...)
		}
	}
	return out
}
