package sections

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document is the stored content_json of a content record.
type Document struct {
	Sections []Section `json:"sections"`
}

type documentAlias Document

func (d Document) MarshalJSON() ([]byte, error) {
	if d.Sections == nil {
		d.Sections = []Section{}
	}
	return json.Marshal(documentAlias(d))
}

// Value stores the document as JSON text.
func (d Document) Value() (driver.Value, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan reads JSON text or bytes. NULL scans as an empty document.
func (d *Document) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = Document{Sections: []Section{}}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("sections: cannot scan %T into Document", src)
	}
	var out documentAlias
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("sections: decode document: %w", err)
	}
	if out.Sections == nil {
		out.Sections = []Section{}
	}
	*d = Document(out)
	return nil
}

// Find returns the first section with key.
func (d Document) Find(key string) (Section, bool) {
	for _, section := range d.Sections {
		if section.Key == key {
			return section, true
		}
	}
	return Section{}, false
}

// Degraded lists the keys of known-type sections carried as raw data.
func (d Document) Degraded() []string {
	var keys []string
	for i, section := range d.Sections {
		if section.Degraded() {
			keys = append(keys, section.StableKey(i))
		}
	}
	return keys
}
