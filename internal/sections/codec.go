package sections

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type envelope struct {
	ID   string          `json:"id,omitempty"`
	Key  string          `json:"key,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

var emptyObject = json.RawMessage(`{}`)

// MarshalJSON writes the {id, key, type, data} envelope.
func (s Section) MarshalJSON() ([]byte, error) {
	data, err := encodeData(s.Data)
	if err != nil {
		return nil, fmt.Errorf("sections: encode %s: %w", s.Type, err)
	}
	return json.Marshal(envelope{ID: s.ID, Key: s.Key, Type: s.Type, Data: data})
}

// UnmarshalJSON reads the envelope. Key defaults to type. Data of a known
// type is checked against that type's schema; data that fails is kept as
// UnknownData with the validation failure as its Reason.
func (s *Section) UnmarshalJSON(raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	s.ID = strings.TrimSpace(env.ID)
	s.Type = strings.TrimSpace(env.Type)
	s.Key = strings.TrimSpace(env.Key)
	if s.Key == "" {
		s.Key = s.Type
	}
	s.Data = DecodeData(s.Type, env.Data)
	return nil
}

// DecodeData turns raw section data into its typed payload.
func DecodeData(sectionType string, raw json.RawMessage) Payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = emptyObject
	}
	if !IsKnown(sectionType) {
		return UnknownData{Raw: cloneRaw(raw)}
	}
	if err := validateData(sectionType, raw); err != nil {
		return UnknownData{Raw: cloneRaw(raw), Reason: err.Error()}
	}
	payload, err := decodeKnown(sectionType, raw)
	if err != nil {
		return UnknownData{Raw: cloneRaw(raw), Reason: err.Error()}
	}
	return payload
}

func decodeKnown(sectionType string, raw json.RawMessage) (Payload, error) {
	switch sectionType {
	case TypeHero:
		return decodeAs[HeroData](raw)
	case TypeOverview:
		return decodeAs[OverviewData](raw)
	case TypeSystem:
		return decodeAs[SystemData](raw)
	case TypeReasons:
		return decodeAs[ReasonsData](raw)
	case TypeFeaturedAreas:
		return decodeAs[FeaturedAreasData](raw)
	case TypeFAQs:
		return decodeAs[FAQsData](raw)
	case TypeTrustbar:
		return decodeAs[TrustbarData](raw)
	case TypeFinalCTA:
		return decodeAs[FinalCTAData](raw)
	}
	return nil, fmt.Errorf("sections: no decoder for %s", sectionType)
}

func decodeAs[T Payload](raw json.RawMessage) (Payload, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeData(payload Payload) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return emptyObject, nil
	case UnknownData:
		if len(p.Raw) == 0 {
			return emptyObject, nil
		}
		return p.Raw, nil
	case *UnknownData:
		if p == nil || len(p.Raw) == 0 {
			return emptyObject, nil
		}
		return p.Raw, nil
	default:
		return json.Marshal(p)
	}
}

// ToMap converts any payload into a generic object for best-effort field access.
func ToMap(payload Payload) map[string]any {
	if u, ok := payload.(UnknownData); ok {
		fields, _ := u.Fields()
		return fields
	}
	raw, err := encodeData(payload)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), raw...)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
