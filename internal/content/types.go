package content

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-directory/internal/locations"
	"github.com/goliatone/go-directory/internal/sections"
)

// Record is the content stored for one canonical slug.
type Record struct {
	bun.BaseModel `bun:"table:location_content,alias:lc"`

	ID            uuid.UUID         `bun:"id,pk,type:uuid" json:"id"`
	CanonicalSlug string            `bun:"canonical_slug,notnull,unique" json:"canonical_slug"`
	TemplateType  *string           `bun:"template_type" json:"template_type"`
	Content       sections.Document `bun:"content_json,type:text,notnull" json:"content_json"`
	CreatedAt     time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Template returns the template type hint or "".
func (r *Record) Template() string {
	if r == nil || r.TemplateType == nil {
		return ""
	}
	return *r.TemplateType
}

// SaveRequest is the editable payload of a location page. Title, Slug, Type
// and Editable seed the location when it does not exist yet. Country and
// Region are slug hints used when the ancestor chain cannot be loaded.
type SaveRequest struct {
	Title    string
	Slug     string
	Type     string
	Country  string
	Region   string
	Editable *bool
	Hero     json.RawMessage
	Sections []sections.Section
}

// LoadResult is the outcome of a content lookup. Record is nil when the
// location has no content yet; CanonicalSlug is "" when none could be resolved.
type LoadResult struct {
	Location      *locations.Node
	CanonicalSlug string
	Record        *Record
}

// Empty reports whether no content was found.
func (r LoadResult) Empty() bool {
	return r.Record == nil
}

// Move is one canonical slug change applied by a relocation.
type Move struct {
	LocationID string `json:"location_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

// RelocationPlan is the full set of changes for one slug edit.
type RelocationPlan struct {
	LocationID string
	ParentID   string
	Slug       string
	Moves      []Move
}

// RelocateResult reports the relocated node and every re-keyed slug.
type RelocateResult struct {
	Location *locations.Node `json:"location"`
	Moves    []Move          `json:"moves"`
}

func cloneRecord(r *Record) *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.TemplateType != nil {
		templateType := *r.TemplateType
		out.TemplateType = &templateType
	}
	out.Content = sections.Document{Sections: append([]sections.Section(nil), r.Content.Sections...)}
	return &out
}
