package locations

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Type is the closed set of hierarchy levels.
type Type string

const (
	TypeCountry Type = "country"
	TypeRegion  Type = "region"
	TypeCity    Type = "city"
)

// Valid reports whether t is one of the three known levels.
func (t Type) Valid() bool {
	switch t {
	case TypeCountry, TypeRegion, TypeCity:
		return true
	}
	return false
}

// Depth returns 1 for countries, 2 for regions, 3 for cities and 0 otherwise.
func (t Type) Depth() int {
	switch t {
	case TypeCountry:
		return 1
	case TypeRegion:
		return 2
	case TypeCity:
		return 3
	}
	return 0
}

// Parent returns the type a node of type t must hang under.
func (t Type) Parent() (Type, bool) {
	switch t {
	case TypeRegion:
		return TypeCountry, true
	case TypeCity:
		return TypeRegion, true
	}
	return "", false
}

// ParseType normalises value into a Type.
func ParseType(value string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(value)))
	return t, t.Valid()
}

// Node is one row of the country/region/city hierarchy.
type Node struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID            string    `bun:"id,pk" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Slug          string    `bun:"slug,notnull" json:"slug"`
	Type          Type      `bun:"type,notnull" json:"type"`
	ParentID      *string   `bun:"parent_id" json:"parent_id,omitempty"`
	CanonicalSlug *string   `bun:"canonical_slug" json:"canonical_slug"`
	Editable      bool      `bun:"editable" json:"editable"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Canonical returns the stored canonical slug or "".
func (n *Node) Canonical() string {
	if n == nil || n.CanonicalSlug == nil {
		return ""
	}
	return *n.CanonicalSlug
}

// Parent returns the parent id or "".
func (n *Node) Parent() string {
	if n == nil || n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

// Hints carry best-effort defaults used when Ensure has to create a node.
type Hints struct {
	Name     string
	Slug     string
	Type     string
	ParentID string
	Editable *bool
}

// TreeNode is a node with its children, as returned by Service.Tree.
type TreeNode struct {
	Node
	Children []*TreeNode `json:"children,omitempty"`
	// Orphan marks non-country nodes whose parent could not be found.
	Orphan bool `json:"orphan,omitempty"`
}

func cloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.ParentID != nil {
		parent := *n.ParentID
		out.ParentID = &parent
	}
	if n.CanonicalSlug != nil {
		canonical := *n.CanonicalSlug
		out.CanonicalSlug = &canonical
	}
	return &out
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
