package locations

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
)

// Deriver computes canonical slugs. It performs no I/O.
type Deriver struct {
	prefix string
}

// NewDeriver returns a deriver rooted at namespace, e.g. "foster-agency".
func NewDeriver(namespace string) Deriver {
	return Deriver{prefix: "/" + strings.Trim(strings.TrimSpace(namespace), "/")}
}

// Prefix returns the rooted namespace, e.g. "/foster-agency".
func (d Deriver) Prefix() string {
	if d.prefix == "" || d.prefix == "/" {
		return "/foster-agency"
	}
	return d.prefix
}

// Derive returns the canonical slug of node given its ancestors, root-first.
// Countries take no ancestors, regions take [country] and cities take
// [country, region]. Anything else is an error: the deriver never guesses.
func (d Deriver) Derive(node *Node, ancestors []*Node) (string, error) {
	if node == nil {
		return "", ErrTypeUnknown
	}
	if !node.Type.Valid() {
		return "", fmt.Errorf("%w: %q", ErrTypeUnknown, node.Type)
	}
	want := node.Type.Depth() - 1
	if len(ancestors) < want {
		return "", fmt.Errorf("%w: %s %s needs %d ancestors, got %d", ErrAncestorMissing, node.Type, node.ID, want, len(ancestors))
	}
	if len(ancestors) > want {
		return "", fmt.Errorf("%w: %s %s takes %d ancestors, got %d", ErrAncestorMismatch, node.Type, node.ID, want, len(ancestors))
	}

	chain := append(append(make([]*Node, 0, want+1), ancestors...), node)
	segments := make([]string, 0, len(chain))
	for depth, current := range chain {
		if current == nil {
			return "", fmt.Errorf("%w: nil ancestor at depth %d", ErrAncestorMissing, depth+1)
		}
		if current.Type.Depth() != depth+1 {
			return "", fmt.Errorf("%w: %s at depth %d", ErrAncestorMismatch, current.Type, depth+1)
		}
		if depth > 0 && current.Parent() != chain[depth-1].ID {
			return "", fmt.Errorf("%w: %s is not a child of %s", ErrAncestorMismatch, current.ID, chain[depth-1].ID)
		}
		if !slug.IsValid(current.Slug) {
			return "", fmt.Errorf("%w: %q", ErrSlugInvalid, current.Slug)
		}
		segments = append(segments, current.Slug)
	}
	return d.Join(segments...), nil
}

// Child appends segment to a parent's canonical slug.
func (d Deriver) Child(parentCanonical, segment string) (string, error) {
	if !strings.HasPrefix(parentCanonical, d.Prefix()+"/") {
		return "", fmt.Errorf("%w: parent canonical %q", ErrAncestorMissing, parentCanonical)
	}
	if !slug.IsValid(segment) {
		return "", fmt.Errorf("%w: %q", ErrSlugInvalid, segment)
	}
	return strings.TrimRight(parentCanonical, "/") + "/" + segment, nil
}

// Join builds a canonical slug from root-first segments. Empty segments are skipped.
func (d Deriver) Join(segments ...string) string {
	var b strings.Builder
	b.WriteString(d.Prefix())
	for _, segment := range segments {
		segment = strings.Trim(segment, "/")
		if segment == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(segment)
	}
	return b.String()
}

// Segments splits a canonical slug into its segments after the namespace.
// It reports false when canonical is outside the namespace.
func (d Deriver) Segments(canonical string) ([]string, bool) {
	prefix := d.Prefix() + "/"
	if !strings.HasPrefix(canonical, prefix) {
		return nil, false
	}
	rest := strings.TrimPrefix(canonical, prefix)
	if rest == "" {
		return nil, false
	}
	return strings.Split(rest, "/"), true
}

// WellFormed reports whether canonical has the namespace, the segment count
// matching t, and url safe segments.
func (d Deriver) WellFormed(canonical string, t Type) bool {
	segments, ok := d.Segments(canonical)
	if !ok || len(segments) != t.Depth() {
		return false
	}
	for _, segment := range segments {
		if !slug.IsValid(segment) {
			return false
		}
	}
	return true
}
