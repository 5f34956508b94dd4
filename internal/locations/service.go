package locations

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

// Service exposes the location hierarchy use-cases.
type Service interface {
	Get(ctx context.Context, id string) (*Node, error)
	// GetByCanonical returns the node that owns canonical.
	GetByCanonical(ctx context.Context, canonical string) (*Node, error)
	// Ensure returns the node stored under id, creating it from hints when absent.
	Ensure(ctx context.Context, id string, hints Hints) (*Node, error)
	// Ancestors loads the parent chain of node, root-first.
	Ancestors(ctx context.Context, node *Node) ([]*Node, error)
	// Derive computes the canonical slug of node from its stored ancestor chain.
	Derive(ctx context.Context, node *Node) (string, error)
	SetCanonicalSlug(ctx context.Context, id, canonical string) error
	List(ctx context.Context) ([]*Node, error)
	// Descendants returns every node below id, parents before children.
	Descendants(ctx context.Context, id string) ([]*Node, error)
	Tree(ctx context.Context) ([]*TreeNode, error)
	Import(ctx context.Context, dataset Dataset) (ImportResult, error)
	Deriver() Deriver
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	repo    Repository
	deriver Deriver
	logger  interfaces.Logger
}

// NewService constructs the location service.
func NewService(repo Repository, deriver Deriver, opts ...ServiceOption) Service {
	s := &service{repo: repo, deriver: deriver, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Deriver() Deriver {
	return s.deriver
}

func (s *service) Get(ctx context.Context, id string) (*Node, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByCanonical(ctx context.Context, canonical string) (*Node, error) {
	return s.repo.GetByCanonicalSlug(ctx, strings.TrimSpace(canonical))
}

func (s *service) Ensure(ctx context.Context, id string, hints Hints) (*Node, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrIDRequired
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	node := s.synthesize(id, hints)
	stored, err := s.repo.InsertIfAbsent(ctx, node)
	if err != nil {
		return nil, err
	}
	logging.WithLocation(s.logger, id, "").Info("locations.ensure.created",
		"slug", stored.Slug,
		"type", stored.Type,
	)
	return stored, nil
}

func (s *service) synthesize(id string, hints Hints) *Node {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}

	name := strings.TrimSpace(hints.Name)
	if name == "" {
		name = "Location " + short
	}

	nodeSlug := normalizeSlug(hints.Slug)
	if nodeSlug == "" {
		nodeSlug = normalizeSlug(hints.Name)
	}
	if nodeSlug == "" {
		nodeSlug = "location"
		if suffix := normalizeSlug(short); suffix != "" {
			nodeSlug += "-" + suffix
		}
	}

	nodeType := TypeCity
	if raw := strings.TrimSpace(hints.Type); raw != "" {
		if parsed, ok := ParseType(raw); ok {
			nodeType = parsed
		} else {
			s.logger.Warn("locations.ensure.type_defaulted", "location_id", id, "type", raw)
		}
	}

	editable := true
	if hints.Editable != nil {
		editable = *hints.Editable
	}

	return &Node{
		ID:       id,
		Name:     name,
		Slug:     nodeSlug,
		Type:     nodeType,
		ParentID: stringPtr(strings.TrimSpace(hints.ParentID)),
		Editable: editable,
	}
}

func (s *service) Ancestors(ctx context.Context, node *Node) ([]*Node, error) {
	if node == nil || !node.Type.Valid() {
		return nil, ErrTypeUnknown
	}
	depth := node.Type.Depth() - 1
	chain := make([]*Node, depth)
	current := node
	for i := depth - 1; i >= 0; i-- {
		parentID := current.Parent()
		if parentID == "" {
			return nil, fmt.Errorf("%w: %s has no parent", ErrAncestorMissing, current.ID)
		}
		parent, err := s.repo.GetByID(ctx, parentID)
		if err != nil {
			if IsNotFound(err) {
				return nil, fmt.Errorf("%w: parent %s of %s", ErrAncestorMissing, parentID, current.ID)
			}
			return nil, err
		}
		chain[i] = parent
		current = parent
	}
	return chain, nil
}

func (s *service) Derive(ctx context.Context, node *Node) (string, error) {
	ancestors, err := s.Ancestors(ctx, node)
	if err != nil {
		return "", err
	}
	return s.deriver.Derive(node, ancestors)
}

func (s *service) SetCanonicalSlug(ctx context.Context, id, canonical string) error {
	return s.repo.SetCanonicalSlug(ctx, id, canonical)
}

func (s *service) List(ctx context.Context) ([]*Node, error) {
	return s.repo.List(ctx)
}

func (s *service) Descendants(ctx context.Context, id string) ([]*Node, error) {
	nodes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	children := childrenIndex(nodes)

	var out []*Node
	queue := []string{id}
	seen := map[string]bool{id: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			out = append(out, child)
			queue = append(queue, child.ID)
		}
	}
	return out, nil
}

func childrenIndex(nodes []*Node) map[string][]*Node {
	index := make(map[string][]*Node)
	for _, node := range nodes {
		if parent := node.Parent(); parent != "" {
			index[parent] = append(index[parent], node)
		}
	}
	return index
}

// normalizeSlug returns the go-slug form of value, or "" when nothing url safe remains.
func normalizeSlug(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	normalized, err := slug.Normalize(value)
	if err != nil {
		return ""
	}
	return normalized
}

// NormalizeSlug exposes the slug rules used for location segments.
func NormalizeSlug(value string) (string, error) {
	normalized := normalizeSlug(value)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrSlugInvalid, value)
	}
	return normalized, nil
}
