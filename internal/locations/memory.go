package locations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and the memory storage provider.
type MemoryRepository struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	clock func() time.Time
}

// NewMemoryRepository creates an empty in-memory location repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nodes: make(map[string]*Node), clock: time.Now}
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.nodes[id]
	if !ok {
		return nil, &NotFoundError{Resource: "location", Key: id}
	}
	return cloneNode(node), nil
}

func (m *MemoryRepository) GetByCanonicalSlug(_ context.Context, canonical string) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, node := range m.nodes {
		if node.Canonical() == canonical {
			return cloneNode(node), nil
		}
	}
	return nil, &NotFoundError{Resource: "location", Key: canonical}
}

func (m *MemoryRepository) List(_ context.Context) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		out = append(out, cloneNode(node))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) InsertIfAbsent(_ context.Context, node *Node) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.nodes[node.ID]; ok {
		return cloneNode(existing), nil
	}
	if err := m.checkUniqueLocked(node); err != nil {
		return nil, err
	}
	stored := m.stamp(node, nil)
	m.nodes[stored.ID] = stored
	return cloneNode(stored), nil
}

func (m *MemoryRepository) Upsert(_ context.Context, node *Node) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUniqueLocked(node); err != nil {
		return nil, err
	}
	stored := m.stamp(node, m.nodes[node.ID])
	m.nodes[stored.ID] = stored
	return cloneNode(stored), nil
}

func (m *MemoryRepository) SetCanonicalSlug(_ context.Context, id, canonical string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	node, ok := m.nodes[id]
	if !ok {
		return &NotFoundError{Resource: "location", Key: id}
	}
	for otherID, other := range m.nodes {
		if otherID != id && other.Canonical() == canonical {
			return ErrCanonicalTaken
		}
	}
	node.CanonicalSlug = stringPtr(canonical)
	node.UpdatedAt = m.clock()
	return nil
}

// Move applies slug and canonical slug changes to several nodes at once. It is
// used by the in-memory relocator and validates before mutating anything.
func (m *MemoryRepository) Move(_ context.Context, slugs map[string]string, canonicals map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range canonicals {
		if _, ok := m.nodes[id]; !ok {
			return &NotFoundError{Resource: "location", Key: id}
		}
	}
	for id, canonical := range canonicals {
		for otherID, other := range m.nodes {
			if _, moving := canonicals[otherID]; moving || otherID == id {
				continue
			}
			if other.Canonical() == canonical {
				return ErrCanonicalTaken
			}
		}
	}
	for id, newSlug := range slugs {
		node := m.nodes[id]
		for otherID, other := range m.nodes {
			if otherID != id && other.Parent() == node.Parent() && other.Slug == newSlug {
				return ErrSlugTaken
			}
		}
	}

	now := m.clock()
	for id, newSlug := range slugs {
		m.nodes[id].Slug = newSlug
		m.nodes[id].UpdatedAt = now
	}
	for id, canonical := range canonicals {
		m.nodes[id].CanonicalSlug = stringPtr(canonical)
		m.nodes[id].UpdatedAt = now
	}
	return nil
}

// checkUniqueLocked enforces sibling slug uniqueness under a parent and global
// canonical slug uniqueness. Root nodes are not checked for sibling slugs,
// matching a unique index over a nullable parent column.
func (m *MemoryRepository) checkUniqueLocked(node *Node) error {
	for id, other := range m.nodes {
		if id == node.ID {
			continue
		}
		if node.ParentID != nil && other.Parent() == node.Parent() && other.Slug == node.Slug {
			return ErrSlugTaken
		}
		if node.Canonical() != "" && other.Canonical() == node.Canonical() {
			return ErrCanonicalTaken
		}
	}
	return nil
}

func (m *MemoryRepository) stamp(node *Node, previous *Node) *Node {
	stored := cloneNode(node)
	now := m.clock()
	if previous != nil {
		stored.CreatedAt = previous.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	return stored
}
