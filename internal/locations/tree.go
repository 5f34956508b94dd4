package locations

import (
	"context"
	"sort"
	"strings"
)

// Tree shapes every stored node into countries, regions and cities. Each level
// is sorted by name. Nodes whose parent is missing, and non-country nodes
// without a parent, are listed at the root flagged as orphans so that no row
// is hidden.
func (s *service) Tree(ctx context.Context) ([]*TreeNode, error) {
	nodes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(nodes), nil
}

// BuildTree is the pure shaping step behind Service.Tree.
func BuildTree(nodes []*Node) []*TreeNode {
	byID := make(map[string]*TreeNode, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = &TreeNode{Node: *cloneNode(node)}
	}

	var roots []*TreeNode
	for _, node := range nodes {
		item := byID[node.ID]
		parentID := node.Parent()
		parent, ok := byID[parentID]
		switch {
		case parentID == "" && node.Type == TypeCountry:
			roots = append(roots, item)
		case ok && !cyclic(byID, node.ID):
			parent.Children = append(parent.Children, item)
		default:
			item.Orphan = true
			roots = append(roots, item)
		}
	}

	sortTree(roots)
	return roots
}

func sortTree(items []*TreeNode) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
	for _, item := range items {
		sortTree(item.Children)
	}
}

// cyclic reports whether following parent links from id revisits a node.
func cyclic(byID map[string]*TreeNode, id string) bool {
	seen := map[string]bool{}
	for current := id; current != ""; {
		if seen[current] {
			return true
		}
		seen[current] = true
		item, ok := byID[current]
		if !ok {
			return false
		}
		current = item.Parent()
	}
	return false
}
