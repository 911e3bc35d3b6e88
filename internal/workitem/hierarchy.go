package workitem

import (
	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// Children returns the direct children of id, ordered by order_index
// (spec §4.5.5 children action).
func (e *Engine) Children(id string) ([]*store.Item, error) {
	pid := id
	return e.store.ListWorkItems(store.WorkItemFilter{
		ParentID:         &pid,
		IncludeCompleted: true,
		IncludeCancelled: true,
	})
}

// Parents returns the ancestor chain of id, nearest first, up to the root
// (spec §4.5.5 parents action).
func (e *Engine) Parents(id string) ([]*store.Item, error) {
	var out []*store.Item
	cur, err := e.store.GetWorkItem(id)
	if err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, id)
	}
	seen := map[string]bool{cur.ID: true}
	for cur.ParentID != "" {
		if seen[cur.ParentID] {
			break // guards against a corrupted cycle rather than looping forever
		}
		parent, err := e.store.GetWorkItem(cur.ParentID)
		if err != nil {
			break
		}
		out = append(out, parent)
		seen[parent.ID] = true
		cur = parent
	}
	return out, nil
}

// Ancestors is an alias for Parents using the spec's §4.5.5 naming.
func (e *Engine) Ancestors(id string) ([]*store.Item, error) { return e.Parents(id) }

// Descendants returns every item transitively reachable from id via
// parent_id, in BFS order (spec §4.5.5 descendants action).
func (e *Engine) Descendants(id string) ([]*store.Item, error) {
	var out []*store.Item
	frontier := []string{id}
	for len(frontier) > 0 {
		var next []string
		for _, pid := range frontier {
			kids, err := e.Children(pid)
			if err != nil {
				return nil, err
			}
			for _, k := range kids {
				out = append(out, k)
				next = append(next, k.ID)
			}
		}
		frontier = next
	}
	return out, nil
}

// HierarchyNode is a recursive tree view rooted at one item (spec §4.5.5
// full_hierarchy action).
type HierarchyNode struct {
	Item     *store.Item
	Children []*HierarchyNode
}

// FullHierarchy builds the subtree rooted at id, down to maxDepth levels
// (0 = unlimited).
func (e *Engine) FullHierarchy(id string, maxDepth int) (*HierarchyNode, error) {
	root, err := e.store.GetWorkItem(id)
	if err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, id)
	}
	return e.buildNode(root, maxDepth, 0)
}

func (e *Engine) buildNode(it *store.Item, maxDepth, depth int) (*HierarchyNode, error) {
	node := &HierarchyNode{Item: it}
	if maxDepth > 0 && depth >= maxDepth {
		return node, nil
	}
	kids, err := e.Children(it.ID)
	if err != nil {
		return nil, err
	}
	for _, k := range kids {
		childNode, err := e.buildNode(k, maxDepth, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

// Dependents returns every item whose dependency list includes id.
func (e *Engine) Dependents(id string) ([]*store.Item, error) {
	all, err := e.store.AllWorkItems()
	if err != nil {
		return nil, err
	}
	var out []*store.Item
	for _, it := range all {
		for _, d := range it.Dependencies {
			if d == id {
				out = append(out, it)
				break
			}
		}
	}
	return out, nil
}
