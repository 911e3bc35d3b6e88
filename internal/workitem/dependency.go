package workitem

import (
	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// wouldCreateDependencyCycle checks that adding/replacing id's dependency
// edges to newDeps keeps the combined parent+dependency graph a DAG (spec
// P3: "the union of parent edges and dependency edges forms a DAG").
func (e *Engine) wouldCreateDependencyCycle(id string, newDeps []string) error {
	all, err := e.store.AllWorkItems()
	if err != nil {
		return err
	}
	edges := make(map[string][]string, len(all))
	for _, it := range all {
		edges[it.ID] = it.Dependencies
		if it.ParentID != "" {
			edges[it.ID] = append(edges[it.ID], it.ParentID)
		}
	}
	edges[id] = append(append([]string(nil), newDeps...), edges[id]...)
	if parentOf, ok := parentLookup(all)[id]; ok && parentOf != "" {
		edges[id] = append(edges[id], parentOf)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, next := range edges[node] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}
	for node := range edges {
		if color[node] == white {
			if visit(node) {
				return jiveerr.New(jiveerr.CircularDependency,
					"adding this dependency would create a cycle")
			}
		}
	}
	return nil
}

func parentLookup(all []*store.Item) map[string]string {
	m := make(map[string]string, len(all))
	for _, it := range all {
		m[it.ID] = it.ParentID
	}
	return m
}

// AddDependency appends target to item's dependency list if not already
// present, rejecting the edge if it would create a cycle (P3).
func (e *Engine) AddDependency(itemID, targetID string) (*store.Item, error) {
	if itemID == targetID {
		return nil, jiveerr.New(jiveerr.CircularDependency, "item cannot depend on itself")
	}
	it, err := e.store.GetWorkItem(itemID)
	if err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, itemID)
	}
	if _, err := e.store.GetWorkItem(targetID); err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, targetID)
	}
	for _, d := range it.Dependencies {
		if d == targetID {
			return it, nil
		}
	}
	newDeps := append(append([]string(nil), it.Dependencies...), targetID)
	if err := e.wouldCreateDependencyCycle(itemID, newDeps); err != nil {
		return nil, err
	}
	it.Dependencies = newDeps
	if err := e.store.DeleteWorkItem(it.ID); err != nil {
		return nil, err
	}
	if err := e.store.InsertWorkItem(it); err != nil {
		return nil, err
	}
	return it, nil
}

// RemoveDependency drops target from item's dependency list.
func (e *Engine) RemoveDependency(itemID, targetID string) (*store.Item, error) {
	it, err := e.store.GetWorkItem(itemID)
	if err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, itemID)
	}
	if filtered := removeString(it.Dependencies, targetID); filtered != nil {
		it.Dependencies = filtered
	} else {
		it.Dependencies = []string{}
	}
	if err := e.store.DeleteWorkItem(it.ID); err != nil {
		return nil, err
	}
	if err := e.store.InsertWorkItem(it); err != nil {
		return nil, err
	}
	return it, nil
}
