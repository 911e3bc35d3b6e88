package workitem

import (
	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// Reorder sets the sibling order of orderedIDs, all of which must share
// parentID, to the order given (spec §4.5.4 reorder action). Order indices
// are rewritten densely (1..n) within the parent scope.
func (e *Engine) Reorder(parentID string, orderedIDs []string) error {
	siblings, err := e.Children(parentID)
	if err != nil {
		return err
	}
	bySibling := make(map[string]*store.Item, len(siblings))
	for _, s := range siblings {
		bySibling[s.ID] = s
	}
	if len(orderedIDs) != len(siblings) {
		return jiveerr.New(jiveerr.ValidationError, "orderedIDs must list exactly the parent's current children")
	}
	for i, id := range orderedIDs {
		it, ok := bySibling[id]
		if !ok {
			return jiveerr.New(jiveerr.ValidationError, "item "+id+" is not a child of the given parent")
		}
		it.OrderIndex = i + 1
		if err := e.store.DeleteWorkItem(it.ID); err != nil {
			return err
		}
		if err := e.store.InsertWorkItem(it); err != nil {
			return err
		}
	}
	return nil
}

// Move relocates id under newParentID, or to the top level when
// newParentID is empty. It re-validates the child-type rules and refuses a
// new parent that lies inside the item's own subtree, then regenerates
// sequence numbers (spec §4.5.4 move action).
func (e *Engine) Move(id, newParentID string) (*store.Item, error) {
	it, err := e.store.GetWorkItem(id)
	if err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, id)
	}

	if newParentID != "" {
		newParent, err := e.store.GetWorkItem(newParentID)
		if err != nil {
			return nil, jiveerr.New(jiveerr.WorkItemNotFound, newParentID)
		}
		if !store.ValidChildType(newParent.ItemType, it.ItemType) {
			return nil, jiveerr.New(jiveerr.InvalidHierarchy, "target parent cannot own this item type")
		}
		descendants, err := e.Descendants(id)
		if err != nil {
			return nil, err
		}
		for _, d := range descendants {
			if d.ID == newParentID {
				return nil, jiveerr.New(jiveerr.InvalidHierarchy, "cannot move an item under its own descendant")
			}
		}
	}

	it.ParentID = newParentID
	if err := e.store.DeleteWorkItem(it.ID); err != nil {
		return nil, err
	}
	if err := e.store.InsertWorkItem(it); err != nil {
		return nil, err
	}
	if _, err := e.Recalculate(); err != nil {
		return nil, err
	}
	return e.store.GetWorkItem(id)
}

// Swap exchanges the (sequence_number, order_index) pair of two sibling
// items (spec §4.5.4 swap action), rejecting the call if they do not share
// a parent.
func (e *Engine) Swap(aID, bID string) error {
	a, err := e.store.GetWorkItem(aID)
	if err != nil {
		return jiveerr.New(jiveerr.WorkItemNotFound, aID)
	}
	b, err := e.store.GetWorkItem(bID)
	if err != nil {
		return jiveerr.New(jiveerr.WorkItemNotFound, bID)
	}
	if a.ParentID != b.ParentID {
		return jiveerr.New(jiveerr.ValidationError, "items must share a parent to swap order")
	}
	a.OrderIndex, b.OrderIndex = b.OrderIndex, a.OrderIndex
	a.SequenceNumber, b.SequenceNumber = b.SequenceNumber, a.SequenceNumber
	for _, it := range []*store.Item{a, b} {
		if err := e.store.DeleteWorkItem(it.ID); err != nil {
			return err
		}
		if err := e.store.InsertWorkItem(it); err != nil {
			return err
		}
	}
	return nil
}
