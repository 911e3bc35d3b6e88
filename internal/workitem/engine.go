// Package workitem implements the hierarchical work-item domain model:
// create/update/delete, sequence numbering, hierarchy traversal, dependency
// graph maintenance and validation (spec §4.5, §3.2).
package workitem

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// Engine wraps a namespace-scoped store and enforces the hierarchy/DAG
// invariants (P1-P4) around it. An Engine holds no state of its own, so
// callers build one per call over the namespace's *store.Store (spec §6.4).
type Engine struct {
	store *store.Store
}

// New wraps a namespace's store in a work-item engine.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// CreateInput is the subset of Item fields a caller supplies; the engine
// computes ID, sequence number, order index and timestamps (spec §4.5.1).
type CreateInput struct {
	ItemType           store.ItemType
	Title              string
	Description        string
	Priority           store.Priority
	ParentID           string
	Dependencies       []string
	Tags               []string
	AcceptanceCriteria []string
	Metadata           string
}

// Create validates parent/child typing (P1) and dependency targets (P3),
// assigns a sequence number, embeds the item's searchable text, and
// persists it.
func (e *Engine) Create(in CreateInput) (*store.Item, error) {
	if in.Title == "" {
		return nil, jiveerr.New(jiveerr.ValidationError, "title is required")
	}
	if in.ItemType == "" {
		return nil, jiveerr.New(jiveerr.ValidationError, "item_type is required")
	}
	if in.Priority == "" {
		in.Priority = store.PriorityMedium
	}

	var parent *store.Item
	if in.ParentID != "" {
		var err error
		parent, err = e.store.GetWorkItem(in.ParentID)
		if err != nil {
			return nil, jiveerr.New(jiveerr.WorkItemNotFound, "parent not found: "+in.ParentID)
		}
		if !store.ValidChildType(parent.ItemType, in.ItemType) {
			return nil, jiveerr.New(jiveerr.InvalidHierarchy,
				fmt.Sprintf("%s cannot be a child of %s", in.ItemType, parent.ItemType))
		}
	}

	all, err := e.store.AllWorkItems()
	if err != nil {
		return nil, err
	}
	for _, dep := range in.Dependencies {
		if _, err := e.store.GetWorkItem(dep); err != nil {
			return nil, jiveerr.New(jiveerr.WorkItemNotFound, "dependency not found: "+dep)
		}
	}

	var seq string
	var order int
	if parent == nil {
		seq, order = nextTopLevelSequence(all)
	} else {
		seq, order = nextChildSequence(parent, all)
	}

	now := time.Now().UTC()
	vec, err := e.store.Embed(in.Title + " " + in.Description)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	it := &store.Item{
		ID:                 uuid.NewString(),
		ItemType:           in.ItemType,
		Title:              in.Title,
		Description:        in.Description,
		Status:             store.NotStarted,
		Priority:           in.Priority,
		ParentID:           in.ParentID,
		Dependencies:       append([]string(nil), in.Dependencies...),
		SequenceNumber:     seq,
		OrderIndex:         order,
		Tags:               append([]string(nil), in.Tags...),
		AcceptanceCriteria: append([]string(nil), in.AcceptanceCriteria...),
		Vector:             vec,
		CreatedAt:          now,
		UpdatedAt:          now,
		Metadata:           in.Metadata,
	}

	if err := e.wouldCreateDependencyCycle(it.ID, it.Dependencies); err != nil {
		return nil, err
	}
	if err := e.store.InsertWorkItem(it); err != nil {
		return nil, err
	}
	return it, nil
}

// UpdatePatch holds the optional fields of an update action; nil pointers
// mean "leave unchanged" (spec §4.5.2).
type UpdatePatch struct {
	Title              *string
	Description        *string
	Status             *store.Status
	Priority           *store.Priority
	ProgressPercentage *float64
	Tags               *[]string
	AcceptanceCriteria *[]string
	Dependencies       *[]string
	Metadata           *string
}

// Update applies patch to an existing item, enforcing status/progress
// coherence (P4: completed <=> progress_percentage == 100) and re-checking
// the dependency DAG (P3) if Dependencies changed.
func (e *Engine) Update(id string, patch UpdatePatch) (*store.Item, error) {
	it, err := e.store.GetWorkItem(id)
	if err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, id)
	}

	reembed := false
	if patch.Title != nil {
		it.Title = *patch.Title
		reembed = true
	}
	if patch.Description != nil {
		it.Description = *patch.Description
		reembed = true
	}
	if patch.Priority != nil {
		it.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		it.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.AcceptanceCriteria != nil {
		it.AcceptanceCriteria = append([]string(nil), (*patch.AcceptanceCriteria)...)
		reembed = true
	}
	if patch.Metadata != nil {
		it.Metadata = *patch.Metadata
	}
	if patch.Dependencies != nil {
		for _, dep := range *patch.Dependencies {
			if dep == id {
				return nil, jiveerr.New(jiveerr.CircularDependency, "item cannot depend on itself")
			}
			if _, err := e.store.GetWorkItem(dep); err != nil {
				return nil, jiveerr.New(jiveerr.WorkItemNotFound, "dependency not found: "+dep)
			}
		}
		if err := e.wouldCreateDependencyCycle(id, *patch.Dependencies); err != nil {
			return nil, err
		}
		it.Dependencies = append([]string(nil), (*patch.Dependencies)...)
	}

	if patch.Status != nil {
		it.Status = *patch.Status
		switch it.Status {
		case store.Completed:
			it.ProgressPercentage = 100
			if it.CompletedAt == nil {
				now := time.Now().UTC()
				it.CompletedAt = &now
			}
		case store.Cancelled:
			it.CompletedAt = nil
		default:
			it.CompletedAt = nil
			if it.ProgressPercentage >= 100 {
				it.ProgressPercentage = 99
			}
		}
	}
	if patch.ProgressPercentage != nil {
		p := *patch.ProgressPercentage
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		it.ProgressPercentage = p
		if p >= 100 {
			it.Status = store.Completed
			now := time.Now().UTC()
			it.CompletedAt = &now
		} else if it.Status == store.Completed {
			it.Status = store.InProgress
			it.CompletedAt = nil
		}
	}

	it.UpdatedAt = time.Now().UTC()
	if reembed {
		vec, err := e.store.Embed(it.Title + " " + it.Description + " " + joinStrings(it.AcceptanceCriteria))
		if err != nil {
			return nil, fmt.Errorf("embed: %w", err)
		}
		it.Vector = vec
	}

	if err := e.store.DeleteWorkItem(it.ID); err != nil {
		return nil, err
	}
	if err := e.store.InsertWorkItem(it); err != nil {
		return nil, err
	}
	return it, nil
}

// Delete removes an item. If cascade is false and the item has children,
// it fails with VALIDATION_ERROR; if cascade is true, the whole subtree is
// deleted. Dependency references to deleted items are cleaned up either way.
func (e *Engine) Delete(id string, cascade bool) error {
	it, err := e.store.GetWorkItem(id)
	if err != nil {
		return jiveerr.New(jiveerr.WorkItemNotFound, id)
	}

	children, err := e.Children(id)
	if err != nil {
		return err
	}
	if len(children) > 0 && !cascade {
		return jiveerr.New(jiveerr.ValidationError, "item has children; use cascade to delete them")
	}
	for _, c := range children {
		if err := e.Delete(c.ID, true); err != nil {
			return err
		}
	}

	all, err := e.store.AllWorkItems()
	if err != nil {
		return err
	}
	for _, other := range all {
		if other.ID == id {
			continue
		}
		if removed := removeString(other.Dependencies, id); removed != nil {
			other.Dependencies = removed
			if err := e.store.DeleteWorkItem(other.ID); err != nil {
				return err
			}
			if err := e.store.InsertWorkItem(other); err != nil {
				return err
			}
		}
	}

	_ = it
	return e.store.DeleteWorkItem(id)
}

// Get fetches a single item by id.
func (e *Engine) Get(id string) (*store.Item, error) {
	it, err := e.store.GetWorkItem(id)
	if err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, id)
	}
	return it, nil
}

// List applies filter and returns matching items plus a total count (spec
// §4.4 list action, pagination).
func (e *Engine) List(filter store.WorkItemFilter) ([]*store.Item, int, error) {
	items, err := e.store.ListWorkItems(filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := e.store.CountWorkItems(filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

func removeString(ss []string, target string) []string {
	found := false
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s == target {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		return nil
	}
	return out
}
