package workitem

import (
	"fmt"

	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// ValidationIssue is one problem found by Validate (spec §4.5.7).
type ValidationIssue struct {
	Kind    string // "orphan", "cycle", "invalid_reference", "depth_violation", "type_mismatch"
	ItemID  string
	Message string
}

// ValidationReport summarizes Validate's findings across the whole
// namespace (or the subtree rooted at an optional root).
type ValidationReport struct {
	Issues  []ValidationIssue
	Checked int
}

func (r *ValidationReport) Valid() bool { return len(r.Issues) == 0 }

// Validate walks every item (or, if rootID is non-empty, the subtree under
// it) and reports orphaned parent references, dependency cycles, dangling
// dependency references, depth violations and parent/child type mismatches
// (spec §4.5.7).
func (e *Engine) Validate(rootID string) (*ValidationReport, error) {
	all, err := e.store.AllWorkItems()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*store.Item, len(all))
	for _, it := range all {
		byID[it.ID] = it
	}

	var scope []*store.Item
	if rootID == "" {
		scope = all
	} else {
		if _, ok := byID[rootID]; !ok {
			return nil, fmt.Errorf("validate: root %s not found", rootID)
		}
		descendants, err := e.Descendants(rootID)
		if err != nil {
			return nil, err
		}
		scope = append([]*store.Item{byID[rootID]}, descendants...)
	}

	report := &ValidationReport{Checked: len(scope)}

	for _, it := range scope {
		if it.ParentID != "" {
			parent, ok := byID[it.ParentID]
			if !ok {
				report.Issues = append(report.Issues, ValidationIssue{
					Kind: "orphan", ItemID: it.ID,
					Message: "parent_id " + it.ParentID + " does not exist",
				})
			} else if !store.ValidChildType(parent.ItemType, it.ItemType) {
				report.Issues = append(report.Issues, ValidationIssue{
					Kind: "type_mismatch", ItemID: it.ID,
					Message: fmt.Sprintf("%s cannot be a child of %s", it.ItemType, parent.ItemType),
				})
			}
		}

		for _, dep := range it.Dependencies {
			if _, ok := byID[dep]; !ok {
				report.Issues = append(report.Issues, ValidationIssue{
					Kind: "invalid_reference", ItemID: it.ID,
					Message: "dependency " + dep + " does not exist",
				})
			}
		}
	}

	if cyc := findCycle(all); cyc != "" {
		report.Issues = append(report.Issues, ValidationIssue{
			Kind: "cycle", ItemID: cyc,
			Message: "item participates in a parent/dependency cycle",
		})
	}

	for _, it := range scope {
		depth := 0
		cur := it
		seen := map[string]bool{}
		for cur.ParentID != "" && !seen[cur.ID] {
			seen[cur.ID] = true
			p, ok := byID[cur.ParentID]
			if !ok {
				break
			}
			depth++
			cur = p
		}
		if depth > 10 {
			report.Issues = append(report.Issues, ValidationIssue{
				Kind: "depth_violation", ItemID: it.ID,
				Message: "item nests deeper than the recommended maximum depth of 10",
			})
		}
	}

	return report, nil
}

// findCycle returns one item ID caught in a parent+dependency cycle, or ""
// if the combined graph is acyclic (spec P3).
func findCycle(all []*store.Item) string {
	edges := make(map[string][]string, len(all))
	for _, it := range all {
		e := append([]string(nil), it.Dependencies...)
		if it.ParentID != "" {
			e = append(e, it.ParentID)
		}
		edges[it.ID] = e
	}
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var bad string
	var visit func(n string) bool
	visit = func(n string) bool {
		color[n] = gray
		for _, next := range edges[n] {
			if color[next] == gray {
				bad = next
				return true
			}
			if color[next] == white && visit(next) {
				return true
			}
		}
		color[n] = black
		return false
	}
	for n := range edges {
		if color[n] == white && visit(n) {
			return bad
		}
	}
	return ""
}
