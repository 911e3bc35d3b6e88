package workitem

import (
	"strings"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// Resolve looks an item up by UUID first, falling back to an exact
// (case-insensitive) title match, then a whitespace-split keyword-AND match
// against title+description, and finally a sequence-number match (spec
// §4.4.1 identifier resolution; the sequence-number fallback is an
// enrichment beyond the three steps the spec names, since sequence numbers
// are themselves stable per-namespace identifiers). Ambiguous matches
// return the first by order_index, matching the spec's "resolution is
// deterministic".
func (e *Engine) Resolve(identifier string) (*store.Item, error) {
	if identifier == "" {
		return nil, jiveerr.New(jiveerr.ValidationError, "identifier is required")
	}

	if it, err := e.store.GetWorkItem(identifier); err == nil {
		return it, nil
	}

	all, err := e.store.AllWorkItems()
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(identifier)
	if best := firstByOrder(filterItems(all, func(it *store.Item) bool {
		return strings.ToLower(it.Title) == lower
	})); best != nil {
		return best, nil
	}

	terms := strings.Fields(lower)
	if len(terms) > 0 {
		if best := firstByOrder(filterItems(all, func(it *store.Item) bool {
			haystack := strings.ToLower(it.Title + " " + it.Description)
			for _, term := range terms {
				if !strings.Contains(haystack, term) {
					return false
				}
			}
			return true
		})); best != nil {
			return best, nil
		}
	}

	for _, it := range all {
		if it.SequenceNumber == identifier {
			return it, nil
		}
	}

	return nil, jiveerr.New(jiveerr.WorkItemNotFound, identifier)
}

func filterItems(all []*store.Item, pred func(*store.Item) bool) []*store.Item {
	var out []*store.Item
	for _, it := range all {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func firstByOrder(matches []*store.Item) *store.Item {
	if len(matches) == 0 {
		return nil
	}
	best := matches[0]
	for _, it := range matches[1:] {
		if it.OrderIndex < best.OrderIndex {
			best = it
		}
	}
	return best
}
