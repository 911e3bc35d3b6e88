package workitem

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// nextTopLevelSequence assigns the next top-level sequence number: the
// string form of max(existing top-level integers) + 1 (spec §4.5.3).
func nextTopLevelSequence(all []*store.Item) (string, int) {
	max := 0
	for _, it := range all {
		if it.ParentID != "" {
			continue
		}
		if n, err := strconv.Atoi(it.SequenceNumber); err == nil && n > max {
			max = n
		}
	}
	next := max + 1
	return strconv.Itoa(next), next
}

// nextChildSequence assigns "S.(k+1)" / order_index = O*1000 + (k+1) for a
// new child of parent (sequence S, order O), where k is the current max
// integer suffix among parent's existing children (spec §4.5.3).
func nextChildSequence(parent *store.Item, siblings []*store.Item) (string, int) {
	prefix := parent.SequenceNumber + "."
	maxSuffix := 0
	for _, sib := range siblings {
		if sib.ParentID != parent.ID {
			continue
		}
		if !strings.HasPrefix(sib.SequenceNumber, prefix) {
			continue
		}
		rest := sib.SequenceNumber[len(prefix):]
		if strings.Contains(rest, ".") {
			continue // not a direct child, a deeper descendant
		}
		if n, err := strconv.Atoi(rest); err == nil && n > maxSuffix {
			maxSuffix = n
		}
	}
	k := maxSuffix + 1
	return fmt.Sprintf("%s%d", prefix, k), parent.OrderIndex*1000 + k
}

// RecalcResult reports per-item outcomes of a sequence-number regeneration
// (spec §4.5.3 Regeneration, best-effort atomicity).
type RecalcResult struct {
	UpdatedCount int
	Errors       []string
}

// Recalculate traverses all items, sorts siblings by current order_index
// then created_at, and assigns sequence numbers / order indices in DFS
// order from the top, rewriting each changed item on its own and recording
// per-item failures in Errors. Running it twice yields
// identical output (P4/R4 idempotence).
func (e *Engine) Recalculate() (*RecalcResult, error) {
	all, err := e.store.AllWorkItems()
	if err != nil {
		return nil, err
	}

	byParent := make(map[string][]*store.Item)
	byID := make(map[string]*store.Item)
	for _, it := range all {
		byParent[it.ParentID] = append(byParent[it.ParentID], it)
		byID[it.ID] = it
	}
	for _, group := range byParent {
		sort.Slice(group, func(i, j int) bool {
			if group[i].OrderIndex != group[j].OrderIndex {
				return group[i].OrderIndex < group[j].OrderIndex
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
	}

	result := &RecalcResult{}
	var walk func(parentID, prefix string, parentOrder int)
	walk = func(parentID, prefix string, parentOrder int) {
		for i, it := range byParent[parentID] {
			k := i + 1
			var seq string
			var order int
			if prefix == "" {
				seq, order = strconv.Itoa(k), k
			} else {
				seq, order = fmt.Sprintf("%s.%d", prefix, k), parentOrder*1000+k
			}
			it.SequenceNumber = seq
			it.OrderIndex = order
			walk(it.ID, seq, order)
		}
	}
	walk("", "", 0)

	for _, it := range all {
		if err := e.store.DeleteWorkItem(it.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: delete: %v", it.ID, err))
			continue
		}
		if err := e.store.InsertWorkItem(it); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: insert: %v", it.ID, err))
			continue
		}
		result.UpdatedCount++
	}
	return result, nil
}
