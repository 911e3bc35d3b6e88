// Package search implements query tokenization, the three search modes
// (semantic, keyword, hybrid) and result ranking over the work-item store
// (spec §4.6).
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// Mode selects which retrieval strategy backs a query (spec §4.6.2).
type Mode string

const (
	ModeSemantic Mode = "semantic"
	ModeKeyword  Mode = "keyword"
	ModeHybrid   Mode = "hybrid"
)

const (
	semanticCosineCutoff = 0.8
	hybridSemanticWeight = 0.7
	hybridKeywordWeight  = 0.3
	coOccurrenceBoost    = 1.2
)

// Engine runs searches against one namespace's store.
type Engine struct {
	store *store.Store
}

func New(s *store.Store) *Engine { return &Engine{store: s} }

// Query is one search request (spec §4.6.1).
type Query struct {
	Text       string
	Mode       Mode
	Limit      int
	ItemTypes  []store.ItemType
	Statuses   []store.Status
	Priorities []store.Priority
}

// Result pairs a work item with the final ranked score and the per-factor
// breakdown that produced it (spec §4.6.3).
type Result struct {
	Item      *store.Item
	Score     float64
	Breakdown map[string]float64
}

// Search tokenizes the query, retrieves candidates per mode, and re-ranks
// them using status/priority weights and a recency boost. No per-field
// weights are applied: a term hit scores the same in every field. An empty
// query is not an error: it returns no results plus a validator warning
// (spec §8 boundary behavior).
func (e *Engine) Search(q Query) ([]Result, []string, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, []string{"query text is empty; no results returned"}, nil
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Mode == "" {
		q.Mode = ModeHybrid
	}

	tokens := Tokenize(q.Text)
	ftsQuery := strings.Join(tokens, " OR ")

	var semantic, keyword []store.ScoredItem
	var err error

	if q.Mode == ModeSemantic || q.Mode == ModeHybrid {
		vec, embedErr := e.store.Embed(q.Text)
		if embedErr != nil {
			return nil, nil, embedErr
		}
		semantic, err = e.store.VectorSearch(vec, 0, semanticCosineCutoff)
		if err != nil {
			return nil, nil, err
		}
	}
	if q.Mode == ModeKeyword || q.Mode == ModeHybrid {
		keyword, err = e.store.FTSSearch(ftsQuery, 0)
		if err != nil {
			return nil, nil, err
		}
	}

	merged := mergeScores(q.Mode, semantic, keyword)
	results := rank(merged, q)

	applyFilter(&results, q)

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil, nil
}

func mergeScores(mode Mode, semantic, keyword []store.ScoredItem) map[string]*Result {
	out := make(map[string]*Result)
	addWeighted := func(items []store.ScoredItem, weight float64) {
		for _, si := range items {
			if r, ok := out[si.Item.ID]; ok {
				r.Score += si.Score * weight
			} else {
				out[si.Item.ID] = &Result{Item: si.Item, Score: si.Score * weight}
			}
		}
	}

	switch mode {
	case ModeSemantic:
		addWeighted(semantic, 1.0)
	case ModeKeyword:
		addWeighted(keyword, 1.0)
	default: // hybrid
		semanticIDs := make(map[string]bool, len(semantic))
		for _, si := range semantic {
			semanticIDs[si.Item.ID] = true
		}
		keywordIDs := make(map[string]bool, len(keyword))
		for _, si := range keyword {
			keywordIDs[si.Item.ID] = true
		}
		addWeighted(semantic, hybridSemanticWeight)
		addWeighted(keyword, hybridKeywordWeight)
		// Items both modes surfaced get a co-occurrence boost (spec §4.6.2
		// hybrid mode: "results found by both modes are boosted x1.2").
		for id, r := range out {
			if semanticIDs[id] && keywordIDs[id] {
				r.Score *= coOccurrenceBoost
			}
		}
	}
	return out
}

// statusWeight and priorityWeight implement the re-ranking multipliers of
// spec §4.6.3: active work ranks above idle work, and urgency ranks above
// routine work.
var statusWeight = map[store.Status]float64{
	store.InProgress: 1.1,
	store.Blocked:    1.0,
	store.NotStarted: 1.0,
	store.Completed:  0.9,
	store.Cancelled:  0.5,
}

var priorityWeight = map[store.Priority]float64{
	store.PriorityCritical: 1.3,
	store.PriorityHigh:     1.2,
	store.PriorityMedium:   1.0,
	store.PriorityLow:      0.9,
}

func rank(merged map[string]*Result, q Query) []Result {
	out := make([]Result, 0, len(merged))
	now := time.Now().UTC()
	for _, r := range merged {
		sw := statusWeight[r.Item.Status]
		pw := priorityWeight[r.Item.Priority]
		rb := recencyBoost(now, r.Item.UpdatedAt)
		score := r.Score * sw * pw * rb
		out = append(out, Result{
			Item:  r.Item,
			Score: score,
			Breakdown: map[string]float64{
				"retrieval_score": r.Score,
				"status_weight":   sw,
				"priority_weight": pw,
				"recency_boost":   rb,
			},
		})
	}
	return out
}

// recencyBoost implements the four-tier schedule of spec §4.6.3: last 7
// days ×1.3, last 30 ×1.1, 30-90 ×1.0, older ×0.9.
func recencyBoost(now, updatedAt time.Time) float64 {
	age := now.Sub(updatedAt)
	const week = 7 * 24 * time.Hour
	const month = 30 * 24 * time.Hour
	const quarter = 90 * 24 * time.Hour
	switch {
	case age <= week:
		return 1.3
	case age <= month:
		return 1.1
	case age <= quarter:
		return 1.0
	default:
		return 0.9
	}
}

func applyFilter(results *[]Result, q Query) {
	if len(q.ItemTypes) == 0 && len(q.Statuses) == 0 && len(q.Priorities) == 0 {
		return
	}
	typeSet := toSet(q.ItemTypes)
	statusSet := toSetStatus(q.Statuses)
	prioritySet := toSetPriority(q.Priorities)

	filtered := (*results)[:0]
	for _, r := range *results {
		if len(typeSet) > 0 && !typeSet[r.Item.ItemType] {
			continue
		}
		if len(statusSet) > 0 && !statusSet[r.Item.Status] {
			continue
		}
		if len(prioritySet) > 0 && !prioritySet[r.Item.Priority] {
			continue
		}
		filtered = append(filtered, r)
	}
	*results = filtered
}

func toSet(ts []store.ItemType) map[store.ItemType]bool {
	m := make(map[store.ItemType]bool, len(ts))
	for _, t := range ts {
		m[t] = true
	}
	return m
}

func toSetStatus(ss []store.Status) map[store.Status]bool {
	m := make(map[store.Status]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func toSetPriority(ps []store.Priority) map[store.Priority]bool {
	m := make(map[store.Priority]bool, len(ps))
	for _, p := range ps {
		m[p] = true
	}
	return m
}
