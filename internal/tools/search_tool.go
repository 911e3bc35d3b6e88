package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/search"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

func handleSearchContent(ctx context.Context, deps *Deps, ns string, p Params) (interface{}, error) {
	action := p.str("action")
	if action == "" {
		action = "search"
	}
	if action != "search" {
		return nil, jiveerr.New(jiveerr.InvalidAction, "jive_search_content does not support action "+action)
	}

	_, se, _, err := deps.engines(ns)
	if err != nil {
		return nil, err
	}

	queryText := p.str("query")
	q := search.Query{
		Text:  queryText,
		Mode:  search.Mode(p.str("search_type")),
		Limit: p.intDefault("limit", 20),
	}
	if types := p.strSlice("item_types"); len(types) > 0 {
		for _, t := range types {
			pt, err := parseItemType(t)
			if err != nil {
				return nil, err
			}
			q.ItemTypes = append(q.ItemTypes, pt)
		}
	}

	results, warnings, err := se.Search(q)
	if err != nil {
		return nil, err
	}

	terms := search.Tokenize(queryText)
	out := make([]map[string]interface{}, 0, len(results))
	for _, r := range validate(results) {
		view := itemView(r.Item)
		view["score"] = clampScore(r.Score)
		view["score_breakdown"] = r.Breakdown
		view["indicators"] = indicators(r.Item, queryText, r.Score)
		view["highlighted_title"] = highlight(r.Item.Title, terms)
		view["highlighted_description"] = highlight(r.Item.Description, terms)
		view["match_summary"] = matchSummary(r.Item, queryText, r.Score)
		out = append(out, view)
	}
	return map[string]interface{}{"results": out, "total": len(out), "warnings": warnings}, nil
}

// validate applies the result validator of spec §4.6.4: drop any record
// missing an id or missing all of title/description (the store has no
// separate "content" field, so title+description stand in for it).
func validate(results []search.Result) []search.Result {
	out := make([]search.Result, 0, len(results))
	for _, r := range results {
		if r.Item == nil || r.Item.ID == "" {
			continue
		}
		if r.Item.Title == "" && r.Item.Description == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// clampScore enforces the result validator's [0,10] clamp (spec §4.6.4).
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

func indicators(it *store.Item, query string, score float64) []string {
	var out []string
	if containsFold(it.Title, query) {
		out = append(out, "title_match")
	}
	if containsFold(it.Description, query) {
		out = append(out, "description_match")
	}
	for _, tag := range it.Tags {
		if containsFold(tag, query) {
			out = append(out, "tag_match")
			break
		}
	}
	if score > 5 {
		out = append(out, "high_relevance")
	}
	if it.Priority == store.PriorityHigh || it.Priority == store.PriorityCritical {
		out = append(out, "high_priority")
	}
	return out
}

// highlight wraps every case-insensitive occurrence of a query term in
// "**...**" (spec §4.6.3 highlighted fields), leaving the source casing
// untouched.
func highlight(text string, terms []string) string {
	if text == "" || len(terms) == 0 {
		return text
	}
	lower := strings.ToLower(text)
	type span struct{ start, end int }
	var spans []span
	for _, term := range terms {
		if term == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(lower[from:], term)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(term)
			spans = append(spans, span{start, end})
			from = end
		}
	}
	if len(spans) == 0 {
		return text
	}
	sortSpans(spans)
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(text[prev:s.start])
		b.WriteString("**")
		b.WriteString(text[s.start:s.end])
		b.WriteString("**")
		prev = s.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

func sortSpans(spans []struct{ start, end int }) {
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].start < spans[j-1].start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
}

// matchSummary builds the human-readable explanation of why an item
// matched (spec §4.6.3).
func matchSummary(it *store.Item, query string, score float64) string {
	var parts []string
	if containsFold(it.Title, query) {
		parts = append(parts, "title")
	}
	if containsFold(it.Description, query) {
		parts = append(parts, "description")
	}
	for _, tag := range it.Tags {
		if containsFold(tag, query) {
			parts = append(parts, "tags")
			break
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Matched by semantic similarity (score %.2f)", score)
	}
	return fmt.Sprintf("Matched %s for %q (score %.2f)", strings.Join(parts, ", "), query, score)
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
