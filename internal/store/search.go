package store

// ScoredItem pairs a work item with a raw engine-level score (vector
// cosine similarity, or FTS bm25 rank), prior to the search package's
// status/priority/recency re-ranking (spec §4.6.3).
type ScoredItem struct {
	Item  *Item
	Score float64
}

// VectorSearch returns the nearest neighbours of queryVector among all
// work items, dropping results whose cosine distance exceeds maxDistance
// (spec §4.6.2 semantic mode: "drop results whose cosine distance exceeds
// 0.8"). There is no native vector index (SPEC_FULL §6.2); this scans all
// rows, acceptable at the item counts a single project's work tracker
// accumulates.
func (s *Store) VectorSearch(queryVector []float32, limit int, maxDistance float64) ([]ScoredItem, error) {
	items, err := s.AllWorkItems()
	if err != nil {
		return nil, err
	}
	var out []ScoredItem
	for _, it := range items {
		d := CosineDistance(queryVector, it.Vector)
		if d > maxDistance {
			continue
		}
		out = append(out, ScoredItem{Item: it, Score: 1 - d})
	}
	sortScoredDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FTSSearch runs a full-text query over the work_items_fts virtual table
// (spec §4.6.2 keyword mode). bm25() returns a more-negative-is-better
// score; we negate it so higher is better, matching VectorSearch.
func (s *Store) FTSSearch(query string, limit int) ([]ScoredItem, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT w.id, bm25(work_items_fts) AS rank
		FROM work_items_fts
		JOIN work_items w ON w.id = work_items_fts.id
		WHERE work_items_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoredItem
	for rows.Next() {
		var id string
		var rank float64
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, err
		}
		it, err := s.GetWorkItem(id)
		if err != nil {
			continue
		}
		out = append(out, ScoredItem{Item: it, Score: -rank})
	}
	return out, rows.Err()
}

func sortScoredDesc(s []ScoredItem) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Score > s[j-1].Score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
