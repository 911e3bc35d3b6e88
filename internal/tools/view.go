package tools

import "github.com/mehmetkoksal-w/jive-mcp/internal/store"

// itemView renders a store.Item for a tool response. The embedding vector
// is never surfaced (spec §6.2).
func itemView(it *store.Item) map[string]interface{} {
	v := map[string]interface{}{
		"id":                  it.ID,
		"item_type":           string(it.ItemType),
		"title":               it.Title,
		"description":         it.Description,
		"status":              string(it.Status),
		"priority":            string(it.Priority),
		"progress_percentage": it.ProgressPercentage,
		"parent_id":           it.ParentID,
		"dependencies":        it.Dependencies,
		"sequence_number":     it.SequenceNumber,
		"order_index":         it.OrderIndex,
		"tags":                it.Tags,
		"acceptance_criteria": it.AcceptanceCriteria,
		"created_at":          it.CreatedAt,
		"updated_at":          it.UpdatedAt,
	}
	if it.CompletedAt != nil {
		v["completed_at"] = *it.CompletedAt
	}
	return v
}

func itemViews(items []*store.Item) []map[string]interface{} {
	out := make([]map[string]interface{}, len(items))
	for i, it := range items {
		out[i] = itemView(it)
	}
	return out
}

func executionView(rec *store.ExecutionRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":                rec.ID,
		"work_item_id":      rec.WorkItemID,
		"action":            rec.Action,
		"status":            rec.Status,
		"agent_id":          rec.AgentID,
		"details":           rec.Details,
		"error_message":     rec.ErrorMessage,
		"duration_ms":       rec.DurationMillis,
		"timestamp":         rec.Timestamp,
		"sequence_snapshot": rec.SequenceSnapshot,
	}
}
