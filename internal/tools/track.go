package tools

import (
	"context"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/progress"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

func handleTrackProgress(ctx context.Context, deps *Deps, ns string, p Params) (interface{}, error) {
	action, err := p.action()
	if err != nil {
		return nil, err
	}
	we, _, tr, err := deps.engines(ns)
	if err != nil {
		return nil, err
	}
	s, err := deps.storeOf(ns)
	if err != nil {
		return nil, err
	}

	switch action {
	case "track":
		executionID := p.str("execution_id")
		status := p.str("status")
		rec, err := tr.Finish(executionID, status, p.str("error_message"), int64(p.intDefault("duration_ms", 0)))
		if err != nil {
			return nil, err
		}
		return executionView(rec), nil

	case "status":
		itemID, err := resolveWorkItemID(we, p)
		if err != nil {
			return nil, err
		}
		it, err := we.Get(itemID)
		if err != nil {
			return nil, err
		}
		children, err := we.Children(itemID)
		if err != nil {
			return nil, err
		}
		rolled := progress.Rollup(it, children)
		return map[string]interface{}{
			"work_item_id":        it.ID,
			"status":              string(it.Status),
			"progress_percentage": rolled,
		}, nil

	case "milestone":
		itemID, err := resolveWorkItemID(we, p)
		if err != nil {
			return nil, err
		}
		it, err := we.Get(itemID)
		if err != nil {
			return nil, err
		}
		descendants, err := we.Descendants(itemID)
		if err != nil {
			return nil, err
		}
		completed := 0
		for _, d := range descendants {
			if d.Status == store.Completed {
				completed++
			}
		}
		return map[string]interface{}{
			"work_item_id":   it.ID,
			"total_children": len(descendants),
			"completed":      completed,
		}, nil

	case "analytics":
		items, _, err := we.List(store.WorkItemFilter{IncludeCompleted: true, IncludeCancelled: true})
		if err != nil {
			return nil, err
		}
		executions, err := s.AllExecutions()
		if err != nil {
			return nil, err
		}
		dependentsOf := func(id string) int {
			deps, err := we.Dependents(id)
			if err != nil {
				return 0
			}
			return len(deps)
		}
		report := progress.Analyze(items, executions, dependentsOf)
		return analyticsView(report), nil

	default:
		return nil, jiveerr.New(jiveerr.InvalidAction, "jive_track_progress does not support action "+action)
	}
}

func analyticsView(r progress.Report) map[string]interface{} {
	bottlenecks := make([]map[string]interface{}, len(r.Bottlenecks))
	for i, b := range r.Bottlenecks {
		bottlenecks[i] = map[string]interface{}{
			"item_id":      b.ItemID,
			"title":        b.Title,
			"blocked_days": b.BlockedDays,
			"dependents":   b.DependentsLen,
		}
	}
	burndown := make([]map[string]interface{}, len(r.BurndownDays))
	for i, pt := range r.BurndownDays {
		burndown[i] = map[string]interface{}{"date": pt.Date, "remaining": pt.Remaining}
	}
	return map[string]interface{}{
		"total_items":       r.TotalItems,
		"completed_items":   r.CompletedItems,
		"completion_rate":   r.CompletionRate,
		"average_progress":  r.AverageProgress,
		"velocity_per_week": r.VelocityPerWeek,
		"bottlenecks":       bottlenecks,
		"burndown":          burndown,
	}
}
