package tools

import (
	"context"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/progress"
)

func handleExecuteWorkItem(ctx context.Context, deps *Deps, ns string, p Params) (interface{}, error) {
	action, err := p.action()
	if err != nil {
		return nil, err
	}
	we, _, tr, err := deps.engines(ns)
	if err != nil {
		return nil, err
	}

	switch action {
	case "execute":
		itemID, err := resolveWorkItemID(we, p)
		if err != nil {
			return nil, err
		}
		rec, err := tr.Start(itemID, p.str("action_name"), p.str("agent_id"))
		if err != nil {
			return nil, err
		}
		return executionView(rec), nil

	case "status":
		itemID, err := resolveWorkItemID(we, p)
		if err != nil {
			return nil, err
		}
		history, err := tr.History(itemID)
		if err != nil {
			return nil, err
		}
		views := make([]map[string]interface{}, len(history))
		for i, rec := range history {
			views[i] = executionView(rec)
		}
		return map[string]interface{}{"history": views}, nil

	case "cancel":
		// cancel is idempotent (spec §4.7): a second cancel of an
		// already-cancelled execution succeeds rather than erroring on a
		// "not a valid transition" check.
		execID := p.str("execution_id")
		existing, err := tr.Get(execID)
		if err != nil {
			return nil, err
		}
		if existing.Status == progress.Cancelled {
			return executionView(existing), nil
		}
		rec, err := tr.Finish(execID, progress.Cancelled, p.str("reason"), 0)
		if err != nil {
			return nil, err
		}
		return executionView(rec), nil

	case "validate":
		itemID, err := resolveWorkItemID(we, p)
		if err != nil {
			return nil, err
		}
		it, err := we.Get(itemID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"work_item_id": it.ID,
			"executable":   it.Status != "cancelled" && it.Status != "completed",
		}, nil

	default:
		return nil, jiveerr.New(jiveerr.InvalidAction, "jive_execute_work_item does not support action "+action)
	}
}
