package tools

import (
	"context"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
)

func handleReorderWorkItems(ctx context.Context, deps *Deps, ns string, p Params) (interface{}, error) {
	action, err := p.action()
	if err != nil {
		return nil, err
	}
	we, _, _, err := deps.engines(ns)
	if err != nil {
		return nil, err
	}

	switch action {
	case "reorder":
		ids := p.strSlice("work_item_ids")
		parentID := p.str("parent_id")
		if err := we.Reorder(parentID, ids); err != nil {
			return nil, err
		}
		return map[string]interface{}{"reordered": len(ids)}, nil

	case "move":
		itemID, err := resolveWorkItemID(we, p)
		if err != nil {
			return nil, err
		}
		newParent := p.str("new_parent_id")
		it, err := we.Move(itemID, newParent)
		if err != nil {
			return nil, err
		}
		return itemView(it), nil

	case "swap":
		a := p.str("work_item_id_a")
		b := p.str("work_item_id_b")
		if err := we.Swap(a, b); err != nil {
			return nil, err
		}
		return map[string]interface{}{"swapped": true}, nil

	case "recalculate":
		result, err := we.Recalculate()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"updated_count": result.UpdatedCount,
			"errors":        result.Errors,
		}, nil

	default:
		return nil, jiveerr.New(jiveerr.InvalidAction, "jive_reorder_work_items does not support action "+action)
	}
}
