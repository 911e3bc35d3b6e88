package tools

import (
	"context"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/workitem"
)

func handleManageWorkItem(ctx context.Context, deps *Deps, ns string, p Params) (interface{}, error) {
	action, err := p.action()
	if err != nil {
		return nil, err
	}
	we, _, _, err := deps.engines(ns)
	if err != nil {
		return nil, err
	}

	switch action {
	case "create":
		itemType, err := parseItemType(p.str("type"))
		if err != nil {
			return nil, err
		}
		priority := p.str("priority")
		in := workitem.CreateInput{
			ItemType:           itemType,
			Title:              p.str("title"),
			Description:        p.str("description"),
			ParentID:           p.str("parent_id"),
			Dependencies:       p.strSlice("dependencies"),
			Tags:               p.strSlice("tags"),
			AcceptanceCriteria: p.strSlice("acceptance_criteria"),
			Metadata:           p.str("metadata"),
		}
		if priority != "" {
			pr, err := parsePriority(priority)
			if err != nil {
				return nil, err
			}
			in.Priority = pr
		}
		it, err := we.Create(in)
		if err != nil {
			return nil, err
		}
		return itemView(it), nil

	case "update":
		id, err := resolveID(we, p)
		if err != nil {
			return nil, err
		}
		patch := workitem.UpdatePatch{
			Title:              p.strPtr("title"),
			Description:        p.strPtr("description"),
			ProgressPercentage: p.floatPtr("progress_percentage"),
			Tags:               p.strSlicePtr("tags"),
			AcceptanceCriteria: p.strSlicePtr("acceptance_criteria"),
			Dependencies:       p.strSlicePtr("dependencies"),
			Metadata:           p.strPtr("metadata"),
		}
		if s := p.str("status"); s != "" {
			st, err := parseStatus(s)
			if err != nil {
				return nil, err
			}
			patch.Status = &st
		}
		if pr := p.str("priority"); pr != "" {
			val, err := parsePriority(pr)
			if err != nil {
				return nil, err
			}
			patch.Priority = &val
		}
		it, err := we.Update(id, patch)
		if err != nil {
			return nil, err
		}
		return itemView(it), nil

	case "delete":
		id, err := resolveID(we, p)
		if err != nil {
			return nil, err
		}
		cascade := p.boolean("cascade", false)
		if err := we.Delete(id, cascade); err != nil {
			return nil, err
		}
		return map[string]interface{}{"deleted": true, "id": id}, nil

	default:
		return nil, jiveerr.New(jiveerr.InvalidAction, "jive_manage_work_item does not support action "+action)
	}
}

// resolveID identifies the target work item from work_item_id (falling
// back to id), per spec §4.4.1.
func resolveID(we *workitem.Engine, p Params) (string, error) {
	ident := p.str("work_item_id")
	if ident == "" {
		ident = p.str("id")
	}
	it, err := we.Resolve(ident)
	if err != nil {
		return "", err
	}
	return it.ID, nil
}
