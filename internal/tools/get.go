package tools

import (
	"context"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

func handleGetWorkItem(ctx context.Context, deps *Deps, ns string, p Params) (interface{}, error) {
	action, err := p.action()
	if err != nil {
		return nil, err
	}
	we, _, _, err := deps.engines(ns)
	if err != nil {
		return nil, err
	}

	switch action {
	case "get":
		ident := p.str("work_item_id")
		if ident == "" {
			ident = p.str("id")
		}
		if ident == "" {
			ident = p.str("title")
		}
		it, err := we.Resolve(ident)
		if err != nil {
			return nil, err
		}
		return itemView(it), nil

	case "list":
		filter := store.WorkItemFilter{
			IncludeCompleted: p.boolean("include_completed", true),
			IncludeCancelled: p.boolean("include_cancelled", true),
			Limit:            p.intDefault("limit", 50),
			Offset:           p.intDefault("offset", 0),
		}
		if pid := p.strPtr("parent_id"); pid != nil {
			filter.ParentID = pid
		}
		if types := p.strSlice("item_types"); len(types) > 0 {
			for _, t := range types {
				pt, err := parseItemType(t)
				if err != nil {
					return nil, err
				}
				filter.ItemTypes = append(filter.ItemTypes, pt)
			}
		}
		if statuses := p.strSlice("statuses"); len(statuses) > 0 {
			for _, s := range statuses {
				ps, err := parseStatus(s)
				if err != nil {
					return nil, err
				}
				filter.Statuses = append(filter.Statuses, ps)
			}
		}
		if priorities := p.strSlice("priorities"); len(priorities) > 0 {
			for _, pr := range priorities {
				pp, err := parsePriority(pr)
				if err != nil {
					return nil, err
				}
				filter.Priorities = append(filter.Priorities, pp)
			}
		}

		items, total, err := we.List(filter)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"items":  itemViews(items),
			"total":  total,
			"limit":  filter.Limit,
			"offset": filter.Offset,
		}, nil

	default:
		return nil, jiveerr.New(jiveerr.InvalidAction, "jive_get_work_item does not support action "+action)
	}
}
