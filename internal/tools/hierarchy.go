package tools

import (
	"context"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/workitem"
)

func handleGetHierarchy(ctx context.Context, deps *Deps, ns string, p Params) (interface{}, error) {
	action, err := p.action()
	if err != nil {
		return nil, err
	}
	we, _, _, err := deps.engines(ns)
	if err != nil {
		return nil, err
	}

	id := func() (string, error) { return resolveWorkItemID(we, p) }

	switch action {
	case "get", "get_children":
		itemID, err := id()
		if err != nil {
			return nil, err
		}
		switch p.str("relationship_type") {
		case "full_hierarchy":
			maxDepth := p.intDefault("max_depth", 0)
			tree, err := we.FullHierarchy(itemID, maxDepth)
			if err != nil {
				return nil, err
			}
			return hierarchyView(tree), nil
		case "parents", "ancestors":
			items, err := we.Parents(itemID)
			if err != nil {
				return nil, err
			}
			return itemViews(items), nil
		case "descendants":
			items, err := we.Descendants(itemID)
			if err != nil {
				return nil, err
			}
			return itemViews(items), nil
		default: // children
			items, err := we.Children(itemID)
			if err != nil {
				return nil, err
			}
			return itemViews(items), nil
		}

	case "get_dependencies":
		itemID, err := id()
		if err != nil {
			return nil, err
		}
		it, err := we.Get(itemID)
		if err != nil {
			return nil, err
		}
		dependents, err := we.Dependents(itemID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"dependencies": it.Dependencies,
			"dependents":   itemViews(dependents),
		}, nil

	case "add_dependency":
		itemID, err := id()
		if err != nil {
			return nil, err
		}
		target := p.str("depends_on_id")
		it, err := we.AddDependency(itemID, target)
		if err != nil {
			return nil, err
		}
		return itemView(it), nil

	case "remove_dependency":
		itemID, err := id()
		if err != nil {
			return nil, err
		}
		target := p.str("depends_on_id")
		it, err := we.RemoveDependency(itemID, target)
		if err != nil {
			return nil, err
		}
		return itemView(it), nil

	case "validate":
		report, err := we.Validate(p.str("work_item_id"))
		if err != nil {
			return nil, err
		}
		return validationView(report), nil

	case "validate_comprehensive":
		report, err := we.Validate("")
		if err != nil {
			return nil, err
		}
		return validationView(report), nil

	case "cleanup_orphans":
		return cleanupOrphans(we, p)

	default:
		return nil, jiveerr.New(jiveerr.InvalidAction, "jive_get_hierarchy does not support action "+action)
	}
}

func resolveWorkItemID(we *workitem.Engine, p Params) (string, error) {
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

func hierarchyView(n *workitem.HierarchyNode) map[string]interface{} {
	v := itemView(n.Item)
	children := make([]map[string]interface{}, len(n.Children))
	for i, c := range n.Children {
		children[i] = hierarchyView(c)
	}
	v["children"] = children
	return v
}

func validationView(r *workitem.ValidationReport) map[string]interface{} {
	issues := make([]map[string]interface{}, len(r.Issues))
	for i, iss := range r.Issues {
		issues[i] = map[string]interface{}{
			"kind": iss.Kind, "item_id": iss.ItemID, "message": iss.Message,
		}
	}
	return map[string]interface{}{
		"is_valid": r.Valid(),
		"checked":  r.Checked,
		"issues":   issues,
	}
}

// cleanupOrphans applies the requested remediation (move_to_root, delete,
// assign_parent) to every orphan found by validation (spec §4.5.7).
func cleanupOrphans(we *workitem.Engine, p Params) (interface{}, error) {
	report, err := we.Validate("")
	if err != nil {
		return nil, err
	}
	action := p.str("cleanup_action")
	if action == "" {
		action = "move_to_root"
	}
	newParent := p.str("assign_parent_id")

	var outcomes []map[string]interface{}
	for _, issue := range report.Issues {
		if issue.Kind != "orphan" {
			continue
		}
		outcome := map[string]interface{}{"item_id": issue.ItemID, "action": action}
		var applyErr error
		switch action {
		case "delete":
			applyErr = we.Delete(issue.ItemID, true)
		case "assign_parent":
			_, applyErr = we.Move(issue.ItemID, newParent)
		default: // move_to_root
			_, applyErr = we.Move(issue.ItemID, "")
		}
		if applyErr != nil {
			outcome["error"] = applyErr.Error()
		} else {
			outcome["success"] = true
		}
		outcomes = append(outcomes, outcome)
	}
	return map[string]interface{}{"outcomes": outcomes}, nil
}
