package tools

// legacyMapping pairs a deprecated tool name with the unified tool it
// translates to, plus a pure parameter transform (spec §4.3.4).
type legacyMapping struct {
	UnifiedName string
	Transform   func(Params) Params
}

func withAction(action string) func(Params) Params {
	return func(p Params) Params {
		out := Params{}
		for k, v := range p {
			out[k] = v
		}
		out["action"] = action
		return out
	}
}

func renameField(from, to, action string) func(Params) Params {
	return func(p Params) Params {
		out := Params{}
		for k, v := range p {
			out[k] = v
		}
		if v, ok := out[from]; ok {
			out[to] = v
			delete(out, from)
		}
		out["action"] = action
		return out
	}
}

// legacyTable is the fixed list of legacy names accepted for backward
// compatibility (spec §4.3.4).
func legacyTable() map[string]legacyMapping {
	return map[string]legacyMapping{
		"jive_create_work_item": {UnifiedName: "jive_manage_work_item", Transform: withAction("create")},
		"jive_update_work_item": {UnifiedName: "jive_manage_work_item", Transform: withAction("update")},
		"jive_delete_work_item": {UnifiedName: "jive_manage_work_item", Transform: withAction("delete")},

		"jive_create_task": {UnifiedName: "jive_manage_work_item", Transform: func(p Params) Params {
			out := withAction("create")(p)
			out["type"] = "task"
			return out
		}},
		"jive_update_task": {UnifiedName: "jive_manage_work_item", Transform: func(p Params) Params {
			out := renameField("task_id", "work_item_id", "update")(p)
			return out
		}},

		"jive_get_work_item_details": {UnifiedName: "jive_get_work_item", Transform: withAction("get")},
		"jive_list_work_items":       {UnifiedName: "jive_get_work_item", Transform: withAction("list")},

		"jive_search_tasks": {UnifiedName: "jive_search_content", Transform: func(p Params) Params {
			out := withAction("search")(p)
			types, _ := out["filters"].(map[string]interface{})
			if types == nil {
				out["item_types"] = []interface{}{"task"}
			}
			return out
		}},
		"jive_search_work_items": {UnifiedName: "jive_search_content", Transform: withAction("search")},

		"jive_get_children": {UnifiedName: "jive_get_hierarchy", Transform: withAction("get_children")},
		"jive_get_workflow_status": {UnifiedName: "jive_get_hierarchy", Transform: func(p Params) Params {
			out := withAction("get")(p)
			out["relationship_type"] = "full_hierarchy"
			return out
		}},

		"jive_execute_task": {UnifiedName: "jive_execute_work_item", Transform: withAction("execute")},
		"jive_cancel_task":  {UnifiedName: "jive_execute_work_item", Transform: withAction("cancel")},

		"jive_track_task_progress": {UnifiedName: "jive_track_progress", Transform: withAction("track")},
		"jive_get_progress_report": {UnifiedName: "jive_track_progress", Transform: withAction("analytics")},

		"jive_sync_file_to_database": {UnifiedName: "jive_sync_data", Transform: withAction("sync")},
		"jive_backup_data":           {UnifiedName: "jive_sync_data", Transform: withAction("backup")},

		"jive_reorder_tasks": {UnifiedName: "jive_reorder_work_items", Transform: withAction("reorder")},
		"jive_move_task":     {UnifiedName: "jive_reorder_work_items", Transform: withAction("move")},
	}
}
