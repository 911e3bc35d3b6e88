package tools

// toolDef is the unexported build-time descriptor compileSchema/New turn
// into a registered Tool.
type toolDef struct {
	Name        string
	Description string
	SchemaJSON  string
	Handle      Handler
}

// Every tool schema keys off the `action` discriminator and uses
// `if`/`then` to require the fields each action actually needs (spec §4.4:
// "validate its arguments against its JSON schema before executing"). The
// `namespace` field is common to all of them (spec §4.3.3).
const manageWorkItemSchema = `{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["create", "update", "delete"]},
    "namespace": {"type": "string"}
  },
  "required": ["action"],
  "if": {"properties": {"action": {"const": "create"}}},
  "then": {
    "properties": {
      "type": {"type": "string", "enum": ["initiative", "epic", "feature", "story", "task"]},
      "title": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "parent_id": {"type": "string"},
      "priority": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
      "dependencies": {"type": "array", "items": {"type": "string"}},
      "tags": {"type": "array", "items": {"type": "string"}},
      "acceptance_criteria": {"type": "array", "items": {"type": "string"}},
      "metadata": {"type": "string"}
    },
    "required": ["type", "title"]
  },
  "else": {
    "if": {"properties": {"action": {"enum": ["update", "delete"]}}},
    "then": {
      "anyOf": [
        {"required": ["work_item_id"]},
        {"required": ["id"]}
      ],
      "properties": {
        "title": {"type": "string"},
        "description": {"type": "string"},
        "status": {"type": "string", "enum": ["not_started", "in_progress", "blocked", "completed", "cancelled"]},
        "priority": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
        "progress_percentage": {"type": "number", "minimum": 0, "maximum": 100},
        "cascade": {"type": "boolean"}
      }
    }
  }
}`

const getWorkItemSchema = `{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["get", "list"]},
    "namespace": {"type": "string"},
    "work_item_id": {"type": "string"},
    "id": {"type": "string"},
    "title": {"type": "string"},
    "parent_id": {"type": "string"},
    "item_types": {"type": "array", "items": {"type": "string"}},
    "statuses": {"type": "array", "items": {"type": "string"}},
    "priorities": {"type": "array", "items": {"type": "string"}},
    "include_completed": {"type": "boolean"},
    "include_cancelled": {"type": "boolean"},
    "limit": {"type": "integer", "minimum": 1},
    "offset": {"type": "integer", "minimum": 0}
  },
  "required": ["action"]
}`

const searchContentSchema = `{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["search"]},
    "namespace": {"type": "string"},
    "query": {"type": "string"},
    "search_type": {"type": "string", "enum": ["semantic", "keyword", "hybrid"]},
    "limit": {"type": "integer", "minimum": 1},
    "item_types": {"type": "array", "items": {"type": "string"}}
  }
}`

const getHierarchySchema = `{
  "type": "object",
  "properties": {
    "action": {
      "type": "string",
      "enum": ["get", "get_children", "get_dependencies", "add_dependency", "remove_dependency", "validate", "validate_comprehensive", "cleanup_orphans"]
    },
    "namespace": {"type": "string"}
  },
  "required": ["action"],
  "if": {"properties": {"action": {"enum": ["get", "get_children", "get_dependencies"]}}},
  "then": {
    "anyOf": [
      {"required": ["work_item_id"]},
      {"required": ["id"]}
    ],
    "properties": {
      "relationship_type": {"type": "string", "enum": ["children", "parents", "ancestors", "descendants", "full_hierarchy"]},
      "max_depth": {"type": "integer", "minimum": 0}
    }
  },
  "else": {
    "if": {"properties": {"action": {"enum": ["add_dependency", "remove_dependency"]}}},
    "then": {
      "anyOf": [
        {"required": ["work_item_id"]},
        {"required": ["id"]}
      ],
      "required": ["depends_on_id"],
      "properties": {
        "depends_on_id": {"type": "string"}
      }
    },
    "else": {
      "if": {"properties": {"action": {"const": "cleanup_orphans"}}},
      "then": {
        "properties": {
          "cleanup_action": {"type": "string", "enum": ["move_to_root", "delete", "assign_parent"]},
          "assign_parent_id": {"type": "string"}
        }
      }
    }
  }
}`

const executeWorkItemSchema = `{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["execute", "status", "cancel", "validate"]},
    "namespace": {"type": "string"}
  },
  "required": ["action"],
  "if": {"properties": {"action": {"const": "execute"}}},
  "then": {
    "anyOf": [
      {"required": ["work_item_id"]},
      {"required": ["id"]}
    ],
    "properties": {
      "action_name": {"type": "string"},
      "agent_id": {"type": "string"}
    }
  },
  "else": {
    "if": {"properties": {"action": {"const": "cancel"}}},
    "then": {
      "required": ["execution_id"],
      "properties": {
        "execution_id": {"type": "string"},
        "reason": {"type": "string"}
      }
    },
    "else": {
      "if": {"properties": {"action": {"enum": ["status", "validate"]}}},
      "then": {
        "anyOf": [
          {"required": ["work_item_id"]},
          {"required": ["id"]}
        ]
      }
    }
  }
}`

const trackProgressSchema = `{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["track", "status", "milestone", "analytics"]},
    "namespace": {"type": "string"}
  },
  "required": ["action"],
  "if": {"properties": {"action": {"const": "track"}}},
  "then": {
    "required": ["execution_id", "status"],
    "properties": {
      "execution_id": {"type": "string"},
      "status": {"type": "string", "enum": ["succeeded", "failed", "cancelled"]},
      "error_message": {"type": "string"},
      "duration_ms": {"type": "integer", "minimum": 0}
    }
  },
  "else": {
    "if": {"properties": {"action": {"enum": ["status", "milestone"]}}},
    "then": {
      "anyOf": [
        {"required": ["work_item_id"]},
        {"required": ["id"]}
      ]
    }
  }
}`

const syncDataSchema = `{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["sync", "backup", "restore", "validate", "regenerate_sequence_numbers"]},
    "namespace": {"type": "string"},
    "format": {"type": "string", "enum": ["json", "yaml", "markdown", "csv"]}
  },
  "required": ["action"],
  "if": {"properties": {"action": {"const": "restore"}}},
  "then": {
    "required": ["backup_path"],
    "properties": {
      "backup_path": {"type": "string"}
    }
  }
}`

const reorderWorkItemsSchema = `{
  "type": "object",
  "properties": {
    "action": {"type": "string", "enum": ["reorder", "move", "swap", "recalculate"]},
    "namespace": {"type": "string"}
  },
  "required": ["action"],
  "if": {"properties": {"action": {"const": "reorder"}}},
  "then": {
    "required": ["work_item_ids"],
    "properties": {
      "work_item_ids": {"type": "array", "items": {"type": "string"}, "minItems": 1},
      "parent_id": {"type": "string"}
    }
  },
  "else": {
    "if": {"properties": {"action": {"const": "move"}}},
    "then": {
      "required": ["new_parent_id"],
      "anyOf": [
        {"required": ["work_item_id"]},
        {"required": ["id"]}
      ],
      "properties": {
        "new_parent_id": {"type": "string"}
      }
    },
    "else": {
      "if": {"properties": {"action": {"const": "swap"}}},
      "then": {
        "required": ["work_item_id_a", "work_item_id_b"],
        "properties": {
          "work_item_id_a": {"type": "string"},
          "work_item_id_b": {"type": "string"}
        }
      }
    }
  }
}`

func toolDefinitions() []toolDef {
	return []toolDef{
		{
			Name:        "jive_manage_work_item",
			Description: "Create, update, or delete a work item (spec §4.5.1, §4.5.2).",
			SchemaJSON:  manageWorkItemSchema,
			Handle:      handleManageWorkItem,
		},
		{
			Name:        "jive_get_work_item",
			Description: "Get a single work item by identifier, or list items with filters and pagination.",
			SchemaJSON:  getWorkItemSchema,
			Handle:      handleGetWorkItem,
		},
		{
			Name:        "jive_search_content",
			Description: "Search work items by semantic, keyword, or hybrid mode.",
			SchemaJSON:  searchContentSchema,
			Handle:      handleSearchContent,
		},
		{
			Name:        "jive_get_hierarchy",
			Description: "Query and validate the work-item hierarchy and dependency graph.",
			SchemaJSON:  getHierarchySchema,
			Handle:      handleGetHierarchy,
		},
		{
			Name:        "jive_execute_work_item",
			Description: "Run, check, or cancel a work item's execution record.",
			SchemaJSON:  executeWorkItemSchema,
			Handle:      handleExecuteWorkItem,
		},
		{
			Name:        "jive_track_progress",
			Description: "Record execution progress and compute progress analytics.",
			SchemaJSON:  trackProgressSchema,
			Handle:      handleTrackProgress,
		},
		{
			Name:        "jive_sync_data",
			Description: "Synchronize, back up, restore, validate, or renumber a namespace's store.",
			SchemaJSON:  syncDataSchema,
			Handle:      handleSyncData,
		},
		{
			Name:        "jive_reorder_work_items",
			Description: "Reorder, move, swap, or recalculate work-item sequence numbers.",
			SchemaJSON:  reorderWorkItemsSchema,
			Handle:      handleReorderWorkItems,
		},
	}
}
