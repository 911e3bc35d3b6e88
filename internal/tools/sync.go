package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// backupDoc is the JSON-only backup/restore format (DESIGN.md open-question
// decisions: sync/backup persists as JSON, not sqlite file copies, so
// backups remain portable across store-engine versions).
type backupDoc struct {
	Namespace  string                   `json:"namespace"`
	CreatedAt  time.Time                `json:"created_at"`
	Items      []*store.Item            `json:"items"`
	Executions []*store.ExecutionRecord `json:"executions"`
}

func handleSyncData(ctx context.Context, deps *Deps, ns string, p Params) (interface{}, error) {
	action, err := p.action()
	if err != nil {
		return nil, err
	}
	we, _, _, err := deps.engines(ns)
	if err != nil {
		return nil, err
	}
	s, err := deps.storeOf(ns)
	if err != nil {
		return nil, err
	}

	switch action {
	case "sync":
		// The sqlite store is the single source of truth (spec §5); "sync"
		// reconciles in-memory caches by forcing a fresh read, then reports
		// current counts. There is no external file format to reconcile
		// against once the store adapter owns persistence directly.
		items, err := s.AllWorkItems()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"synced": true, "item_count": len(items)}, nil

	case "backup":
		if err := checkBackupFormat(p); err != nil {
			return nil, err
		}
		return backupNamespace(s, ns)

	case "restore":
		if err := checkBackupFormat(p); err != nil {
			return nil, err
		}
		return restoreNamespace(s, p.str("backup_path"))

	case "validate":
		report, err := we.Validate("")
		if err != nil {
			return nil, err
		}
		return validationView(report), nil

	case "regenerate_sequence_numbers":
		result, err := we.Recalculate()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"updated_count": result.UpdatedCount,
			"errors":        result.Errors,
		}, nil

	default:
		return nil, jiveerr.New(jiveerr.InvalidAction, "jive_sync_data does not support action "+action)
	}
}

// checkBackupFormat enforces the open question's decision (DESIGN.md): only
// "json" is implemented; "yaml", "markdown", and "csv" are named in the
// tool's schema enum but reported honestly as unimplemented rather than
// silently accepted.
func checkBackupFormat(p Params) error {
	format := p.str("format")
	if format == "" || format == "json" {
		return nil
	}
	return jiveerr.New(jiveerr.ValidationError, "backup format "+format+" is not yet implemented; use json")
}

func backupNamespace(s *store.Store, ns string) (interface{}, error) {
	items, err := s.AllWorkItems()
	if err != nil {
		return nil, err
	}
	executions, err := s.AllExecutions()
	if err != nil {
		return nil, err
	}
	doc := backupDoc{Namespace: ns, CreatedAt: time.Now().UTC(), Items: items, Executions: executions}

	dir := filepath.Join(filepath.Dir(s.Path()), "backups")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("backup-%s.json", doc.CreatedAt.Format("20060102T150405Z0700"))
	path := filepath.Join(dir, name)

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return nil, err
	}
	return map[string]interface{}{"backup_path": path, "item_count": len(items)}, nil
}

func restoreNamespace(s *store.Store, path string) (interface{}, error) {
	if path == "" {
		return nil, jiveerr.New(jiveerr.ValidationError, "backup_path is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, jiveerr.New(jiveerr.BackupNotFound, err.Error())
	}
	var doc backupDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, jiveerr.New(jiveerr.ValidationError, "malformed backup: "+err.Error())
	}

	existing, err := s.AllWorkItems()
	if err != nil {
		return nil, err
	}
	for _, it := range existing {
		if err := s.DeleteWorkItem(it.ID); err != nil {
			return nil, err
		}
	}
	sort.Slice(doc.Items, func(i, j int) bool { return doc.Items[i].OrderIndex < doc.Items[j].OrderIndex })
	for _, it := range doc.Items {
		if err := s.InsertWorkItem(it); err != nil {
			return nil, err
		}
	}
	for _, rec := range doc.Executions {
		if err := s.InsertExecution(rec); err != nil {
			return nil, err
		}
	}
	return map[string]interface{}{
		"restored_items":      len(doc.Items),
		"restored_executions": len(doc.Executions),
	}, nil
}
