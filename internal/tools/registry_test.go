package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mehmetkoksal-w/jive-mcp/internal/config"
	"github.com/mehmetkoksal-w/jive-mcp/internal/namespace"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DataPath = t.TempDir()
	ns := namespace.NewManager(cfg)
	t.Cleanup(ns.CloseAll)

	r, err := New(cfg.Namespace.Default, ns)
	require.NoError(t, err)
	return r
}

func call(t *testing.T, r *Registry, name string, params map[string]interface{}) interface{} {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	result, err := r.Call(context.Background(), name, raw, "default")
	require.NoError(t, err)
	return result
}

func TestListHasEightUnifiedTools(t *testing.T) {
	r := newTestRegistry(t)
	require.Len(t, r.List(), 8)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	created := call(t, r, "jive_manage_work_item", map[string]interface{}{
		"action": "create", "type": "initiative", "title": "A",
	}).(map[string]interface{})
	id := created["id"].(string)
	require.Equal(t, "1", created["sequence_number"])

	epic := call(t, r, "jive_manage_work_item", map[string]interface{}{
		"action": "create", "type": "epic", "title": "B", "parent_id": id,
	}).(map[string]interface{})
	require.Equal(t, "1.1", epic["sequence_number"])

	fetched := call(t, r, "jive_get_work_item", map[string]interface{}{
		"action": "get", "work_item_id": id,
	}).(map[string]interface{})
	require.Equal(t, "A", fetched["title"])
}

func TestLegacyNameTranslatesToUnifiedCreate(t *testing.T) {
	r := newTestRegistry(t)
	result := call(t, r, "jive_create_task", map[string]interface{}{"title": "T"}).(map[string]interface{})
	require.Equal(t, "task", result["item_type"])
}

func TestHierarchyFullTree(t *testing.T) {
	r := newTestRegistry(t)
	a := call(t, r, "jive_manage_work_item", map[string]interface{}{
		"action": "create", "type": "initiative", "title": "A",
	}).(map[string]interface{})
	_ = call(t, r, "jive_manage_work_item", map[string]interface{}{
		"action": "create", "type": "epic", "title": "B", "parent_id": a["id"],
	})

	tree := call(t, r, "jive_get_hierarchy", map[string]interface{}{
		"action": "get", "work_item_id": a["id"], "relationship_type": "full_hierarchy",
	}).(map[string]interface{})
	children := tree["children"].([]map[string]interface{})
	require.Len(t, children, 1)
	require.Empty(t, children[0]["children"].([]map[string]interface{}))
}

func TestSearchContentScoresCriticalAboveMedium(t *testing.T) {
	r := newTestRegistry(t)
	call(t, r, "jive_manage_work_item", map[string]interface{}{
		"action": "create", "type": "initiative", "title": "Payments rollout", "priority": "critical",
	})
	call(t, r, "jive_manage_work_item", map[string]interface{}{
		"action": "create", "type": "initiative", "title": "Payments rollout twin", "priority": "medium",
	})

	result := call(t, r, "jive_search_content", map[string]interface{}{
		"query": "payments rollout", "search_type": "hybrid",
	}).(map[string]interface{})
	results := result["results"].([]map[string]interface{})
	require.NotEmpty(t, results)
	require.Equal(t, "critical", results[0]["priority"])
}

func TestUnknownActionIsInvalidAction(t *testing.T) {
	r := newTestRegistry(t)
	raw, _ := json.Marshal(map[string]interface{}{"action": "teleport"})
	_, err := r.Call(context.Background(), "jive_manage_work_item", raw, "default")
	require.Error(t, err)
}
