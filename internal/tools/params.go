// Package tools implements the consolidated tool registry: the unified
// tools, their JSON schemas, action dispatch, and the legacy-name
// compatibility layer (spec §4.3, §4.4).
package tools

import (
	"encoding/json"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// Params is a tool call's decoded argument object.
type Params map[string]interface{}

func decodeParams(raw json.RawMessage) (Params, error) {
	if len(raw) == 0 {
		return Params{}, nil
	}
	var p Params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, jiveerr.New(jiveerr.ValidationError, "params must be a JSON object: "+err.Error())
	}
	return p, nil
}

func (p Params) str(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func (p Params) strPtr(key string) *string {
	if v, ok := p[key].(string); ok {
		return &v
	}
	return nil
}

func (p Params) float(key string) (float64, bool) {
	v, ok := p[key].(float64)
	return v, ok
}

func (p Params) floatPtr(key string) *float64 {
	if v, ok := p[key].(float64); ok {
		return &v
	}
	return nil
}

func (p Params) boolean(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

func (p Params) intDefault(key string, def int) int {
	if v, ok := p[key].(float64); ok {
		return int(v)
	}
	return def
}

func (p Params) strSlice(key string) []string {
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (p Params) strSlicePtr(key string) *[]string {
	if _, ok := p[key]; !ok {
		return nil
	}
	v := p.strSlice(key)
	return &v
}

func (p Params) action() (string, error) {
	a := p.str("action")
	if a == "" {
		return "", jiveerr.New(jiveerr.InvalidAction, "action is required")
	}
	return a, nil
}

func (p Params) namespace(defaultNS string) string {
	if ns := p.str("namespace"); ns != "" {
		return ns
	}
	return defaultNS
}

func parseItemType(s string) (store.ItemType, error) {
	switch store.ItemType(s) {
	case store.Initiative, store.Epic, store.Feature, store.Story, store.Task:
		return store.ItemType(s), nil
	default:
		return "", jiveerr.New(jiveerr.ValidationError, "invalid item_type: "+s)
	}
}

func parseStatus(s string) (store.Status, error) {
	switch store.Status(s) {
	case store.NotStarted, store.InProgress, store.Blocked, store.Completed, store.Cancelled:
		return store.Status(s), nil
	default:
		return "", jiveerr.New(jiveerr.ValidationError, "invalid status: "+s)
	}
}

func parsePriority(s string) (store.Priority, error) {
	switch store.Priority(s) {
	case store.PriorityLow, store.PriorityMedium, store.PriorityHigh, store.PriorityCritical:
		return store.Priority(s), nil
	default:
		return "", jiveerr.New(jiveerr.ValidationError, "invalid priority: "+s)
	}
}
