package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/logging"
	"github.com/mehmetkoksal-w/jive-mcp/internal/namespace"
	"github.com/mehmetkoksal-w/jive-mcp/internal/progress"
	"github.com/mehmetkoksal-w/jive-mcp/internal/search"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
	"github.com/mehmetkoksal-w/jive-mcp/internal/workitem"
)

// Handler implements one unified tool's action dispatch (spec §4.4).
type Handler func(ctx context.Context, deps *Deps, ns string, params Params) (interface{}, error)

// Tool pairs a unified tool name with its JSON schema and handler.
// SchemaJSON keeps the raw schema document around for `tools/list`, which
// must hand clients the real schema rather than the compiled form.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	SchemaJSON  string
	Handle      Handler
}

// Deps bundles the per-namespace engines a tool handler needs. Fresh
// engines are cheap wrappers over the namespace's *store.Store, so they're
// constructed per call rather than cached.
type Deps struct {
	Namespaces *namespace.Manager
}

func (d *Deps) engines(ns string) (*workitem.Engine, *search.Engine, *progress.Tracker, error) {
	s, err := d.Namespaces.Store(ns)
	if err != nil {
		return nil, nil, nil, err
	}
	return workitem.New(s), search.New(s), progress.New(s), nil
}

func (d *Deps) storeOf(ns string) (*store.Store, error) { return d.Namespaces.Store(ns) }

// Registry holds the compiled unified tools and the legacy-name
// translation table (spec §4.3.4).
type Registry struct {
	deps   *Deps
	tools  map[string]*Tool
	order  []string
	legacy map[string]legacyMapping
	warned map[string]bool
	warnMu sync.Mutex
}

// New builds the registry: compiles every unified tool's JSON schema and
// wires the legacy compatibility table.
// defaultNamespace is accepted for parity with the server's configured
// namespace.default, even though every Call already receives its caller's
// resolved default namespace explicitly (spec §4.3.3).
func New(defaultNamespace string, ns *namespace.Manager) (*Registry, error) {
	r := &Registry{
		deps:   &Deps{Namespaces: ns},
		tools:  make(map[string]*Tool),
		legacy: legacyTable(),
		warned: make(map[string]bool),
	}
	for _, def := range toolDefinitions() {
		schema, err := compileSchema(def.Name, def.SchemaJSON)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", def.Name, err)
		}
		r.tools[def.Name] = &Tool{Name: def.Name, Description: def.Description, Schema: schema, SchemaJSON: def.SchemaJSON, Handle: def.Handle}
		r.order = append(r.order, def.Name)
	}
	return r, nil
}

func compileSchema(name string, raw string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	url := "mem://jive/" + name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// List returns tool descriptors for a `tools/list` response (spec §4.3.1).
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Call resolves name (unified or legacy), validates params against the
// schema, and dispatches to the handler. Tools never panic: a recover
// turns any handler panic into an INTERNAL_ERROR, which the dispatcher
// answers with -32603 (SPEC_FULL §7). An action outside the tool's action
// enum fails with INVALID_ACTION before schema validation runs.
func (r *Registry) Call(ctx context.Context, name string, rawParams json.RawMessage, defaultNS string) (result interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = jiveerr.New(jiveerr.Internal, fmt.Sprintf("tool panic recovered: %v", rec))
		}
	}()

	unified := name
	if mapping, ok := r.legacy[name]; ok {
		r.warnOnce(name)
		unified = mapping.UnifiedName
	}

	tool, ok := r.tools[unified]
	if !ok {
		return nil, jiveerr.New(jiveerr.InvalidAction, "unknown tool: "+name)
	}

	params, err := decodeParams(rawParams)
	if err != nil {
		return nil, err
	}
	if mapping, ok := r.legacy[name]; ok {
		params = mapping.Transform(params)
	}

	if a := params.str("action"); a != "" {
		var doc struct {
			Properties map[string]struct{ Enum []string }
		}
		_ = json.Unmarshal([]byte(tool.SchemaJSON), &doc)
		if enum := doc.Properties["action"].Enum; len(enum) > 0 && !slices.Contains(enum, a) {
			return nil, jiveerr.New(jiveerr.InvalidAction, unified+" does not support action "+a)
		}
	}

	asAny := map[string]interface{}(params)
	if err := tool.Schema.Validate(asAny); err != nil {
		return nil, jiveerr.New(jiveerr.ValidationError, "params failed schema validation: "+err.Error())
	}

	ns := params.namespace(defaultNS)
	return tool.Handle(ctx, r.deps, ns, params)
}

func (r *Registry) warnOnce(legacyName string) {
	r.warnMu.Lock()
	defer r.warnMu.Unlock()
	if r.warned[legacyName] {
		return
	}
	r.warned[legacyName] = true
	logging.Warnw("legacy tool name used; translating to unified tool",
		"legacy_name", legacyName, "unified_name", r.legacy[legacyName].UnifiedName)
}
