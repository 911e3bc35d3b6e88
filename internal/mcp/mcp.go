// Package mcp implements the Model Context Protocol dispatcher shared by
// every transport: method routing, the tool response envelope, and
// namespace/session resolution (spec §4.1, §4.3).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mehmetkoksal-w/jive-mcp/internal/config"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jsonrpc"
	"github.com/mehmetkoksal-w/jive-mcp/internal/logging"
	"github.com/mehmetkoksal-w/jive-mcp/internal/session"
	"github.com/mehmetkoksal-w/jive-mcp/internal/tools"
)

const protocolVersion = "2024-11-05"

// Dispatcher routes JSON-RPC requests to the protocol's fixed method set
// (initialize, notifications/initialized, tools/list, tools/call), binding
// each connection to a Session (spec P6: session-namespace binding).
type Dispatcher struct {
	cfg *config.Config
	reg *tools.Registry
}

func New(cfg *config.Config, reg *tools.Registry) *Dispatcher {
	return &Dispatcher{cfg: cfg, reg: reg}
}

// Dispatch handles one request against sess and returns the response to
// send (nil for notifications). sess may be nil: transports pass nil for
// requests that carry no session (the plain /tools and /tools/execute HTTP
// routes, sessionless /mcp calls, stdio before "initialize"); such calls
// fall back to the server's default namespace.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, req *jsonrpc.Request) *jsonrpc.Response {
	switch req.Method {
	case "initialize":
		return d.handleInitialize(req, sess)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return d.handleToolsList(req)
	case "tools/call":
		return d.handleToolsCall(ctx, sess, req)
	default:
		if req.IsNotification() {
			return nil
		}
		return jsonrpc.NewError(req.ID, jiveerr.RPCMethodNotFound, "unknown method: "+req.Method, nil)
	}
}

// handleInitialize negotiates the protocol version and, for transports with
// no side-channel for it (WebSocket; stdio), echoes the session id in the
// result body itself (spec §4.1 scenario 1: "sessionId in result on WS").
// HTTP carries the id in the Mcp-Session-Id response header instead, set by
// the transport after this call returns.
func (d *Dispatcher) handleInitialize(req *jsonrpc.Request, sess *session.Session) *jsonrpc.Response {
	result := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"serverInfo":      map[string]interface{}{"name": "jive-mcp", "version": "0.1.0"},
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{},
			"prompts":   map[string]interface{}{},
			"resources": map[string]interface{}{},
			"logging":   map[string]interface{}{},
		},
	}
	if sess != nil {
		result["sessionId"] = sess.ID
	}
	return jsonrpc.NewResult(req.ID, result)
}

func (d *Dispatcher) handleToolsList(req *jsonrpc.Request) *jsonrpc.Response {
	defs := d.reg.List()
	list := make([]map[string]interface{}, len(defs))
	for i, t := range defs {
		var schema interface{}
		if err := json.Unmarshal([]byte(t.SchemaJSON), &schema); err != nil {
			schema = map[string]interface{}{"type": "object"}
		}
		list[i] = map[string]interface{}{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": schema,
		}
	}
	return jsonrpc.NewResult(req.ID, map[string]interface{}{"tools": list})
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall resolves the request's effective namespace per spec
// §4.3.3's precedence (explicit `namespace` argument > session-bound
// namespace > server default), enforcing P6: a session bound to one
// namespace cannot address another.
func (d *Dispatcher) handleToolsCall(ctx context.Context, sess *session.Session, req *jsonrpc.Request) *jsonrpc.Response {
	var call toolCallParams
	if err := json.Unmarshal(req.Params, &call); err != nil {
		return jsonrpc.NewError(req.ID, jiveerr.RPCInvalidParams, "invalid tools/call params: "+err.Error(), nil)
	}

	defaultNS := d.cfg.Namespace.Default
	if sess != nil && sess.BoundNamespace != "" {
		defaultNS = sess.BoundNamespace
	}

	var argNS string
	if len(call.Arguments) > 0 {
		var probe map[string]interface{}
		_ = json.Unmarshal(call.Arguments, &probe)
		if v, ok := probe["namespace"].(string); ok {
			argNS = v
		}
	}
	if sess != nil && sess.BoundNamespace != "" && argNS != "" && argNS != sess.BoundNamespace {
		return jsonrpc.NewError(req.ID, jiveerr.RPCInvalidParams,
			fmt.Sprintf("session is bound to namespace %q and cannot address %q", sess.BoundNamespace, argNS), nil)
	}

	result, err := d.reg.Call(ctx, call.Name, call.Arguments, defaultNS)
	if err != nil {
		if je, ok := err.(*jiveerr.Error); ok && je.Code == jiveerr.Internal {
			return jsonrpc.NewError(req.ID, jiveerr.RPCInternalError, je.Message, nil)
		}
		return jsonrpc.NewResult(req.ID, toolErrorEnvelope(err))
	}
	return jsonrpc.NewResult(req.ID, toolSuccessEnvelope(result))
}

// toolSuccessEnvelope and toolErrorEnvelope match the MCP tool-result
// shape: content blocks plus a structured isError flag (spec §4.3.2).
func toolSuccessEnvelope(result interface{}) map[string]interface{} {
	b, _ := json.Marshal(result)
	return map[string]interface{}{
		"content": []map[string]interface{}{{"type": "text", "text": string(b)}},
		"isError": false,
	}
}

func toolErrorEnvelope(err error) map[string]interface{} {
	code := string(jiveerr.Internal)
	msg := err.Error()
	if je, ok := err.(*jiveerr.Error); ok {
		code = string(je.Code)
		msg = je.Message
	} else {
		logging.Errorw("unexpected tool error", "error", err)
	}
	return map[string]interface{}{
		"content":   []map[string]interface{}{{"type": "text", "text": msg}},
		"isError":   true,
		"errorCode": code,
	}
}
