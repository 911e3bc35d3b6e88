package transport

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mehmetkoksal-w/jive-mcp/internal/config"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jsonrpc"
	"github.com/mehmetkoksal-w/jive-mcp/internal/mcp"
	"github.com/mehmetkoksal-w/jive-mcp/internal/namespace"
	"github.com/mehmetkoksal-w/jive-mcp/internal/session"
)

// HTTPServer mounts the MCP JSON-RPC endpoint plus the operational/REST
// surface (spec §4.1 HTTP transport: `/mcp`, `/mcp/{namespace}`, `/health`,
// `/tools`, `/namespaces`, `/ws`).
type HTTPServer struct {
	cfg        *config.Config
	dispatcher *mcp.Dispatcher
	sessions   *session.Manager
	namespaces *namespace.Manager
	limiter    *rateLimiter
}

func NewHTTPServer(cfg *config.Config, disp *mcp.Dispatcher, sessions *session.Manager, ns *namespace.Manager) *HTTPServer {
	return &HTTPServer{
		cfg:        cfg,
		dispatcher: disp,
		sessions:   sessions,
		namespaces: ns,
		limiter:    newRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst),
	}
}

func (h *HTTPServer) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/tools", h.handleTools)
	mux.HandleFunc("/tools/execute", h.withRateLimit(h.handleToolsExecute))
	mux.HandleFunc("/namespaces", h.handleNamespaces)
	mux.HandleFunc("/namespaces/", h.handleNamespaceByName)
	mux.HandleFunc("/mcp", h.withCORS(h.withRateLimit(h.handleMCP(""))))
	mux.HandleFunc("/mcp/", h.withCORS(h.withRateLimit(h.handleMCPNamespaced)))
	mux.HandleFunc("/ws", h.handleWebSocket)
	return mux
}

func (h *HTTPServer) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(h.cfg.Security.CORSOrigins) > 0 {
			origin = h.cfg.Security.CORSOrigins[0]
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.sessions.Count(),
	})
}

func (h *HTTPServer) handleTools(w http.ResponseWriter, r *http.Request) {
	// tools/list mirrors the MCP method so plain REST clients can inspect
	// the registry without speaking JSON-RPC.
	req := &jsonrpc.Request{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "tools/list"}
	resp := h.dispatcher.Dispatch(r.Context(), nil, req)
	writeJSON(w, http.StatusOK, resp.Result)
}

// handleToolsExecute is a REST convenience wrapper over tools/call (spec
// §6.1 `/tools/execute`): it accepts the same {name, arguments} body and
// replies with the same CallToolResult envelope, sessionless.
func (h *HTTPServer) handleToolsExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	params, err := json.Marshal(map[string]interface{}{"name": body.Name, "arguments": json.RawMessage(body.Arguments)})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req := &jsonrpc.Request{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "tools/call", Params: params}
	resp := h.dispatcher.Dispatch(r.Context(), nil, req)
	writeJSON(w, http.StatusOK, resp.Result)
}

func (h *HTTPServer) handleNamespaces(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		names, err := h.namespaces.List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"namespaces": names})
	case http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.namespaces.Create(body.Name); err != nil {
			writeToolError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"created": body.Name})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *HTTPServer) handleNamespaceByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/namespaces/")
	switch r.Method {
	case http.MethodGet:
		stats, err := h.namespaces.Stats(name)
		if err != nil {
			writeToolError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	case http.MethodDelete:
		if err := h.namespaces.Delete(name); err != nil {
			if je, ok := err.(*jiveerr.Error); ok && je.Code == jiveerr.NamespaceNotFound {
				writeError(w, http.StatusNotFound, je.Message)
				return
			}
			writeToolError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleMCP returns the JSON-RPC POST handler for the (possibly
// namespace-bound) /mcp endpoint. GET requests upgrade to an SSE stream
// (spec §4.1 HTTP: "GET for an SSE notification stream").
func (h *HTTPServer) handleMCP(boundNamespace string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.serveSSE(w, r, boundNamespace)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRPCRequest(w, r, boundNamespace)
	}
}

func (h *HTTPServer) handleMCPNamespaced(w http.ResponseWriter, r *http.Request) {
	ns := strings.TrimPrefix(r.URL.Path, "/mcp/")
	h.handleMCP(ns)(w, r)
}

func (h *HTTPServer) handleRPCRequest(w http.ResponseWriter, r *http.Request, boundNamespace string) {
	var req jsonrpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, jsonrpc.NewError(nil, jiveerr.RPCParseError, "invalid JSON: "+err.Error(), nil))
		return
	}

	var sess *session.Session
	if sessionID := r.Header.Get("Mcp-Session-Id"); sessionID != "" {
		if s, ok := h.sessions.Get(sessionID); ok {
			sess = s
		} else {
			writeJSON(w, http.StatusOK, jsonrpc.NewError(req.ID, jiveerr.RPCInvalidSession, "unknown session id", nil))
			return
		}
	}
	if req.Method == "initialize" && sess == nil {
		sess = h.sessions.Create(session.ClientInfo{}, nil, "", session.HTTP, boundNamespace)
		w.Header().Set("Mcp-Session-Id", sess.ID)
	}
	if sess == nil && boundNamespace != "" {
		sess = &session.Session{Transport: session.HTTP, BoundNamespace: boundNamespace}
	}

	resp := h.dispatcher.Dispatch(r.Context(), sess, &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// serveSSE opens a GET /mcp stream: an initial `notifications/initialized`
// event followed by a `notifications/heartbeat` every 30s (spec §4.1 HTTP
// transport).
func (h *HTTPServer) serveSSE(w http.ResponseWriter, r *http.Request, _ string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "notifications/initialized", nil)
	flusher.Flush()

	ctx := r.Context()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeEvent(w, "notifications/heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		}
	}
}

// writeEvent emits one JSON-RPC notification as an SSE `data:` line.
func writeEvent(w http.ResponseWriter, method string, params interface{}) {
	notif := map[string]interface{}{"jsonrpc": "2.0", "method": method}
	if params != nil {
		notif["params"] = params
	}
	b, err := json.Marshal(notif)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n\n"))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}

func writeToolError(w http.ResponseWriter, err error) {
	if je, ok := err.(*jiveerr.Error); ok {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error_code": je.Code, "message": je.Message})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
