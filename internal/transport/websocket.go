package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jsonrpc"
	"github.com/mehmetkoksal-w/jive-mcp/internal/logging"
	"github.com/mehmetkoksal-w/jive-mcp/internal/session"
)

// upgrader permits cross-origin upgrades from any origin; the HTTP
// transport's configured CORS origins are not checked here.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and runs a full-duplex
// read/dispatch/write loop, one goroutine per connection (spec §4.1
// WebSocket transport).
func (h *HTTPServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var sess *session.Session
	ctx := r.Context()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var req jsonrpc.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			_ = conn.WriteJSON(jsonrpc.NewError(nil, jiveerr.RPCParseError, "invalid JSON: "+err.Error(), nil))
			continue
		}

		if req.Method == "initialize" && sess == nil {
			sess = h.sessions.Create(session.ClientInfo{}, nil, "", session.WebSocket, "")
		}

		resp := h.dispatcher.Dispatch(ctx, sess, &req)
		if resp == nil {
			continue
		}
		if err := conn.WriteJSON(resp); err != nil {
			logging.Errorw("websocket: failed to write response", "error", err)
			break
		}
	}

	if sess != nil {
		h.sessions.Delete(sess.ID)
	}
}
