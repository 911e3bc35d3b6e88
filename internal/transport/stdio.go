// Package transport implements the three concurrent MCP transports —
// stdio, HTTP, and WebSocket — sharing one protocol Dispatcher (spec §4.1).
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync/atomic"
	"time"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jsonrpc"
	"github.com/mehmetkoksal-w/jive-mcp/internal/logging"
	"github.com/mehmetkoksal-w/jive-mcp/internal/mcp"
	"github.com/mehmetkoksal-w/jive-mcp/internal/session"
)

// handshakeDeadline bounds the wait for the first `initialize` (spec §4.1:
// "A 30-second handshake deadline applies to the first initialize; if it
// expires, the server keeps running but marks the stdio session unusable
// and logs a warning"). The blocking scanner read itself cannot be
// cancelled, so the server does not exit; once the deadline passes without
// an initialize, every later request is answered with -32002.
const handshakeDeadline = 30 * time.Second

// ServeStdio reads newline-delimited JSON-RPC requests from r and writes
// responses to w, one goroutine-free loop per process (spec §4.1: "stdio:
// one connection, the process's own stdin/stdout").
func ServeStdio(ctx context.Context, r io.Reader, w io.Writer, disp *mcp.Dispatcher, sessions *session.Manager) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	enc := json.NewEncoder(w)
	var sess *session.Session

	var expired atomic.Bool
	timer := time.AfterFunc(handshakeDeadline, func() {
		expired.Store(true)
		logging.Warnw("stdio session did not receive initialize within handshake deadline; marking unusable",
			"deadline", handshakeDeadline)
	})
	defer timer.Stop()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonrpc.Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = enc.Encode(jsonrpc.NewError(nil, jiveerr.RPCParseError, "invalid JSON: "+err.Error(), nil))
			continue
		}

		if sess == nil && expired.Load() {
			if !req.IsNotification() {
				_ = enc.Encode(jsonrpc.NewError(req.ID, jiveerr.RPCInvalidSession, "stdio session unusable: no initialize within handshake deadline", nil))
			}
			continue
		}

		if req.Method == "initialize" && sess == nil {
			sess = sessions.Create(session.ClientInfo{}, nil, "", session.Stdio, "")
			timer.Stop()
		}

		resp := disp.Dispatch(ctx, sess, &req)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			logging.Errorw("stdio: failed to write response", "error", err)
			return err
		}
	}
	if sess != nil {
		sessions.Delete(sess.ID)
	}
	return scanner.Err()
}
