package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mehmetkoksal-w/jive-mcp/internal/config"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jsonrpc"
	"github.com/mehmetkoksal-w/jive-mcp/internal/namespace"
	"github.com/mehmetkoksal-w/jive-mcp/internal/session"
	"github.com/mehmetkoksal-w/jive-mcp/internal/tools"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *session.Manager) {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DataPath = t.TempDir()
	ns := namespace.NewManager(cfg)
	t.Cleanup(ns.CloseAll)

	reg, err := tools.New(cfg.Namespace.Default, ns)
	require.NoError(t, err)
	return New(cfg, reg), session.NewManager()
}

func TestInitializeNegotiatesProtocolVersion(t *testing.T) {
	d, sessions := newTestDispatcher(t)
	sess := sessions.Create(session.ClientInfo{Name: "t", Version: "1"}, nil, "", session.WebSocket, "")

	req := &jsonrpc.Request{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "initialize"}
	resp := d.Dispatch(context.Background(), sess, req)
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]interface{})
	require.Equal(t, "2024-11-05", result["protocolVersion"])
	require.Equal(t, sess.ID, result["sessionId"])
	caps := result["capabilities"].(map[string]interface{})
	require.Contains(t, caps, "tools")
}

func TestToolsListReturnsEightToolObjects(t *testing.T) {
	d, _ := newTestDispatcher(t)
	req := &jsonrpc.Request{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "tools/list"}
	resp := d.Dispatch(context.Background(), nil, req)
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]interface{})
	list := result["tools"].([]map[string]interface{})
	require.Len(t, list, 8)
	for _, tool := range list {
		require.NotEmpty(t, tool["name"])
		require.NotEmpty(t, tool["description"])
		require.IsType(t, map[string]interface{}{}, tool["inputSchema"])
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	d, _ := newTestDispatcher(t)
	req := &jsonrpc.Request{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "bogus/method"}
	resp := d.Dispatch(context.Background(), nil, req)
	require.NotNil(t, resp.Error)
	require.Equal(t, jiveerr.RPCMethodNotFound, resp.Error.Code)
}

func TestSessionBoundNamespaceRejectsMismatch(t *testing.T) {
	d, sessions := newTestDispatcher(t)
	sess := sessions.Create(session.ClientInfo{}, nil, "", session.WebSocket, "teamA")

	params, err := json.Marshal(map[string]interface{}{
		"name":      "jive_get_work_item",
		"arguments": map[string]interface{}{"action": "list", "namespace": "teamB"},
	})
	require.NoError(t, err)

	req := &jsonrpc.Request{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: "tools/call", Params: params}
	resp := d.Dispatch(context.Background(), sess, req)
	require.NotNil(t, resp.Error)
	require.Equal(t, jiveerr.RPCInvalidParams, resp.Error.Code)
}

func TestNotificationsInitializedHasNoResponse(t *testing.T) {
	d, _ := newTestDispatcher(t)
	req := &jsonrpc.Request{JSONRPC: "2.0", Method: "notifications/initialized"}
	resp := d.Dispatch(context.Background(), nil, req)
	require.Nil(t, resp)
}
