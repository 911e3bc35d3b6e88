// Package session implements ephemeral MCP session lifecycle (spec §3.4,
// §4.2). Sessions are process-global, in-memory only, and never persisted.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Transport identifies which multiplexed channel a session arrived on.
type Transport string

const (
	Stdio     Transport = "stdio"
	HTTP      Transport = "http"
	WebSocket Transport = "websocket"
)

// ClientInfo mirrors the MCP `initialize` request's clientInfo block.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Session is an ephemeral record created on `initialize` (spec §3.4).
type Session struct {
	ID              string
	ClientInfo      ClientInfo
	Capabilities    map[string]interface{}
	ProtocolVersion string
	Transport       Transport
	BoundNamespace  string // empty = not bound to a specific namespace
	CreatedAt       time.Time
}

// Manager is the process-global session table, protected by a mutex on
// insert/delete; lookup is read-mostly (spec §5), grounded on the teacher's
// internal/memory `active_agents` heartbeat-keyed registry pattern,
// generalized here to pure in-memory storage per §3.4.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager constructs an empty session table.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create allocates a fresh opaque session id and stores the session.
func (m *Manager) Create(clientInfo ClientInfo, capabilities map[string]interface{}, protocolVersion string, transport Transport, namespace string) *Session {
	s := &Session{
		ID:              newSessionID(),
		ClientInfo:      clientInfo,
		Capabilities:    capabilities,
		ProtocolVersion: protocolVersion,
		Transport:       transport,
		BoundNamespace:  namespace,
		CreatedAt:       time.Now().UTC(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by id. ok is false for an invalid/expired session
// (spec §4.2: `get(session_id) → session or "invalid"`).
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete removes a session, e.g. on transport close.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions, used by /health.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func newSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
