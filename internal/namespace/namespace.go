// Package namespace implements namespace resolution, validation, and
// isolated on-disk storage roots (spec §3.5, §4.8).
package namespace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/mehmetkoksal-w/jive-mcp/internal/config"
	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9]$|^[A-Za-z0-9][A-Za-z0-9_-]*[A-Za-z0-9]$`)

var reserved = map[string]bool{
	"admin": true, "system": true, "config": true, "api": true, "health": true,
	"status": true, "backup": true, "restore": true, "migration": true,
	"temp": true, "tmp": true, "cache": true,
}

// Validate enforces spec §3.5's label rules.
func Validate(name string) error {
	if len(name) < 1 || len(name) > 50 {
		return jiveerr.New(jiveerr.ValidationError, "namespace length must be 1-50")
	}
	if !namePattern.MatchString(name) {
		return jiveerr.New(jiveerr.ValidationError, "namespace must match ^[A-Za-z0-9][A-Za-z0-9_-]*[A-Za-z0-9]$")
	}
	if reserved[name] {
		return jiveerr.New(jiveerr.NamespaceReserved, fmt.Sprintf("namespace %q is reserved", name))
	}
	return nil
}

// metadataFile mirrors spec §6.4's `.namespace_metadata` sidecar.
type metadataFile struct {
	Namespace string `json:"namespace"`
	CreatedAt string `json:"created_at"`
	Version   string `json:"version"`
}

// Manager owns every open namespace Store, keyed by label. It does not pick
// a request's namespace; the dispatcher and the tool registry do that.
//
// Grounded on the teacher's config.EnsureLayout (directory bring-up via
// os.MkdirAll, create-if-missing semantics), generalized from a single
// project layout to one isolated root per namespace.
type Manager struct {
	cfg *config.Config
	mu  sync.Mutex
	// stores is process-global: the namespace directory tree is the single
	// source of truth for existence (spec §5); open handles are cached here.
	stores map[string]*store.Store
}

// NewManager constructs a namespace Manager bound to cfg.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg, stores: make(map[string]*store.Store)}
}

// Exists reports whether a namespace's directory already exists on disk.
func (m *Manager) Exists(name string) bool {
	if name == m.cfg.Namespace.Default {
		return true
	}
	_, err := os.Stat(m.cfg.NamespaceRoot(name))
	return err == nil
}

// EnsureExists creates the namespace's directory and metadata sidecar if
// missing (spec §4.8 ensure_exists), honouring namespace.auto_create.
func (m *Manager) EnsureExists(name string) error {
	if err := Validate(name); err != nil {
		return err
	}
	if m.Exists(name) {
		return nil
	}
	if !m.cfg.Namespace.AutoCreate && name != m.cfg.Namespace.Default {
		return jiveerr.New(jiveerr.NamespaceNotFound, fmt.Sprintf("namespace %q does not exist and auto-create is disabled", name))
	}
	return m.create(name)
}

// Create explicitly creates a namespace (spec §4.8 create), regardless of
// auto_create.
func (m *Manager) Create(name string) error {
	if err := Validate(name); err != nil {
		return err
	}
	if m.Exists(name) {
		return nil
	}
	return m.create(name)
}

func (m *Manager) create(name string) error {
	root := m.cfg.NamespaceRoot(name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create namespace root: %w", err)
	}
	meta := metadataFile{Namespace: name, CreatedAt: time.Now().UTC().Format(time.RFC3339), Version: "1"}
	b, _ := json.MarshalIndent(meta, "", "  ")
	return os.WriteFile(filepath.Join(root, ".namespace_metadata"), b, 0o644)
}

// Delete removes a namespace's directory tree. Forbidden for "default"
// (spec §4.8).
func (m *Manager) Delete(name string) error {
	if name == m.cfg.Namespace.Default {
		return jiveerr.New(jiveerr.ValidationError, "the default namespace cannot be deleted")
	}
	if !m.Exists(name) {
		return jiveerr.New(jiveerr.NamespaceNotFound, fmt.Sprintf("namespace %q does not exist", name))
	}

	m.mu.Lock()
	if s, ok := m.stores[name]; ok {
		s.Close()
		delete(m.stores, name)
	}
	m.mu.Unlock()

	return os.RemoveAll(m.cfg.NamespaceRoot(name))
}

// List always includes "default" (spec §4.8).
func (m *Manager) List() ([]string, error) {
	out := []string{m.cfg.Namespace.Default}
	nsDir := filepath.Join(m.cfg.Database.DataPath, "namespaces")
	entries, err := os.ReadDir(nsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() && e.Name() != m.cfg.Namespace.Default {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// Stats reports per-table row counts for a namespace (spec §4.8 stats).
type Stats struct {
	WorkItems     int `json:"work_items"`
	ExecutionLogs int `json:"execution_logs"`
}

func (m *Manager) Stats(name string) (*Stats, error) {
	s, err := m.Store(name)
	if err != nil {
		return nil, err
	}
	wiCount, err := s.CountWorkItems(store.WorkItemFilter{IncludeCompleted: true, IncludeCancelled: true})
	if err != nil {
		return nil, err
	}
	execs, err := s.AllExecutions()
	if err != nil {
		return nil, err
	}
	return &Stats{WorkItems: wiCount, ExecutionLogs: len(execs)}, nil
}

// Store returns (opening lazily if needed) the namespace's store handle.
func (m *Manager) Store(name string) (*store.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[name]; ok {
		return s, nil
	}
	if err := m.EnsureExists(name); err != nil {
		return nil, err
	}
	embedder := store.NewLocalEmbedder(384)
	s, err := store.Connect(m.cfg.NamespaceRoot(name), embedder)
	if err != nil {
		return nil, err
	}
	m.stores[name] = s
	return s, nil
}

// CloseAll closes every open store handle, used at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stores {
		s.Close()
	}
	m.stores = make(map[string]*store.Store)
}
