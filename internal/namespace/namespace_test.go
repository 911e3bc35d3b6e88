package namespace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mehmetkoksal-w/jive-mcp/internal/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DataPath = t.TempDir()
	m := NewManager(cfg)
	t.Cleanup(m.CloseAll)
	return m
}

func TestValidateRejectsReservedName(t *testing.T) {
	require.Error(t, Validate("admin"))
	require.Error(t, Validate("cache"))
	require.NoError(t, Validate("team-a"))
	require.NoError(t, Validate("a"))
}

func TestValidateRejectsBadLength(t *testing.T) {
	require.Error(t, Validate(""))
	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	require.Error(t, Validate(string(long)))
}

func TestValidateRejectsLeadingOrTrailingSeparator(t *testing.T) {
	require.Error(t, Validate("-team"))
	require.Error(t, Validate("team-"))
	require.Error(t, Validate("_team"))
}

func TestDefaultNamespaceAlwaysExistsAndCannotBeDeleted(t *testing.T) {
	m := newTestManager(t)
	require.True(t, m.Exists("default"))
	require.Error(t, m.Delete("default"))
}

func TestListAlwaysIncludesDefault(t *testing.T) {
	m := newTestManager(t)
	names, err := m.List()
	require.NoError(t, err)
	require.Contains(t, names, "default")
}

func TestCreateThenListAndDelete(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Create("team-a"))
	require.True(t, m.Exists("team-a"))

	names, err := m.List()
	require.NoError(t, err)
	require.Contains(t, names, "team-a")

	require.NoError(t, m.Delete("team-a"))
	require.False(t, m.Exists("team-a"))
}

func TestDeleteMissingNamespaceReturnsNotFound(t *testing.T) {
	m := newTestManager(t)
	require.Error(t, m.Delete("never-existed"))
}

func TestEachNamespaceGetsIsolatedStore(t *testing.T) {
	m := newTestManager(t)
	sA, err := m.Store("team-a")
	require.NoError(t, err)
	sB, err := m.Store("team-b")
	require.NoError(t, err)
	require.NotEqual(t, sA.Path(), sB.Path())
}
