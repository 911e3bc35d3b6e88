package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
	"github.com/mehmetkoksal-w/jive-mcp/internal/workitem"
)

func newTestTracker(t *testing.T) (*Tracker, *workitem.Engine, *store.Store) {
	t.Helper()
	s, err := store.Connect(t.TempDir(), store.NewLocalEmbedder(32))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s), workitem.New(s), s
}

func TestExecutionLifecycleValidTransitions(t *testing.T) {
	tr, we, _ := newTestTracker(t)
	it, err := we.Create(workitem.CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)

	rec, err := tr.Start(it.ID, "build", "agent-1")
	require.NoError(t, err)
	require.Equal(t, Running, rec.Status)

	done, err := tr.Finish(rec.ID, Succeeded, "", 1200)
	require.NoError(t, err)
	require.Equal(t, Succeeded, done.Status)
}

func TestExecutionRejectsInvalidTransition(t *testing.T) {
	tr, we, _ := newTestTracker(t)
	it, err := we.Create(workitem.CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)

	rec, err := tr.Start(it.ID, "build", "agent-1")
	require.NoError(t, err)
	_, err = tr.Finish(rec.ID, Succeeded, "", 100)
	require.NoError(t, err)

	_, err = tr.Finish(rec.ID, Running, "", 0)
	require.Error(t, err)
}

func TestRollupIsMeanOfChildren(t *testing.T) {
	parent := &store.Item{ProgressPercentage: 0}
	children := []*store.Item{
		{ProgressPercentage: 100},
		{ProgressPercentage: 50},
		{ProgressPercentage: 0},
	}
	require.InDelta(t, 50.0, Rollup(parent, children), 0.001)
}

func TestRollupLeafUsesOwnProgress(t *testing.T) {
	leaf := &store.Item{ProgressPercentage: 42}
	require.Equal(t, 42.0, Rollup(leaf, nil))
}

func TestAnalyzeComputesCompletionRate(t *testing.T) {
	now := time.Now().UTC()
	items := []*store.Item{
		{ID: "a", Status: store.Completed, ProgressPercentage: 100, CompletedAt: &now},
		{ID: "b", Status: store.InProgress, ProgressPercentage: 50},
		{ID: "c", Status: store.Blocked, ProgressPercentage: 10, UpdatedAt: now.Add(-72 * time.Hour)},
	}
	report := Analyze(items, nil, func(id string) int { return 0 })
	require.Equal(t, 3, report.TotalItems)
	require.Equal(t, 1, report.CompletedItems)
	require.InDelta(t, 1.0/3.0, report.CompletionRate, 0.001)
	require.Len(t, report.Bottlenecks, 1)
	require.Equal(t, "c", report.Bottlenecks[0].ItemID)
}
