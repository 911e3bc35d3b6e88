package workitem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.Connect(t.TempDir(), store.NewLocalEmbedder(32))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s)
}

func TestCreateTopLevelInitiative(t *testing.T) {
	e := newTestEngine(t)
	it, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Launch platform"})
	require.NoError(t, err)
	require.Equal(t, "1", it.SequenceNumber)
	require.Equal(t, store.NotStarted, it.Status)
}

func TestCreateRejectsBadChildType(t *testing.T) {
	e := newTestEngine(t)
	init, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)

	_, err = e.Create(CreateInput{ItemType: store.Story, Title: "Bad", ParentID: init.ID})
	require.Error(t, err)
}

func TestCreateAssignsDottedChildSequence(t *testing.T) {
	e := newTestEngine(t)
	init, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)

	epic1, err := e.Create(CreateInput{ItemType: store.Epic, Title: "Epic One", ParentID: init.ID})
	require.NoError(t, err)
	require.Equal(t, "1.1", epic1.SequenceNumber)

	epic2, err := e.Create(CreateInput{ItemType: store.Epic, Title: "Epic Two", ParentID: init.ID})
	require.NoError(t, err)
	require.Equal(t, "1.2", epic2.SequenceNumber)
}

func TestUpdateStatusCompletedForcesFullProgress(t *testing.T) {
	e := newTestEngine(t)
	init, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)

	completed := store.Completed
	updated, err := e.Update(init.ID, UpdatePatch{Status: &completed})
	require.NoError(t, err)
	require.Equal(t, 100.0, updated.ProgressPercentage)
	require.NotNil(t, updated.CompletedAt)
}

func TestUpdateProgressFullMarksCompleted(t *testing.T) {
	e := newTestEngine(t)
	init, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)

	p := 100.0
	updated, err := e.Update(init.ID, UpdatePatch{ProgressPercentage: &p})
	require.NoError(t, err)
	require.Equal(t, store.Completed, updated.Status)
}

func TestDependencyCycleRejected(t *testing.T) {
	e := newTestEngine(t)
	a, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "A"})
	require.NoError(t, err)
	b, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "B", Dependencies: []string{a.ID}})
	require.NoError(t, err)

	_, err = e.AddDependency(a.ID, b.ID)
	require.Error(t, err)
}

func TestSelfDependencyRejected(t *testing.T) {
	e := newTestEngine(t)
	a, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "A"})
	require.NoError(t, err)
	_, err = e.AddDependency(a.ID, a.ID)
	require.Error(t, err)
}

func TestDeleteRequiresCascadeForParent(t *testing.T) {
	e := newTestEngine(t)
	init, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)
	_, err = e.Create(CreateInput{ItemType: store.Epic, Title: "Epic", ParentID: init.ID})
	require.NoError(t, err)

	require.Error(t, e.Delete(init.ID, false))
	require.NoError(t, e.Delete(init.ID, true))

	_, err = e.Get(init.ID)
	require.Error(t, err)
}

func TestHierarchyTraversal(t *testing.T) {
	e := newTestEngine(t)
	init, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)
	epic, err := e.Create(CreateInput{ItemType: store.Epic, Title: "Epic", ParentID: init.ID})
	require.NoError(t, err)
	feature, err := e.Create(CreateInput{ItemType: store.Feature, Title: "Feature", ParentID: epic.ID})
	require.NoError(t, err)

	descendants, err := e.Descendants(init.ID)
	require.NoError(t, err)
	require.Len(t, descendants, 2)

	parents, err := e.Parents(feature.ID)
	require.NoError(t, err)
	require.Len(t, parents, 2)
	require.Equal(t, epic.ID, parents[0].ID)
	require.Equal(t, init.ID, parents[1].ID)

	tree, err := e.FullHierarchy(init.ID, 0)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	require.Len(t, tree.Children[0].Children, 1)
}

func TestValidateDetectsOrphan(t *testing.T) {
	e := newTestEngine(t)
	bad := &store.Item{
		ID: "orphan-1", ItemType: store.Epic, Title: "Orphan Epic",
		Status: store.NotStarted, Priority: store.PriorityMedium,
		ParentID: "missing-parent", SequenceNumber: "9",
	}
	require.NoError(t, e.store.InsertWorkItem(bad))

	report, err := e.Validate("")
	require.NoError(t, err)
	require.False(t, report.Valid())
	require.Equal(t, "orphan", report.Issues[0].Kind)
}

func TestResolveByTitleAndID(t *testing.T) {
	e := newTestEngine(t)
	it, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Unique Title"})
	require.NoError(t, err)

	byID, err := e.Resolve(it.ID)
	require.NoError(t, err)
	require.Equal(t, it.ID, byID.ID)

	byTitle, err := e.Resolve("unique title")
	require.NoError(t, err)
	require.Equal(t, it.ID, byTitle.ID)

	byNothing, err := e.Resolve(it.SequenceNumber)
	require.NoError(t, err)
	require.Equal(t, it.ID, byNothing.ID)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	init, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)
	_, err = e.Create(CreateInput{ItemType: store.Epic, Title: "Epic", ParentID: init.ID})
	require.NoError(t, err)

	first, err := e.Recalculate()
	require.NoError(t, err)
	second, err := e.Recalculate()
	require.NoError(t, err)
	require.Equal(t, first.UpdatedCount, second.UpdatedCount)

	all, err := e.store.AllWorkItems()
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSwapRequiresSharedParent(t *testing.T) {
	e := newTestEngine(t)
	a, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "A"})
	require.NoError(t, err)
	b, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "B"})
	require.NoError(t, err)
	init, err := e.Create(CreateInput{ItemType: store.Initiative, Title: "Init"})
	require.NoError(t, err)
	epic, err := e.Create(CreateInput{ItemType: store.Epic, Title: "Epic", ParentID: init.ID})
	require.NoError(t, err)

	require.NoError(t, e.Swap(a.ID, b.ID))
	require.Error(t, e.Swap(a.ID, epic.ID))
}
