package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
	"github.com/mehmetkoksal-w/jive-mcp/internal/workitem"
)

func newTestSetup(t *testing.T) (*Engine, *workitem.Engine) {
	t.Helper()
	s, err := store.Connect(t.TempDir(), store.NewLocalEmbedder(32))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s), workitem.New(s)
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	toks := Tokenize("Build the authentication API for a login flow")
	require.NotContains(t, toks, "the")
	require.NotContains(t, toks, "a")
	require.Contains(t, toks, "authentication")
	require.Contains(t, toks, "login")
}

func TestKeywordSearchFindsMatchingTitle(t *testing.T) {
	eng, we := newTestSetup(t)
	_, err := we.Create(workitem.CreateInput{
		ItemType: store.Initiative, Title: "Migrate billing pipeline to Kafka",
	})
	require.NoError(t, err)
	_, err = we.Create(workitem.CreateInput{
		ItemType: store.Initiative, Title: "Refresh onboarding illustrations",
	})
	require.NoError(t, err)

	results, warnings, err := eng.Search(Query{Text: "billing kafka", Mode: ModeKeyword})
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.NotEmpty(t, results)
	require.Contains(t, results[0].Item.Title, "billing")
}

func TestHybridSearchBoostsCoOccurrence(t *testing.T) {
	eng, we := newTestSetup(t)
	it, err := we.Create(workitem.CreateInput{
		ItemType: store.Initiative, Title: "Improve checkout latency",
		Description: "Reduce p99 latency on the checkout service",
	})
	require.NoError(t, err)

	results, _, err := eng.Search(Query{Text: "checkout latency", Mode: ModeHybrid})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, it.ID, results[0].Item.ID)
}

func TestSearchFiltersByType(t *testing.T) {
	eng, we := newTestSetup(t)
	init, err := we.Create(workitem.CreateInput{ItemType: store.Initiative, Title: "Payments overhaul"})
	require.NoError(t, err)
	_, err = we.Create(workitem.CreateInput{ItemType: store.Epic, Title: "Payments overhaul epic", ParentID: init.ID})
	require.NoError(t, err)

	results, _, err := eng.Search(Query{
		Text: "payments overhaul", Mode: ModeKeyword,
		ItemTypes: []store.ItemType{store.Epic},
	})
	require.NoError(t, err)
	for _, r := range results {
		require.Equal(t, store.Epic, r.Item.ItemType)
	}
}

func TestSearchOnEmptyQueryReturnsWarningNotError(t *testing.T) {
	eng, _ := newTestSetup(t)
	results, warnings, err := eng.Search(Query{Text: "   "})
	require.NoError(t, err)
	require.Empty(t, results)
	require.NotEmpty(t, warnings)
}
