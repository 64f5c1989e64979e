package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainaudit/repo-judge/internal/analysis"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func scoreFor(owner, repo string, overall float64) analysis.ScoreData {
	return analysis.ScoreData{
		Owner:        owner,
		Repo:         repo,
		OverallScore: overall,
		Timestamp:    "2026-01-02T15:04:05Z",
	}
}

func TestStoreSaveAndList(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(scoreFor("octocat", "demo", 3.5)))

	results, err := store.List()
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "octocat", results[0].Owner)
	assert.Equal(t, "demo", results[0].Repo)
	assert.Equal(t, 3.5, results[0].OverallScore)
	assert.Equal(t, "2026-01-02T15:04:05Z", results[0].Timestamp)
}

func TestStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(scoreFor("octocat", "first", 1)))
	require.NoError(t, store.Save(scoreFor("octocat", "second", 2)))

	results, err := store.List()
	require.NoError(t, err)
	require.Len(t, results, 2)

	// rows inserted in the same wall-clock instant keep no defined order,
	// but both must be present
	repos := []string{results[0].Repo, results[1].Repo}
	assert.Contains(t, repos, "first")
	assert.Contains(t, repos, "second")
}

func TestStoreTrimsToTwentyEntries(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 25; i++ {
		require.NoError(t, store.Save(scoreFor("octocat", fmt.Sprintf("repo-%02d", i), float64(i))))
	}

	results, err := store.List()
	require.NoError(t, err)
	assert.Len(t, results, 20)
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(scoreFor("octocat", "demo", 3.5)))
	require.NoError(t, store.Clear())

	results, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStoreRoundTripsFullReport(t *testing.T) {
	store := newTestStore(t)

	sd := scoreFor("octocat", "demo", 2.7)
	sd.Report = analysis.AssembleReport(analysis.ReportInput{
		RepoURL:     "https://github.com/octocat/demo",
		Branch:      "main",
		ProjectName: "octocat/demo",
		License:     "MIT",
		Evidence:    analysis.Evidence{HappyPathDocumented: true},
	})

	require.NoError(t, store.Save(sd))

	results, err := store.List()
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "https://github.com/octocat/demo", results[0].Report.Project.RepoURL)
	assert.Equal(t, "MIT", results[0].Report.Project.License)
	assert.True(t, results[0].Report.PaymentsFlow.HappyPath.TxHash == "")
	assert.Equal(t, sd.Report.Scoring.Total, results[0].Report.Scoring.Total)
}
