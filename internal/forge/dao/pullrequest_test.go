package dao

import (
	"testing"
	"time"

	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPullRequestState(t *testing.T) {
	now := time.Now()

	pr := PullRequest{}
	assert.Equal(t, types.PROpen, pr.State())

	pr.ClosedAt = &now
	assert.Equal(t, types.PRClosed, pr.State())

	// merged имеет приоритет над closed
	pr.MergedAt = &now
	assert.Equal(t, types.PRMerged, pr.State())
}

func seedTestPRs(t *testing.T, db *gorm.DB) {
	t.Helper()
	mergedAt := time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC)
	closedAt := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)

	prs := []PullRequest{
		{Repo: "acme/api", Number: 1, Title: "Frontend skeleton states", Author: "ana", Additions: 100, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), MergedAt: &mergedAt},
		{Repo: "acme/api", Number: 2, Title: "Cache layer", Author: "carlos", Additions: 300, CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ClosedAt: &closedAt},
		{Repo: "acme/web", Number: 3, Title: "Leaderboard widget", Author: "ana", Additions: 200, CreatedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	for i := range prs {
		require.NoError(t, UpsertPullRequest(db, &prs[i]))
	}
}

func TestGetPullRequestsQueryFilter(t *testing.T) {
	db := testDB(t)
	seedTestPRs(t, db)

	for _, q := range []string{"front", "FRONT"} {
		list, err := GetPullRequests(db, PullRequestFilters{Query: q})
		require.NoError(t, err)
		require.Len(t, list.Items, 1, "query %q", q)
		assert.Equal(t, "Frontend skeleton states", list.Items[0].Title)
	}

	// подстрока автора тоже ищется
	list, err := GetPullRequests(db, PullRequestFilters{Query: "carl"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "carlos", list.Items[0].Author)
}

func TestGetPullRequestsStateFilter(t *testing.T) {
	db := testDB(t)
	seedTestPRs(t, db)

	cases := map[string]int{"merged": 1, "closed": 1, "open": 1, "": 3}
	for state, expected := range cases {
		list, err := GetPullRequests(db, PullRequestFilters{State: state})
		require.NoError(t, err)
		assert.Len(t, list.Items, expected, "state %q", state)
	}
}

func TestGetPullRequestsSort(t *testing.T) {
	db := testDB(t)
	seedTestPRs(t, db)

	list, err := GetPullRequests(db, PullRequestFilters{Sort: "additions:asc"})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	assert.Equal(t, 100, list.Items[0].Additions)
	assert.Equal(t, 300, list.Items[2].Additions)

	// поле вне белого списка игнорируется, сортировка по умолчанию created_at desc
	list, err = GetPullRequests(db, PullRequestFilters{Sort: "author; drop table pull_requests:asc"})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	assert.Equal(t, "Leaderboard widget", list.Items[0].Title)
}

func TestGetPullRequestsPagination(t *testing.T) {
	db := testDB(t)
	seedTestPRs(t, db)

	list, err := GetPullRequests(db, PullRequestFilters{Page: 2, PageSize: 2, Sort: "created_at:asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
	assert.Equal(t, 2, list.Page)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Leaderboard widget", list.Items[0].Title)
}

func TestUpsertPullRequestIdempotent(t *testing.T) {
	db := testDB(t)

	pr := PullRequest{Repo: "acme/api", Number: 7, Title: "Initial", Author: "ana", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, UpsertPullRequest(db, &pr))

	update := PullRequest{Repo: "acme/api", Number: 7, Title: "Updated title", Author: "ana", Additions: 42, CreatedAt: pr.CreatedAt, UpdatedAt: time.Now()}
	require.NoError(t, UpsertPullRequest(db, &update))

	var count int64
	require.NoError(t, db.Model(&PullRequest{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var stored PullRequest
	require.NoError(t, db.Where("repo = ? AND number = ?", "acme/api", 7).First(&stored).Error)
	assert.Equal(t, "Updated title", stored.Title)
	assert.Equal(t, 42, stored.Additions)
}

func TestGetPullRequestMeta(t *testing.T) {
	db := testDB(t)
	seedTestPRs(t, db)

	list, err := GetPullRequests(db, PullRequestFilters{WithMeta: true})
	require.NoError(t, err)
	require.NotNil(t, list.Meta)
	assert.Equal(t, []string{"acme/api", "acme/web"}, list.Meta.Repos)
	assert.Equal(t, []string{"ana", "carlos"}, list.Meta.Authors)

	// справочники ограничены текущими фильтрами
	list, err = GetPullRequests(db, PullRequestFilters{WithMeta: true, Repo: "acme/api"})
	require.NoError(t, err)
	require.NotNil(t, list.Meta)
	assert.Equal(t, []string{"acme/api"}, list.Meta.Repos)
	assert.Equal(t, []string{"ana", "carlos"}, list.Meta.Authors)

	list, err = GetPullRequests(db, PullRequestFilters{WithMeta: true, Author: "ana"})
	require.NoError(t, err)
	require.NotNil(t, list.Meta)
	assert.Equal(t, []string{"acme/api", "acme/web"}, list.Meta.Repos)
	assert.Equal(t, []string{"ana"}, list.Meta.Authors)
}
