package forge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testServices(t *testing.T) *Services {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&dao.User{},
		&dao.Workspace{},
		&dao.WorkspaceMember{},
		&dao.PullRequest{},
	))
	return &Services{db: db}
}

func TestGetPullRequestListPageSizeParam(t *testing.T) {
	s := testServices(t)

	for i := 1; i <= 30; i++ {
		require.NoError(t, dao.UpsertPullRequest(s.db, &dao.PullRequest{
			Repo:      "acme/api",
			Number:    i,
			Title:     fmt.Sprintf("PR %d", i),
			Author:    "ana",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}))
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?pageSize=5&page=2", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, s.getPullRequestList(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var list dto.PullRequestList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 5, list.PageSize)
	assert.Equal(t, 2, list.Page)
	assert.Len(t, list.Items, 5)
	assert.EqualValues(t, 30, list.Total)
}
