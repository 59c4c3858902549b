package seeder

import (
	"testing"

	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&dao.User{},
		&dao.Workspace{},
		&dao.WorkspaceMember{},
		&dao.Team{},
		&dao.TeamMember{},
		&dao.ManagementRule{},
		&dao.Cycle{},
		&dao.Goal{},
		&dao.Competency{},
		&dao.Activity{},
		&dao.OneOnOneActivity{},
		&dao.MentoringActivity{},
		&dao.CertificationActivity{},
		&dao.GamificationProfile{},
		&dao.Badge{},
		&dao.PullRequest{},
	))
	return db
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func TestSeedCreatesFixtures(t *testing.T) {
	db := testDB(t)

	summary, err := Seed(db)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 2, summary.Workspaces)
	assert.Equal(t, 4, summary.Teams)
	assert.Equal(t, 4, summary.Rules)
	assert.Equal(t, 5, summary.Profiles)
	assert.Equal(t, 8, summary.Badges)
	assert.Equal(t, 1, summary.Cycles)
	assert.Equal(t, 4, summary.Goals)
	assert.Equal(t, 3, summary.Competencies)
	assert.Equal(t, 3, summary.Activities)
	assert.Equal(t, 4, summary.PullRequests)
	assert.Len(t, summary.Credentials, 5)

	assert.EqualValues(t, 7, countRows(t, db, &dao.WorkspaceMember{}))
	assert.EqualValues(t, 6, countRows(t, db, &dao.TeamMember{}))
	assert.EqualValues(t, 1, countRows(t, db, &dao.OneOnOneActivity{}))
	assert.EqualValues(t, 1, countRows(t, db, &dao.MentoringActivity{}))
	assert.EqualValues(t, 1, countRows(t, db, &dao.CertificationActivity{}))
}

func TestSeedIdempotent(t *testing.T) {
	db := testDB(t)

	_, err := Seed(db)
	require.NoError(t, err)

	models := []interface{}{
		&dao.User{},
		&dao.Workspace{},
		&dao.WorkspaceMember{},
		&dao.Team{},
		&dao.TeamMember{},
		&dao.ManagementRule{},
		&dao.GamificationProfile{},
		&dao.Badge{},
		&dao.Cycle{},
		&dao.Goal{},
		&dao.Competency{},
		&dao.Activity{},
		&dao.OneOnOneActivity{},
		&dao.MentoringActivity{},
		&dao.CertificationActivity{},
		&dao.PullRequest{},
	}

	before := make([]int64, len(models))
	for i, model := range models {
		before[i] = countRows(t, db, model)
	}

	summary, err := Seed(db)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Users)
	assert.Equal(t, 0, summary.Badges)
	assert.Equal(t, 0, summary.Goals)

	for i, model := range models {
		assert.Equal(t, before[i], countRows(t, db, model), "row count changed for %T", model)
	}
}

func TestSeededUsersCanLogin(t *testing.T) {
	db := testDB(t)

	_, err := Seed(db)
	require.NoError(t, err)

	var users []dao.User
	require.NoError(t, db.Where("email LIKE ?", "%@forji.com").Find(&users).Error)
	require.Len(t, users, 5)

	for _, user := range users {
		assert.True(t, user.CheckPassword("senha123"), "password check failed for %s", user.Email)
		assert.True(t, user.IsActive)
	}
}
