package dao

import (
	"testing"

	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
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
		&User{},
		&Workspace{},
		&WorkspaceMember{},
		&Team{},
		&TeamMember{},
		&ManagementRule{},
		&Cycle{},
		&Goal{},
		&Competency{},
		&Activity{},
		&OneOnOneActivity{},
		&MentoringActivity{},
		&CertificationActivity{},
		&GamificationProfile{},
		&Badge{},
		&PullRequest{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *User {
	t.Helper()
	user := User{
		ID:       GenUUID(),
		Email:    email,
		Name:     "Test " + email,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestWorkspace(t *testing.T, db *gorm.DB, slug string) *Workspace {
	t.Helper()
	workspace := Workspace{
		ID:     GenUUID(),
		Name:   "Workspace " + slug,
		Slug:   slug,
		Status: types.StatusActive,
	}
	require.NoError(t, db.Create(&workspace).Error)
	return &workspace
}

func addTestWorkspaceMember(t *testing.T, db *gorm.DB, workspaceId, userId uuid.UUID, role types.WorkspaceRole) {
	t.Helper()
	require.NoError(t, db.Create(&WorkspaceMember{
		ID:          GenUUID(),
		WorkspaceId: workspaceId,
		MemberId:    userId,
		Role:        role,
	}).Error)
}

func createTestTeam(t *testing.T, db *gorm.DB, workspaceId uuid.UUID, name string) *Team {
	t.Helper()
	team := Team{
		ID:          GenUUID(),
		WorkspaceId: workspaceId,
		Name:        name,
		Status:      types.StatusActive,
	}
	require.NoError(t, db.Create(&team).Error)
	return &team
}

func addTestTeamMember(t *testing.T, db *gorm.DB, teamId, userId uuid.UUID, role types.TeamRole) {
	t.Helper()
	require.NoError(t, db.Create(&TeamMember{
		ID:       GenUUID(),
		TeamId:   teamId,
		MemberId: userId,
		Role:     role,
	}).Error)
}
