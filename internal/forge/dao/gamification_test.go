package dao

import (
	"testing"
	"time"

	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStreak(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("first activity starts streak", func(t *testing.T) {
		profile := GamificationProfile{}
		profile.UpdateStreak(now)
		assert.Equal(t, 1, profile.Streak)
		assert.Equal(t, now, profile.LastActiveAt)
	})

	t.Run("same day keeps streak", func(t *testing.T) {
		profile := GamificationProfile{Streak: 5, LastActiveAt: now.Add(-time.Hour * 3)}
		profile.UpdateStreak(now)
		assert.Equal(t, 5, profile.Streak)
	})

	t.Run("within 24h increments", func(t *testing.T) {
		profile := GamificationProfile{Streak: 5, LastActiveAt: now.Add(-time.Hour * 20)}
		profile.UpdateStreak(now)
		assert.Equal(t, 6, profile.Streak)
	})

	t.Run("over 24h resets", func(t *testing.T) {
		profile := GamificationProfile{Streak: 5, LastActiveAt: now.Add(-time.Hour * 30)}
		profile.UpdateStreak(now)
		assert.Equal(t, 1, profile.Streak)
	})
}

func TestGetOrCreateProfile(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	user := createTestUser(t, db, "user@example.com")

	profile, err := GetOrCreateProfile(db, workspace.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, 0, profile.TotalXP)

	again, err := GetOrCreateProfile(db, workspace.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&GamificationProfile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddXP(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	user := createTestUser(t, db, "user@example.com")

	profile, err := GetOrCreateProfile(db, workspace.ID, user.ID)
	require.NoError(t, err)

	levelUp, err := AddXP(db, profile, 50)
	require.NoError(t, err)
	assert.False(t, levelUp)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, 50, profile.TotalXP)

	// 100 суммарного XP - граница второго уровня
	levelUp, err = AddXP(db, profile, 50)
	require.NoError(t, err)
	assert.True(t, levelUp)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, 0, profile.CurrentXP)

	var stored GamificationProfile
	require.NoError(t, db.Where("id = ?", profile.ID).First(&stored).Error)
	assert.Equal(t, 2, stored.Level)
	assert.Equal(t, 100, stored.TotalXP)
	assert.Equal(t, 1, stored.Streak)
}

func TestAwardBadgeIdempotent(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	user := createTestUser(t, db, "user@example.com")

	profile, err := GetOrCreateProfile(db, workspace.ID, user.ID)
	require.NoError(t, err)

	require.NoError(t, AwardBadge(db, profile.ID, types.BadgeStreak7, "Em Chamas", "7 dias seguidos"))
	require.NoError(t, AwardBadge(db, profile.ID, types.BadgeStreak7, "Em Chamas", "7 dias seguidos"))

	var count int64
	require.NoError(t, db.Model(&Badge{}).Where("profile_id = ?", profile.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResetStaleStreaks(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	stale := createTestUser(t, db, "stale@example.com")
	active := createTestUser(t, db, "active@example.com")

	require.NoError(t, db.Create(&GamificationProfile{
		ID: GenUUID(), UserId: stale.ID, WorkspaceId: workspace.ID,
		Level: 1, Streak: 9, LastActiveAt: time.Now().Add(-time.Hour * 48),
	}).Error)
	require.NoError(t, db.Create(&GamificationProfile{
		ID: GenUUID(), UserId: active.ID, WorkspaceId: workspace.ID,
		Level: 1, Streak: 4, LastActiveAt: time.Now().Add(-time.Hour * 2),
	}).Error)

	require.NoError(t, ResetStaleStreaks(db))

	var staleProfile, activeProfile GamificationProfile
	require.NoError(t, db.Where("user_id = ?", stale.ID).First(&staleProfile).Error)
	require.NoError(t, db.Where("user_id = ?", active.ID).First(&activeProfile).Error)
	assert.Equal(t, 0, staleProfile.Streak)
	assert.Equal(t, 4, activeProfile.Streak)
}

func TestGetWorkspaceLeaderboard(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")

	totals := []int{3200, 15420, 8500}
	for i, total := range totals {
		user := createTestUser(t, db, []string{"a@x.com", "b@x.com", "c@x.com"}[i])
		require.NoError(t, db.Create(&GamificationProfile{
			ID: GenUUID(), UserId: user.ID, WorkspaceId: workspace.ID,
			Level: types.CalculateLevel(total), TotalXP: total, LastActiveAt: time.Now(),
		}).Error)
	}

	profiles, err := GetWorkspaceLeaderboard(db, workspace.ID, 2)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, 15420, profiles[0].TotalXP)
	assert.Equal(t, 8500, profiles[1].TotalXP)
}
