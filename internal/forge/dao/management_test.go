package dao

import (
	"testing"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagementRuleValidate(t *testing.T) {
	manager := GenUUID()
	subordinate := GenUUID()
	team := GenUUID()

	t.Run("individual requires subordinate", func(t *testing.T) {
		rule := ManagementRule{ManagerId: manager, RuleType: types.RuleIndividual}
		assert.Equal(t, apierrors.ErrRuleSubordinateNeeded, rule.Validate())
	})

	t.Run("individual rejects team target", func(t *testing.T) {
		rule := ManagementRule{ManagerId: manager, RuleType: types.RuleIndividual, SubordinateId: &subordinate, TeamId: &team}
		assert.Equal(t, apierrors.ErrRuleAmbiguousTarget, rule.Validate())
	})

	t.Run("team requires team", func(t *testing.T) {
		rule := ManagementRule{ManagerId: manager, RuleType: types.RuleTeam}
		assert.Equal(t, apierrors.ErrRuleTeamNeeded, rule.Validate())
	})

	t.Run("team rejects subordinate target", func(t *testing.T) {
		rule := ManagementRule{ManagerId: manager, RuleType: types.RuleTeam, TeamId: &team, SubordinateId: &subordinate}
		assert.Equal(t, apierrors.ErrRuleAmbiguousTarget, rule.Validate())
	})

	t.Run("self management rejected", func(t *testing.T) {
		rule := ManagementRule{ManagerId: manager, RuleType: types.RuleIndividual, SubordinateId: &manager}
		assert.Equal(t, apierrors.ErrRuleSelfManagement, rule.Validate())
	})

	t.Run("unknown rule type rejected", func(t *testing.T) {
		rule := ManagementRule{ManagerId: manager, RuleType: "GROUP", SubordinateId: &subordinate}
		assert.Equal(t, apierrors.ErrRuleTypeRequired, rule.Validate())
	})

	t.Run("valid shapes", func(t *testing.T) {
		individual := ManagementRule{ManagerId: manager, RuleType: types.RuleIndividual, SubordinateId: &subordinate}
		assert.NoError(t, individual.Validate())

		teamRule := ManagementRule{ManagerId: manager, RuleType: types.RuleTeam, TeamId: &team}
		assert.NoError(t, teamRule.Validate())
	})
}

func TestCreateManagementRuleConflict(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	manager := createTestUser(t, db, "manager@example.com")
	subordinate := createTestUser(t, db, "subordinate@example.com")

	rule := ManagementRule{
		WorkspaceId:   workspace.ID,
		ManagerId:     manager.ID,
		RuleType:      types.RuleIndividual,
		SubordinateId: &subordinate.ID,
	}
	require.NoError(t, CreateManagementRule(db, &rule))

	dup := ManagementRule{
		WorkspaceId:   workspace.ID,
		ManagerId:     manager.ID,
		RuleType:      types.RuleIndividual,
		SubordinateId: &subordinate.ID,
	}
	assert.Equal(t, apierrors.ErrRuleConflict, CreateManagementRule(db, &dup))

	var count int64
	require.NoError(t, db.Model(&ManagementRule{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetSubordinatesDedupe(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	manager := createTestUser(t, db, "manager@example.com")
	ana := createTestUser(t, db, "ana@example.com")
	carlos := createTestUser(t, db, "carlos@example.com")

	team := createTestTeam(t, db, workspace.ID, "Frontend")
	addTestTeamMember(t, db, team.ID, manager.ID, types.TeamRoleManager)
	addTestTeamMember(t, db, team.ID, ana.ID, types.TeamRoleMember)
	addTestTeamMember(t, db, team.ID, carlos.ID, types.TeamRoleMember)

	// ana появляется и в индивидуальном, и в командном правиле
	require.NoError(t, CreateManagementRule(db, &ManagementRule{
		WorkspaceId: workspace.ID, ManagerId: manager.ID,
		RuleType: types.RuleIndividual, SubordinateId: &ana.ID,
	}))
	require.NoError(t, CreateManagementRule(db, &ManagementRule{
		WorkspaceId: workspace.ID, ManagerId: manager.ID,
		RuleType: types.RuleTeam, TeamId: &team.ID,
	}))

	list, err := GetSubordinates(db, workspace.ID, manager.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.DirectSubordinates)
	// менеджер исключен из раскрытия командного правила
	assert.Equal(t, 2, list.TeamMembers)

	seen := map[string]bool{}
	for _, s := range list.Subordinates {
		assert.False(t, seen[s.Email], "duplicate subordinate %s", s.Email)
		seen[s.Email] = true
		assert.NotEqual(t, manager.ID, s.UserID)
	}

	withoutTeams, err := GetSubordinates(db, workspace.ID, manager.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, withoutTeams.Total)
	assert.Equal(t, 0, withoutTeams.TeamMembers)
}

func TestIsManagedBy(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	manager := createTestUser(t, db, "manager@example.com")
	direct := createTestUser(t, db, "direct@example.com")
	teammate := createTestUser(t, db, "teammate@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")

	team := createTestTeam(t, db, workspace.ID, "Backend")
	addTestTeamMember(t, db, team.ID, teammate.ID, types.TeamRoleMember)

	require.NoError(t, CreateManagementRule(db, &ManagementRule{
		WorkspaceId: workspace.ID, ManagerId: manager.ID,
		RuleType: types.RuleIndividual, SubordinateId: &direct.ID,
	}))
	require.NoError(t, CreateManagementRule(db, &ManagementRule{
		WorkspaceId: workspace.ID, ManagerId: manager.ID,
		RuleType: types.RuleTeam, TeamId: &team.ID,
	}))

	managed, err := IsManagedBy(db, workspace.ID, manager.ID, direct.ID)
	require.NoError(t, err)
	assert.True(t, managed)

	managed, err = IsManagedBy(db, workspace.ID, manager.ID, teammate.ID)
	require.NoError(t, err)
	assert.True(t, managed)

	managed, err = IsManagedBy(db, workspace.ID, manager.ID, outsider.ID)
	require.NoError(t, err)
	assert.False(t, managed)

	managed, err = IsManagedBy(db, workspace.ID, manager.ID, manager.ID)
	require.NoError(t, err)
	assert.False(t, managed)
}

func TestGetAssignmentCandidatesExcludesManager(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	manager := createTestUser(t, db, "manager@example.com")
	other := createTestUser(t, db, "other@example.com")
	addTestWorkspaceMember(t, db, workspace.ID, manager.ID, types.WorkspaceRoleAdmin)
	addTestWorkspaceMember(t, db, workspace.ID, other.ID, types.WorkspaceRoleMember)
	createTestTeam(t, db, workspace.ID, "Design")

	candidates, err := GetAssignmentCandidates(db, workspace.ID, manager.ID)
	require.NoError(t, err)

	require.Len(t, candidates.Users, 1)
	assert.Equal(t, other.ID, candidates.Users[0].ID)
	assert.Len(t, candidates.Teams, 1)
}

func TestDeleteManagementRule(t *testing.T) {
	db := testDB(t)
	workspace := createTestWorkspace(t, db, "acme")
	manager := createTestUser(t, db, "manager@example.com")
	subordinate := createTestUser(t, db, "subordinate@example.com")

	rule := ManagementRule{
		WorkspaceId: workspace.ID, ManagerId: manager.ID,
		RuleType: types.RuleIndividual, SubordinateId: &subordinate.ID,
	}
	require.NoError(t, CreateManagementRule(db, &rule))

	require.NoError(t, DeleteManagementRule(db, workspace.ID, rule.ID.String()))

	err := DeleteManagementRule(db, workspace.ID, rule.ID.String())
	assert.True(t, IsRuleNotFound(err))
}
