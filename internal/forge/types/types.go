// Общие типы и перечисления предметной области Forge.
//
// Основные возможности:
//   - Роли участников пространств и команд.
//   - Статусы сущностей (пространства, команды, циклы, цели).
//   - Типы целей, компетенций и активностей PDI.
//   - Типы правил управления (менеджер-подчиненный).
package types

import "time"

const (
	AccessTokenExpiresPeriod  = time.Hour * 2
	RefreshTokenExpiresPeriod = time.Hour * 24 * 7
)

// Роли участника рабочего пространства
type WorkspaceRole string

const (
	WorkspaceRoleOwner  WorkspaceRole = "OWNER"
	WorkspaceRoleAdmin  WorkspaceRole = "ADMIN"
	WorkspaceRoleMember WorkspaceRole = "MEMBER"
)

// Вес роли для сравнения прав. Больше - выше.
func (r WorkspaceRole) Weight() int {
	switch r {
	case WorkspaceRoleOwner:
		return 3
	case WorkspaceRoleAdmin:
		return 2
	case WorkspaceRoleMember:
		return 1
	}
	return 0
}

func (r WorkspaceRole) IsValid() bool { return r.Weight() > 0 }

// Роли участника команды
type TeamRole string

const (
	TeamRoleManager TeamRole = "MANAGER"
	TeamRoleMember  TeamRole = "MEMBER"
)

func (r TeamRole) IsValid() bool { return r == TeamRoleManager || r == TeamRoleMember }

// Статусы пространств и команд
type EntityStatus string

const (
	StatusActive   EntityStatus = "ACTIVE"
	StatusArchived EntityStatus = "ARCHIVED"
)

// Типы правил управления
type RuleType string

const (
	RuleIndividual RuleType = "INDIVIDUAL"
	RuleTeam       RuleType = "TEAM"
)

func (r RuleType) IsValid() bool { return r == RuleIndividual || r == RuleTeam }

// Статусы цикла развития
type CycleStatus string

const (
	CycleActive    CycleStatus = "ACTIVE"
	CycleCompleted CycleStatus = "COMPLETED"
	CycleArchived  CycleStatus = "ARCHIVED"
)

// Типы целей
type GoalType string

const (
	GoalBinary     GoalType = "BINARY"
	GoalIncrease   GoalType = "INCREASE"
	GoalDecrease   GoalType = "DECREASE"
	GoalPercentage GoalType = "PERCENTAGE"
)

func (t GoalType) IsValid() bool {
	switch t {
	case GoalBinary, GoalIncrease, GoalDecrease, GoalPercentage:
		return true
	}
	return false
}

// Статусы цели
type GoalStatus string

const (
	GoalActive      GoalStatus = "ACTIVE"
	GoalCompletedSt GoalStatus = "COMPLETED"
	GoalCancelled   GoalStatus = "CANCELLED"
)

// Категории компетенций
type CompetencyCategory string

const (
	CompetencyTechnical  CompetencyCategory = "TECHNICAL"
	CompetencyBehavioral CompetencyCategory = "BEHAVIORAL"
	CompetencyLeadership CompetencyCategory = "LEADERSHIP"
)

func (c CompetencyCategory) IsValid() bool {
	switch c {
	case CompetencyTechnical, CompetencyBehavioral, CompetencyLeadership:
		return true
	}
	return false
}

// Типы активностей PDI
type ActivityType string

const (
	ActivityOneOnOne      ActivityType = "ONE_ON_ONE"
	ActivityMentoring     ActivityType = "MENTORING"
	ActivityCertification ActivityType = "CERTIFICATION"
)

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityOneOnOne, ActivityMentoring, ActivityCertification:
		return true
	}
	return false
}

// Состояния pull request
type PRState string

const (
	PROpen   PRState = "open"
	PRClosed PRState = "closed"
	PRMerged PRState = "merged"
)
