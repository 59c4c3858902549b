package dto

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
)

type ManagementRule struct {
	ID          uuid.UUID      `json:"id"`
	WorkspaceID uuid.UUID      `json:"workspace_id"`
	ManagerID   uuid.UUID      `json:"manager_id"`
	RuleType    types.RuleType `json:"rule_type"`
	CreatedAt   time.Time      `json:"created_at"`

	SubordinateID *uuid.UUID `json:"subordinate_id" extensions:"x-nullable"`
	TeamID        *uuid.UUID `json:"team_id" extensions:"x-nullable"`

	Subordinate *UserLight `json:"subordinate,omitempty" extensions:"x-nullable"`
	Team        *TeamLight `json:"team,omitempty" extensions:"x-nullable"`
}

// Подчиненный с указанием правила, по которому он попал в выборку
type Subordinate struct {
	UserID     uuid.UUID      `json:"user_id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	RuleID     uuid.UUID      `json:"rule_id"`
	RuleType   types.RuleType `json:"rule_type"`
	TeamID     *uuid.UUID     `json:"team_id,omitempty" extensions:"x-nullable"`
	TeamName   string         `json:"team_name,omitempty"`
	AssignedAt time.Time      `json:"assigned_at"`
}

type SubordinatesList struct {
	Total              int           `json:"total"`
	DirectSubordinates int           `json:"direct_subordinates"`
	TeamMembers        int           `json:"team_members"`
	Subordinates       []Subordinate `json:"subordinates"`
}

type ManagedTeam struct {
	RuleID      uuid.UUID          `json:"rule_id"`
	TeamID      uuid.UUID          `json:"team_id"`
	TeamName    string             `json:"team_name"`
	Description string             `json:"team_description"`
	Status      types.EntityStatus `json:"team_status"`
	MemberCount int                `json:"member_count"`
	AssignedAt  time.Time          `json:"assigned_at"`
}

// Кандидаты для назначения в иерархию. Сам менеджер в списки не входит.
type AssignmentCandidates struct {
	Users []UserLight `json:"users"`
	Teams []TeamLight `json:"teams"`
}

type AssignmentResult struct {
	UserID uuid.UUID `json:"user_id"`
	OK     bool      `json:"ok"`
	Error  string    `json:"error,omitempty"`
}
