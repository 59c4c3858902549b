package dto

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
)

type WorkspaceLight struct {
	ID     uuid.UUID          `json:"id"`
	Name   string             `json:"name"`
	Slug   string             `json:"slug"`
	Status types.EntityStatus `json:"status"`
}

type Workspace struct {
	WorkspaceLight

	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CurrentUserMembership *WorkspaceMember `json:"current_user_membership,omitempty" extensions:"x-nullable"`
}

type WorkspaceMember struct {
	ID          uuid.UUID           `json:"id"`
	WorkspaceID uuid.UUID           `json:"workspace_id"`
	Role        types.WorkspaceRole `json:"role"`
	CreatedAt   time.Time           `json:"created_at"`

	Member *UserLight `json:"member,omitempty" extensions:"x-nullable"`
}

type TeamLight struct {
	ID          uuid.UUID          `json:"id"`
	WorkspaceID uuid.UUID          `json:"workspace_id"`
	Name        string             `json:"name"`
	Status      types.EntityStatus `json:"status"`
}

type Team struct {
	TeamLight

	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}

type TeamMember struct {
	ID        uuid.UUID      `json:"id"`
	TeamID    uuid.UUID      `json:"team_id"`
	Role      types.TeamRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`

	Member *UserLight `json:"member,omitempty" extensions:"x-nullable"`
}
