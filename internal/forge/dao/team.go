// DAO для работы с данными команд и их членов.
//
// Основные возможности:
//   - Команды: создание, чтение, обновление и удаление в рамках пространства.
//   - Члены команд: добавление, удаление, подсчет.
package dao

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Команды
type Team struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	WorkspaceId uuid.UUID          `json:"workspace_id" gorm:"type:uuid;uniqueIndex:idx_workspace_team_name"`
	Name        string             `json:"name" gorm:"uniqueIndex:idx_workspace_team_name" validate:"teamName"`
	Description string             `json:"description"`
	Status      types.EntityStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Workspace *Workspace `json:"workspace,omitempty" gorm:"foreignKey:WorkspaceId" extensions:"x-nullable"`

	MemberCount int `json:"member_count" gorm:"-"`
}

func (Team) TableName() string { return "teams" }

func (t *Team) ToLightDTO() *dto.TeamLight {
	if t == nil {
		return nil
	}
	return &dto.TeamLight{
		ID:          t.ID,
		WorkspaceID: t.WorkspaceId,
		Name:        t.Name,
		Status:      t.Status,
	}
}

func (t *Team) ToDTO() *dto.Team {
	if t == nil {
		return nil
	}
	return &dto.Team{
		TeamLight:   *t.ToLightDTO(),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		MemberCount: t.MemberCount,
	}
}

// Члены команды
type TeamMember struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	TeamId   uuid.UUID      `json:"team_id" gorm:"type:uuid;uniqueIndex:idx_team_member"`
	MemberId uuid.UUID      `json:"member_id" gorm:"type:uuid;uniqueIndex:idx_team_member"`
	Role     types.TeamRole `json:"role" gorm:"type:varchar(20)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Team   *Team `json:"team,omitempty" gorm:"foreignKey:TeamId" extensions:"x-nullable"`
	Member *User `json:"member,omitempty" gorm:"foreignKey:MemberId" extensions:"x-nullable"`
}

func (TeamMember) TableName() string { return "team_members" }

func (tm *TeamMember) ToDTO() *dto.TeamMember {
	if tm == nil {
		return nil
	}
	return &dto.TeamMember{
		ID:        tm.ID,
		TeamID:    tm.TeamId,
		Role:      tm.Role,
		CreatedAt: tm.CreatedAt,
		Member:    tm.Member.ToLightDTO(),
	}
}

// GetWorkspaceTeam возвращает команду пространства по ID.
func GetWorkspaceTeam(db *gorm.DB, workspaceId uuid.UUID, teamId string) (*Team, error) {
	var team Team
	if err := db.
		Where("workspace_id = ?", workspaceId).
		Where("id = ?", teamId).
		First(&team).Error; err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&TeamMember{}).Where("team_id = ?", team.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	team.MemberCount = int(count)

	return &team, nil
}

// GetWorkspaceTeams возвращает команды пространства с числом участников.
func GetWorkspaceTeams(db *gorm.DB, workspaceId uuid.UUID) ([]Team, error) {
	var teams []Team
	if err := db.
		Where("workspace_id = ?", workspaceId).
		Order("name").
		Find(&teams).Error; err != nil {
		return nil, err
	}

	for i := range teams {
		var count int64
		if err := db.Model(&TeamMember{}).Where("team_id = ?", teams[i].ID).Count(&count).Error; err != nil {
			return nil, err
		}
		teams[i].MemberCount = int(count)
	}

	return teams, nil
}

// IsTeamMember проверяет членство пользователя в команде.
func IsTeamMember(db *gorm.DB, teamId, userId uuid.UUID) (bool, error) {
	var exist bool
	err := db.Model(&TeamMember{}).
		Select("count(*) > 0").
		Where("team_id = ?", teamId).
		Where("member_id = ?", userId).
		Find(&exist).Error
	return exist, err
}
