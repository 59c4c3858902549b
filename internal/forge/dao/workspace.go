// DAO для работы с данными рабочих пространств и их участников.
//
// Основные возможности:
//   - Получение пространств по ID, slug и членству пользователя.
//   - Создание пространства вместе с владельцем в одной транзакции.
//   - Управление членством: роли, добавление и удаление участников.
package dao

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Рабочие пространства
type Workspace struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	Name        string             `json:"name" validate:"workspaceName"`
	Slug        string             `json:"slug" gorm:"uniqueIndex" validate:"slug"`
	Description string             `json:"description"`
	Status      types.EntityStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CurrentUserMembership *WorkspaceMember `json:"current_user_membership,omitempty" gorm:"-" extensions:"x-nullable"`
}

func (Workspace) TableName() string { return "workspaces" }

func (w *Workspace) ToLightDTO() *dto.WorkspaceLight {
	if w == nil {
		return nil
	}
	return &dto.WorkspaceLight{
		ID:     w.ID,
		Name:   w.Name,
		Slug:   w.Slug,
		Status: w.Status,
	}
}

func (w *Workspace) ToDTO() *dto.Workspace {
	if w == nil {
		return nil
	}
	return &dto.Workspace{
		WorkspaceLight:        *w.ToLightDTO(),
		Description:           w.Description,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
		CurrentUserMembership: w.CurrentUserMembership.ToDTO(),
	}
}

// Участники рабочего пространства
type WorkspaceMember struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	WorkspaceId uuid.UUID           `json:"workspace_id" gorm:"type:uuid;uniqueIndex:idx_workspace_member"`
	MemberId    uuid.UUID           `json:"member_id" gorm:"type:uuid;uniqueIndex:idx_workspace_member"`
	Role        types.WorkspaceRole `json:"role" gorm:"type:varchar(20)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Workspace *Workspace `json:"workspace,omitempty" gorm:"foreignKey:WorkspaceId" extensions:"x-nullable"`
	Member    *User      `json:"member,omitempty" gorm:"foreignKey:MemberId" extensions:"x-nullable"`
}

func (WorkspaceMember) TableName() string { return "workspace_members" }

func (wm *WorkspaceMember) ToDTO() *dto.WorkspaceMember {
	if wm == nil {
		return nil
	}
	return &dto.WorkspaceMember{
		ID:          wm.ID,
		WorkspaceID: wm.WorkspaceId,
		Role:        wm.Role,
		CreatedAt:   wm.CreatedAt,
		Member:      wm.Member.ToLightDTO(),
	}
}

// HasAdminRights сообщает, может ли участник администрировать пространство.
func (wm *WorkspaceMember) HasAdminRights() bool {
	return wm != nil && wm.Role.Weight() >= types.WorkspaceRoleAdmin.Weight()
}

// GetWorkspaceBySlugOrId возвращает пространство по slug либо UUID
// вместе с членством запрашивающего пользователя.
func GetWorkspaceBySlugOrId(db *gorm.DB, slugOrId string, userId uuid.UUID) (*Workspace, error) {
	var workspace Workspace
	if err := db.Where("slug = ? or id = ?", slugOrId, slugOrId).First(&workspace).Error; err != nil {
		return nil, err
	}

	var member WorkspaceMember
	if err := db.
		Joins("Member").
		Where("workspace_members.workspace_id = ?", workspace.ID).
		Where("workspace_members.member_id = ?", userId).
		First(&member).Error; err != nil {
		return nil, err
	}
	workspace.CurrentUserMembership = &member

	return &workspace, nil
}

// GetUserWorkspaces возвращает пространства, участником которых является пользователь.
func GetUserWorkspaces(db *gorm.DB, userId uuid.UUID) ([]Workspace, error) {
	var workspaces []Workspace
	err := db.
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.member_id = ?", userId).
		Order("workspaces.name").
		Find(&workspaces).Error
	return workspaces, err
}

// CreateWorkspace создает пространство и членство владельца одной транзакцией.
func CreateWorkspace(db *gorm.DB, workspace *Workspace, ownerId uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if workspace.ID.IsNil() {
			workspace.ID = GenUUID()
		}
		if workspace.Status == "" {
			workspace.Status = types.StatusActive
		}
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		return tx.Create(&WorkspaceMember{
			ID:          GenUUID(),
			WorkspaceId: workspace.ID,
			MemberId:    ownerId,
			Role:        types.WorkspaceRoleOwner,
		}).Error
	})
}

// CountWorkspaceOwners возвращает число владельцев пространства.
func CountWorkspaceOwners(db *gorm.DB, workspaceId uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&WorkspaceMember{}).
		Where("workspace_id = ?", workspaceId).
		Where("role = ?", types.WorkspaceRoleOwner).
		Count(&count).Error
	return count, err
}

// IsWorkspaceMember проверяет членство пользователя в пространстве.
func IsWorkspaceMember(db *gorm.DB, workspaceId, userId uuid.UUID) (bool, error) {
	var exist bool
	err := db.Model(&WorkspaceMember{}).
		Select("count(*) > 0").
		Where("workspace_id = ?", workspaceId).
		Where("member_id = ?", userId).
		Find(&exist).Error
	return exist, err
}
