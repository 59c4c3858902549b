// Обработчики запросов для управления рабочими пространствами и их участниками.
package forge

import (
	"net/http"
	"strings"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AddWorkspaceServices - добавление сервисов рабочих пространств
func (s *Services) AddWorkspaceServices(g *echo.Group) {
	workspaceGroup := g.Group("workspaces/:workspaceSlug", s.WorkspaceMiddleware)

	g.GET("users/me/workspaces/", s.getUserWorkspaceList)
	g.POST("workspaces/", s.createWorkspace, DemoMiddleware)

	workspaceGroup.GET("/", s.getWorkspace)
	workspaceGroup.PATCH("/", s.updateWorkspace, s.WorkspaceAdminMiddleware, DemoMiddleware)
	workspaceGroup.DELETE("/", s.deleteWorkspace, s.WorkspaceOwnerMiddleware, DemoMiddleware)

	workspaceGroup.GET("/members/", s.getWorkspaceMemberList)
	workspaceGroup.POST("/members/", s.addWorkspaceMember, s.WorkspaceAdminMiddleware)
	workspaceGroup.PATCH("/members/:memberId/", s.updateWorkspaceMember, s.WorkspaceAdminMiddleware)
	workspaceGroup.DELETE("/members/:memberId/", s.deleteWorkspaceMember, s.WorkspaceAdminMiddleware)

	s.AddTeamServices(workspaceGroup)
	s.AddManagementServices(workspaceGroup)
	s.AddOnboardingServices(workspaceGroup)
	s.AddGamificationServices(workspaceGroup)
	s.AddCycleServices(workspaceGroup)
	s.AddPullRequestServices(workspaceGroup)
}

type CreateWorkspaceRequest struct {
	Name        string `json:"name" validate:"workspaceName"`
	Slug        string `json:"slug" validate:"slug"`
	Description string `json:"description"`
}

type UpdateWorkspaceRequest struct {
	Name        *string             `json:"name" validate:"omitempty,workspaceName"`
	Description *string             `json:"description"`
	Status      *types.EntityStatus `json:"status"`
}

type AddMemberRequest struct {
	// UUID или email пользователя
	User string              `json:"user"`
	Role types.WorkspaceRole `json:"role"`
}

type UpdateMemberRequest struct {
	Role types.WorkspaceRole `json:"role"`
}

// getUserWorkspaceList godoc
// @id getUserWorkspaceList
// @Summary Пространство: список пространств пользователя
// @Description Возвращает пространства, участником которых является текущий пользователь
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} dto.WorkspaceLight "Список пространств"
// @Router /api/auth/users/me/workspaces [get]
func (s *Services) getUserWorkspaceList(c echo.Context) error {
	user := c.(AuthContext).User

	workspaces, err := dao.GetUserWorkspaces(s.db, user.ID)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.WorkspaceLight, 0, len(workspaces))
	for i := range workspaces {
		result = append(result, *workspaces[i].ToLightDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// createWorkspace godoc
// @id createWorkspace
// @Summary Пространство: создание рабочего пространства
// @Description Создает пространство и назначает создателя владельцем
// @Tags Workspace
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param data body CreateWorkspaceRequest true "Данные пространства"
// @Success 201 {object} dto.Workspace "Созданное пространство"
// @Failure 409 {object} apierrors.DefinedError "Slug уже занят"
// @Router /api/auth/workspaces [post]
func (s *Services) createWorkspace(c echo.Context) error {
	user := c.(AuthContext).User

	var req CreateWorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrForbiddenSlug)
	}

	var exist bool
	if err := s.db.Model(&dao.Workspace{}).
		Select("count(*) > 0").
		Where("slug = ?", req.Slug).
		Find(&exist).Error; err != nil {
		return EError(c, err)
	}
	if exist {
		return EErrorDefined(c, apierrors.ErrWorkspaceSlugConflict)
	}

	workspace := dao.Workspace{
		ID:          dao.GenUUID(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := dao.CreateWorkspace(s.db, &workspace, user.ID); err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, workspace.ToDTO())
}

// getWorkspace godoc
// @id getWorkspace
// @Summary Пространство: получение рабочего пространства
// @Description Возвращает пространство с членством текущего пользователя
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {object} dto.Workspace "Пространство"
// @Failure 404 {object} apierrors.DefinedError "Пространство не найдено"
// @Router /api/auth/workspaces/{workspaceSlug} [get]
func (s *Services) getWorkspace(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	return c.JSON(http.StatusOK, workspace.ToDTO())
}

// updateWorkspace godoc
// @id updateWorkspace
// @Summary Пространство: обновление рабочего пространства
// @Description Обновляет название, описание или статус пространства
// @Tags Workspace
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body UpdateWorkspaceRequest true "Изменяемые поля"
// @Success 200 {object} dto.Workspace "Обновленное пространство"
// @Failure 403 {object} apierrors.DefinedError "Требуются права администратора"
// @Router /api/auth/workspaces/{workspaceSlug} [patch]
func (s *Services) updateWorkspace(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	var req UpdateWorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		workspace.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		workspace.Description = *req.Description
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		if *req.Status != types.StatusActive && *req.Status != types.StatusArchived {
			return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("status"))
		}
		workspace.Status = *req.Status
		fields["status"] = *req.Status
	}

	if len(fields) > 0 {
		if err := s.db.Model(&workspace).Updates(fields).Error; err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusOK, workspace.ToDTO())
}

// deleteWorkspace godoc
// @id deleteWorkspace
// @Summary Пространство: удаление рабочего пространства
// @Description Удаляет пространство со всеми зависимыми данными
// @Tags Workspace
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 204 "Пространство удалено"
// @Failure 403 {object} apierrors.DefinedError "Требуются права владельца"
// @Router /api/auth/workspaces/{workspaceSlug} [delete]
func (s *Services) deleteWorkspace(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", workspace.ID).Delete(&dao.WorkspaceMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspace.ID).Delete(&dao.ManagementRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&workspace).Error
	}); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// getWorkspaceMemberList godoc
// @id getWorkspaceMemberList
// @Summary Пространство: список участников
// @Description Возвращает участников пространства с данными пользователей
// @Tags Workspace
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {array} dto.WorkspaceMember "Участники"
// @Router /api/auth/workspaces/{workspaceSlug}/members [get]
func (s *Services) getWorkspaceMemberList(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	var members []dao.WorkspaceMember
	if err := s.db.
		Joins("Member").
		Where("workspace_members.workspace_id = ?", workspace.ID).
		Order("workspace_members.created_at").
		Find(&members).Error; err != nil {
		return EError(c, err)
	}

	result := make([]dto.WorkspaceMember, 0, len(members))
	for i := range members {
		result = append(result, *members[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// addWorkspaceMember godoc
// @id addWorkspaceMember
// @Summary Пространство: добавление участника
// @Description Добавляет пользователя в пространство по UUID или email
// @Tags Workspace
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body AddMemberRequest true "Пользователь и роль"
// @Success 201 {object} dto.WorkspaceMember "Добавленный участник"
// @Failure 409 {object} apierrors.DefinedError "Пользователь уже участник"
// @Router /api/auth/workspaces/{workspaceSlug}/members [post]
func (s *Services) addWorkspaceMember(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	var req AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if !req.Role.IsValid() {
		return EErrorDefined(c, apierrors.ErrWorkspaceRoleRequired)
	}
	if req.Role.Weight() > requester.Role.Weight() {
		return EErrorDefined(c, apierrors.ErrCannotUpdateHigherRole)
	}

	user, err := dao.GetUserByIdOrEmail(s.db, req.User)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrUserNotFound)
		}
		return EError(c, err)
	}

	exist, err := dao.IsWorkspaceMember(s.db, workspace.ID, user.ID)
	if err != nil {
		return EError(c, err)
	}
	if exist {
		return EErrorDefined(c, apierrors.ErrMemberAlreadyExist)
	}

	member := dao.WorkspaceMember{
		ID:          dao.GenUUID(),
		WorkspaceId: workspace.ID,
		MemberId:    user.ID,
		Role:        req.Role,
		Member:      user,
	}
	if err := s.db.Create(&member).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, member.ToDTO())
}

// updateWorkspaceMember godoc
// @id updateWorkspaceMember
// @Summary Пространство: изменение роли участника
// @Description Меняет роль участника с проверкой иерархии ролей
// @Tags Workspace
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param memberId path string true "ID участника"
// @Param data body UpdateMemberRequest true "Новая роль"
// @Success 200 {object} dto.WorkspaceMember "Обновленный участник"
// @Failure 403 {object} apierrors.DefinedError "Недостаточно прав"
// @Router /api/auth/workspaces/{workspaceSlug}/members/{memberId} [patch]
func (s *Services) updateWorkspaceMember(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	var req UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if !req.Role.IsValid() {
		return EErrorDefined(c, apierrors.ErrWorkspaceRoleRequired)
	}

	var member dao.WorkspaceMember
	if err := s.db.
		Joins("Member").
		Where("workspace_members.workspace_id = ?", workspace.ID).
		Where("workspace_members.id = ?", c.Param("memberId")).
		First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrWorkspaceMemberNotFound)
		}
		return EError(c, err)
	}

	if member.Role.Weight() > requester.Role.Weight() || req.Role.Weight() > requester.Role.Weight() {
		return EErrorDefined(c, apierrors.ErrCannotUpdateHigherRole)
	}

	// Понижение последнего владельца оставило бы пространство без OWNER
	if member.Role == types.WorkspaceRoleOwner && req.Role != types.WorkspaceRoleOwner {
		owners, err := dao.CountWorkspaceOwners(s.db, workspace.ID)
		if err != nil {
			return EError(c, err)
		}
		if owners <= 1 {
			return EErrorDefined(c, apierrors.ErrCannotRemoveLastOwner)
		}
	}

	member.Role = req.Role
	if err := s.db.Model(&member).Update("role", req.Role).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, member.ToDTO())
}

// deleteWorkspaceMember godoc
// @id deleteWorkspaceMember
// @Summary Пространство: удаление участника
// @Description Удаляет участника из пространства вместе с его правилами управления
// @Tags Workspace
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param memberId path string true "ID участника"
// @Success 204 "Участник удален"
// @Failure 400 {object} apierrors.DefinedError "Нельзя удалить последнего владельца"
// @Router /api/auth/workspaces/{workspaceSlug}/members/{memberId} [delete]
func (s *Services) deleteWorkspaceMember(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	var member dao.WorkspaceMember
	if err := s.db.
		Where("workspace_id = ?", workspace.ID).
		Where("id = ?", c.Param("memberId")).
		First(&member).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrWorkspaceMemberNotFound)
		}
		return EError(c, err)
	}

	if member.MemberId == requester.MemberId {
		return EErrorDefined(c, apierrors.ErrCannotRemoveSelf)
	}
	if member.Role.Weight() > requester.Role.Weight() {
		return EErrorDefined(c, apierrors.ErrCannotUpdateHigherRole)
	}

	if member.Role == types.WorkspaceRoleOwner {
		owners, err := dao.CountWorkspaceOwners(s.db, workspace.ID)
		if err != nil {
			return EError(c, err)
		}
		if owners <= 1 {
			return EErrorDefined(c, apierrors.ErrCannotRemoveLastOwner)
		}
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		// Правила, где пользователь менеджер или подчиненный, теряют смысл
		if err := tx.
			Where("workspace_id = ?", workspace.ID).
			Where("manager_id = ? OR subordinate_id = ?", member.MemberId, member.MemberId).
			Delete(&dao.ManagementRule{}).Error; err != nil {
			return err
		}
		if err := tx.
			Where("member_id = ?", member.MemberId).
			Where("team_id IN (?)", tx.Model(&dao.Team{}).Select("id").Where("workspace_id = ?", workspace.ID)).
			Delete(&dao.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&member).Error
	}); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
