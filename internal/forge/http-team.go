// Обработчики запросов для управления командами рабочего пространства.
package forge

import (
	"net/http"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AddTeamServices - добавление сервисов команд
func (s *Services) AddTeamServices(g *echo.Group) {
	g.GET("/teams/", s.getTeamList)
	g.POST("/teams/", s.createTeam, s.WorkspaceAdminMiddleware)

	teamGroup := g.Group("/teams/:teamId", s.TeamMiddleware)
	teamGroup.GET("/", s.getTeam)
	teamGroup.PATCH("/", s.updateTeam, s.WorkspaceAdminMiddleware)
	teamGroup.DELETE("/", s.deleteTeam, s.WorkspaceAdminMiddleware)

	teamGroup.GET("/members/", s.getTeamMemberList)
	teamGroup.POST("/members/", s.addTeamMember, s.WorkspaceAdminMiddleware)
	teamGroup.DELETE("/members/:memberId/", s.deleteTeamMember, s.WorkspaceAdminMiddleware)
}

type TeamContext struct {
	WorkspaceContext
	Team dao.Team
}

func (s *Services) TeamMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		workspace := c.(WorkspaceContext).Workspace

		team, err := dao.GetWorkspaceTeam(s.db, workspace.ID, c.Param("teamId"))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return EErrorDefined(c, apierrors.ErrTeamNotFound)
			}
			return EError(c, err)
		}

		return next(TeamContext{c.(WorkspaceContext), *team})
	}
}

type CreateTeamRequest struct {
	Name        string `json:"name" validate:"teamName"`
	Description string `json:"description"`
}

type UpdateTeamRequest struct {
	Name        *string             `json:"name" validate:"omitempty,teamName"`
	Description *string             `json:"description"`
	Status      *types.EntityStatus `json:"status"`
}

type AddTeamMemberRequest struct {
	UserId string         `json:"user_id"`
	Role   types.TeamRole `json:"role"`
}

// getTeamList godoc
// @id getTeamList
// @Summary Команды: список команд пространства
// @Description Возвращает команды пространства с числом участников
// @Tags Teams
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {array} dto.Team "Команды"
// @Router /api/auth/workspaces/{workspaceSlug}/teams [get]
func (s *Services) getTeamList(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	teams, err := dao.GetWorkspaceTeams(s.db, workspace.ID)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.Team, 0, len(teams))
	for i := range teams {
		result = append(result, *teams[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// createTeam godoc
// @id createTeam
// @Summary Команды: создание команды
// @Description Создает команду в пространстве, имя уникально в рамках пространства
// @Tags Teams
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body CreateTeamRequest true "Данные команды"
// @Success 201 {object} dto.Team "Созданная команда"
// @Failure 409 {object} apierrors.DefinedError "Имя команды занято"
// @Router /api/auth/workspaces/{workspaceSlug}/teams [post]
func (s *Services) createTeam(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	var req CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	var exist bool
	if err := s.db.Model(&dao.Team{}).
		Select("count(*) > 0").
		Where("workspace_id = ?", workspace.ID).
		Where("name = ?", req.Name).
		Find(&exist).Error; err != nil {
		return EError(c, err)
	}
	if exist {
		return EErrorDefined(c, apierrors.ErrTeamNameConflict)
	}

	team := dao.Team{
		ID:          dao.GenUUID(),
		WorkspaceId: workspace.ID,
		Name:        req.Name,
		Description: req.Description,
		Status:      types.StatusActive,
	}
	if err := s.db.Create(&team).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, team.ToDTO())
}

// getTeam godoc
// @id getTeam
// @Summary Команды: получение команды
// @Description Возвращает команду пространства по ID
// @Tags Teams
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param teamId path string true "ID команды"
// @Success 200 {object} dto.Team "Команда"
// @Failure 404 {object} apierrors.DefinedError "Команда не найдена"
// @Router /api/auth/workspaces/{workspaceSlug}/teams/{teamId} [get]
func (s *Services) getTeam(c echo.Context) error {
	team := c.(TeamContext).Team
	return c.JSON(http.StatusOK, team.ToDTO())
}

// updateTeam godoc
// @id updateTeam
// @Summary Команды: обновление команды
// @Description Обновляет название, описание или статус команды
// @Tags Teams
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param teamId path string true "ID команды"
// @Param data body UpdateTeamRequest true "Изменяемые поля"
// @Success 200 {object} dto.Team "Обновленная команда"
// @Failure 409 {object} apierrors.DefinedError "Имя команды занято"
// @Router /api/auth/workspaces/{workspaceSlug}/teams/{teamId} [patch]
func (s *Services) updateTeam(c echo.Context) error {
	workspace := c.(TeamContext).Workspace
	team := c.(TeamContext).Team

	var req UpdateTeamRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	fields := map[string]interface{}{}
	if req.Name != nil && *req.Name != team.Name {
		var exist bool
		if err := s.db.Model(&dao.Team{}).
			Select("count(*) > 0").
			Where("workspace_id = ?", workspace.ID).
			Where("name = ?", *req.Name).
			Find(&exist).Error; err != nil {
			return EError(c, err)
		}
		if exist {
			return EErrorDefined(c, apierrors.ErrTeamNameConflict)
		}
		team.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		team.Description = *req.Description
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		if *req.Status != types.StatusActive && *req.Status != types.StatusArchived {
			return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("status"))
		}
		team.Status = *req.Status
		fields["status"] = *req.Status
	}

	if len(fields) > 0 {
		if err := s.db.Model(&team).Updates(fields).Error; err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusOK, team.ToDTO())
}

// deleteTeam godoc
// @id deleteTeam
// @Summary Команды: удаление команды
// @Description Удаляет команду вместе с членствами и командными правилами управления
// @Tags Teams
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param teamId path string true "ID команды"
// @Success 204 "Команда удалена"
// @Router /api/auth/workspaces/{workspaceSlug}/teams/{teamId} [delete]
func (s *Services) deleteTeam(c echo.Context) error {
	team := c.(TeamContext).Team

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&dao.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", team.ID).Delete(&dao.ManagementRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	}); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// getTeamMemberList godoc
// @id getTeamMemberList
// @Summary Команды: список участников команды
// @Description Возвращает участников команды с данными пользователей
// @Tags Teams
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param teamId path string true "ID команды"
// @Success 200 {array} dto.TeamMember "Участники команды"
// @Router /api/auth/workspaces/{workspaceSlug}/teams/{teamId}/members [get]
func (s *Services) getTeamMemberList(c echo.Context) error {
	team := c.(TeamContext).Team

	var members []dao.TeamMember
	if err := s.db.
		Joins("Member").
		Where("team_members.team_id = ?", team.ID).
		Order("team_members.created_at").
		Find(&members).Error; err != nil {
		return EError(c, err)
	}

	result := make([]dto.TeamMember, 0, len(members))
	for i := range members {
		result = append(result, *members[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// addTeamMember godoc
// @id addTeamMember
// @Summary Команды: добавление участника команды
// @Description Добавляет участника пространства в команду
// @Tags Teams
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param teamId path string true "ID команды"
// @Param data body AddTeamMemberRequest true "Пользователь и роль в команде"
// @Success 201 {object} dto.TeamMember "Добавленный участник"
// @Failure 409 {object} apierrors.DefinedError "Пользователь уже в команде"
// @Router /api/auth/workspaces/{workspaceSlug}/teams/{teamId}/members [post]
func (s *Services) addTeamMember(c echo.Context) error {
	workspace := c.(TeamContext).Workspace
	team := c.(TeamContext).Team

	var req AddTeamMemberRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if req.Role == "" {
		req.Role = types.TeamRoleMember
	}
	if !req.Role.IsValid() {
		return EErrorDefined(c, apierrors.ErrTeamRoleRequired)
	}

	user, err := dao.GetUserByIdOrEmail(s.db, req.UserId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrUserNotFound)
		}
		return EError(c, err)
	}

	inWorkspace, err := dao.IsWorkspaceMember(s.db, workspace.ID, user.ID)
	if err != nil {
		return EError(c, err)
	}
	if !inWorkspace {
		return EErrorDefined(c, apierrors.ErrUserNotInWorkspace)
	}

	inTeam, err := dao.IsTeamMember(s.db, team.ID, user.ID)
	if err != nil {
		return EError(c, err)
	}
	if inTeam {
		return EErrorDefined(c, apierrors.ErrTeamMemberExist)
	}

	member := dao.TeamMember{
		ID:       dao.GenUUID(),
		TeamId:   team.ID,
		MemberId: user.ID,
		Role:     req.Role,
		Member:   user,
	}
	if err := s.db.Create(&member).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, member.ToDTO())
}

// deleteTeamMember godoc
// @id deleteTeamMember
// @Summary Команды: удаление участника команды
// @Description Удаляет участника из команды
// @Tags Teams
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param teamId path string true "ID команды"
// @Param memberId path string true "ID участника команды"
// @Success 204 "Участник удален"
// @Failure 404 {object} apierrors.DefinedError "Участник не найден"
// @Router /api/auth/workspaces/{workspaceSlug}/teams/{teamId}/members/{memberId} [delete]
func (s *Services) deleteTeamMember(c echo.Context) error {
	team := c.(TeamContext).Team

	res := s.db.
		Where("team_id = ?", team.ID).
		Where("id = ?", c.Param("memberId")).
		Delete(&dao.TeamMember{})
	if res.Error != nil {
		return EError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return EErrorDefined(c, apierrors.ErrTeamMemberNotFound)
	}

	return c.NoContent(http.StatusNoContent)
}
