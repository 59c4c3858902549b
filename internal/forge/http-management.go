// Обработчики запросов для управления иерархией менеджер-подчиненный.
package forge

import (
	"net/http"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AddManagementServices - добавление сервисов правил управления
func (s *Services) AddManagementServices(g *echo.Group) {
	g.GET("/management/rules/", s.getManagementRuleList)
	g.POST("/management/rules/", s.createManagementRule, s.WorkspaceAdminMiddleware)
	g.POST("/management/rules/bulk/", s.createManagementRulesBulk, s.WorkspaceAdminMiddleware)
	g.DELETE("/management/rules/:ruleId/", s.deleteManagementRule, s.WorkspaceAdminMiddleware)

	g.GET("/management/subordinates/me/", s.getMySubordinates)
	g.GET("/management/teams/me/", s.getMyManagedTeams)
	g.GET("/management/candidates/", s.getAssignmentCandidates)
	g.GET("/management/check/:userId/", s.checkManagedByMe)
}

type CreateRuleRequest struct {
	ManagerId     uuid.UUID      `json:"manager_id"`
	RuleType      types.RuleType `json:"rule_type"`
	SubordinateId *uuid.UUID     `json:"subordinate_id"`
	TeamId        *uuid.UUID     `json:"team_id"`
}

type CreateRulesBulkRequest struct {
	ManagerId      uuid.UUID      `json:"manager_id"`
	RuleType       types.RuleType `json:"rule_type"`
	SubordinateIds []uuid.UUID    `json:"subordinate_ids"`
	TeamIds        []uuid.UUID    `json:"team_ids"`
}

// Менеджер из query параметра managerId, по умолчанию текущий пользователь.
// Чужие данные доступны только администраторам.
func (s *Services) resolveManagerParam(c echo.Context) (uuid.UUID, error) {
	requester := c.(WorkspaceContext).WorkspaceMember

	managerParam := c.QueryParam("managerId")
	if managerParam == "" {
		return requester.MemberId, nil
	}

	managerId, err := uuid.FromString(managerParam)
	if err != nil {
		return uuid.Nil, apierrors.ErrUserNotFound
	}

	if managerId != requester.MemberId && !requester.HasAdminRights() {
		return uuid.Nil, apierrors.ErrWorkspaceAdminRequired
	}
	return managerId, nil
}

// Проверка цели правила: подчиненный состоит в пространстве, команда
// принадлежит пространству.
func (s *Services) validateRuleTarget(workspaceId uuid.UUID, rule *dao.ManagementRule) error {
	if rule.SubordinateId != nil {
		member, err := dao.IsWorkspaceMember(s.db, workspaceId, *rule.SubordinateId)
		if err != nil {
			return err
		}
		if !member {
			return apierrors.ErrUserNotInWorkspace
		}
	}
	if rule.TeamId != nil {
		var exist bool
		if err := s.db.Model(&dao.Team{}).
			Select("count(*) > 0").
			Where("workspace_id = ?", workspaceId).
			Where("id = ?", *rule.TeamId).
			Find(&exist).Error; err != nil {
			return err
		}
		if !exist {
			return apierrors.ErrTeamNotInWorkspace
		}
	}
	return nil
}

// getManagementRuleList godoc
// @id getManagementRuleList
// @Summary Управление: список правил менеджера
// @Description Возвращает правила управления менеджера в пространстве
// @Tags Management
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param managerId query string false "UUID менеджера, по умолчанию текущий пользователь"
// @Success 200 {array} dto.ManagementRule "Правила управления"
// @Failure 403 {object} apierrors.DefinedError "Чужие правила доступны только администраторам"
// @Router /api/auth/workspaces/{workspaceSlug}/management/rules [get]
func (s *Services) getManagementRuleList(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	managerId, err := s.resolveManagerParam(c)
	if err != nil {
		return EError(c, err)
	}

	rules, err := dao.GetManagerRules(s.db, workspace.ID, managerId)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.ManagementRule, 0, len(rules))
	for i := range rules {
		result = append(result, *rules[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// createManagementRule godoc
// @id createManagementRule
// @Summary Управление: создание правила
// @Description Создает правило управления с проверкой формы, самоуправления и дубликатов
// @Tags Management
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body CreateRuleRequest true "Правило управления"
// @Success 201 {object} dto.ManagementRule "Созданное правило"
// @Failure 409 {object} apierrors.DefinedError "Правило уже существует"
// @Router /api/auth/workspaces/{workspaceSlug}/management/rules [post]
func (s *Services) createManagementRule(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	var req CreateRuleRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	managerId := req.ManagerId
	if managerId == uuid.Nil {
		managerId = requester.MemberId
	}

	isMember, err := dao.IsWorkspaceMember(s.db, workspace.ID, managerId)
	if err != nil {
		return EError(c, err)
	}
	if !isMember {
		return EErrorDefined(c, apierrors.ErrUserNotInWorkspace)
	}

	rule := dao.ManagementRule{
		WorkspaceId:   workspace.ID,
		ManagerId:     managerId,
		RuleType:      req.RuleType,
		SubordinateId: req.SubordinateId,
		TeamId:        req.TeamId,
	}

	if err := rule.Validate(); err != nil {
		return EError(c, err)
	}
	if err := s.validateRuleTarget(workspace.ID, &rule); err != nil {
		return EError(c, err)
	}
	if err := dao.CreateManagementRule(s.db, &rule); err != nil {
		return EError(c, err)
	}

	var created dao.ManagementRule
	if err := s.db.
		Joins("Subordinate").
		Joins("Team").
		Where("management_rules.id = ?", rule.ID).
		First(&created).Error; err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, created.ToDTO())
}

// createManagementRulesBulk godoc
// @id createManagementRulesBulk
// @Summary Управление: пакетное создание правил
// @Description Создает несколько правил одной транзакцией, ошибка любой цели отменяет весь пакет
// @Tags Management
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body CreateRulesBulkRequest true "Менеджер и список целей"
// @Success 201 {array} dto.ManagementRule "Созданные правила"
// @Failure 400 {object} apierrors.DefinedError "Некорректная цель в пакете"
// @Router /api/auth/workspaces/{workspaceSlug}/management/rules/bulk [post]
func (s *Services) createManagementRulesBulk(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	var req CreateRulesBulkRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	managerId := req.ManagerId
	if managerId == uuid.Nil {
		managerId = requester.MemberId
	}

	if !req.RuleType.IsValid() {
		return EErrorDefined(c, apierrors.ErrRuleTypeRequired)
	}

	var rules []dao.ManagementRule
	switch req.RuleType {
	case types.RuleIndividual:
		for i := range req.SubordinateIds {
			rules = append(rules, dao.ManagementRule{
				WorkspaceId:   workspace.ID,
				ManagerId:     managerId,
				RuleType:      types.RuleIndividual,
				SubordinateId: &req.SubordinateIds[i],
			})
		}
	case types.RuleTeam:
		for i := range req.TeamIds {
			rules = append(rules, dao.ManagementRule{
				WorkspaceId: workspace.ID,
				ManagerId:   managerId,
				RuleType:    types.RuleTeam,
				TeamId:      &req.TeamIds[i],
			})
		}
	}

	if len(rules) == 0 {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("empty targets"))
	}

	// Пакет применяется целиком либо не применяется вовсе
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range rules {
			if err := rules[i].Validate(); err != nil {
				return err
			}
			if err := s.validateRuleTarget(workspace.ID, &rules[i]); err != nil {
				return err
			}
			if err := dao.CreateManagementRule(tx, &rules[i]); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return EError(c, err)
	}

	result := make([]dto.ManagementRule, 0, len(rules))
	for i := range rules {
		result = append(result, *rules[i].ToDTO())
	}
	return c.JSON(http.StatusCreated, result)
}

// deleteManagementRule godoc
// @id deleteManagementRule
// @Summary Управление: удаление правила
// @Description Удаляет правило управления по ID
// @Tags Management
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param ruleId path string true "ID правила"
// @Success 204 "Правило удалено"
// @Failure 404 {object} apierrors.DefinedError "Правило не найдено"
// @Router /api/auth/workspaces/{workspaceSlug}/management/rules/{ruleId} [delete]
func (s *Services) deleteManagementRule(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	if err := dao.DeleteManagementRule(s.db, workspace.ID, c.Param("ruleId")); err != nil {
		if dao.IsRuleNotFound(err) {
			return EErrorDefined(c, apierrors.ErrRuleNotFound)
		}
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// getMySubordinates godoc
// @id getMySubordinates
// @Summary Управление: мои подчиненные
// @Description Возвращает подчиненных текущего пользователя, при includeTeamMembers=1 с раскрытием команд
// @Tags Management
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param includeTeamMembers query string false "Раскрывать командные правила"
// @Success 200 {object} dto.SubordinatesList "Подчиненные"
// @Router /api/auth/workspaces/{workspaceSlug}/management/subordinates/me [get]
func (s *Services) getMySubordinates(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	includeTeamMembers := c.QueryParam("includeTeamMembers") == "1" ||
		c.QueryParam("includeTeamMembers") == "true"

	subordinates, err := dao.GetSubordinates(s.db, workspace.ID, requester.MemberId, includeTeamMembers)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, subordinates)
}

// getMyManagedTeams godoc
// @id getMyManagedTeams
// @Summary Управление: мои команды
// @Description Возвращает команды под управлением текущего пользователя
// @Tags Management
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {array} dto.ManagedTeam "Управляемые команды"
// @Router /api/auth/workspaces/{workspaceSlug}/management/teams/me [get]
func (s *Services) getMyManagedTeams(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	teams, err := dao.GetManagedTeams(s.db, workspace.ID, requester.MemberId)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, teams)
}

// getAssignmentCandidates godoc
// @id getAssignmentCandidates
// @Summary Управление: кандидаты для назначения
// @Description Возвращает пользователей и команды, доступные менеджеру. Сам менеджер в список не попадает
// @Tags Management
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param managerId query string false "UUID менеджера, по умолчанию текущий пользователь"
// @Success 200 {object} dto.AssignmentCandidates "Кандидаты"
// @Router /api/auth/workspaces/{workspaceSlug}/management/candidates [get]
func (s *Services) getAssignmentCandidates(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	managerId, err := s.resolveManagerParam(c)
	if err != nil {
		return EError(c, err)
	}

	candidates, err := dao.GetAssignmentCandidates(s.db, workspace.ID, managerId)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, candidates)
}

// checkManagedByMe godoc
// @id checkManagedByMe
// @Summary Управление: проверка подчиненности
// @Description Сообщает, находится ли пользователь под управлением текущего пользователя
// @Tags Management
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param userId path string true "UUID пользователя"
// @Success 200 {object} map[string]bool "Результат проверки"
// @Router /api/auth/workspaces/{workspaceSlug}/management/check/{userId} [get]
func (s *Services) checkManagedByMe(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	userId, err := uuid.FromString(c.Param("userId"))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrUserNotFound)
	}

	managed, err := dao.IsManagedBy(s.db, workspace.ID, requester.MemberId, userId)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"managed": managed})
}
