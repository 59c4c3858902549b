// Обработчики геймификации: профили, XP, бейджи и таблица лидеров.
package forge

import (
	"net/http"
	"strconv"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/dto"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
)

// AddGamificationServices - добавление сервисов геймификации
func (s *Services) AddGamificationServices(g *echo.Group) {
	g.GET("/gamification/profile/me/", s.getMyGamificationProfile)
	g.GET("/gamification/profile/:userId/", s.getGamificationProfile)
	g.POST("/gamification/xp/", s.addXP)
	g.GET("/gamification/badges/me/", s.getMyBadges)
	g.GET("/gamification/leaderboard/", s.getLeaderboard)
}

type AddXPRequest struct {
	UserId uuid.UUID `json:"user_id"`
	Amount int       `json:"amount"`
	Reason string    `json:"reason"`
}

// getMyGamificationProfile godoc
// @id getMyGamificationProfile
// @Summary Геймификация: мой профиль
// @Description Возвращает профиль геймификации текущего пользователя, создавая его при первом обращении
// @Tags Gamification
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {object} dto.GamificationProfile "Профиль"
// @Router /api/auth/workspaces/{workspaceSlug}/gamification/profile/me [get]
func (s *Services) getMyGamificationProfile(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	profile, err := dao.GetOrCreateProfile(s.db, workspace.ID, requester.MemberId)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, profile.ToDTO())
}

// getGamificationProfile godoc
// @id getGamificationProfile
// @Summary Геймификация: профиль пользователя
// @Description Возвращает профиль геймификации участника пространства
// @Tags Gamification
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param userId path string true "UUID пользователя"
// @Success 200 {object} dto.GamificationProfile "Профиль"
// @Failure 404 {object} apierrors.DefinedError "Профиль не найден"
// @Router /api/auth/workspaces/{workspaceSlug}/gamification/profile/{userId} [get]
func (s *Services) getGamificationProfile(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	userId, err := uuid.FromString(c.Param("userId"))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrUserNotFound)
	}

	isMember, err := dao.IsWorkspaceMember(s.db, workspace.ID, userId)
	if err != nil {
		return EError(c, err)
	}
	if !isMember {
		return EErrorDefined(c, apierrors.ErrProfileNotFound)
	}

	profile, err := dao.GetOrCreateProfile(s.db, workspace.ID, userId)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, profile.ToDTO())
}

// addXP godoc
// @id addXP
// @Summary Геймификация: начисление XP
// @Description Начисляет XP пользователю с пересчетом уровня, серии активности и проверкой бейджей. Доступно администраторам и менеджерам пользователя
// @Tags Gamification
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body AddXPRequest true "Пользователь, количество XP и причина"
// @Success 200 {object} dto.GamificationProfile "Обновленный профиль"
// @Failure 403 {object} apierrors.DefinedError "Пользователь не под вашим управлением"
// @Router /api/auth/workspaces/{workspaceSlug}/gamification/xp [post]
func (s *Services) addXP(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	var req AddXPRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if req.Amount <= 0 {
		return EErrorDefined(c, apierrors.ErrBadXPAmount)
	}

	if req.UserId == uuid.Nil {
		req.UserId = requester.MemberId
	}

	if req.UserId != requester.MemberId && !requester.HasAdminRights() {
		managed, err := dao.IsManagedBy(s.db, workspace.ID, requester.MemberId, req.UserId)
		if err != nil {
			return EError(c, err)
		}
		if !managed {
			return EErrorDefined(c, apierrors.ErrNotManagedByYou)
		}
	}

	profile, err := dao.GetOrCreateProfile(s.db, workspace.ID, req.UserId)
	if err != nil {
		return EError(c, err)
	}

	if _, err := dao.AddXP(s.db, profile, req.Amount); err != nil {
		return EError(c, err)
	}

	if err := dao.CheckBadges(s.db, profile); err != nil {
		return EError(c, err)
	}

	// Перечитываем с бейджами после проверки
	profile, err = dao.GetOrCreateProfile(s.db, workspace.ID, req.UserId)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, profile.ToDTO())
}

// getMyBadges godoc
// @id getMyBadges
// @Summary Геймификация: мои бейджи
// @Description Возвращает бейджи текущего пользователя в пространстве
// @Tags Gamification
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {array} dto.Badge "Бейджи"
// @Router /api/auth/workspaces/{workspaceSlug}/gamification/badges/me [get]
func (s *Services) getMyBadges(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	profile, err := dao.GetOrCreateProfile(s.db, workspace.ID, requester.MemberId)
	if err != nil {
		return EError(c, err)
	}

	badges := make([]dto.Badge, 0, len(profile.Badges))
	for i := range profile.Badges {
		badges = append(badges, *profile.Badges[i].ToDTO())
	}
	return c.JSON(http.StatusOK, badges)
}

// getLeaderboard godoc
// @id getLeaderboard
// @Summary Геймификация: таблица лидеров
// @Description Возвращает профили пространства по убыванию суммарного XP
// @Tags Gamification
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param limit query int false "Максимум записей"
// @Success 200 {array} dto.GamificationProfile "Таблица лидеров"
// @Router /api/auth/workspaces/{workspaceSlug}/gamification/leaderboard [get]
func (s *Services) getLeaderboard(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	profiles, err := dao.GetWorkspaceLeaderboard(s.db, workspace.ID, limit)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.GamificationProfile, 0, len(profiles))
	for i := range profiles {
		result = append(result, *profiles[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}
