// Обработчики запросов для работы с профилем пользователя.
package forge

import (
	"net/http"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AddUserServices - добавление сервисов пользователей
func (s *Services) AddUserServices(g *echo.Group) {
	g.GET("users/me/", s.getCurrentUser)
	g.PATCH("users/me/", s.updateCurrentUser, DemoMiddleware)
	g.POST("users/me/change-password/", s.changePassword, DemoMiddleware)
	g.GET("users/:userId/", s.getUser)
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,fullName"`
	Position *string `json:"position"`
	Bio      *string `json:"bio"`
	GithubId *string `json:"github_id"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"min=8"`
}

// getCurrentUser godoc
// @id getCurrentUser
// @Summary Пользователи: текущий пользователь
// @Description Возвращает профиль аутентифицированного пользователя
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.User "Профиль пользователя"
// @Router /api/auth/users/me [get]
func (s *Services) getCurrentUser(c echo.Context) error {
	user := c.(AuthContext).User
	return c.JSON(http.StatusOK, user.ToDTO())
}

// updateCurrentUser godoc
// @id updateCurrentUser
// @Summary Пользователи: обновление профиля
// @Description Обновляет переданные поля профиля текущего пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param data body UpdateUserRequest true "Изменяемые поля"
// @Success 200 {object} dto.User "Обновленный профиль"
// @Failure 400 {object} apierrors.DefinedError "Некорректные данные"
// @Router /api/auth/users/me [patch]
func (s *Services) updateCurrentUser(c echo.Context) error {
	user := c.(AuthContext).User

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		user.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.Position != nil {
		user.Position = *req.Position
		fields["position"] = *req.Position
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
		fields["bio"] = *req.Bio
	}
	if req.GithubId != nil {
		user.GithubId = req.GithubId
		fields["github_id"] = req.GithubId
	}

	if len(fields) > 0 {
		if err := s.db.Model(user).Updates(fields).Error; err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusOK, user.ToDTO())
}

// changePassword godoc
// @id changePassword
// @Summary Пользователи: смена пароля
// @Description Меняет пароль после проверки текущего
// @Tags Users
// @Accept json
// @Security ApiKeyAuth
// @Param data body ChangePasswordRequest true "Старый и новый пароли"
// @Success 200 "Пароль изменен"
// @Failure 400 {object} apierrors.DefinedError "Неверный текущий пароль"
// @Router /api/auth/users/me/change-password [post]
func (s *Services) changePassword(c echo.Context) error {
	user := c.(AuthContext).User

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	if !user.CheckPassword(req.OldPassword) {
		return EErrorDefined(c, apierrors.ErrWrongPassword)
	}

	if err := user.SetPassword(req.NewPassword, cfg.BcryptCost); err != nil {
		return EError(c, err)
	}

	if err := s.db.Model(user).Update("password", user.Password).Error; err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// getUser godoc
// @id getUser
// @Summary Пользователи: получение пользователя
// @Description Возвращает пользователя по UUID либо email
// @Tags Users
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "UUID или email пользователя"
// @Success 200 {object} dto.UserLight "Пользователь"
// @Failure 404 {object} apierrors.DefinedError "Пользователь не найден"
// @Router /api/auth/users/{userId} [get]
func (s *Services) getUser(c echo.Context) error {
	user, err := dao.GetUserByIdOrEmail(s.db, c.Param("userId"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrUserNotFound)
		}
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, user.ToLightDTO())
}
