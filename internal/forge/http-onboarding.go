// Обработчики онбординга: создание пользователей администратором и пакетное
// назначение менеджеров и команд.
package forge

import (
	"net/http"
	"strings"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sethvargo/go-password/password"
	"gorm.io/gorm"
)

// AddOnboardingServices - добавление сервисов онбординга
func (s *Services) AddOnboardingServices(g *echo.Group) {
	g.POST("/onboarding/users/", s.onboardUser, s.WorkspaceAdminMiddleware, DemoMiddleware)
	g.POST("/onboarding/assignments/", s.onboardAssignments, s.WorkspaceAdminMiddleware, DemoMiddleware)
}

type OnboardUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name" validate:"fullName"`
	Position string `json:"position"`
	IsAdmin  bool   `json:"is_admin"`

	ManagerId *uuid.UUID `json:"manager_id"`
	TeamId    *uuid.UUID `json:"team_id"`
}

type OnboardAssignmentsRequest struct {
	UserIds   []uuid.UUID `json:"user_ids"`
	ManagerId *uuid.UUID  `json:"manager_id"`
	TeamId    *uuid.UUID  `json:"team_id"`
}

// onboardUser godoc
// @id onboardUser
// @Summary Онбординг: создание пользователя
// @Description Создает пользователя со сгенерированным паролем, добавляет в пространство и опционально назначает менеджера и команду. Пароль возвращается только один раз
// @Tags Onboarding
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body OnboardUserRequest true "Данные нового пользователя"
// @Success 201 {object} dto.CreatedUser "Созданный пользователь с начальным паролем"
// @Failure 409 {object} apierrors.DefinedError "Email уже зарегистрирован"
// @Router /api/auth/workspaces/{workspaceSlug}/onboarding/users [post]
func (s *Services) onboardUser(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	var req OnboardUserRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !ValidateEmail(req.Email) {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("email"))
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	var exist bool
	if err := s.db.Model(&dao.User{}).
		Select("count(*) > 0").
		Where("email = ?", req.Email).
		Find(&exist).Error; err != nil {
		return EError(c, err)
	}
	if exist {
		return EErrorDefined(c, apierrors.ErrUserAlreadyExist)
	}

	initialPassword, err := password.Generate(12, 4, 0, false, false)
	if err != nil {
		return EError(c, err)
	}

	user := dao.User{
		ID:       dao.GenUUID(),
		Email:    req.Email,
		Name:     req.Name,
		Position: req.Position,
		IsActive: true,
	}
	if err := user.SetPassword(initialPassword, cfg.BcryptCost); err != nil {
		return EError(c, err)
	}

	role := types.WorkspaceRoleMember
	if req.IsAdmin {
		role = types.WorkspaceRoleAdmin
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if err := tx.Create(&dao.WorkspaceMember{
			ID:          dao.GenUUID(),
			WorkspaceId: workspace.ID,
			MemberId:    user.ID,
			Role:        role,
		}).Error; err != nil {
			return err
		}

		if req.TeamId != nil {
			if err := s.assignTeam(tx, workspace.ID, user.ID, *req.TeamId); err != nil {
				return err
			}
		}

		if req.ManagerId != nil {
			if err := s.assignManager(tx, workspace.ID, *req.ManagerId, user.ID); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.CreatedUser{
		User:            *user.ToDTO(),
		InitialPassword: initialPassword,
	})
}

// onboardAssignments godoc
// @id onboardAssignments
// @Summary Онбординг: пакетное назначение
// @Description Применяет менеджера и/или команду к списку пользователей. Ошибки отдельных пользователей не прерывают обработку остальных
// @Tags Onboarding
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body OnboardAssignmentsRequest true "Пользователи и назначения"
// @Success 200 {array} dto.AssignmentResult "Результаты по каждому пользователю"
// @Router /api/auth/workspaces/{workspaceSlug}/onboarding/assignments [post]
func (s *Services) onboardAssignments(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace

	var req OnboardAssignmentsRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if len(req.UserIds) == 0 || (req.ManagerId == nil && req.TeamId == nil) {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("user_ids and assignment target are required"))
	}

	results := make([]dto.AssignmentResult, 0, len(req.UserIds))
	for _, userId := range req.UserIds {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			isMember, err := dao.IsWorkspaceMember(tx, workspace.ID, userId)
			if err != nil {
				return err
			}
			if !isMember {
				return apierrors.ErrUserNotInWorkspace
			}

			if req.TeamId != nil {
				if err := s.assignTeam(tx, workspace.ID, userId, *req.TeamId); err != nil {
					return err
				}
			}
			if req.ManagerId != nil {
				if err := s.assignManager(tx, workspace.ID, *req.ManagerId, userId); err != nil {
					return err
				}
			}
			return nil
		})

		result := dto.AssignmentResult{UserID: userId, OK: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	return c.JSON(http.StatusOK, results)
}

// Добавляет пользователя в команду пространства, если он еще не состоит в ней.
func (s *Services) assignTeam(tx *gorm.DB, workspaceId, userId, teamId uuid.UUID) error {
	var exist bool
	if err := tx.Model(&dao.Team{}).
		Select("count(*) > 0").
		Where("workspace_id = ?", workspaceId).
		Where("id = ?", teamId).
		Find(&exist).Error; err != nil {
		return err
	}
	if !exist {
		return apierrors.ErrTeamNotInWorkspace
	}

	inTeam, err := dao.IsTeamMember(tx, teamId, userId)
	if err != nil {
		return err
	}
	if inTeam {
		return nil
	}

	return tx.Create(&dao.TeamMember{
		ID:       dao.GenUUID(),
		TeamId:   teamId,
		MemberId: userId,
		Role:     types.TeamRoleMember,
	}).Error
}

// Создает INDIVIDUAL правило управления менеджера над пользователем.
func (s *Services) assignManager(tx *gorm.DB, workspaceId, managerId, userId uuid.UUID) error {
	isMember, err := dao.IsWorkspaceMember(tx, workspaceId, managerId)
	if err != nil {
		return err
	}
	if !isMember {
		return apierrors.ErrUserNotInWorkspace
	}

	return dao.CreateManagementRule(tx, &dao.ManagementRule{
		WorkspaceId:   workspaceId,
		ManagerId:     managerId,
		RuleType:      types.RuleIndividual,
		SubordinateId: &userId,
	})
}
