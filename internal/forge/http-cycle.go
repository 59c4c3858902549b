// Обработчики циклов развития (PDI): циклы, цели, компетенции и активности.
//
// Просмотр чужого PDI разрешен администраторам пространства и менеджерам
// владельца цикла. Завершение целей, рост компетенций и активности
// начисляют XP владельцу.
package forge

import (
	"net/http"
	"time"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"
	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AddCycleServices - добавление сервисов циклов развития
func (s *Services) AddCycleServices(g *echo.Group) {
	g.GET("/cycles/", s.getCycleList)
	g.POST("/cycles/", s.createCycle)
	g.GET("/cycles/active/", s.getActiveCycle)

	cycleGroup := g.Group("/cycles/:cycleId", s.CycleMiddleware)
	cycleGroup.GET("/", s.getCycle)
	cycleGroup.PATCH("/", s.updateCycle)
	cycleGroup.DELETE("/", s.deleteCycle)

	cycleGroup.GET("/goals/", s.getGoalList)
	cycleGroup.POST("/goals/", s.createGoal)
	cycleGroup.PATCH("/goals/:goalId/", s.updateGoal)
	cycleGroup.DELETE("/goals/:goalId/", s.deleteGoal)

	cycleGroup.GET("/competencies/", s.getCompetencyList)
	cycleGroup.POST("/competencies/", s.createCompetency)
	cycleGroup.PATCH("/competencies/:competencyId/", s.updateCompetency)
	cycleGroup.DELETE("/competencies/:competencyId/", s.deleteCompetency)

	cycleGroup.GET("/activities/", s.getActivityList)
	cycleGroup.POST("/activities/", s.createActivity)
	cycleGroup.GET("/activities/:activityId/", s.getActivity)
	cycleGroup.PATCH("/activities/:activityId/", s.updateActivity)
	cycleGroup.DELETE("/activities/:activityId/", s.deleteActivity)
}

type CycleContext struct {
	WorkspaceContext
	Cycle dao.Cycle
}

func (s *Services) CycleMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		workspace := c.(WorkspaceContext).Workspace
		requester := c.(WorkspaceContext).WorkspaceMember

		cycle, err := dao.GetCycle(s.db, workspace.ID, c.Param("cycleId"))
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return EErrorDefined(c, apierrors.ErrCycleNotFound)
			}
			return EError(c, err)
		}

		if cycle.UserId != requester.MemberId && !requester.HasAdminRights() {
			managed, err := dao.IsManagedBy(s.db, workspace.ID, requester.MemberId, cycle.UserId)
			if err != nil {
				return EError(c, err)
			}
			if !managed {
				return EErrorDefined(c, apierrors.ErrNotManagedByYou)
			}
		}

		return next(CycleContext{c.(WorkspaceContext), *cycle})
	}
}

// Начисление XP с проверкой бейджей, профиль создается при необходимости
func (s *Services) awardXP(workspaceId, userId uuid.UUID, amount int) error {
	profile, err := dao.GetOrCreateProfile(s.db, workspaceId, userId)
	if err != nil {
		return err
	}
	if _, err := dao.AddXP(s.db, profile, amount); err != nil {
		return err
	}
	return dao.CheckBadges(s.db, profile)
}

type CreateCycleRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type UpdateCycleRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	Status      *types.CycleStatus `json:"status"`
}

type CreateGoalRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        types.GoalType `json:"type"`
	StartValue  float64        `json:"start_value"`
	TargetValue float64        `json:"target_value"`
	Unit        string         `json:"unit"`
}

type UpdateGoalRequest struct {
	Title        *string           `json:"title"`
	Description  *string           `json:"description"`
	CurrentValue *float64          `json:"current_value"`
	TargetValue  *float64          `json:"target_value"`
	Status       *types.GoalStatus `json:"status"`
}

type CreateCompetencyRequest struct {
	Name         string                   `json:"name"`
	Category     types.CompetencyCategory `json:"category"`
	CurrentLevel int                      `json:"current_level"`
	TargetLevel  int                      `json:"target_level"`
}

type UpdateCompetencyRequest struct {
	Name         *string `json:"name"`
	CurrentLevel *int    `json:"current_level"`
	TargetLevel  *int    `json:"target_level"`
}

type CreateActivityRequest struct {
	Type        types.ActivityType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	XPEarned    int                `json:"xp_earned"`
	Duration    int                `json:"duration"`

	OneOnOne      *dto.OneOnOneDetail      `json:"one_on_one"`
	Mentoring     *dto.MentoringDetail     `json:"mentoring"`
	Certification *dto.CertificationDetail `json:"certification"`
}

type UpdateActivityRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration"`
}

// getCycleList godoc
// @id getCycleList
// @Summary PDI: список циклов
// @Description Возвращает циклы пользователя в пространстве, свежие первыми
// @Tags Cycles
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param userId query string false "UUID пользователя, по умолчанию текущий"
// @Success 200 {array} dto.Cycle "Циклы"
// @Failure 403 {object} apierrors.DefinedError "Пользователь не под вашим управлением"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles [get]
func (s *Services) getCycleList(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	userId := requester.MemberId
	if param := c.QueryParam("userId"); param != "" {
		id, err := uuid.FromString(param)
		if err != nil {
			return EErrorDefined(c, apierrors.ErrUserNotFound)
		}
		if id != requester.MemberId && !requester.HasAdminRights() {
			managed, err := dao.IsManagedBy(s.db, workspace.ID, requester.MemberId, id)
			if err != nil {
				return EError(c, err)
			}
			if !managed {
				return EErrorDefined(c, apierrors.ErrNotManagedByYou)
			}
		}
		userId = id
	}

	cycles, err := dao.GetUserCycles(s.db, workspace.ID, userId)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.Cycle, 0, len(cycles))
	for i := range cycles {
		result = append(result, *cycles[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// createCycle godoc
// @id createCycle
// @Summary PDI: создание цикла
// @Description Создает цикл развития текущего пользователя
// @Tags Cycles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body CreateCycleRequest true "Данные цикла"
// @Success 201 {object} dto.Cycle "Созданный цикл"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles [post]
func (s *Services) createCycle(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	var req CreateCycleRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if req.Name == "" {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("name"))
	}

	cycle := dao.Cycle{
		ID:          dao.GenUUID(),
		WorkspaceId: workspace.ID,
		UserId:      requester.MemberId,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      types.CycleActive,
	}
	if err := s.db.Create(&cycle).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, cycle.ToDTO())
}

// getActiveCycle godoc
// @id getActiveCycle
// @Summary PDI: активный цикл
// @Description Возвращает активный цикл текущего пользователя
// @Tags Cycles
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Success 200 {object} dto.Cycle "Активный цикл"
// @Failure 404 {object} apierrors.DefinedError "Нет активного цикла"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/active [get]
func (s *Services) getActiveCycle(c echo.Context) error {
	workspace := c.(WorkspaceContext).Workspace
	requester := c.(WorkspaceContext).WorkspaceMember

	cycle, err := dao.GetActiveCycle(s.db, workspace.ID, requester.MemberId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrNoActiveCycle)
		}
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, cycle.ToDTO())
}

// getCycle godoc
// @id getCycle
// @Summary PDI: получение цикла
// @Description Возвращает цикл по ID
// @Tags Cycles
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Success 200 {object} dto.Cycle "Цикл"
// @Failure 404 {object} apierrors.DefinedError "Цикл не найден"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId} [get]
func (s *Services) getCycle(c echo.Context) error {
	cycle := c.(CycleContext).Cycle
	return c.JSON(http.StatusOK, cycle.ToDTO())
}

// updateCycle godoc
// @id updateCycle
// @Summary PDI: обновление цикла
// @Description Обновляет поля цикла. Перевод в статус COMPLETED начисляет XP владельцу
// @Tags Cycles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param data body UpdateCycleRequest true "Изменяемые поля"
// @Success 200 {object} dto.Cycle "Обновленный цикл"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId} [patch]
func (s *Services) updateCycle(c echo.Context) error {
	workspace := c.(CycleContext).Workspace
	cycle := c.(CycleContext).Cycle

	var req UpdateCycleRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	completed := false

	fields := map[string]interface{}{}
	if req.Name != nil {
		cycle.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		cycle.Description = *req.Description
		fields["description"] = *req.Description
	}
	if req.StartDate != nil {
		cycle.StartDate = *req.StartDate
		fields["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		cycle.EndDate = *req.EndDate
		fields["end_date"] = *req.EndDate
	}
	if req.Status != nil {
		switch *req.Status {
		case types.CycleActive, types.CycleCompleted, types.CycleArchived:
		default:
			return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("status"))
		}
		completed = cycle.Status != types.CycleCompleted && *req.Status == types.CycleCompleted
		cycle.Status = *req.Status
		fields["status"] = *req.Status
	}

	if len(fields) > 0 {
		if err := s.db.Model(&cycle).Updates(fields).Error; err != nil {
			return EError(c, err)
		}
	}

	if completed {
		if err := s.awardXP(workspace.ID, cycle.UserId, types.XPCycleCompleted); err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusOK, cycle.ToDTO())
}

// deleteCycle godoc
// @id deleteCycle
// @Summary PDI: удаление цикла
// @Description Удаляет цикл со всеми целями, компетенциями и активностями
// @Tags Cycles
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Success 204 "Цикл удален"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId} [delete]
func (s *Services) deleteCycle(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		activityIds := tx.Model(&dao.Activity{}).Select("id").Where("cycle_id = ?", cycle.ID)
		if err := tx.Where("activity_id IN (?)", activityIds).Delete(&dao.OneOnOneActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id IN (?)", activityIds).Delete(&dao.MentoringActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id IN (?)", activityIds).Delete(&dao.CertificationActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cycle_id = ?", cycle.ID).Delete(&dao.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cycle_id = ?", cycle.ID).Delete(&dao.Goal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cycle_id = ?", cycle.ID).Delete(&dao.Competency{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cycle).Error
	}); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// getGoalList godoc
// @id getGoalList
// @Summary PDI: список целей цикла
// @Description Возвращает цели цикла с вычисленным прогрессом
// @Tags Goals
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Success 200 {array} dto.Goal "Цели"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/goals [get]
func (s *Services) getGoalList(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	goals, err := dao.GetCycleGoals(s.db, cycle.ID)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.Goal, 0, len(goals))
	for i := range goals {
		result = append(result, *goals[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// createGoal godoc
// @id createGoal
// @Summary PDI: создание цели
// @Description Создает цель в цикле развития
// @Tags Goals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param data body CreateGoalRequest true "Данные цели"
// @Success 201 {object} dto.Goal "Созданная цель"
// @Failure 400 {object} apierrors.DefinedError "Некорректный тип цели"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/goals [post]
func (s *Services) createGoal(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	var req CreateGoalRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if !req.Type.IsValid() {
		return EErrorDefined(c, apierrors.ErrGoalTypeRequired)
	}
	if req.Title == "" {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("title"))
	}

	goal := dao.Goal{
		ID:           dao.GenUUID(),
		CycleId:      cycle.ID,
		UserId:       cycle.UserId,
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		Status:       types.GoalActive,
		StartValue:   req.StartValue,
		CurrentValue: req.StartValue,
		TargetValue:  req.TargetValue,
		Unit:         req.Unit,
	}
	if err := s.db.Create(&goal).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, goal.ToDTO())
}

// updateGoal godoc
// @id updateGoal
// @Summary PDI: обновление цели
// @Description Обновляет поля цели. Перевод в статус COMPLETED начисляет XP владельцу
// @Tags Goals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param goalId path string true "ID цели"
// @Param data body UpdateGoalRequest true "Изменяемые поля"
// @Success 200 {object} dto.Goal "Обновленная цель"
// @Failure 404 {object} apierrors.DefinedError "Цель не найдена"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/goals/{goalId} [patch]
func (s *Services) updateGoal(c echo.Context) error {
	workspace := c.(CycleContext).Workspace
	cycle := c.(CycleContext).Cycle

	goal, err := dao.GetCycleGoal(s.db, cycle.ID, c.Param("goalId"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrGoalNotFound)
		}
		return EError(c, err)
	}

	var req UpdateGoalRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	completed := false

	fields := map[string]interface{}{}
	if req.Title != nil {
		goal.Title = *req.Title
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		goal.Description = *req.Description
		fields["description"] = *req.Description
	}
	if req.CurrentValue != nil {
		goal.CurrentValue = *req.CurrentValue
		fields["current_value"] = *req.CurrentValue
	}
	if req.TargetValue != nil {
		goal.TargetValue = *req.TargetValue
		fields["target_value"] = *req.TargetValue
	}
	if req.Status != nil {
		switch *req.Status {
		case types.GoalActive, types.GoalCompletedSt, types.GoalCancelled:
		default:
			return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("status"))
		}
		completed = goal.Status != types.GoalCompletedSt && *req.Status == types.GoalCompletedSt
		goal.Status = *req.Status
		fields["status"] = *req.Status
	}

	if len(fields) > 0 {
		if err := s.db.Model(goal).Updates(fields).Error; err != nil {
			return EError(c, err)
		}
	}

	if completed {
		if err := s.awardXP(workspace.ID, goal.UserId, types.XPGoalCompleted); err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusOK, goal.ToDTO())
}

// deleteGoal godoc
// @id deleteGoal
// @Summary PDI: удаление цели
// @Description Удаляет цель из цикла
// @Tags Goals
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param goalId path string true "ID цели"
// @Success 204 "Цель удалена"
// @Failure 404 {object} apierrors.DefinedError "Цель не найдена"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/goals/{goalId} [delete]
func (s *Services) deleteGoal(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	res := s.db.
		Where("cycle_id = ?", cycle.ID).
		Where("id = ?", c.Param("goalId")).
		Delete(&dao.Goal{})
	if res.Error != nil {
		return EError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return EErrorDefined(c, apierrors.ErrGoalNotFound)
	}

	return c.NoContent(http.StatusNoContent)
}

// getCompetencyList godoc
// @id getCompetencyList
// @Summary PDI: список компетенций цикла
// @Description Возвращает компетенции цикла
// @Tags Competencies
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Success 200 {array} dto.Competency "Компетенции"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/competencies [get]
func (s *Services) getCompetencyList(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	competencies, err := dao.GetCycleCompetencies(s.db, cycle.ID)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.Competency, 0, len(competencies))
	for i := range competencies {
		result = append(result, *competencies[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// createCompetency godoc
// @id createCompetency
// @Summary PDI: создание компетенции
// @Description Создает компетенцию с уровнями от 1 до 5
// @Tags Competencies
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param data body CreateCompetencyRequest true "Данные компетенции"
// @Success 201 {object} dto.Competency "Созданная компетенция"
// @Failure 400 {object} apierrors.DefinedError "Некорректная категория или уровень"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/competencies [post]
func (s *Services) createCompetency(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	var req CreateCompetencyRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if !req.Category.IsValid() {
		return EErrorDefined(c, apierrors.ErrBadCategory)
	}
	if req.CurrentLevel < 1 || req.CurrentLevel > 5 || req.TargetLevel < 1 || req.TargetLevel > 5 {
		return EErrorDefined(c, apierrors.ErrBadCompetencyLevel)
	}
	if req.Name == "" {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("name"))
	}

	competency := dao.Competency{
		ID:           dao.GenUUID(),
		CycleId:      cycle.ID,
		UserId:       cycle.UserId,
		Name:         req.Name,
		Category:     req.Category,
		CurrentLevel: req.CurrentLevel,
		TargetLevel:  req.TargetLevel,
	}
	if err := s.db.Create(&competency).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, competency.ToDTO())
}

// updateCompetency godoc
// @id updateCompetency
// @Summary PDI: обновление компетенции
// @Description Обновляет компетенцию. Рост текущего уровня начисляет XP владельцу
// @Tags Competencies
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param competencyId path string true "ID компетенции"
// @Param data body UpdateCompetencyRequest true "Изменяемые поля"
// @Success 200 {object} dto.Competency "Обновленная компетенция"
// @Failure 404 {object} apierrors.DefinedError "Компетенция не найдена"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/competencies/{competencyId} [patch]
func (s *Services) updateCompetency(c echo.Context) error {
	workspace := c.(CycleContext).Workspace
	cycle := c.(CycleContext).Cycle

	competency, err := dao.GetCycleCompetency(s.db, cycle.ID, c.Param("competencyId"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrCompetencyNotFound)
		}
		return EError(c, err)
	}

	var req UpdateCompetencyRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	leveledUp := false

	fields := map[string]interface{}{}
	if req.Name != nil {
		competency.Name = *req.Name
		fields["name"] = *req.Name
	}
	if req.CurrentLevel != nil {
		if *req.CurrentLevel < 1 || *req.CurrentLevel > 5 {
			return EErrorDefined(c, apierrors.ErrBadCompetencyLevel)
		}
		leveledUp = *req.CurrentLevel > competency.CurrentLevel
		competency.CurrentLevel = *req.CurrentLevel
		fields["current_level"] = *req.CurrentLevel
	}
	if req.TargetLevel != nil {
		if *req.TargetLevel < 1 || *req.TargetLevel > 5 {
			return EErrorDefined(c, apierrors.ErrBadCompetencyLevel)
		}
		competency.TargetLevel = *req.TargetLevel
		fields["target_level"] = *req.TargetLevel
	}

	if len(fields) > 0 {
		if err := s.db.Model(competency).Updates(fields).Error; err != nil {
			return EError(c, err)
		}
	}

	if leveledUp {
		if err := s.awardXP(workspace.ID, competency.UserId, types.XPCompetencyLevelUp); err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusOK, competency.ToDTO())
}

// deleteCompetency godoc
// @id deleteCompetency
// @Summary PDI: удаление компетенции
// @Description Удаляет компетенцию из цикла
// @Tags Competencies
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param competencyId path string true "ID компетенции"
// @Success 204 "Компетенция удалена"
// @Failure 404 {object} apierrors.DefinedError "Компетенция не найдена"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/competencies/{competencyId} [delete]
func (s *Services) deleteCompetency(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	res := s.db.
		Where("cycle_id = ?", cycle.ID).
		Where("id = ?", c.Param("competencyId")).
		Delete(&dao.Competency{})
	if res.Error != nil {
		return EError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return EErrorDefined(c, apierrors.ErrCompetencyNotFound)
	}

	return c.NoContent(http.StatusNoContent)
}

// getActivityList godoc
// @id getActivityList
// @Summary PDI: список активностей цикла
// @Description Возвращает активности цикла с детальными записями
// @Tags Activities
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Success 200 {array} dto.Activity "Активности"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/activities [get]
func (s *Services) getActivityList(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	activities, err := dao.GetCycleActivities(s.db, cycle.ID)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.Activity, 0, len(activities))
	for i := range activities {
		result = append(result, *activities[i].ToDTO())
	}
	return c.JSON(http.StatusOK, result)
}

// createActivity godoc
// @id createActivity
// @Summary PDI: создание активности
// @Description Создает активность с детальной записью ее типа и начисляет XP владельцу цикла
// @Tags Activities
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param data body CreateActivityRequest true "Данные активности с деталями по типу"
// @Success 201 {object} dto.Activity "Созданная активность"
// @Failure 400 {object} apierrors.DefinedError "Отсутствуют детали для типа активности"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/activities [post]
func (s *Services) createActivity(c echo.Context) error {
	workspace := c.(CycleContext).Workspace
	cycle := c.(CycleContext).Cycle

	var req CreateActivityRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if !req.Type.IsValid() {
		return EErrorDefined(c, apierrors.ErrActivityTypeRequired)
	}
	if req.Title == "" {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("title"))
	}

	activity := dao.Activity{
		ID:          dao.GenUUID(),
		CycleId:     cycle.ID,
		UserId:      cycle.UserId,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		XPEarned:    req.XPEarned,
		Duration:    req.Duration,
	}

	switch req.Type {
	case types.ActivityOneOnOne:
		if req.OneOnOne == nil {
			return EErrorDefined(c, apierrors.ErrActivityDetailNeeded.WithFormattedMessage(req.Type))
		}
		activity.OneOnOne = &dao.OneOnOneActivity{
			ParticipantId:     req.OneOnOne.ParticipantID,
			ParticipantName:   req.OneOnOne.ParticipantName,
			CompletedAt:       req.OneOnOne.CompletedAt,
			WorkingOn:         pq.StringArray(req.OneOnOne.WorkingOn),
			GeneralNotes:      req.OneOnOne.GeneralNotes,
			PositivePoints:    pq.StringArray(req.OneOnOne.PositivePoints),
			ImprovementPoints: pq.StringArray(req.OneOnOne.ImprovementPoints),
			NextSteps:         pq.StringArray(req.OneOnOne.NextSteps),
		}
	case types.ActivityMentoring:
		if req.Mentoring == nil {
			return EErrorDefined(c, apierrors.ErrActivityDetailNeeded.WithFormattedMessage(req.Type))
		}
		activity.Mentoring = &dao.MentoringActivity{
			MenteeName:   req.Mentoring.MenteeName,
			Topics:       pq.StringArray(req.Mentoring.Topics),
			ProgressFrom: req.Mentoring.ProgressFrom,
			ProgressTo:   req.Mentoring.ProgressTo,
			Outcomes:     req.Mentoring.Outcomes,
			NextSteps:    pq.StringArray(req.Mentoring.NextSteps),
		}
	case types.ActivityCertification:
		if req.Certification == nil {
			return EErrorDefined(c, apierrors.ErrActivityDetailNeeded.WithFormattedMessage(req.Type))
		}
		activity.Certification = &dao.CertificationActivity{
			CertificationName: req.Certification.CertificationName,
			Topics:            pq.StringArray(req.Certification.Topics),
			Outcomes:          req.Certification.Outcomes,
			Rating:            req.Certification.Rating,
			NextSteps:         pq.StringArray(req.Certification.NextSteps),
		}
	}

	if err := dao.CreateActivity(s.db, &activity); err != nil {
		return EError(c, err)
	}

	if activity.XPEarned > 0 {
		if err := s.awardXP(workspace.ID, cycle.UserId, activity.XPEarned); err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, activity.ToDTO())
}

// getActivity godoc
// @id getActivity
// @Summary PDI: получение активности
// @Description Возвращает активность с деталями по ID
// @Tags Activities
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param activityId path string true "ID активности"
// @Success 200 {object} dto.Activity "Активность"
// @Failure 404 {object} apierrors.DefinedError "Активность не найдена"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/activities/{activityId} [get]
func (s *Services) getActivity(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	activity, err := dao.GetCycleActivity(s.db, cycle.ID, c.Param("activityId"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrActivityNotFound)
		}
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, activity.ToDTO())
}

// updateActivity godoc
// @id updateActivity
// @Summary PDI: обновление активности
// @Description Обновляет базовые поля активности
// @Tags Activities
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param activityId path string true "ID активности"
// @Param data body UpdateActivityRequest true "Изменяемые поля"
// @Success 200 {object} dto.Activity "Обновленная активность"
// @Failure 404 {object} apierrors.DefinedError "Активность не найдена"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/activities/{activityId} [patch]
func (s *Services) updateActivity(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	activity, err := dao.GetCycleActivity(s.db, cycle.ID, c.Param("activityId"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrActivityNotFound)
		}
		return EError(c, err)
	}

	var req UpdateActivityRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		activity.Title = *req.Title
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		activity.Description = *req.Description
		fields["description"] = *req.Description
	}
	if req.Duration != nil {
		activity.Duration = *req.Duration
		fields["duration"] = *req.Duration
	}

	if len(fields) > 0 {
		if err := s.db.Model(activity).Updates(fields).Error; err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusOK, activity.ToDTO())
}

// deleteActivity godoc
// @id deleteActivity
// @Summary PDI: удаление активности
// @Description Удаляет активность вместе с детальной записью
// @Tags Activities
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param cycleId path string true "ID цикла"
// @Param activityId path string true "ID активности"
// @Success 204 "Активность удалена"
// @Failure 404 {object} apierrors.DefinedError "Активность не найдена"
// @Router /api/auth/workspaces/{workspaceSlug}/cycles/{cycleId}/activities/{activityId} [delete]
func (s *Services) deleteActivity(c echo.Context) error {
	cycle := c.(CycleContext).Cycle

	activity, err := dao.GetCycleActivity(s.db, cycle.ID, c.Param("activityId"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrActivityNotFound)
		}
		return EError(c, err)
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", activity.ID).Delete(&dao.OneOnOneActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", activity.ID).Delete(&dao.MentoringActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", activity.ID).Delete(&dao.CertificationActivity{}).Error; err != nil {
			return err
		}
		return tx.Delete(activity).Error
	}); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
