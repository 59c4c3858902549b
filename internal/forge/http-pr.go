// Обработчики метрик pull request: листинг с фильтрами и прием данных
// синхронизации из внешних систем.
package forge

import (
	"net/http"
	"strconv"
	"time"

	"github.com/forge-hq/forge/internal/forge/apierrors"
	"github.com/forge-hq/forge/internal/forge/dao"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AddPullRequestServices - добавление сервисов pull request
func (s *Services) AddPullRequestServices(g *echo.Group) {
	g.GET("/prs/", s.getPullRequestList)
	g.GET("/prs/:prId/", s.getPullRequest)
	g.POST("/prs/ingest/", s.ingestPullRequest, s.WorkspaceAdminMiddleware)
}

type IngestPullRequestRequest struct {
	Repo   string `json:"repo"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Author string `json:"author"`

	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`

	ReviewSummary string `json:"review_summary"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

// getPullRequestList godoc
// @id getPullRequestList
// @Summary PR: список pull request
// @Description Возвращает страницу pull request с фильтрами по репозиторию, автору, состоянию и подстроке. meta=1 добавляет справочники значений фильтров
// @Tags PullRequests
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param repo query string false "Репозиторий"
// @Param state query string false "Состояние: open, closed, merged"
// @Param author query string false "Автор"
// @Param q query string false "Подстрока заголовка или автора"
// @Param page query int false "Номер страницы"
// @Param pageSize query int false "Размер страницы, максимум 100"
// @Param sort query string false "Сортировка field:dir"
// @Param meta query int false "1 - включить справочники фильтров"
// @Success 200 {object} dto.PullRequestList "Страница pull request"
// @Router /api/auth/workspaces/{workspaceSlug}/prs [get]
func (s *Services) getPullRequestList(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))

	filters := dao.PullRequestFilters{
		Repo:     c.QueryParam("repo"),
		State:    c.QueryParam("state"),
		Author:   c.QueryParam("author"),
		Query:    c.QueryParam("q"),
		Page:     page,
		PageSize: pageSize,
		Sort:     c.QueryParam("sort"),
		WithMeta: c.QueryParam("meta") == "1",
	}

	result, err := dao.GetPullRequests(s.db, filters)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// getPullRequest godoc
// @id getPullRequest
// @Summary PR: получение pull request
// @Description Возвращает pull request по ID
// @Tags PullRequests
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param prId path int true "ID pull request"
// @Success 200 {object} dto.PullRequest "Pull request"
// @Failure 404 {object} apierrors.DefinedError "Pull request не найден"
// @Router /api/auth/workspaces/{workspaceSlug}/prs/{prId} [get]
func (s *Services) getPullRequest(c echo.Context) error {
	pr, err := dao.GetPullRequest(s.db, c.Param("prId"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrPRNotFound)
		}
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, pr.ToDTO())
}

// ingestPullRequest godoc
// @id ingestPullRequest
// @Summary PR: прием данных синхронизации
// @Description Вставляет либо обновляет pull request по паре (repo, number). Автор сопоставляется с пользователем по github_id
// @Tags PullRequests
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param workspaceSlug path string true "Slug рабочего пространства"
// @Param data body IngestPullRequestRequest true "Данные pull request"
// @Success 200 {object} dto.PullRequest "Сохраненный pull request"
// @Failure 400 {object} apierrors.DefinedError "Не указаны repo и number"
// @Router /api/auth/workspaces/{workspaceSlug}/prs/ingest [post]
func (s *Services) ingestPullRequest(c echo.Context) error {
	var req IngestPullRequestRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if req.Repo == "" || req.Number == 0 {
		return EErrorDefined(c, apierrors.ErrPRKeyRequired)
	}

	pr := dao.PullRequest{
		Repo:          req.Repo,
		Number:        req.Number,
		Title:         req.Title,
		Author:        req.Author,
		Additions:     req.Additions,
		Deletions:     req.Deletions,
		ChangedFiles:  req.ChangedFiles,
		ReviewSummary: req.ReviewSummary,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
		ClosedAt:      req.ClosedAt,
		MergedAt:      req.MergedAt,
	}
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = time.Now()
	}
	if pr.UpdatedAt.IsZero() {
		pr.UpdatedAt = time.Now()
	}

	if req.Author != "" {
		var owner dao.User
		err := s.db.Where("github_id = ?", req.Author).First(&owner).Error
		if err == nil {
			pr.OwnerUserId = &owner.ID
		} else if err != gorm.ErrRecordNotFound {
			return EError(c, err)
		}
	}

	if err := dao.UpsertPullRequest(s.db, &pr); err != nil {
		return EError(c, err)
	}

	var stored dao.PullRequest
	if err := s.db.Where("repo = ?", pr.Repo).Where("number = ?", pr.Number).First(&stored).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, stored.ToDTO())
}
