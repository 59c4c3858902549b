// DAO для работы с метриками pull request.
//
// Основные возможности:
//   - Upsert по паре (репозиторий, номер) для повторных синхронизаций.
//   - Деривация состояния из временных меток merged_at и closed_at.
//   - Листинг с фильтрами, пагинацией, сортировкой и справочниками фильтров.
package dao

import (
	"strings"
	"time"

	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Pull requests
type PullRequest struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	Repo   string `json:"repo" gorm:"uniqueIndex:idx_repo_number"`
	Number int    `json:"number" gorm:"uniqueIndex:idx_repo_number"`

	Title  string `json:"title"`
	Author string `json:"author" gorm:"index"`

	// Пользователь Forge, сопоставленный по github_id автора
	OwnerUserId *uuid.UUID `json:"owner_user_id" gorm:"type:uuid;index" extensions:"x-nullable"`

	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`

	ReviewSummary string `json:"review_summary"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at" extensions:"x-nullable"`
	MergedAt  *time.Time `json:"merged_at" extensions:"x-nullable"`
}

func (PullRequest) TableName() string { return "pull_requests" }

// State выводит состояние из временных меток: merged_at задан - merged,
// иначе closed_at задан - closed, иначе open.
func (pr *PullRequest) State() types.PRState {
	switch {
	case pr.MergedAt != nil:
		return types.PRMerged
	case pr.ClosedAt != nil:
		return types.PRClosed
	}
	return types.PROpen
}

func (pr *PullRequest) ToDTO() *dto.PullRequest {
	if pr == nil {
		return nil
	}
	return &dto.PullRequest{
		ID:            pr.ID,
		Repo:          pr.Repo,
		Number:        pr.Number,
		Title:         pr.Title,
		Author:        pr.Author,
		OwnerUserID:   pr.OwnerUserId,
		State:         pr.State(),
		Additions:     pr.Additions,
		Deletions:     pr.Deletions,
		ChangedFiles:  pr.ChangedFiles,
		ReviewSummary: pr.ReviewSummary,
		CreatedAt:     pr.CreatedAt,
		UpdatedAt:     pr.UpdatedAt,
		ClosedAt:      pr.ClosedAt,
		MergedAt:      pr.MergedAt,
	}
}

// UpsertPullRequest вставляет либо обновляет pull request по паре (repo, number).
func UpsertPullRequest(db *gorm.DB, pr *PullRequest) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "repo"}, {Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "author", "owner_user_id",
			"additions", "deletions", "changed_files",
			"review_summary", "updated_at", "closed_at", "merged_at",
		}),
	}).Create(pr).Error
}

// Фильтры листинга pull requests
type PullRequestFilters struct {
	Repo   string
	State  string
	Author string
	// Подстрока заголовка или автора без учета регистра
	Query string

	Page     int
	PageSize int
	// Формат "field:dir", поле из белого списка
	Sort string

	WithMeta bool
}

var prSortFields = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"merged_at":     "merged_at",
	"additions":     "additions",
	"deletions":     "deletions",
	"changed_files": "changed_files",
}

func (f *PullRequestFilters) orderClause() string {
	field := "created_at"
	dir := "desc"
	if f.Sort != "" {
		parts := strings.SplitN(f.Sort, ":", 2)
		if col, ok := prSortFields[parts[0]]; ok {
			field = col
			if len(parts) == 2 && strings.EqualFold(parts[1], "asc") {
				dir = "asc"
			}
		}
	}
	return field + " " + dir
}

func (f *PullRequestFilters) apply(query *gorm.DB) *gorm.DB {
	if f.Repo != "" {
		query = query.Where("repo = ?", f.Repo)
	}
	if f.Author != "" {
		query = query.Where("author = ?", f.Author)
	}
	if f.Query != "" {
		pattern := "%" + strings.ToLower(f.Query) + "%"
		query = query.Where("lower(title) LIKE ? OR lower(author) LIKE ?", pattern, pattern)
	}
	switch types.PRState(f.State) {
	case types.PRMerged:
		query = query.Where("merged_at IS NOT NULL")
	case types.PRClosed:
		query = query.Where("merged_at IS NULL AND closed_at IS NOT NULL")
	case types.PROpen:
		query = query.Where("merged_at IS NULL AND closed_at IS NULL")
	}
	return query
}

// GetPullRequests возвращает страницу pull requests по фильтрам.
// При WithMeta дополняет ответ справочниками репозиториев и авторов.
func GetPullRequests(db *gorm.DB, filters PullRequestFilters) (*dto.PullRequestList, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}

	query := filters.apply(db.Model(&PullRequest{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var prs []PullRequest
	if err := query.
		Order(filters.orderClause()).
		Offset((filters.Page - 1) * filters.PageSize).
		Limit(filters.PageSize).
		Find(&prs).Error; err != nil {
		return nil, err
	}

	result := dto.PullRequestList{
		Items:    make([]dto.PullRequest, 0, len(prs)),
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}
	for i := range prs {
		result.Items = append(result.Items, *prs[i].ToDTO())
	}

	if filters.WithMeta {
		meta, err := GetPullRequestMeta(db, filters)
		if err != nil {
			return nil, err
		}
		result.Meta = meta
	}

	return &result, nil
}

// GetPullRequestMeta возвращает уникальные репозитории и авторов в пределах
// текущих фильтров листинга.
func GetPullRequestMeta(db *gorm.DB, filters PullRequestFilters) (*dto.PullRequestMeta, error) {
	meta := dto.PullRequestMeta{Repos: []string{}, Authors: []string{}}
	if err := filters.apply(db.Model(&PullRequest{})).
		Distinct("repo").
		Order("repo").
		Pluck("repo", &meta.Repos).Error; err != nil {
		return nil, err
	}
	if err := filters.apply(db.Model(&PullRequest{})).
		Distinct("author").
		Order("author").
		Pluck("author", &meta.Authors).Error; err != nil {
		return nil, err
	}
	return &meta, nil
}

// GetPullRequest возвращает pull request по ID.
func GetPullRequest(db *gorm.DB, id string) (*PullRequest, error) {
	var pr PullRequest
	if err := db.Where("id = ?", id).First(&pr).Error; err != nil {
		return nil, err
	}
	return &pr, nil
}
