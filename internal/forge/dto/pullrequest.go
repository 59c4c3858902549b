package dto

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
)

type PullRequest struct {
	ID     int64  `json:"id"`
	Repo   string `json:"repo"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Author string `json:"author"`

	OwnerUserID *uuid.UUID `json:"owner_user_id" extensions:"x-nullable"`

	State types.PRState `json:"state"`

	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`

	ReviewSummary string `json:"review_summary,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at" extensions:"x-nullable"`
	MergedAt  *time.Time `json:"merged_at" extensions:"x-nullable"`
}

type PullRequestList struct {
	Items    []PullRequest `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`

	Meta *PullRequestMeta `json:"meta,omitempty" extensions:"x-nullable"`
}

// Справочники значений для фильтров списка
type PullRequestMeta struct {
	Repos   []string `json:"repos"`
	Authors []string `json:"authors"`
}
