package dto

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
)

type GamificationProfile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`

	Level      int    `json:"level"`
	LevelTitle string `json:"level_title"`
	CurrentXP  int    `json:"current_xp"`
	TotalXP    int    `json:"total_xp"`
	// XP до следующего уровня
	NextLevelXP int `json:"next_level_xp"`

	Streak       int       `json:"streak"`
	LastActiveAt time.Time `json:"last_active_at"`

	Badges []Badge `json:"badges,omitempty"`

	User *UserLight `json:"user,omitempty" extensions:"x-nullable"`
}

type Badge struct {
	ID          uuid.UUID       `json:"id"`
	Type        types.BadgeType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	EarnedAt    time.Time       `json:"earned_at"`
}
