// Содержит структуры данных (DTO) для обмена между слоями приложения Forge.
//
// Основные возможности:
//   - Представление пользователей, пространств и команд в облегченном и полном виде.
//   - Представление правил управления и подчиненных.
//   - Представление профилей геймификации, циклов PDI и pull requests.
package dto

import (
	"time"

	"github.com/gofrs/uuid"
)

type UserLight struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Position string    `json:"position"`

	IsSuperuser bool `json:"is_superuser"`
	IsActive    bool `json:"is_active"`
	IsOnboarded bool `json:"is_onboarded"`
}

type User struct {
	UserLight

	Bio       string     `json:"bio"`
	GithubId  *string    `json:"github_id,omitempty" extensions:"x-nullable"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login" extensions:"x-nullable"`
}

type CreatedUser struct {
	User

	// Returned exactly once, on creation
	InitialPassword string `json:"initial_password,omitempty"`
}
