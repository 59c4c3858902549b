// DAO для работы с данными пользователей.
//
// Основные возможности:
//   - CRUD операции с пользователями.
//   - Хеширование и проверка паролей (bcrypt).
//   - Поиск пользователя по ID или email.
package dao

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Пользователи
type User struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	Password string `json:"-"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Name     string `json:"name" validate:"fullName"`
	Position string `json:"position"`
	Bio      string `json:"bio"`

	// Логин на GitHub для сопоставления pull requests
	GithubId *string `json:"github_id,omitempty" gorm:"index" extensions:"x-nullable"`

	IsSuperuser bool `json:"is_superuser"`
	IsActive    bool `json:"is_active" gorm:"default:true"`
	IsOnboarded bool `json:"is_onboarded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	LastLoginTime *time.Time `json:"-" extensions:"x-nullable"`
}

func (User) TableName() string { return "users" }

func (u *User) ToLightDTO() *dto.UserLight {
	if u == nil {
		return nil
	}
	return &dto.UserLight{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Position:    u.Position,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		IsOnboarded: u.IsOnboarded,
	}
}

func (u *User) ToDTO() *dto.User {
	if u == nil {
		return nil
	}
	return &dto.User{
		UserLight: *u.ToLightDTO(),
		Bio:       u.Bio,
		GithubId:  u.GithubId,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLoginTime,
	}
}

// SetPassword хеширует и устанавливает пароль пользователя.
func (u *User) SetPassword(password string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword проверяет пароль против сохраненного bcrypt-хеша.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// GetUserByIdOrEmail ищет пользователя по UUID либо по email.
func GetUserByIdOrEmail(db *gorm.DB, idOrEmail string) (*User, error) {
	var user User
	if err := db.Where("id = ? or email = ?", idOrEmail, idOrEmail).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserLastLogin фиксирует время последнего входа.
func UpdateUserLastLogin(db *gorm.DB, user *User) error {
	now := time.Now()
	user.LastLoginTime = &now
	return db.Model(user).Update("last_login_time", now).Error
}
