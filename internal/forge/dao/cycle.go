// DAO для работы с циклами развития (PDI), целями и компетенциями.
//
// Основные возможности:
//   - Циклы: создание, чтение, поиск активного цикла пользователя.
//   - Цели: CRUD, деривация прогресса при маппинге в DTO.
//   - Компетенции: CRUD с уровнями от 1 до 5.
package dao

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Циклы развития
type Cycle struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	WorkspaceId uuid.UUID `json:"workspace_id" gorm:"type:uuid;index"`
	UserId      uuid.UUID `json:"user_id" gorm:"type:uuid;index"`

	Name        string            `json:"name"`
	Description string            `json:"description"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	Status      types.CycleStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserId" extensions:"x-nullable"`
}

func (Cycle) TableName() string { return "cycles" }

func (c *Cycle) ToDTO() *dto.Cycle {
	if c == nil {
		return nil
	}
	return &dto.Cycle{
		ID:          c.ID,
		WorkspaceID: c.WorkspaceId,
		UserID:      c.UserId,
		Name:        c.Name,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
}

// Цели цикла
type Goal struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CycleId uuid.UUID `json:"cycle_id" gorm:"type:uuid;index"`
	UserId  uuid.UUID `json:"user_id" gorm:"type:uuid;index"`

	Title       string           `json:"title"`
	Description string           `json:"description"`
	Type        types.GoalType   `json:"type" gorm:"type:varchar(20)"`
	Status      types.GoalStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`

	StartValue   float64 `json:"start_value"`
	CurrentValue float64 `json:"current_value"`
	TargetValue  float64 `json:"target_value"`
	Unit         string  `json:"unit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cycle *Cycle `json:"cycle,omitempty" gorm:"foreignKey:CycleId" extensions:"x-nullable"`
}

func (Goal) TableName() string { return "goals" }

// Progress возвращает процент выполнения цели в диапазоне [0, 100].
func (g *Goal) Progress() float64 {
	return types.GoalProgress(g.Type, g.StartValue, g.CurrentValue, g.TargetValue)
}

func (g *Goal) ToDTO() *dto.Goal {
	if g == nil {
		return nil
	}
	return &dto.Goal{
		ID:           g.ID,
		CycleID:      g.CycleId,
		UserID:       g.UserId,
		Title:        g.Title,
		Description:  g.Description,
		Type:         g.Type,
		Status:       g.Status,
		StartValue:   g.StartValue,
		CurrentValue: g.CurrentValue,
		TargetValue:  g.TargetValue,
		Unit:         g.Unit,
		Progress:     g.Progress(),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// Компетенции цикла
type Competency struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CycleId uuid.UUID `json:"cycle_id" gorm:"type:uuid;index"`
	UserId  uuid.UUID `json:"user_id" gorm:"type:uuid;index"`

	Name     string                   `json:"name"`
	Category types.CompetencyCategory `json:"category" gorm:"type:varchar(20)"`

	// Уровни владения от 1 до 5
	CurrentLevel int `json:"current_level"`
	TargetLevel  int `json:"target_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Cycle *Cycle `json:"cycle,omitempty" gorm:"foreignKey:CycleId" extensions:"x-nullable"`
}

func (Competency) TableName() string { return "competencies" }

func (c *Competency) ToDTO() *dto.Competency {
	if c == nil {
		return nil
	}
	return &dto.Competency{
		ID:           c.ID,
		CycleID:      c.CycleId,
		UserID:       c.UserId,
		Name:         c.Name,
		Category:     c.Category,
		CurrentLevel: c.CurrentLevel,
		TargetLevel:  c.TargetLevel,
		CreatedAt:    c.CreatedAt,
	}
}

// GetUserCycles возвращает циклы пользователя в пространстве, свежие первыми.
func GetUserCycles(db *gorm.DB, workspaceId, userId uuid.UUID) ([]Cycle, error) {
	var cycles []Cycle
	err := db.
		Where("workspace_id = ?", workspaceId).
		Where("user_id = ?", userId).
		Order("start_date desc").
		Find(&cycles).Error
	return cycles, err
}

// GetActiveCycle возвращает активный цикл пользователя в пространстве.
func GetActiveCycle(db *gorm.DB, workspaceId, userId uuid.UUID) (*Cycle, error) {
	var cycle Cycle
	if err := db.
		Where("workspace_id = ?", workspaceId).
		Where("user_id = ?", userId).
		Where("status = ?", types.CycleActive).
		Order("start_date desc").
		First(&cycle).Error; err != nil {
		return nil, err
	}
	return &cycle, nil
}

// GetCycle возвращает цикл пространства по ID.
func GetCycle(db *gorm.DB, workspaceId uuid.UUID, cycleId string) (*Cycle, error) {
	var cycle Cycle
	if err := db.
		Where("workspace_id = ?", workspaceId).
		Where("id = ?", cycleId).
		First(&cycle).Error; err != nil {
		return nil, err
	}
	return &cycle, nil
}

// GetCycleGoals возвращает цели цикла в порядке создания.
func GetCycleGoals(db *gorm.DB, cycleId uuid.UUID) ([]Goal, error) {
	var goals []Goal
	err := db.
		Where("cycle_id = ?", cycleId).
		Order("created_at").
		Find(&goals).Error
	return goals, err
}

// GetCycleGoal возвращает цель цикла по ID.
func GetCycleGoal(db *gorm.DB, cycleId uuid.UUID, goalId string) (*Goal, error) {
	var goal Goal
	if err := db.
		Where("cycle_id = ?", cycleId).
		Where("id = ?", goalId).
		First(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// GetCycleCompetencies возвращает компетенции цикла в порядке создания.
func GetCycleCompetencies(db *gorm.DB, cycleId uuid.UUID) ([]Competency, error) {
	var competencies []Competency
	err := db.
		Where("cycle_id = ?", cycleId).
		Order("created_at").
		Find(&competencies).Error
	return competencies, err
}

// GetCycleCompetency возвращает компетенцию цикла по ID.
func GetCycleCompetency(db *gorm.DB, cycleId uuid.UUID, competencyId string) (*Competency, error) {
	var competency Competency
	if err := db.
		Where("cycle_id = ?", cycleId).
		Where("id = ?", competencyId).
		First(&competency).Error; err != nil {
		return nil, err
	}
	return &competency, nil
}
