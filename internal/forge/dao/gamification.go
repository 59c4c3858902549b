// DAO для работы с профилями геймификации и бейджами.
//
// Основные возможности:
//   - Профиль на пару (пользователь, пространство) с ленивым созданием.
//   - Начисление XP с пересчетом уровня и серии активности.
//   - Выдача бейджей без дубликатов, таблица лидеров пространства.
package dao

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Профили геймификации
type GamificationProfile struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	UserId      uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_gamification_profile"`
	WorkspaceId uuid.UUID `json:"workspace_id" gorm:"type:uuid;uniqueIndex:idx_gamification_profile"`

	Level     int `json:"level" gorm:"default:1"`
	CurrentXP int `json:"current_xp"`
	TotalXP   int `json:"total_xp"`

	// Число дней активности подряд
	Streak       int       `json:"streak"`
	LastActiveAt time.Time `json:"last_active_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserId" extensions:"x-nullable"`
	Badges []Badge `json:"badges,omitempty" gorm:"foreignKey:ProfileId"`
}

func (GamificationProfile) TableName() string { return "gamification_profiles" }

func (p *GamificationProfile) ToDTO() *dto.GamificationProfile {
	if p == nil {
		return nil
	}
	result := dto.GamificationProfile{
		ID:           p.ID,
		UserID:       p.UserId,
		WorkspaceID:  p.WorkspaceId,
		Level:        p.Level,
		LevelTitle:   types.LevelTitle(p.Level),
		CurrentXP:    p.CurrentXP,
		TotalXP:      p.TotalXP,
		NextLevelXP:  types.XPToNextLevel(p.TotalXP),
		Streak:       p.Streak,
		LastActiveAt: p.LastActiveAt,
		User:         p.User.ToLightDTO(),
	}
	for _, badge := range p.Badges {
		result.Badges = append(result.Badges, *badge.ToDTO())
	}
	return &result
}

// Бейджи профиля
type Badge struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	ProfileId uuid.UUID       `json:"profile_id" gorm:"type:uuid;uniqueIndex:idx_profile_badge"`
	Type      types.BadgeType `json:"type" gorm:"type:varchar(30);uniqueIndex:idx_profile_badge"`

	Name        string `json:"name"`
	Description string `json:"description"`

	EarnedAt time.Time `json:"earned_at"`
}

func (Badge) TableName() string { return "badges" }

func (b *Badge) ToDTO() *dto.Badge {
	if b == nil {
		return nil
	}
	return &dto.Badge{
		ID:          b.ID,
		Type:        b.Type,
		Name:        b.Name,
		Description: b.Description,
		EarnedAt:    b.EarnedAt,
	}
}

// GetOrCreateProfile возвращает профиль пользователя в пространстве,
// создавая его при первом обращении.
func GetOrCreateProfile(db *gorm.DB, workspaceId, userId uuid.UUID) (*GamificationProfile, error) {
	var profile GamificationProfile
	err := db.
		Preload("Badges").
		Where("workspace_id = ?", workspaceId).
		Where("user_id = ?", userId).
		First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	profile = GamificationProfile{
		ID:           GenUUID(),
		UserId:       userId,
		WorkspaceId:  workspaceId,
		Level:        1,
		LastActiveAt: time.Now(),
	}
	if err := db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateStreak обновляет серию активности профиля по моменту now.
// В тот же календарный день серия не меняется, при паузе до суток
// увеличивается на 1, при большей паузе начинается заново с 1.
func (p *GamificationProfile) UpdateStreak(now time.Time) {
	last := p.LastActiveAt
	switch {
	case p.Streak == 0 || last.IsZero():
		p.Streak = 1
	case sameDay(last, now):
		// серия уже засчитана сегодня
	case now.Sub(last) <= time.Hour*24:
		p.Streak++
	default:
		p.Streak = 1
	}
	p.LastActiveAt = now
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AddXP начисляет XP профилю, пересчитывает уровень и серию активности,
// и сохраняет профиль. Возвращает true, если уровень вырос.
func AddXP(db *gorm.DB, profile *GamificationProfile, amount int) (bool, error) {
	profile.TotalXP += amount
	newLevel := types.CalculateLevel(profile.TotalXP)
	levelUp := newLevel > profile.Level
	profile.Level = newLevel
	profile.CurrentXP = types.CurrentLevelXP(profile.TotalXP)
	profile.UpdateStreak(time.Now())

	err := db.Model(profile).Updates(map[string]interface{}{
		"total_xp":       profile.TotalXP,
		"current_xp":     profile.CurrentXP,
		"level":          profile.Level,
		"streak":         profile.Streak,
		"last_active_at": profile.LastActiveAt,
	}).Error
	return levelUp, err
}

// AwardBadge выдает бейдж профилю. Повторная выдача того же типа игнорируется.
func AwardBadge(db *gorm.DB, profileId uuid.UUID, badgeType types.BadgeType, name, description string) error {
	var exist bool
	if err := db.Model(&Badge{}).
		Select("count(*) > 0").
		Where("profile_id = ?", profileId).
		Where("type = ?", badgeType).
		Find(&exist).Error; err != nil {
		return err
	}
	if exist {
		return nil
	}
	return db.Create(&Badge{
		ID:          GenUUID(),
		ProfileId:   profileId,
		Type:        badgeType,
		Name:        name,
		Description: description,
		EarnedAt:    time.Now(),
	}).Error
}

// CheckBadges проверяет условия бейджей профиля и выдает заслуженные.
// Выдача идемпотентна, повторные проверки дубликатов не создают.
func CheckBadges(db *gorm.DB, profile *GamificationProfile) error {
	if profile.Streak >= 7 {
		if err := AwardBadge(db, profile.ID, types.BadgeStreak7, "Em Chamas", "7 dias seguidos de atividade"); err != nil {
			return err
		}
	}

	cycleIds := db.Model(&Cycle{}).
		Select("id").
		Where("workspace_id = ?", profile.WorkspaceId).
		Where("user_id = ?", profile.UserId)

	var completedGoals int64
	if err := db.Model(&Goal{}).
		Where("cycle_id IN (?)", cycleIds).
		Where("status = ?", types.GoalCompletedSt).
		Count(&completedGoals).Error; err != nil {
		return err
	}
	if completedGoals >= 5 {
		if err := AwardBadge(db, profile.ID, types.BadgeGoalMaster, "Mestre das Metas", "5 metas concluídas"); err != nil {
			return err
		}
	}

	activityCount := func(activityType types.ActivityType) (int64, error) {
		var count int64
		err := db.Model(&Activity{}).
			Where("cycle_id IN (?)", cycleIds).
			Where("type = ?", activityType).
			Count(&count).Error
		return count, err
	}

	mentoring, err := activityCount(types.ActivityMentoring)
	if err != nil {
		return err
	}
	if mentoring >= 3 {
		if err := AwardBadge(db, profile.ID, types.BadgeMentor, "Mentor", "3 sessões de mentoria realizadas"); err != nil {
			return err
		}
	}

	certifications, err := activityCount(types.ActivityCertification)
	if err != nil {
		return err
	}
	if certifications >= 1 {
		if err := AwardBadge(db, profile.ID, types.BadgeCertified, "Certificado", "Certificação concluída"); err != nil {
			return err
		}
	}

	oneOnOnes, err := activityCount(types.ActivityOneOnOne)
	if err != nil {
		return err
	}
	if oneOnOnes >= 5 {
		if err := AwardBadge(db, profile.ID, types.BadgeTeamPlayer, "Parceiro de Time", "5 reuniões 1-a-1 realizadas"); err != nil {
			return err
		}
	}

	var reachedCompetencies int64
	if err := db.Model(&Competency{}).
		Where("cycle_id IN (?)", cycleIds).
		Where("current_level >= target_level").
		Count(&reachedCompetencies).Error; err != nil {
		return err
	}
	if reachedCompetencies >= 3 {
		if err := AwardBadge(db, profile.ID, types.BadgeFastLearner, "Aprendiz Veloz", "3 competências no nível alvo"); err != nil {
			return err
		}
	}

	return nil
}

// ResetStaleStreaks обнуляет серии профилей без активности более суток.
// Вызывается фоновой задачей по расписанию.
func ResetStaleStreaks(db *gorm.DB) error {
	return db.Model(&GamificationProfile{}).
		Where("streak > 0").
		Where("last_active_at < ?", time.Now().Add(-time.Hour*24)).
		Update("streak", 0).Error
}

// GetWorkspaceLeaderboard возвращает профили пространства по убыванию XP.
func GetWorkspaceLeaderboard(db *gorm.DB, workspaceId uuid.UUID, limit int) ([]GamificationProfile, error) {
	var profiles []GamificationProfile
	query := db.
		Joins("User").
		Preload("Badges").
		Where("gamification_profiles.workspace_id = ?", workspaceId).
		Order("gamification_profiles.total_xp desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&profiles).Error
	return profiles, err
}
