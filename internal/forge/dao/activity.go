// DAO для работы с активностями развития и их детализацией.
//
// Активность имеет тип (1-на-1, менторинг, сертификация) и ровно одну
// связанную детальную запись, соответствующую типу.
package dao

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/dto"
	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Активности цикла
type Activity struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CycleId uuid.UUID `json:"cycle_id" gorm:"type:uuid;index"`
	UserId  uuid.UUID `json:"user_id" gorm:"type:uuid;index"`

	Type        types.ActivityType `json:"type" gorm:"type:varchar(20)"`
	Title       string             `json:"title"`
	Description string             `json:"description"`

	XPEarned int `json:"xp_earned"`
	// Длительность в минутах
	Duration int `json:"duration"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Cycle *Cycle `json:"cycle,omitempty" gorm:"foreignKey:CycleId" extensions:"x-nullable"`

	OneOnOne      *OneOnOneActivity      `json:"one_on_one,omitempty" gorm:"foreignKey:ActivityId" extensions:"x-nullable"`
	Mentoring     *MentoringActivity     `json:"mentoring,omitempty" gorm:"foreignKey:ActivityId" extensions:"x-nullable"`
	Certification *CertificationActivity `json:"certification,omitempty" gorm:"foreignKey:ActivityId" extensions:"x-nullable"`
}

func (Activity) TableName() string { return "activities" }

func (a *Activity) ToDTO() *dto.Activity {
	if a == nil {
		return nil
	}
	result := dto.Activity{
		ID:          a.ID,
		CycleID:     a.CycleId,
		UserID:      a.UserId,
		Type:        a.Type,
		Title:       a.Title,
		Description: a.Description,
		XPEarned:    a.XPEarned,
		Duration:    a.Duration,
		CreatedAt:   a.CreatedAt,
	}
	if a.OneOnOne != nil {
		result.OneOnOne = &dto.OneOnOneDetail{
			ParticipantID:     a.OneOnOne.ParticipantId,
			ParticipantName:   a.OneOnOne.ParticipantName,
			CompletedAt:       a.OneOnOne.CompletedAt,
			WorkingOn:         a.OneOnOne.WorkingOn,
			GeneralNotes:      a.OneOnOne.GeneralNotes,
			PositivePoints:    a.OneOnOne.PositivePoints,
			ImprovementPoints: a.OneOnOne.ImprovementPoints,
			NextSteps:         a.OneOnOne.NextSteps,
		}
	}
	if a.Mentoring != nil {
		result.Mentoring = &dto.MentoringDetail{
			MenteeName:   a.Mentoring.MenteeName,
			Topics:       a.Mentoring.Topics,
			ProgressFrom: a.Mentoring.ProgressFrom,
			ProgressTo:   a.Mentoring.ProgressTo,
			Outcomes:     a.Mentoring.Outcomes,
			NextSteps:    a.Mentoring.NextSteps,
		}
	}
	if a.Certification != nil {
		result.Certification = &dto.CertificationDetail{
			CertificationName: a.Certification.CertificationName,
			Topics:            a.Certification.Topics,
			Outcomes:          a.Certification.Outcomes,
			Rating:            a.Certification.Rating,
			NextSteps:         a.Certification.NextSteps,
		}
	}
	return &result
}

// Детали встречи 1-на-1
type OneOnOneActivity struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	ActivityId uuid.UUID `json:"activity_id" gorm:"type:uuid;uniqueIndex"`

	ParticipantId   *uuid.UUID `json:"participant_id" gorm:"type:uuid" extensions:"x-nullable"`
	ParticipantName string     `json:"participant_name"`
	CompletedAt     *time.Time `json:"completed_at" extensions:"x-nullable"`

	WorkingOn         pq.StringArray `json:"working_on" gorm:"type:text[]"`
	GeneralNotes      string         `json:"general_notes"`
	PositivePoints    pq.StringArray `json:"positive_points" gorm:"type:text[]"`
	ImprovementPoints pq.StringArray `json:"improvement_points" gorm:"type:text[]"`
	NextSteps         pq.StringArray `json:"next_steps" gorm:"type:text[]"`
}

func (OneOnOneActivity) TableName() string { return "one_on_one_activities" }

// Детали менторинга
type MentoringActivity struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	ActivityId uuid.UUID `json:"activity_id" gorm:"type:uuid;uniqueIndex"`

	MenteeName string         `json:"mentee_name"`
	Topics     pq.StringArray `json:"topics" gorm:"type:text[]"`

	// Прогресс подопечного в процентах, до и после
	ProgressFrom int `json:"progress_from"`
	ProgressTo   int `json:"progress_to"`

	Outcomes  string         `json:"outcomes"`
	NextSteps pq.StringArray `json:"next_steps" gorm:"type:text[]"`
}

func (MentoringActivity) TableName() string { return "mentoring_activities" }

// Детали сертификации
type CertificationActivity struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	ActivityId uuid.UUID `json:"activity_id" gorm:"type:uuid;uniqueIndex"`

	CertificationName string         `json:"certification_name"`
	Topics            pq.StringArray `json:"topics" gorm:"type:text[]"`
	Outcomes          string         `json:"outcomes"`

	// Оценка от 1 до 5
	Rating int `json:"rating"`

	NextSteps pq.StringArray `json:"next_steps" gorm:"type:text[]"`
}

func (CertificationActivity) TableName() string { return "certification_activities" }

// GetCycleActivities возвращает активности цикла с детальными записями.
func GetCycleActivities(db *gorm.DB, cycleId uuid.UUID) ([]Activity, error) {
	var activities []Activity
	err := db.
		Preload("OneOnOne").
		Preload("Mentoring").
		Preload("Certification").
		Where("cycle_id = ?", cycleId).
		Order("created_at desc").
		Find(&activities).Error
	return activities, err
}

// GetCycleActivity возвращает активность цикла с деталями по ID.
func GetCycleActivity(db *gorm.DB, cycleId uuid.UUID, activityId string) (*Activity, error) {
	var activity Activity
	if err := db.
		Preload("OneOnOne").
		Preload("Mentoring").
		Preload("Certification").
		Where("cycle_id = ?", cycleId).
		Where("id = ?", activityId).
		First(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// CreateActivity сохраняет активность вместе с детальной записью ее типа
// одной транзакцией.
func CreateActivity(db *gorm.DB, activity *Activity) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if activity.ID.IsNil() {
			activity.ID = GenUUID()
		}
		if err := tx.Omit("OneOnOne", "Mentoring", "Certification").Create(activity).Error; err != nil {
			return err
		}

		switch activity.Type {
		case types.ActivityOneOnOne:
			if activity.OneOnOne != nil {
				if activity.OneOnOne.ID.IsNil() {
					activity.OneOnOne.ID = GenUUID()
				}
				activity.OneOnOne.ActivityId = activity.ID
				return tx.Create(activity.OneOnOne).Error
			}
		case types.ActivityMentoring:
			if activity.Mentoring != nil {
				if activity.Mentoring.ID.IsNil() {
					activity.Mentoring.ID = GenUUID()
				}
				activity.Mentoring.ActivityId = activity.ID
				return tx.Create(activity.Mentoring).Error
			}
		case types.ActivityCertification:
			if activity.Certification != nil {
				if activity.Certification.ID.IsNil() {
					activity.Certification.ID = GenUUID()
				}
				activity.Certification.ActivityId = activity.ID
				return tx.Create(activity.Certification).Error
			}
		}
		return nil
	})
}
