package dto

import (
	"time"

	"github.com/forge-hq/forge/internal/forge/types"
	"github.com/gofrs/uuid"
)

type Cycle struct {
	ID          uuid.UUID         `json:"id"`
	WorkspaceID uuid.UUID         `json:"workspace_id"`
	UserID      uuid.UUID         `json:"user_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	Status      types.CycleStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

type Goal struct {
	ID          uuid.UUID        `json:"id"`
	CycleID     uuid.UUID        `json:"cycle_id"`
	UserID      uuid.UUID        `json:"user_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Type        types.GoalType   `json:"type"`
	Status      types.GoalStatus `json:"status"`
	StartValue  float64          `json:"start_value"`
	CurrentValue float64         `json:"current_value"`
	TargetValue float64          `json:"target_value"`
	Unit        string           `json:"unit"`
	// Derived, [0, 100]
	Progress  float64   `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Competency struct {
	ID           uuid.UUID                `json:"id"`
	CycleID      uuid.UUID                `json:"cycle_id"`
	UserID       uuid.UUID                `json:"user_id"`
	Name         string                   `json:"name"`
	Category     types.CompetencyCategory `json:"category"`
	CurrentLevel int                      `json:"current_level"`
	TargetLevel  int                      `json:"target_level"`
	CreatedAt    time.Time                `json:"created_at"`
}

type Activity struct {
	ID          uuid.UUID          `json:"id"`
	CycleID     uuid.UUID          `json:"cycle_id"`
	UserID      uuid.UUID          `json:"user_id"`
	Type        types.ActivityType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	XPEarned    int                `json:"xp_earned"`
	Duration    int                `json:"duration"`
	CreatedAt   time.Time          `json:"created_at"`

	OneOnOne      *OneOnOneDetail      `json:"one_on_one,omitempty" extensions:"x-nullable"`
	Mentoring     *MentoringDetail     `json:"mentoring,omitempty" extensions:"x-nullable"`
	Certification *CertificationDetail `json:"certification,omitempty" extensions:"x-nullable"`
}

type OneOnOneDetail struct {
	ParticipantID     *uuid.UUID `json:"participant_id" extensions:"x-nullable"`
	ParticipantName   string     `json:"participant_name"`
	CompletedAt       *time.Time `json:"completed_at" extensions:"x-nullable"`
	WorkingOn         []string   `json:"working_on"`
	GeneralNotes      string     `json:"general_notes"`
	PositivePoints    []string   `json:"positive_points"`
	ImprovementPoints []string   `json:"improvement_points"`
	NextSteps         []string   `json:"next_steps"`
}

type MentoringDetail struct {
	MenteeName   string   `json:"mentee_name"`
	Topics       []string `json:"topics"`
	ProgressFrom int      `json:"progress_from"`
	ProgressTo   int      `json:"progress_to"`
	Outcomes     string   `json:"outcomes"`
	NextSteps    []string `json:"next_steps"`
}

type CertificationDetail struct {
	CertificationName string   `json:"certification_name"`
	Topics            []string `json:"topics"`
	Outcomes          string   `json:"outcomes"`
	Rating            int      `json:"rating"`
	NextSteps         []string `json:"next_steps"`
}
