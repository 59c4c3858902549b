// Расчеты геймификации: уровни по накопленному XP, титулы уровней,
// награды XP за действия и прогресс целей.
package types

import "math"

// XP за базовые действия PDI
const (
	XPGoalCompleted     = 150
	XPCompetencyLevelUp = 75
	XPCycleCompleted    = 300
)

// Типы бейджей
type BadgeType string

const (
	BadgeStreak7     BadgeType = "STREAK_7"
	BadgeGoalMaster  BadgeType = "GOAL_MASTER"
	BadgeMentor      BadgeType = "MENTOR"
	BadgeCertified   BadgeType = "CERTIFIED"
	BadgeFastLearner BadgeType = "FAST_LEARNER"
	BadgeTeamPlayer  BadgeType = "TEAM_PLAYER"
)

// CalculateLevel вычисляет уровень по суммарному XP.
// Формула: level = floor(sqrt(totalXP / 100)) + 1.
// Уровень 1 = 0 XP, уровень 2 = 100 XP, уровень 10 = 8100 XP.
func CalculateLevel(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return int(math.Sqrt(float64(totalXP)/100)) + 1
}

// XPForLevel возвращает суммарный XP, необходимый для достижения уровня.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * (level - 1) * 100
}

// CurrentLevelXP возвращает XP, накопленный внутри текущего уровня.
func CurrentLevelXP(totalXP int) int {
	return totalXP - XPForLevel(CalculateLevel(totalXP))
}

// XPToNextLevel возвращает остаток XP до следующего уровня.
func XPToNextLevel(totalXP int) int {
	return XPForLevel(CalculateLevel(totalXP)+1) - totalXP
}

// Титул по уровню
func LevelTitle(level int) string {
	switch {
	case level <= 10:
		return "Junior Professional"
	case level <= 25:
		return "Mid-Level Professional"
	case level <= 40:
		return "Senior Specialist"
	case level <= 55:
		return "Tech Lead"
	case level <= 70:
		return "Senior Architect"
	case level <= 85:
		return "Team Mentor"
	}
	return "Master Professional"
}

// GoalProgress вычисляет процент выполнения цели в диапазоне [0, 100].
// Для целей типа PERCENTAGE текущая величина уже является процентом.
func GoalProgress(goalType GoalType, start, current, target float64) float64 {
	var progress float64
	if goalType == GoalPercentage {
		progress = current
	} else {
		den := target - start
		if den == 0 {
			if current == target {
				progress = 100
			}
		} else {
			progress = (current - start) / den * 100
		}
	}

	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
