package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateLevel(t *testing.T) {
	assert.Equal(t, 1, CalculateLevel(0))
	assert.Equal(t, 1, CalculateLevel(99))
	assert.Equal(t, 2, CalculateLevel(100))
	assert.Equal(t, 2, CalculateLevel(399))
	assert.Equal(t, 3, CalculateLevel(400))
	assert.Equal(t, 10, CalculateLevel(8100))
	assert.Equal(t, 1, CalculateLevel(-50))
}

func TestXPForLevelRoundtrip(t *testing.T) {
	for level := 1; level <= 30; level++ {
		xp := XPForLevel(level)
		assert.Equal(t, level, CalculateLevel(xp), "level %d boundary", level)
		if xp > 0 {
			assert.Equal(t, level-1, CalculateLevel(xp-1), "below level %d boundary", level)
		}
	}
}

func TestCurrentLevelXP(t *testing.T) {
	assert.Equal(t, 0, CurrentLevelXP(0))
	assert.Equal(t, 50, CurrentLevelXP(150))
	assert.Equal(t, 0, CurrentLevelXP(400))
}

func TestXPToNextLevel(t *testing.T) {
	assert.Equal(t, 100, XPToNextLevel(0))
	assert.Equal(t, 250, XPToNextLevel(150))
	assert.Equal(t, 500, XPToNextLevel(400))
}

func TestLevelTitle(t *testing.T) {
	assert.Equal(t, "Junior Professional", LevelTitle(1))
	assert.Equal(t, "Junior Professional", LevelTitle(10))
	assert.Equal(t, "Mid-Level Professional", LevelTitle(11))
	assert.Equal(t, "Senior Specialist", LevelTitle(40))
	assert.Equal(t, "Tech Lead", LevelTitle(55))
	assert.Equal(t, "Senior Architect", LevelTitle(70))
	assert.Equal(t, "Team Mentor", LevelTitle(85))
	assert.Equal(t, "Master Professional", LevelTitle(100))
}

func TestGoalProgress(t *testing.T) {
	// current value is already a percent for PERCENTAGE goals
	assert.Equal(t, float64(30), GoalProgress(GoalPercentage, 0, 30, 100))
	assert.Equal(t, float64(100), GoalProgress(GoalPercentage, 0, 250, 100))
	assert.Equal(t, float64(0), GoalProgress(GoalPercentage, 0, -5, 100))

	assert.Equal(t, float64(65), GoalProgress(GoalBinary, 0, 65, 100))
	assert.Equal(t, float64(0), GoalProgress(GoalIncrease, 45, 45, 80))
	assert.InDelta(t, 50, GoalProgress(GoalIncrease, 40, 60, 80), 0.0001)
	assert.Equal(t, float64(100), GoalProgress(GoalIncrease, 40, 90, 80))

	// decrease goals progress as the value drops
	assert.InDelta(t, 50, GoalProgress(GoalDecrease, 200, 150, 100), 0.0001)
	assert.Equal(t, float64(0), GoalProgress(GoalDecrease, 200, 250, 100))

	// degenerate target == start
	assert.Equal(t, float64(100), GoalProgress(GoalBinary, 50, 50, 50))
	assert.Equal(t, float64(0), GoalProgress(GoalBinary, 50, 60, 50))
}
