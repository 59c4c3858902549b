package apierrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithFormattedMessage(t *testing.T) {
	err := ErrActivityDetailNeeded.WithFormattedMessage("MENTORING")
	assert.Equal(t, "detail payload for activity type MENTORING is required", err.Error())
	assert.Contains(t, err.PtErr, "MENTORING")

	// исходная ошибка не меняется
	assert.Contains(t, ErrActivityDetailNeeded.Err, "%s")
}

func TestErrorCodesStable(t *testing.T) {
	assert.Equal(t, 1001, ErrFailedLogin.Code)
	assert.Equal(t, 2001, ErrWorkspaceNotFound.Code)
	assert.Equal(t, 4003, ErrRuleSubordinateNeeded.Code)
	assert.Equal(t, 5001, ErrCycleNotFound.Code)
	assert.Equal(t, 6001, ErrProfileNotFound.Code)
	assert.Equal(t, 7001, ErrPRNotFound.Code)
	assert.Equal(t, 9001, ErrGeneric.Code)
}
