package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

func TestIsValidAcademicYear(t *testing.T) {
	assert.True(t, IsValidAcademicYear("2025/26"))
	assert.False(t, IsValidAcademicYear("2025/2026"))
	assert.False(t, IsValidAcademicYear("2025-26"))
	assert.False(t, IsValidAcademicYear(""))
}

func TestValidatorReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()
	err := v.Struct(CreateOfferingRequest{CourseID: 1, AcademicYear: "25/26", Capacity: 5})
	require.Error(t, err)

	appErr := validationFailure(err, "invalid offering payload")
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "invalid offering payload", appErr.Message)
	assert.Equal(t, map[string]string{"academic_year": "must look like 2025/26"}, appErr.Details)
}

func TestValidatorClock(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(CreateSlotRequest{DayOfWeek: 0, StartTime: "00:00", EndTime: "23:59", Room: "Hall"}))
	assert.Error(t, v.Struct(CreateSlotRequest{DayOfWeek: 0, StartTime: "24:00", EndTime: "23:59", Room: "Hall"}))
}
