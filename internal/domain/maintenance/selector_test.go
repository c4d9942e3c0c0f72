package maintenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clinicore/internal/core/apperror"
	"clinicore/internal/domain/records"
)

func TestRootFilter_MatchesOnFields(t *testing.T) {
	filter, err := CompileRootFilter(`department == "OPD" && day_serial > 10`)
	require.NoError(t, err)

	matched, err := filter.Match(records.Visit{Department: "OPD", DaySerial: 11})
	require.NoError(t, err)
	require.True(t, matched)

	matched, err = filter.Match(records.Visit{Department: "OPD", DaySerial: 10})
	require.NoError(t, err)
	require.False(t, matched)

	matched, err = filter.Match(records.Visit{Department: "ER", DaySerial: 50})
	require.NoError(t, err)
	require.False(t, matched)
}

func TestRootFilter_BookingDateComparison(t *testing.T) {
	filter, err := CompileRootFilter(`booking_date < timestamp("2024-06-01T00:00:00Z")`)
	require.NoError(t, err)

	matched, err := filter.Match(records.Visit{
		BookingDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.True(t, matched)
}

func TestCompileRootFilter_RejectsNonBoolean(t *testing.T) {
	_, err := CompileRootFilter(`day_serial + 1`)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCompileRootFilter_RejectsUnknownVariable(t *testing.T) {
	_, err := CompileRootFilter(`ward == "ICU"`)
	require.Error(t, err)
}

func TestCompileRootFilter_RejectsBadSyntax(t *testing.T) {
	_, err := CompileRootFilter(`department ==`)
	require.Error(t, err)
}
