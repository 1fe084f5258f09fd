package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	min, err := ParseClock("09:30")
	require.NoError(t, err)
	require.Equal(t, 570, min)

	_, err = ParseClock("9am")
	require.ErrorIs(t, err, ErrInvalidClockTime)

	_, err = ParseClock("24:00")
	require.ErrorIs(t, err, ErrInvalidClockTime)

	_, err = ParseClock("12:60")
	require.ErrorIs(t, err, ErrInvalidClockTime)
}

func TestCalculateHours(t *testing.T) {
	hours, err := CalculateHours("09:00", "17:30")
	require.NoError(t, err)
	require.Equal(t, 8.5, hours)

	hours, err = CalculateHours("10:00", "10:10")
	require.NoError(t, err)
	require.Equal(t, 0.17, hours)
}

func TestRoundToNearestQuarter(t *testing.T) {
	// 52 minutes rounds down to 45, 53 rounds up to 60
	require.Equal(t, 0.75, RoundToNearestQuarter(52))
	require.Equal(t, 1.0, RoundToNearestQuarter(53))

	// the midpoint rounds up
	require.Equal(t, 0.25, RoundToNearestQuarter(8))
	require.Equal(t, 0.0, RoundToNearestQuarter(7))
	require.Equal(t, 0.0, RoundToNearestQuarter(0))
}

func TestCalculateAndRoundHours(t *testing.T) {
	hours, err := CalculateAndRoundHours("09:00", "17:30")
	require.NoError(t, err)
	require.Equal(t, 8.5, hours)

	hours, err = CalculateAndRoundHours("10:00", "10:52")
	require.NoError(t, err)
	require.Equal(t, 0.75, hours)

	hours, err = CalculateAndRoundHours("10:00", "10:53")
	require.NoError(t, err)
	require.Equal(t, 1.0, hours)
}

func TestFormatRoundedTime(t *testing.T) {
	require.Equal(t, "1 hrs", FormatRoundedTime(60))
	require.Equal(t, "1 hrs 15 min", FormatRoundedTime(70))
	require.Equal(t, "0 hrs 45 min", FormatRoundedTime(52))
	require.Equal(t, "1 hrs", FormatRoundedTime(53))
}

func TestTotalHours(t *testing.T) {
	require.Equal(t, 0.0, TotalHours(nil))
	require.Equal(t, 3.75, TotalHours([]float64{1.5, 2.25}))
	require.Equal(t, 0.3, TotalHours([]float64{0.1, 0.2}))
}
