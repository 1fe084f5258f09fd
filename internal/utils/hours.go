package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidClockTime = errors.New("invalid clock time, expected HH:MM")

// ParseClock converts an HH:MM string into minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, value)
	}

	return hour*60 + min, nil
}

// CalculateHours returns the raw elapsed time between two same-day clock
// times, in hours to two decimal places. Callers reject end <= start before
// persisting; this function only does the arithmetic.
func CalculateHours(start, end string) (float64, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, err
	}

	return round2(float64(endMin-startMin) / 60), nil
}

// RoundToNearestQuarter rounds elapsed minutes to the nearest 15-minute
// increment and converts to hours. Ties round away from zero.
func RoundToNearestQuarter(totalMinutes int) float64 {
	quarters := math.Round(float64(totalMinutes) / 15)
	return quarters * 15 / 60
}

// CalculateAndRoundHours is the billed duration: elapsed minutes rounded to
// the nearest quarter hour, converted to hours to two decimal places.
func CalculateAndRoundHours(start, end string) (float64, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return 0, err
	}

	return round2(RoundToNearestQuarter(endMin - startMin)), nil
}

// FormatRoundedTime renders minutes rounded to the nearest quarter as
// "H hrs" or "H hrs M min".
func FormatRoundedTime(totalMinutes int) string {
	rounded := int(math.Round(float64(totalMinutes)/15)) * 15
	hours := rounded / 60
	minutes := rounded % 60

	if minutes == 0 {
		return fmt.Sprintf("%d hrs", hours)
	}
	return fmt.Sprintf("%d hrs %d min", hours, minutes)
}

// TotalHours sums hour values to two decimal places; an empty list is 0.00.
func TotalHours(hours []float64) float64 {
	var sum float64
	for _, h := range hours {
		sum += h
	}
	return round2(sum)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
