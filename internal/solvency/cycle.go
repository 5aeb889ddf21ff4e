package solvency

import (
	"strings"
	"time"
)

// PayCycle is the budgeting window between two paydays.
type PayCycle struct {
	Start      time.Time
	NextPayday time.Time
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	time.DateTime,
}

// ParseDate parses an ISO calendar day or datetime and truncates it to a
// UTC calendar day. Returns false for anything else.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates t to midnight UTC of its own calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clampDay returns the given day of month, falling back to the last day of
// the month when it does not exist. Month overflow is normalized.
func clampDay(year int, month time.Month, day int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// ResolveCycle derives the current pay cycle. Payday itself opens a new cycle.
func ResolveCycle(today time.Time, paydayDay int) PayCycle {
	today = Day(today)

	next := clampDay(today.Year(), today.Month(), paydayDay)
	if !today.Before(next) {
		next = clampDay(today.Year(), today.Month()+1, paydayDay)
	}

	return PayCycle{
		Start:      clampDay(next.Year(), next.Month()-1, paydayDay),
		NextPayday: next,
	}
}

func daysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// WeightedDaysUntil counts the days in [today, target), weighing Saturdays
// and Sundays by weekendMultiplier. Never returns less than 1.
func WeightedDaysUntil(today, target time.Time, weekendMultiplier float64) float64 {
	days := daysBetween(today, target)
	if days <= 0 {
		return 1.0
	}
	if weekendMultiplier == 1.0 {
		return float64(days)
	}

	weighted := 0.0
	for d := Day(today); d.Before(Day(target)); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			weighted += weekendMultiplier
		default:
			weighted += 1.0
		}
	}
	return weighted
}

// DaysUntil returns the calendar days until target, at least 1.
func DaysUntil(today, target time.Time) int {
	return max(daysBetween(today, target), 1)
}
