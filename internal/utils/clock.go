package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	MinutesPerDay = 24 * 60
)

// ParseClock converts "HH:MM" (or Postgres TIME output "HH:MM:SS") into minutes
// after midnight. "24:00" is accepted as the end of the day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec != 0 {
			return 0, fmt.Errorf("seconds are not supported in %q", s)
		}
	}
	total := h*60 + m
	if total > MinutesPerDay {
		return 0, fmt.Errorf("time of day %q is past midnight", s)
	}
	return total, nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a calendar date in loc, returning local midnight.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// DayBounds returns [midnight, next midnight) for the day containing date.
func DayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

// At returns the instant that is the given wall-clock minutes into date's day.
func At(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}

// OnWallClock reports whether t reads as the given wall-clock minutes into
// date's day in date's location. Minutes past midnight roll onto the next day.
func OnWallClock(date time.Time, minutes int, t time.Time) bool {
	day := date.AddDate(0, 0, minutes/MinutesPerDay)
	t = t.In(date.Location())
	y, m, d := t.Date()
	dy, dm, dd := day.Date()
	return y == dy && m == dm && d == dd && t.Hour()*60+t.Minute() == minutes%MinutesPerDay
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
