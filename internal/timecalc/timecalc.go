package timecalc

import (
	"math"
	"time"
)

const week = 7 * 24 * time.Hour

// Breakdown is a mixed-radix decomposition of a duration: Days is the
// remainder after Weeks, Hours the remainder after Days, and so on.
type Breakdown struct {
	Weeks   int `json:"weeks"`
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// YearRange is the slice of a countdown interval falling into one calendar year.
type YearRange struct {
	Year  int `json:"year"`
	Weeks int `json:"weeks"`
}

// Clock is the wall-clock decomposition feeding the ornamental time display.
// Weekday is Monday-first (Monday=0 .. Sunday=6).
type Clock struct {
	Weekday int    `json:"weekday"`
	Week    int    `json:"week"`
	Month   string `json:"month"`
	Day     int    `json:"day"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Second  int    `json:"second"`
}

// WeeksBetween returns the number of weeks from a to b, rounding up so a
// partial week counts as one more week.
func WeeksBetween(a, b time.Time) int {
	return int(math.Ceil(float64(b.Sub(a)) / float64(week)))
}

// ElapsedWeeks returns the number of whole weeks elapsed since start,
// clamped to zero for a start date in the future.
func ElapsedWeeks(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / week)
}

// Remaining decomposes the time left until target. A target at or before
// now yields the zero Breakdown, never negative fields.
func Remaining(target, now time.Time) Breakdown {
	if !target.After(now) {
		return Breakdown{}
	}
	secs := int(target.Sub(now) / time.Second)
	return Breakdown{
		Weeks:   secs / (7 * 86400),
		Days:    secs / 86400 % 7,
		Hours:   secs / 3600 % 24,
		Minutes: secs / 60 % 60,
		Seconds: secs % 60,
	}
}

// YearRanges partitions [start, end] into one bucket per calendar year
// touched. Every bucket holds at least one week, so a sliver interval
// (a countdown starting Dec 31) still produces a visible bucket.
func YearRanges(start, end time.Time) []YearRange {
	if !end.After(start) {
		return []YearRange{{Year: start.Year(), Weeks: 1}}
	}

	var ranges []YearRange
	for year := start.Year(); year <= end.Year(); year++ {
		clipStart := start
		clipEnd := end
		yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, start.Location())
		yearEnd := time.Date(year+1, time.January, 1, 0, 0, 0, 0, start.Location())
		if yearStart.After(clipStart) {
			clipStart = yearStart
		}
		if yearEnd.Before(clipEnd) {
			clipEnd = yearEnd
		}
		weeks := WeeksBetween(clipStart, clipEnd)
		if weeks < 1 {
			weeks = 1
		}
		ranges = append(ranges, YearRange{Year: year, Weeks: weeks})
	}
	return ranges
}

// CurrentBreakdown decomposes now for the current-time display. It is not
// used for countdown math.
func CurrentBreakdown(now time.Time) Clock {
	_, week := now.ISOWeek()
	return Clock{
		Weekday: (int(now.Weekday()) + 6) % 7,
		Week:    week,
		Month:   now.Month().String(),
		Day:     now.Day(),
		Hour:    now.Hour(),
		Minute:  now.Minute(),
		Second:  now.Second(),
	}
}
