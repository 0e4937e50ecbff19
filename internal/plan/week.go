package plan

import (
	"fmt"
	"time"
)

// Dates are carried as time.Time values pinned to UTC midnight. All
// arithmetic is day-granular (AddDate), so there is no daylight-saving
// drift to work around.

// ISODate is the "YYYY-MM-DD" layout used as the grouping key for weekly
// layout and as the wire form of every date field.
const ISODate = "2006-01-02"

// ToISODate renders a date as "YYYY-MM-DD".
func ToISODate(d time.Time) string {
	return d.Format(ISODate)
}

// ParseISODate parses "YYYY-MM-DD" into a UTC-midnight date.
func ParseISODate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(ISODate, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// Midnight strips any time-of-day and timezone from t.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a date by whole days.
func AddDays(d time.Time, days int) time.Time {
	return Midnight(d).AddDate(0, 0, days)
}

// StartOfWeekMonday returns the Monday of the ISO week containing d.
func StartOfWeekMonday(d time.Time) time.Time {
	d = Midnight(d)
	wd := int(d.Weekday()) // 0 Sun, 1 Mon, ...
	diff := 1 - wd
	if wd == 0 {
		diff = -6
	}
	return d.AddDate(0, 0, diff)
}

// ISOWeek returns the ISO-8601 week number of d (Thursday-anchored,
// week 1 contains the year's first Thursday).
func ISOWeek(d time.Time) int {
	_, w := Midnight(d).ISOWeek()
	return w
}

// ISOWeekYear returns the ISO-8601 week-numbering year of d, which near
// year boundaries can differ from the calendar year.
func ISOWeekYear(d time.Time) int {
	y, _ := Midnight(d).ISOWeek()
	return y
}

// Week is a 7-day viewport starting on a Monday.
type Week struct {
	Monday time.Time
}

// WeekOf returns the week containing d.
func WeekOf(d time.Time) Week {
	return Week{Monday: StartOfWeekMonday(d)}
}

// Days returns the week's seven dates, Monday first.
func (w Week) Days() [7]time.Time {
	var out [7]time.Time
	for i := range out {
		out[i] = AddDays(w.Monday, i)
	}
	return out
}

// Contains reports whether the ISO date string falls inside the week.
func (w Week) Contains(isoDate string) bool {
	for _, d := range w.Days() {
		if ToISODate(d) == isoDate {
			return true
		}
	}
	return false
}

// Prev and Next navigate whole weeks.
func (w Week) Prev() Week { return Week{Monday: AddDays(w.Monday, -7)} }
func (w Week) Next() Week { return Week{Monday: AddDays(w.Monday, 7)} }

// Label renders the calendar-week header, e.g. "KW 05 (2026)".
func (w Week) Label() string {
	return fmt.Sprintf("KW %02d (%d)", ISOWeek(w.Monday), ISOWeekYear(w.Monday))
}

// RangeLabel renders the Monday-Sunday day range, e.g. "26.01–01.02".
func (w Week) RangeLabel() string {
	return formatDayMonth(w.Monday) + "–" + formatDayMonth(AddDays(w.Monday, 6))
}

func formatDayMonth(d time.Time) string {
	return d.Format("02.01")
}

// DayNames are the short German weekday labels, Monday first.
var DayNames = [7]string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"}
