// Package schedule implements the weekly time-window resolution core: which
// playlist a store should be rendering at a given instant, and the overlap
// validation that keeps each day's active rules pairwise disjoint.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

// Days in resolution order. DayOfWeek values are stored lowercase.
var Days = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// ErrConflict is returned when a rule's [start,end) window intersects an
// existing active rule of the same (store, day).
type ErrConflict struct {
	DayOfWeek string
	StartTime string
	EndTime   string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("schedule conflict on %s between %s and %s", e.DayOfWeek, e.StartTime, e.EndTime)
}

// ValidDay reports whether d is one of the seven lowercase day names.
func ValidDay(d string) bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// ValidClock reports whether s is a zero-padded "HH:MM" minute-of-day.
// Zero-padded clock strings order lexicographically, which is what the
// matching below relies on.
func ValidClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hh, mm := s[:2], s[3:]
	for _, c := range hh + mm {
		if c < '0' || c > '9' {
			return false
		}
	}
	return hh <= "23" && mm <= "59"
}

// ValidateRule checks day name, clock format and window ordering of a
// candidate rule. Volume overrides are range-checked by the caller.
func ValidateRule(dayOfWeek, startTime, endTime string) error {
	if !ValidDay(strings.ToLower(dayOfWeek)) {
		return fmt.Errorf("invalid day of week %q", dayOfWeek)
	}
	if !ValidClock(startTime) || !ValidClock(endTime) {
		return fmt.Errorf("times must be zero-padded HH:MM, got %q-%q", startTime, endTime)
	}
	if startTime >= endTime {
		return fmt.Errorf("start time %s must be before end time %s", startTime, endTime)
	}
	return nil
}

// overlaps is the three-case half-open interval test: the candidate starts
// inside the existing window, ends inside it, or fully contains it.
func overlaps(aStart, aEnd, bStart, bEnd string) bool {
	if aStart >= bStart && aStart < bEnd {
		return true
	}
	if aEnd > bStart && aEnd <= bEnd {
		return true
	}
	return aStart <= bStart && aEnd >= bEnd
}

// CheckConflict returns an *ErrConflict if the candidate window intersects
// any existing active rule on the same day. excludeID skips the rule being
// updated; pass 0 for creates. Inactive rules never conflict.
func CheckConflict(existing []model.ScheduleRule, dayOfWeek, startTime, endTime string, excludeID int) error {
	for _, r := range existing {
		if !r.IsActive || r.ID == excludeID || r.DayOfWeek != dayOfWeek {
			continue
		}
		if overlaps(startTime, endTime, r.StartTime, r.EndTime) {
			return &ErrConflict{DayOfWeek: r.DayOfWeek, StartTime: r.StartTime, EndTime: r.EndTime}
		}
	}
	return nil
}

// Clock formats t as the zero-padded "HH:MM" used by rule windows.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// DayName returns the lowercase day bucket of t.
func DayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// Location resolves a store's IANA timezone name, falling back to UTC for
// empty or unknown names. The original system resolved schedules in
// server-local time; doing it in the store's own timezone is a deliberate
// behavior change so that a fleet spanning timezones schedules correctly.
func Location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Match returns the single active rule covering the instant at in the given
// location, or nil when no window matches. Because writes keep active
// windows disjoint per (store, day), first match is the only match.
func Match(rules []model.ScheduleRule, at time.Time, loc *time.Location) *model.ScheduleRule {
	local := at.In(loc)
	day := DayName(local)
	now := Clock(local)
	for i := range rules {
		r := &rules[i]
		if !r.IsActive || r.DayOfWeek != day {
			continue
		}
		if r.StartTime <= now && now < r.EndTime {
			return r
		}
	}
	return nil
}
