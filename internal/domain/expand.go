package domain

import (
	"time"

	"github.com/teambition/rrule-go"

	"tempora/backend/internal/tz"
)

// ExpandRecurrence returns the UTC instants r produces within
// [windowStart, min(windowEnd, r.RecurrenceEndTime)], in non-decreasing
// order. A recurrence whose zone no longer resolves yields nothing; rule
// text that no longer parses is surfaced as an error since creation
// validated it.
//
// RRULE semantics are wall-clock, so enumeration runs in a naive local
// frame: the anchor's wall time in r's zone is re-labeled UTC, the rule is
// driven over the local window padded by a day each side, and every
// enumerated wall time is resolved back to UTC leniently before the exact
// window filter.
func ExpandRecurrence(r Recurrence, windowStart, windowEnd time.Time) ([]time.Time, error) {
	loc, err := tz.LoadZone(r.TimeZone)
	if err != nil {
		return nil, nil
	}
	info, err := ParseRRule(r.RRule)
	if err != nil {
		return nil, err
	}

	start := windowStart.UTC()
	end := windowEnd.UTC()
	if r.RecurrenceEndTime.Before(end) {
		end = r.RecurrenceEndTime.UTC()
	}
	if end.Before(start) {
		return nil, nil
	}

	anchorWall := naiveWall(r.StartTime.In(loc))
	lo := naiveWall(start.In(loc)).AddDate(0, 0, -1)
	hi := naiveWall(end.In(loc)).AddDate(0, 0, 1)

	var walls []time.Time
	if day, ok := clampTargetDay(r, info, anchorWall); ok {
		walls = clampedMonthlyWalls(info, anchorWall, day, hi)
	} else {
		opt := info.Option
		opt.Dtstart = anchorWall
		// UNTIL is enforced on the UTC timeline via RecurrenceEndTime; in
		// the naive frame it would cut up to an offset too early or late.
		opt.Until = time.Time{}
		rule, err := rrule.NewRRule(opt)
		if err != nil {
			return nil, err
		}
		walls = rule.Between(lo, hi, true)
	}

	out := make([]time.Time, 0, len(walls))
	for _, w := range walls {
		u := tz.ResolveWall(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc)
		if u.Before(start) || u.After(end) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// clampTargetDay decides whether the clamp enumerator replaces the standard
// one: policy Clamp, monthly frequency, anchored on a day not present in
// every month, and no by-parts beyond the day itself. Days 1-28 exist
// everywhere, and rules with extra by-parts need the standard enumerator to
// honor them, so both fall through.
func clampTargetDay(r Recurrence, info RuleInfo, anchorLocal time.Time) (int, bool) {
	if r.MonthDayBehavior == nil || *r.MonthDayBehavior != MonthDayClamp {
		return 0, false
	}
	if info.HasExtraByRules() {
		return 0, false
	}
	day, ok := info.MonthlyTargetDay(anchorLocal)
	if !ok || day < 29 {
		return 0, false
	}
	return day, true
}

// clampedMonthlyWalls steps whole months from the anchor, emitting day
// min(target, last day of month) at the anchor's time of day. February
// yields 29 in leap years and 28 otherwise.
func clampedMonthlyWalls(info RuleInfo, anchorWall time.Time, targetDay int, hi time.Time) []time.Time {
	interval := info.Option.Interval
	if interval < 1 {
		interval = 1
	}
	first := time.Date(
		anchorWall.Year(), anchorWall.Month(), 1,
		anchorWall.Hour(), anchorWall.Minute(), anchorWall.Second(), anchorWall.Nanosecond(),
		time.UTC,
	)

	var out []time.Time
	for k := 0; ; k++ {
		monthStart := first.AddDate(0, k*interval, 0)
		day := targetDay
		if last := DaysInMonth(monthStart.Year(), monthStart.Month()); day > last {
			day = last
		}
		w := monthStart.AddDate(0, 0, day-1)
		if w.After(hi) {
			return out
		}
		if w.Before(anchorWall) {
			continue
		}
		out = append(out, w)
	}
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// naiveWall re-labels a wall-clock reading as UTC so rrule enumeration runs
// free of DST transitions.
func naiveWall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
