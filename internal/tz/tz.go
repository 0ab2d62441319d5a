// Package tz maps wall-clock readings onto the UTC timeline under an IANA
// zone. All persisted timestamps in tempora are UTC; local times exist only
// at the edges (rule expansion and the entries returned to callers), and
// every local-to-UTC conversion goes through the lenient resolution below so
// that any wall time has exactly one UTC interpretation.
package tz

import (
	"fmt"
	"strings"
	"time"
)

// LoadZone resolves an IANA zone identifier (e.g. "America/New_York")
// against the tz database. Aliases that are not region names, such as
// "Local" or Windows display names, are rejected.
func LoadZone(id string) (*time.Location, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("time zone is required")
	}
	if trimmed == "Local" {
		return nil, fmt.Errorf("invalid time zone %q", id)
	}
	loc, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q", id)
	}
	return loc, nil
}

// ToUTC maps t onto the UTC timeline. A value already carrying the UTC
// location passes through unchanged. Any other value is treated as a
// wall-clock reading and its clock fields are resolved in loc.
func ToUTC(t time.Time, loc *time.Location) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	return ResolveWall(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// ToLocal converts a UTC instant to the wall clock of loc. No ambiguity
// arises in this direction.
func ToLocal(u time.Time, loc *time.Location) time.Time {
	return u.In(loc)
}

// ResolveWall maps a wall-clock reading in loc to a UTC instant.
//
// Readings inside a spring-forward gap are shifted forward by the width of
// the gap (02:30 in a zone that jumps 02:00->03:00 resolves to 03:30).
// Readings repeated by a fall-back transition resolve to the earlier
// instant, i.e. the pre-transition offset.
func ResolveWall(year int, month time.Month, day, hour, min, sec, nsec int, loc *time.Location) time.Time {
	naive := time.Date(year, month, day, hour, min, sec, nsec, time.UTC)

	// Offsets in effect the day before and the day after the reading cover
	// any single transition near it; real zones never transition twice
	// within that span.
	offBefore := offsetAt(naive.Add(-26*time.Hour), loc)
	offAfter := offsetAt(naive.Add(26*time.Hour), loc)

	before := naive.Add(-time.Duration(offBefore) * time.Second)
	if offBefore == offAfter {
		return before
	}

	after := naive.Add(-time.Duration(offAfter) * time.Second)
	okBefore := sameWall(before.In(loc), naive)
	okAfter := sameWall(after.In(loc), naive)

	switch {
	case okBefore && okAfter:
		// Ambiguous: both offsets produce the requested wall time.
		if before.Before(after) {
			return before
		}
		return after
	case okBefore:
		return before
	case okAfter:
		return after
	default:
		// Skipped: interpreting with the pre-transition offset lands on the
		// first valid instant after the gap.
		return before
	}
}

func offsetAt(u time.Time, loc *time.Location) int {
	_, off := u.In(loc).Zone()
	return off
}

func sameWall(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() &&
		a.Second() == b.Second() && a.Nanosecond() == b.Nanosecond()
}
