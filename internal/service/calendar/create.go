package calendar

import (
	"context"
	"sort"
	"time"

	"tempora/backend/internal/domain"
	"tempora/backend/internal/store"
	"tempora/backend/internal/tz"
)

const maxFieldLength = 100

type CreateRecurrenceInput struct {
	Organization     string
	ResourcePath     string
	Type             string
	StartTime        time.Time
	Duration         time.Duration
	RRule            string
	TimeZone         string
	Extensions       domain.Extensions
	MonthDayBehavior *domain.MonthDayBehavior
}

type CreateOccurrenceInput struct {
	Organization string
	ResourcePath string
	Type         string
	StartTime    time.Time
	Duration     time.Duration
	TimeZone     string
	Extensions   domain.Extensions
}

// CreateRecurrence validates and persists a recurrence pattern. StartTime
// with a non-UTC location is read as a wall-clock time in the pattern's
// zone. Monthly rules anchored on day 29-31 whose span crosses a month
// without that day fail with MonthDayOutOfBoundsError unless the input
// carries the skip or clamp behavior.
func (s *Service) CreateRecurrence(ctx context.Context, tx store.Tx, in CreateRecurrenceInput) (domain.Recurrence, error) {
	if err := validateCommonFields(in.Type, in.Organization, in.ResourcePath, in.Extensions); err != nil {
		return domain.Recurrence{}, err
	}
	if err := validateDuration(in.Duration); err != nil {
		return domain.Recurrence{}, err
	}
	if in.StartTime.IsZero() {
		return domain.Recurrence{}, validationError("start_time is required")
	}
	loc, err := tz.LoadZone(in.TimeZone)
	if err != nil {
		return domain.Recurrence{}, validationError("invalid time_zone")
	}
	info, err := domain.ParseRRule(in.RRule)
	if err != nil {
		return domain.Recurrence{}, validationError(err.Error())
	}
	startUTC := tz.ToUTC(in.StartTime, loc)
	if info.Until.Before(startUTC) {
		return domain.Recurrence{}, validationError("rrule UNTIL must not be before start_time")
	}
	if in.MonthDayBehavior != nil && !in.MonthDayBehavior.Valid() {
		return domain.Recurrence{}, validationError("invalid month_day_behavior")
	}

	if day, months := monthDayGaps(info, startUTC, loc); len(months) > 0 {
		if in.MonthDayBehavior == nil || *in.MonthDayBehavior == domain.MonthDayThrow {
			return domain.Recurrence{}, &MonthDayOutOfBoundsError{DayOfMonth: day, AffectedMonths: months}
		}
	}

	rec := domain.Recurrence{
		Organization:      in.Organization,
		ResourcePath:      in.ResourcePath,
		Type:              in.Type,
		StartTime:         startUTC,
		DurationSeconds:   int(in.Duration / time.Second),
		RecurrenceEndTime: info.Until,
		RRule:             in.RRule,
		TimeZone:          in.TimeZone,
		MonthDayBehavior:  in.MonthDayBehavior,
		Extensions:        in.Extensions.Clone(),
	}
	return s.recurrences.Create(ctx, tx, rec)
}

// CreateOccurrence validates and persists a standalone occurrence.
func (s *Service) CreateOccurrence(ctx context.Context, tx store.Tx, in CreateOccurrenceInput) (domain.Occurrence, error) {
	if err := validateCommonFields(in.Type, in.Organization, in.ResourcePath, in.Extensions); err != nil {
		return domain.Occurrence{}, err
	}
	if err := validateDuration(in.Duration); err != nil {
		return domain.Occurrence{}, err
	}
	if in.StartTime.IsZero() {
		return domain.Occurrence{}, validationError("start_time is required")
	}
	loc, err := tz.LoadZone(in.TimeZone)
	if err != nil {
		return domain.Occurrence{}, validationError("invalid time_zone")
	}

	o := domain.Occurrence{
		Organization:    in.Organization,
		ResourcePath:    in.ResourcePath,
		Type:            in.Type,
		StartTime:       tz.ToUTC(in.StartTime, loc),
		DurationSeconds: int(in.Duration / time.Second),
		TimeZone:        in.TimeZone,
		Extensions:      in.Extensions.Clone(),
	}
	o.RecomputeEndTime()
	return s.occurrences.Create(ctx, tx, o)
}

func validateCommonFields(typ, organization, resourcePath string, ext domain.Extensions) error {
	if typ == "" {
		return validationError("type is required")
	}
	if len(typ) > maxFieldLength {
		return validationError("type too long")
	}
	if len(organization) > maxFieldLength {
		return validationError("organization too long")
	}
	if len(resourcePath) > maxFieldLength {
		return validationError("resource_path too long")
	}
	if err := ext.Validate(); err != nil {
		return validationError(err.Error())
	}
	return nil
}

// Durations persist as whole seconds; anything finer would silently
// truncate and break end_time = start_time + duration.
func validateDuration(d time.Duration) error {
	if d <= 0 {
		return validationError("duration must be positive")
	}
	if d%time.Second != 0 {
		return validationError("duration must be a whole number of seconds")
	}
	return nil
}

// monthDayGaps lists the distinct months inside the recurrence span that do
// not have the rule's anchor day. Only monthly rules anchored on day 29-31
// can have gaps; the walk steps the rule's own month interval so a
// bimonthly rule is not charged for months it never lands on.
func monthDayGaps(info domain.RuleInfo, startUTC time.Time, loc *time.Location) (int, []time.Month) {
	if info.HasExtraByRules() {
		return 0, nil
	}
	anchorLocal := startUTC.In(loc)
	day, ok := info.MonthlyTargetDay(anchorLocal)
	if !ok || day < 29 {
		return 0, nil
	}
	interval := info.Option.Interval
	if interval < 1 {
		interval = 1
	}

	endLocal := info.Until.In(loc)
	first := time.Date(anchorLocal.Year(), anchorLocal.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(endLocal.Year(), endLocal.Month(), 1, 0, 0, 0, 0, time.UTC)

	seen := make(map[time.Month]struct{})
	var months []time.Month
	for m := first; !m.After(last); m = m.AddDate(0, interval, 0) {
		if domain.DaysInMonth(m.Year(), m.Month()) >= day {
			continue
		}
		if _, ok := seen[m.Month()]; ok {
			continue
		}
		seen[m.Month()] = struct{}{}
		months = append(months, m.Month())
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return day, months
}
