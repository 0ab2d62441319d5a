package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tempora/backend/internal/domain"
	"tempora/backend/internal/store"
	"tempora/backend/internal/tz"
)

type entryClass int

const (
	classIndeterminate entryClass = iota
	classRecurrencePattern
	classStandalone
	classVirtualized
	classVirtualizedOverride
)

// classifyEntry mirrors how queries produce entries: standalone emissions
// carry an occurrence id, virtualized emissions carry an Original block,
// pattern entries carry only a recurrence id.
func classifyEntry(e domain.CalendarEntry) entryClass {
	switch {
	case e.OccurrenceID != uuid.Nil:
		return classStandalone
	case e.Original != nil:
		if e.RecurrenceID == uuid.Nil {
			return classIndeterminate
		}
		if e.OverrideID != uuid.Nil {
			return classVirtualizedOverride
		}
		return classVirtualized
	case e.RecurrenceID != uuid.Nil:
		return classRecurrencePattern
	default:
		return classIndeterminate
	}
}

// UpdateOccurrence applies the entry's mutable fields to the backing
// entity. For a virtualized entry without an override it records a new
// override at the Original instant; for one with an override it rewrites
// that override. Pattern entries must go through UpdateRecurrence. Empty
// Type or TimeZone on the inbound entry means "unchanged".
func (s *Service) UpdateOccurrence(ctx context.Context, tx store.Tx, e domain.CalendarEntry) (domain.CalendarEntry, error) {
	switch classifyEntry(e) {
	case classStandalone:
		return s.updateStandalone(ctx, tx, e)
	case classVirtualized:
		return s.createOverride(ctx, tx, e)
	case classVirtualizedOverride:
		return s.updateOverride(ctx, tx, e)
	case classRecurrencePattern:
		return domain.CalendarEntry{}, ErrUseUpdateRecurrence
	default:
		return domain.CalendarEntry{}, ErrInvalidOperation
	}
}

func (s *Service) updateStandalone(ctx context.Context, tx store.Tx, e domain.CalendarEntry) (domain.CalendarEntry, error) {
	cur, err := s.occurrences.GetByID(ctx, tx, e.Organization, e.ResourcePath, e.OccurrenceID)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	if e.TimeZone != "" && e.TimeZone != cur.TimeZone {
		return domain.CalendarEntry{}, &ImmutableFieldError{Field: "time_zone"}
	}
	if err := validateMutableValues(e); err != nil {
		return domain.CalendarEntry{}, err
	}
	loc, err := tz.LoadZone(cur.TimeZone)
	if err != nil {
		return domain.CalendarEntry{}, err
	}

	if e.Type != "" {
		cur.Type = e.Type
	}
	cur.StartTime = tz.ToUTC(e.StartTime, loc)
	cur.DurationSeconds = int(e.Duration / time.Second)
	cur.Extensions = e.Extensions.Clone()
	cur.RecomputeEndTime()

	updated, err := s.occurrences.Update(ctx, tx, cur)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	return domain.NewStandaloneEntry(updated, loc), nil
}

// createOverride turns the first edit of a virtual instant into an override
// record, snapshotting the pattern's duration and extensions as they stood
// at that moment.
func (s *Service) createOverride(ctx context.Context, tx store.Tx, e domain.CalendarEntry) (domain.CalendarEntry, error) {
	rec, err := s.recurrences.GetByID(ctx, tx, e.Organization, e.ResourcePath, e.RecurrenceID)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	if err := checkRecurrenceImmutables(e, rec); err != nil {
		return domain.CalendarEntry{}, err
	}
	if err := validateMutableValues(e); err != nil {
		return domain.CalendarEntry{}, err
	}
	loc, err := tz.LoadZone(rec.TimeZone)
	if err != nil {
		return domain.CalendarEntry{}, err
	}

	v := domain.OccurrenceOverride{
		Organization:            rec.Organization,
		ResourcePath:            rec.ResourcePath,
		RecurrenceID:            rec.ID,
		OriginalTime:            e.Original.StartTime.UTC(),
		StartTime:               tz.ToUTC(e.StartTime, loc),
		DurationSeconds:         int(e.Duration / time.Second),
		Extensions:              e.Extensions.Clone(),
		OriginalDurationSeconds: rec.DurationSeconds,
		OriginalExtensions:      rec.Extensions.Clone(),
	}
	v.RecomputeEndTime()

	created, err := s.overrides.Create(ctx, tx, v)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	return domain.NewOverriddenEntry(rec, created, created.OriginalTime, loc), nil
}

func (s *Service) updateOverride(ctx context.Context, tx store.Tx, e domain.CalendarEntry) (domain.CalendarEntry, error) {
	v, err := s.overrides.GetByID(ctx, tx, e.Organization, e.ResourcePath, e.OverrideID)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	rec, err := s.recurrences.GetByID(ctx, tx, e.Organization, e.ResourcePath, v.RecurrenceID)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	if err := checkRecurrenceImmutables(e, rec); err != nil {
		return domain.CalendarEntry{}, err
	}
	if err := validateMutableValues(e); err != nil {
		return domain.CalendarEntry{}, err
	}
	loc, err := tz.LoadZone(rec.TimeZone)
	if err != nil {
		return domain.CalendarEntry{}, err
	}

	v.StartTime = tz.ToUTC(e.StartTime, loc)
	v.DurationSeconds = int(e.Duration / time.Second)
	v.Extensions = e.Extensions.Clone()
	v.RecomputeEndTime()

	updated, err := s.overrides.Update(ctx, tx, v)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	return domain.NewOverriddenEntry(rec, updated, updated.OriginalTime, loc), nil
}

// UpdateRecurrence edits the pattern itself. Only duration and extensions
// are mutable; the new values take effect for every instant not pinned by
// an override. Start time, rule text, type, and zone are fixed at creation
// since changing them would silently re-time every derived instant.
func (s *Service) UpdateRecurrence(ctx context.Context, tx store.Tx, e domain.CalendarEntry) (domain.CalendarEntry, error) {
	if classifyEntry(e) != classRecurrencePattern {
		return domain.CalendarEntry{}, ErrInvalidOperation
	}
	rec, err := s.recurrences.GetByID(ctx, tx, e.Organization, e.ResourcePath, e.RecurrenceID)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	if err := checkRecurrenceImmutables(e, rec); err != nil {
		return domain.CalendarEntry{}, err
	}
	if e.RRule != "" && e.RRule != rec.RRule {
		return domain.CalendarEntry{}, &ImmutableFieldError{Field: "rrule"}
	}
	if !e.StartTime.IsZero() && !e.StartTime.Equal(rec.StartTime) {
		return domain.CalendarEntry{}, &ImmutableFieldError{Field: "start_time"}
	}
	if err := validateDuration(e.Duration); err != nil {
		return domain.CalendarEntry{}, err
	}
	if err := e.Extensions.Validate(); err != nil {
		return domain.CalendarEntry{}, validationError(err.Error())
	}

	rec.DurationSeconds = int(e.Duration / time.Second)
	rec.Extensions = e.Extensions.Clone()

	updated, err := s.recurrences.Update(ctx, tx, rec)
	if err != nil {
		return domain.CalendarEntry{}, err
	}
	loc, err := tz.LoadZone(updated.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	return domain.NewRecurrenceEntry(updated, loc), nil
}

// DeleteOccurrence removes one entry from the calendar. Standalone entries
// are deleted outright; virtual instants are cancelled by recording an
// exception at their original time. Deleting an overridden instant cancels
// the stored original instant, not the moved one, and drops the override;
// pass a caller transaction to make those two steps atomic.
func (s *Service) DeleteOccurrence(ctx context.Context, tx store.Tx, e domain.CalendarEntry) error {
	switch classifyEntry(e) {
	case classStandalone:
		return s.occurrences.Delete(ctx, tx, e.Organization, e.ResourcePath, e.OccurrenceID)
	case classVirtualized:
		x := domain.OccurrenceException{
			Organization: e.Organization,
			ResourcePath: e.ResourcePath,
			RecurrenceID: e.RecurrenceID,
			OriginalTime: e.Original.StartTime.UTC(),
		}
		_, err := s.exceptions.Create(ctx, tx, x)
		return err
	case classVirtualizedOverride:
		v, err := s.overrides.GetByID(ctx, tx, e.Organization, e.ResourcePath, e.OverrideID)
		if err != nil {
			return err
		}
		if err := s.overrides.Delete(ctx, tx, e.Organization, e.ResourcePath, v.ID); err != nil {
			return err
		}
		x := domain.OccurrenceException{
			Organization: e.Organization,
			ResourcePath: e.ResourcePath,
			RecurrenceID: v.RecurrenceID,
			OriginalTime: v.OriginalTime.UTC(),
		}
		_, err = s.exceptions.Create(ctx, tx, x)
		return err
	case classRecurrencePattern:
		return ErrUseDeleteRecurrence
	default:
		return ErrInvalidOperation
	}
}

// DeleteRecurrence removes a pattern and every exception and override
// hanging off it.
func (s *Service) DeleteRecurrence(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceID uuid.UUID) error {
	if recurrenceID == uuid.Nil {
		return validationError("recurrence_id is required")
	}
	return s.recurrences.Delete(ctx, tx, organization, resourcePath, recurrenceID)
}

// RestoreOccurrence drops an entry's override so the next query re-emits
// the pattern's own instant. Only overridden entries can be restored;
// cancelled instants are brought back by removing the exception record
// directly.
func (s *Service) RestoreOccurrence(ctx context.Context, tx store.Tx, e domain.CalendarEntry) error {
	if classifyEntry(e) != classVirtualizedOverride {
		return ErrInvalidOperation
	}
	return s.overrides.Delete(ctx, tx, e.Organization, e.ResourcePath, e.OverrideID)
}

// checkRecurrenceImmutables rejects attempts to re-type or re-zone a
// virtual instant through its entry.
func checkRecurrenceImmutables(e domain.CalendarEntry, rec domain.Recurrence) error {
	if e.Type != "" && e.Type != rec.Type {
		return &ImmutableFieldError{Field: "type"}
	}
	if e.TimeZone != "" && e.TimeZone != rec.TimeZone {
		return &ImmutableFieldError{Field: "time_zone"}
	}
	return nil
}

func validateMutableValues(e domain.CalendarEntry) error {
	if e.StartTime.IsZero() {
		return validationError("start_time is required")
	}
	if err := validateDuration(e.Duration); err != nil {
		return err
	}
	if len(e.Type) > maxFieldLength {
		return validationError("type too long")
	}
	if err := e.Extensions.Validate(); err != nil {
		return validationError(err.Error())
	}
	return nil
}
