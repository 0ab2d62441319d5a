package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind discriminates the three CalendarEntry variants.
type EntryKind string

const (
	EntryKindRecurrence  EntryKind = "recurrence"
	EntryKindStandalone  EntryKind = "standalone"
	EntryKindVirtualized EntryKind = "virtualized"
)

// OriginalOccurrence records where a virtualized entry came from: the UTC
// instant the expander produced and the duration/extensions the entry would
// have carried absent any override.
type OriginalOccurrence struct {
	StartTime  time.Time
	Duration   time.Duration
	Extensions Extensions
}

// CalendarEntry is the unified surface value emitted by queries and accepted
// by mutations. StartTime and EndTime are in the entity's own zone;
// Original.StartTime stays UTC. Exactly one of RecurrenceID/OccurrenceID
// identifies the backing entity per variant; Original is set iff the entry
// is virtualized.
type CalendarEntry struct {
	Kind         EntryKind
	Organization string
	ResourcePath string
	Type         string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TimeZone     string
	Extensions   Extensions

	RecurrenceID uuid.UUID
	OccurrenceID uuid.UUID
	OverrideID   uuid.UUID

	// Recurrence variant only.
	RRule             string
	RecurrenceEndTime time.Time

	Original *OriginalOccurrence
}

func (e CalendarEntry) IsOverridden() bool {
	return e.OverrideID != uuid.Nil
}

// NewRecurrenceEntry surfaces the pattern itself, anchored at its first
// would-be occurrence.
func NewRecurrenceEntry(r Recurrence, loc *time.Location) CalendarEntry {
	start := r.StartTime.In(loc)
	return CalendarEntry{
		Kind:              EntryKindRecurrence,
		Organization:      r.Organization,
		ResourcePath:      r.ResourcePath,
		Type:              r.Type,
		StartTime:         start,
		EndTime:           start.Add(r.Duration()),
		Duration:          r.Duration(),
		TimeZone:          r.TimeZone,
		Extensions:        r.Extensions.Clone(),
		RecurrenceID:      r.ID,
		RRule:             r.RRule,
		RecurrenceEndTime: r.RecurrenceEndTime,
	}
}

func NewStandaloneEntry(o Occurrence, loc *time.Location) CalendarEntry {
	start := o.StartTime.In(loc)
	return CalendarEntry{
		Kind:         EntryKindStandalone,
		Organization: o.Organization,
		ResourcePath: o.ResourcePath,
		Type:         o.Type,
		StartTime:    start,
		EndTime:      start.Add(o.Duration()),
		Duration:     o.Duration(),
		TimeZone:     o.TimeZone,
		Extensions:   o.Extensions.Clone(),
		OccurrenceID: o.ID,
	}
}

// NewVirtualizedEntry materializes the instant originalUTC of r without any
// override applied.
func NewVirtualizedEntry(r Recurrence, originalUTC time.Time, loc *time.Location) CalendarEntry {
	start := originalUTC.In(loc)
	return CalendarEntry{
		Kind:         EntryKindVirtualized,
		Organization: r.Organization,
		ResourcePath: r.ResourcePath,
		Type:         r.Type,
		StartTime:    start,
		EndTime:      start.Add(r.Duration()),
		Duration:     r.Duration(),
		TimeZone:     r.TimeZone,
		Extensions:   r.Extensions.Clone(),
		RecurrenceID: r.ID,
		Original: &OriginalOccurrence{
			StartTime:  originalUTC.UTC(),
			Duration:   r.Duration(),
			Extensions: r.Extensions.Clone(),
		},
	}
}

// NewOverriddenEntry materializes the instant originalUTC of r as replaced
// by v. The Original block carries v's creation-time snapshot, not r's
// current fields.
func NewOverriddenEntry(r Recurrence, v OccurrenceOverride, originalUTC time.Time, loc *time.Location) CalendarEntry {
	start := v.StartTime.In(loc)
	return CalendarEntry{
		Kind:         EntryKindVirtualized,
		Organization: r.Organization,
		ResourcePath: r.ResourcePath,
		Type:         r.Type,
		StartTime:    start,
		EndTime:      start.Add(v.Duration()),
		Duration:     v.Duration(),
		TimeZone:     r.TimeZone,
		Extensions:   v.Extensions.Clone(),
		RecurrenceID: r.ID,
		OverrideID:   v.ID,
		Original: &OriginalOccurrence{
			StartTime:  originalUTC.UTC(),
			Duration:   v.OriginalDuration(),
			Extensions: v.OriginalExtensions.Clone(),
		},
	}
}
