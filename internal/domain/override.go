package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OccurrenceOverride replaces one virtualized occurrence of a recurrence
// with new start/duration/extensions. OriginalTime is the UTC instant being
// replaced. OriginalDurationSeconds and OriginalExtensions snapshot the
// parent recurrence's mutable fields at override creation so the override
// stays self-describing if the recurrence later changes.
type OccurrenceOverride struct {
	bun.BaseModel `bun:"table:occurrence_overrides"`

	ID                      uuid.UUID  `bun:"id,pk,type:uuid"`
	Organization            string     `bun:"organization,notnull"`
	ResourcePath            string     `bun:"resource_path,notnull"`
	RecurrenceID            uuid.UUID  `bun:"recurrence_id,notnull,type:uuid"`
	OriginalTime            time.Time  `bun:"original_time,notnull"`
	StartTime               time.Time  `bun:"start_time,notnull"`
	DurationSeconds         int        `bun:"duration_seconds,notnull"`
	EndTime                 time.Time  `bun:"end_time,notnull"`
	Extensions              Extensions `bun:"extensions,type:jsonb"`
	OriginalDurationSeconds int        `bun:"original_duration_seconds,notnull"`
	OriginalExtensions      Extensions `bun:"original_extensions,type:jsonb"`
	CreatedAt               time.Time  `bun:"created_at,notnull"`
	UpdatedAt               time.Time  `bun:"updated_at,notnull"`
}

func (v *OccurrenceOverride) Duration() time.Duration {
	return time.Duration(v.DurationSeconds) * time.Second
}

func (v *OccurrenceOverride) OriginalDuration() time.Duration {
	return time.Duration(v.OriginalDurationSeconds) * time.Second
}

func (v *OccurrenceOverride) RecomputeEndTime() {
	v.EndTime = v.StartTime.Add(v.Duration())
}

func (v *OccurrenceOverride) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if v.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			v.ID = id
		}
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
		if v.UpdatedAt.IsZero() {
			v.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		v.UpdatedAt = now
	}
	return nil
}
