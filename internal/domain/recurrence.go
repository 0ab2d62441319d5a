package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MonthDayBehavior controls what a monthly rule anchored on day 29-31 does
// in months that are too short: Throw rejects the rule at creation, Skip
// drops the short months, Clamp moves the occurrence to the last day of the
// month.
type MonthDayBehavior string

const (
	MonthDayThrow MonthDayBehavior = "throw"
	MonthDaySkip  MonthDayBehavior = "skip"
	MonthDayClamp MonthDayBehavior = "clamp"
)

func (b MonthDayBehavior) Valid() bool {
	switch b {
	case MonthDayThrow, MonthDaySkip, MonthDayClamp:
		return true
	}
	return false
}

// Recurrence is the compact persistent form of a repeating calendar entry.
// StartTime is the UTC anchor of the first would-be occurrence;
// RecurrenceEndTime denormalizes the UNTIL clause of RRule so range queries
// never need to parse rule text. The stored RRule text is kept bit-exact.
//
// StartTime, RRule, TimeZone, Type, Organization and ResourcePath are
// immutable after creation; only DurationSeconds and Extensions may change.
type Recurrence struct {
	bun.BaseModel `bun:"table:recurrences"`

	ID                uuid.UUID         `bun:"id,pk,type:uuid"`
	Organization      string            `bun:"organization,notnull"`
	ResourcePath      string            `bun:"resource_path,notnull"`
	Type              string            `bun:"type,notnull"`
	StartTime         time.Time         `bun:"start_time,notnull"`
	DurationSeconds   int               `bun:"duration_seconds,notnull"`
	RecurrenceEndTime time.Time         `bun:"recurrence_end_time,notnull"`
	RRule             string            `bun:"rrule,notnull"`
	TimeZone          string            `bun:"timezone,notnull"`
	MonthDayBehavior  *MonthDayBehavior `bun:"month_day_behavior"`
	Extensions        Extensions        `bun:"extensions,type:jsonb"`
	CreatedAt         time.Time         `bun:"created_at,notnull"`
	UpdatedAt         time.Time         `bun:"updated_at,notnull"`
}

func (r *Recurrence) Duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

func (r *Recurrence) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if r.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			r.ID = id
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		r.UpdatedAt = now
	}
	return nil
}
