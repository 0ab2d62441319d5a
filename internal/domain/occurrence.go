package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Occurrence is a standalone, stored calendar entry. EndTime is derived and
// always recomputed as StartTime + Duration before a write. Organization,
// ResourcePath, Type and TimeZone are immutable after creation.
type Occurrence struct {
	bun.BaseModel `bun:"table:occurrences"`

	ID              uuid.UUID  `bun:"id,pk,type:uuid"`
	Organization    string     `bun:"organization,notnull"`
	ResourcePath    string     `bun:"resource_path,notnull"`
	Type            string     `bun:"type,notnull"`
	StartTime       time.Time  `bun:"start_time,notnull"`
	DurationSeconds int        `bun:"duration_seconds,notnull"`
	EndTime         time.Time  `bun:"end_time,notnull"`
	TimeZone        string     `bun:"timezone,notnull"`
	Extensions      Extensions `bun:"extensions,type:jsonb"`
	CreatedAt       time.Time  `bun:"created_at,notnull"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull"`
}

func (o *Occurrence) Duration() time.Duration {
	return time.Duration(o.DurationSeconds) * time.Second
}

func (o *Occurrence) RecomputeEndTime() {
	o.EndTime = o.StartTime.Add(o.Duration())
}

func (o *Occurrence) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if o.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			o.ID = id
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		if o.UpdatedAt.IsZero() {
			o.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		o.UpdatedAt = now
	}
	return nil
}
