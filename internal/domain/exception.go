package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OccurrenceException cancels one virtualized occurrence of a recurrence.
// OriginalTime is the UTC instant the expander would have produced. At most
// one exception exists per (recurrence, original instant), and when an
// override coexists at the same instant the exception wins at read time.
type OccurrenceException struct {
	bun.BaseModel `bun:"table:occurrence_exceptions"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Organization string    `bun:"organization,notnull"`
	ResourcePath string    `bun:"resource_path,notnull"`
	RecurrenceID uuid.UUID `bun:"recurrence_id,notnull,type:uuid"`
	OriginalTime time.Time `bun:"original_time,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (x *OccurrenceException) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if x.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			x.ID = id
		}
		if x.CreatedAt.IsZero() {
			x.CreatedAt = now
		}
		if x.UpdatedAt.IsZero() {
			x.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		x.UpdatedAt = now
	}
	return nil
}
