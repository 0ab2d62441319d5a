package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tempora/backend/internal/domain"
)

// OverrideRepository persists per-instant modifications.
type OverrideRepository interface {
	Create(ctx context.Context, tx Tx, v domain.OccurrenceOverride) (domain.OccurrenceOverride, error)
	GetByID(ctx context.Context, tx Tx, organization, resourcePath string, id uuid.UUID) (domain.OccurrenceOverride, error)
	Update(ctx context.Context, tx Tx, v domain.OccurrenceOverride) (domain.OccurrenceOverride, error)
	Delete(ctx context.Context, tx Tx, organization, resourcePath string, id uuid.UUID) error
	DeleteByRecurrence(ctx context.Context, tx Tx, organization, resourcePath string, recurrenceID uuid.UUID) error
	// GetInRange returns overrides of the given recurrences that matter to
	// a window: OriginalTime inside it, or the new [StartTime, EndTime]
	// span overlapping it (the moved-in case).
	GetInRange(ctx context.Context, tx Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID, startUTC, endUTC time.Time) ([]domain.OccurrenceOverride, error)
}
