package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tempora/backend/internal/domain"
)

// RecurrenceRepository persists recurrence patterns. All reads and writes
// are scoped by (organization, resourcePath); timestamps crossing this
// boundary are UTC.
type RecurrenceRepository interface {
	Create(ctx context.Context, tx Tx, r domain.Recurrence) (domain.Recurrence, error)
	GetByID(ctx context.Context, tx Tx, organization, resourcePath string, id uuid.UUID) (domain.Recurrence, error)
	Update(ctx context.Context, tx Tx, r domain.Recurrence) (domain.Recurrence, error)
	// Delete cascades to the recurrence's exceptions and overrides, inside
	// tx when one is supplied and in a repository-owned transaction
	// otherwise.
	Delete(ctx context.Context, tx Tx, organization, resourcePath string, id uuid.UUID) error
	// GetInRange returns recurrences whose active span intersects the
	// window: StartTime <= endUTC and RecurrenceEndTime >= startUTC. A nil
	// types slice means all types.
	GetInRange(ctx context.Context, tx Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Recurrence, error)
}
