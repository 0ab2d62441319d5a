package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tempora/backend/internal/domain"
)

// OccurrenceRepository persists standalone occurrences, tenant-scoped like
// the other contracts.
type OccurrenceRepository interface {
	Create(ctx context.Context, tx Tx, o domain.Occurrence) (domain.Occurrence, error)
	GetByID(ctx context.Context, tx Tx, organization, resourcePath string, id uuid.UUID) (domain.Occurrence, error)
	Update(ctx context.Context, tx Tx, o domain.Occurrence) (domain.Occurrence, error)
	Delete(ctx context.Context, tx Tx, organization, resourcePath string, id uuid.UUID) error
	// GetInRange returns occurrences overlapping the window:
	// StartTime <= endUTC and EndTime >= startUTC.
	GetInRange(ctx context.Context, tx Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Occurrence, error)
}
