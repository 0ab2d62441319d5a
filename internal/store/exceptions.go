package store

import (
	"context"

	"github.com/google/uuid"

	"tempora/backend/internal/domain"
)

// ExceptionRepository persists per-instant cancellations. Reads are not
// windowed: an exception cancels its instant regardless of where the query
// window lies, so the merge loads all of a recurrence's exceptions.
type ExceptionRepository interface {
	Create(ctx context.Context, tx Tx, x domain.OccurrenceException) (domain.OccurrenceException, error)
	GetByID(ctx context.Context, tx Tx, organization, resourcePath string, id uuid.UUID) (domain.OccurrenceException, error)
	Delete(ctx context.Context, tx Tx, organization, resourcePath string, id uuid.UUID) error
	DeleteByRecurrence(ctx context.Context, tx Tx, organization, resourcePath string, recurrenceID uuid.UUID) error
	GetByRecurrenceIDs(ctx context.Context, tx Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID) ([]domain.OccurrenceException, error)
}
