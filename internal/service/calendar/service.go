// Package calendar implements the virtualization engine: it expands stored
// recurrences into concrete occurrences on demand, fuses them with
// per-instant exceptions and overrides, merges in standalone occurrences,
// and writes edits back as minimal delta records instead of materialized
// instances.
package calendar

import (
	"log/slog"

	"tempora/backend/internal/store"
)

// Repositories are the four tenant-scoped contracts the engine consumes.
type Repositories struct {
	Recurrences store.RecurrenceRepository
	Occurrences store.OccurrenceRepository
	Exceptions  store.ExceptionRepository
	Overrides   store.OverrideRepository
}

// Service holds no mutable state across calls; all per-query state is
// local, so one instance is safe for concurrent use.
type Service struct {
	recurrences store.RecurrenceRepository
	occurrences store.OccurrenceRepository
	exceptions  store.ExceptionRepository
	overrides   store.OverrideRepository
	log         *slog.Logger
}

func NewService(repos Repositories, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		recurrences: repos.Recurrences,
		occurrences: repos.Occurrences,
		exceptions:  repos.Exceptions,
		overrides:   repos.Overrides,
		log:         log.With(slog.String("component", "calendar.engine")),
	}
}
