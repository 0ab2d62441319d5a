package calendar

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tempora/backend/internal/domain"
	"tempora/backend/internal/store"
)

type fakeRecurrences struct {
	createFn     func(ctx context.Context, tx store.Tx, r domain.Recurrence) (domain.Recurrence, error)
	getByIDFn    func(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.Recurrence, error)
	updateFn     func(ctx context.Context, tx store.Tx, r domain.Recurrence) (domain.Recurrence, error)
	deleteFn     func(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error
	getInRangeFn func(ctx context.Context, tx store.Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Recurrence, error)
}

func (f *fakeRecurrences) Create(ctx context.Context, tx store.Tx, r domain.Recurrence) (domain.Recurrence, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, tx, r)
}

func (f *fakeRecurrences) GetByID(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.Recurrence, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, tx, organization, resourcePath, id)
}

func (f *fakeRecurrences) Update(ctx context.Context, tx store.Tx, r domain.Recurrence) (domain.Recurrence, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, tx, r)
}

func (f *fakeRecurrences) Delete(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, tx, organization, resourcePath, id)
}

func (f *fakeRecurrences) GetInRange(ctx context.Context, tx store.Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Recurrence, error) {
	if f.getInRangeFn == nil {
		panic("GetInRange not configured")
	}
	return f.getInRangeFn(ctx, tx, organization, resourcePath, startUTC, endUTC, types)
}

type fakeOccurrences struct {
	createFn     func(ctx context.Context, tx store.Tx, o domain.Occurrence) (domain.Occurrence, error)
	getByIDFn    func(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.Occurrence, error)
	updateFn     func(ctx context.Context, tx store.Tx, o domain.Occurrence) (domain.Occurrence, error)
	deleteFn     func(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error
	getInRangeFn func(ctx context.Context, tx store.Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Occurrence, error)
}

func (f *fakeOccurrences) Create(ctx context.Context, tx store.Tx, o domain.Occurrence) (domain.Occurrence, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, tx, o)
}

func (f *fakeOccurrences) GetByID(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.Occurrence, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, tx, organization, resourcePath, id)
}

func (f *fakeOccurrences) Update(ctx context.Context, tx store.Tx, o domain.Occurrence) (domain.Occurrence, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, tx, o)
}

func (f *fakeOccurrences) Delete(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, tx, organization, resourcePath, id)
}

func (f *fakeOccurrences) GetInRange(ctx context.Context, tx store.Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Occurrence, error) {
	if f.getInRangeFn == nil {
		panic("GetInRange not configured")
	}
	return f.getInRangeFn(ctx, tx, organization, resourcePath, startUTC, endUTC, types)
}

type fakeExceptions struct {
	createFn             func(ctx context.Context, tx store.Tx, x domain.OccurrenceException) (domain.OccurrenceException, error)
	getByIDFn            func(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.OccurrenceException, error)
	deleteFn             func(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error
	deleteByRecurrenceFn func(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceID uuid.UUID) error
	getByRecurrenceIDsFn func(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID) ([]domain.OccurrenceException, error)
}

func (f *fakeExceptions) Create(ctx context.Context, tx store.Tx, x domain.OccurrenceException) (domain.OccurrenceException, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, tx, x)
}

func (f *fakeExceptions) GetByID(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.OccurrenceException, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, tx, organization, resourcePath, id)
}

func (f *fakeExceptions) Delete(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, tx, organization, resourcePath, id)
}

func (f *fakeExceptions) DeleteByRecurrence(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceID uuid.UUID) error {
	if f.deleteByRecurrenceFn == nil {
		panic("DeleteByRecurrence not configured")
	}
	return f.deleteByRecurrenceFn(ctx, tx, organization, resourcePath, recurrenceID)
}

func (f *fakeExceptions) GetByRecurrenceIDs(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID) ([]domain.OccurrenceException, error) {
	if f.getByRecurrenceIDsFn == nil {
		panic("GetByRecurrenceIDs not configured")
	}
	return f.getByRecurrenceIDsFn(ctx, tx, organization, resourcePath, recurrenceIDs)
}

type fakeOverrides struct {
	createFn             func(ctx context.Context, tx store.Tx, v domain.OccurrenceOverride) (domain.OccurrenceOverride, error)
	getByIDFn            func(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.OccurrenceOverride, error)
	updateFn             func(ctx context.Context, tx store.Tx, v domain.OccurrenceOverride) (domain.OccurrenceOverride, error)
	deleteFn             func(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error
	deleteByRecurrenceFn func(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceID uuid.UUID) error
	getInRangeFn         func(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID, startUTC, endUTC time.Time) ([]domain.OccurrenceOverride, error)
}

func (f *fakeOverrides) Create(ctx context.Context, tx store.Tx, v domain.OccurrenceOverride) (domain.OccurrenceOverride, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, tx, v)
}

func (f *fakeOverrides) GetByID(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) (domain.OccurrenceOverride, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, tx, organization, resourcePath, id)
}

func (f *fakeOverrides) Update(ctx context.Context, tx store.Tx, v domain.OccurrenceOverride) (domain.OccurrenceOverride, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, tx, v)
}

func (f *fakeOverrides) Delete(ctx context.Context, tx store.Tx, organization, resourcePath string, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, tx, organization, resourcePath, id)
}

func (f *fakeOverrides) DeleteByRecurrence(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceID uuid.UUID) error {
	if f.deleteByRecurrenceFn == nil {
		panic("DeleteByRecurrence not configured")
	}
	return f.deleteByRecurrenceFn(ctx, tx, organization, resourcePath, recurrenceID)
}

func (f *fakeOverrides) GetInRange(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID, startUTC, endUTC time.Time) ([]domain.OccurrenceOverride, error) {
	if f.getInRangeFn == nil {
		panic("GetInRange not configured")
	}
	return f.getInRangeFn(ctx, tx, organization, resourcePath, recurrenceIDs, startUTC, endUTC)
}

func newTestService(recs *fakeRecurrences, occs *fakeOccurrences, exs *fakeExceptions, ovs *fakeOverrides) *Service {
	if recs == nil {
		recs = &fakeRecurrences{}
	}
	if occs == nil {
		occs = &fakeOccurrences{}
	}
	if exs == nil {
		exs = &fakeExceptions{}
	}
	if ovs == nil {
		ovs = &fakeOverrides{}
	}
	return NewService(Repositories{
		Recurrences: recs,
		Occurrences: occs,
		Exceptions:  exs,
		Overrides:   ovs,
	}, slog.New(slog.DiscardHandler))
}

func noRecurrences() *fakeRecurrences {
	return &fakeRecurrences{
		getInRangeFn: func(ctx context.Context, tx store.Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Recurrence, error) {
			return nil, nil
		},
	}
}

func noOccurrences() *fakeOccurrences {
	return &fakeOccurrences{
		getInRangeFn: func(ctx context.Context, tx store.Tx, organization, resourcePath string, startUTC, endUTC time.Time, types []string) ([]domain.Occurrence, error) {
			return nil, nil
		},
	}
}

func noExceptions() *fakeExceptions {
	return &fakeExceptions{
		getByRecurrenceIDsFn: func(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID) ([]domain.OccurrenceException, error) {
			return nil, nil
		},
	}
}

func noOverrides() *fakeOverrides {
	return &fakeOverrides{
		getInRangeFn: func(ctx context.Context, tx store.Tx, organization, resourcePath string, recurrenceIDs []uuid.UUID, startUTC, endUTC time.Time) ([]domain.OccurrenceOverride, error) {
			return nil, nil
		},
	}
}
