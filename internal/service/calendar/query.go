package calendar

import (
	"context"
	"iter"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tempora/backend/internal/domain"
	"tempora/backend/internal/tz"
)

// GetOccurrences streams every standalone and virtualized entry whose span
// intersects the UTC window [windowStart, windowEnd]. types narrows by
// entity type; nil means all types, an empty non-nil slice is rejected.
//
// Entries belonging to one recurrence come out in ascending start order;
// there is no ordering guarantee across recurrences or against standalone
// occurrences. The first non-nil error is the stream's terminal status.
func (s *Service) GetOccurrences(ctx context.Context, organization, resourcePath string, windowStart, windowEnd time.Time, types []string) iter.Seq2[domain.CalendarEntry, error] {
	return func(yield func(domain.CalendarEntry, error) bool) {
		if err := validateWindow(windowStart, windowEnd, types); err != nil {
			yield(domain.CalendarEntry{}, err)
			return
		}
		start, end := windowStart.UTC(), windowEnd.UTC()

		recs, occs, err := s.loadWindow(ctx, organization, resourcePath, start, end, types)
		if err != nil {
			yield(domain.CalendarEntry{}, err)
			return
		}
		exceptions, overrides, err := s.loadDeltas(ctx, organization, resourcePath, recs, start, end)
		if err != nil {
			yield(domain.CalendarEntry{}, err)
			return
		}

		exByRec := make(map[uuid.UUID][]domain.OccurrenceException)
		for _, x := range exceptions {
			exByRec[x.RecurrenceID] = append(exByRec[x.RecurrenceID], x)
		}
		ovByRec := make(map[uuid.UUID][]domain.OccurrenceOverride)
		for _, v := range overrides {
			ovByRec[v.RecurrenceID] = append(ovByRec[v.RecurrenceID], v)
		}

		for _, rec := range recs {
			if err := ctx.Err(); err != nil {
				yield(domain.CalendarEntry{}, err)
				return
			}
			entries, err := s.mergeRecurrence(rec, exByRec[rec.ID], ovByRec[rec.ID], start, end)
			if err != nil {
				yield(domain.CalendarEntry{}, err)
				return
			}
			for _, e := range entries {
				if !yield(e, nil) {
					return
				}
			}
		}

		for _, o := range occs {
			loc, err := tz.LoadZone(o.TimeZone)
			if err != nil {
				s.log.Warn("standalone occurrence has unresolvable zone",
					slog.String("occurrence_id", o.ID.String()),
					slog.String("timezone", o.TimeZone))
				loc = time.UTC
			}
			if !yield(domain.NewStandaloneEntry(o, loc), nil) {
				return
			}
		}
	}
}

// GetRecurrences streams the patterns themselves, one entry per recurrence
// whose active span intersects the window, without expansion.
func (s *Service) GetRecurrences(ctx context.Context, organization, resourcePath string, windowStart, windowEnd time.Time, types []string) iter.Seq2[domain.CalendarEntry, error] {
	return func(yield func(domain.CalendarEntry, error) bool) {
		if err := validateWindow(windowStart, windowEnd, types); err != nil {
			yield(domain.CalendarEntry{}, err)
			return
		}
		recs, err := s.recurrences.GetInRange(ctx, nil, organization, resourcePath, windowStart.UTC(), windowEnd.UTC(), types)
		if err != nil {
			yield(domain.CalendarEntry{}, err)
			return
		}
		for _, rec := range recs {
			if err := ctx.Err(); err != nil {
				yield(domain.CalendarEntry{}, err)
				return
			}
			loc, err := tz.LoadZone(rec.TimeZone)
			if err != nil {
				s.log.Warn("recurrence has unresolvable zone",
					slog.String("recurrence_id", rec.ID.String()),
					slog.String("timezone", rec.TimeZone))
				loc = time.UTC
			}
			if !yield(domain.NewRecurrenceEntry(rec, loc), nil) {
				return
			}
		}
	}
}

func validateWindow(windowStart, windowEnd time.Time, types []string) error {
	if windowStart.IsZero() || windowEnd.IsZero() {
		return validationError("window_start and window_end are required")
	}
	if !windowEnd.After(windowStart) {
		return validationError("window_end must be after window_start")
	}
	if types != nil && len(types) == 0 {
		return validationError("types must be nil or non-empty")
	}
	return nil
}

// loadWindow fetches recurrences and standalone occurrences for the window
// concurrently; the two scans are independent.
func (s *Service) loadWindow(ctx context.Context, organization, resourcePath string, start, end time.Time, types []string) ([]domain.Recurrence, []domain.Occurrence, error) {
	var (
		wg     sync.WaitGroup
		recs   []domain.Recurrence
		occs   []domain.Occurrence
		recErr error
		occErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		recs, recErr = s.recurrences.GetInRange(ctx, nil, organization, resourcePath, start, end, types)
	}()
	go func() {
		defer wg.Done()
		occs, occErr = s.occurrences.GetInRange(ctx, nil, organization, resourcePath, start, end, types)
	}()
	wg.Wait()
	if recErr != nil {
		return nil, nil, recErr
	}
	if occErr != nil {
		return nil, nil, occErr
	}
	return recs, occs, nil
}

// loadDeltas fetches exceptions and overrides for the discovered
// recurrences concurrently. Exceptions are not windowed: a cancellation of
// an instant outside the window must still suppress an override moved into
// it.
func (s *Service) loadDeltas(ctx context.Context, organization, resourcePath string, recs []domain.Recurrence, start, end time.Time) ([]domain.OccurrenceException, []domain.OccurrenceOverride, error) {
	if len(recs) == 0 {
		return nil, nil, nil
	}
	ids := make([]uuid.UUID, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}

	var (
		wg         sync.WaitGroup
		exceptions []domain.OccurrenceException
		overrides  []domain.OccurrenceOverride
		exErr      error
		ovErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		exceptions, exErr = s.exceptions.GetByRecurrenceIDs(ctx, nil, organization, resourcePath, ids)
	}()
	go func() {
		defer wg.Done()
		overrides, ovErr = s.overrides.GetInRange(ctx, nil, organization, resourcePath, ids, start, end)
	}()
	wg.Wait()
	if exErr != nil {
		return nil, nil, exErr
	}
	if ovErr != nil {
		return nil, nil, ovErr
	}
	return exceptions, overrides, nil
}

// mergeRecurrence fuses one recurrence's expanded instants with its
// exceptions and overrides. An exception always wins, even over a
// coexisting override. Overrides whose replacement span left the window
// entirely are dropped; overrides whose original instant lies outside the
// window but whose replacement span overlaps it are picked up by the second
// loop.
func (s *Service) mergeRecurrence(rec domain.Recurrence, exs []domain.OccurrenceException, ovs []domain.OccurrenceOverride, start, end time.Time) ([]domain.CalendarEntry, error) {
	loc, err := tz.LoadZone(rec.TimeZone)
	if err != nil {
		s.log.Warn("recurrence has unresolvable zone",
			slog.String("recurrence_id", rec.ID.String()),
			slog.String("timezone", rec.TimeZone))
		return nil, nil
	}
	instants, err := domain.ExpandRecurrence(rec, start, end)
	if err != nil {
		return nil, err
	}

	excepted := make(map[int64]struct{}, len(exs))
	for _, x := range exs {
		excepted[x.OriginalTime.UTC().UnixNano()] = struct{}{}
	}
	byOriginal := make(map[int64]domain.OccurrenceOverride, len(ovs))
	for _, v := range ovs {
		byOriginal[v.OriginalTime.UTC().UnixNano()] = v
	}

	out := make([]domain.CalendarEntry, 0, len(instants))
	for _, t := range instants {
		key := t.UnixNano()
		if _, ok := excepted[key]; ok {
			continue
		}
		if v, ok := byOriginal[key]; ok {
			if v.StartTime.After(end) || v.EndTime.Before(start) {
				continue
			}
			out = append(out, domain.NewOverriddenEntry(rec, v, t, loc))
			continue
		}
		out = append(out, domain.NewVirtualizedEntry(rec, t, loc))
	}

	for _, v := range ovs {
		orig := v.OriginalTime.UTC()
		if !orig.Before(start) && !orig.After(end) {
			continue
		}
		if _, ok := excepted[orig.UnixNano()]; ok {
			continue
		}
		if v.StartTime.After(end) || v.EndTime.Before(start) {
			continue
		}
		out = append(out, domain.NewOverriddenEntry(rec, v, orig, loc))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}
