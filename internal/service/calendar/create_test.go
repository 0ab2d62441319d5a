package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"tempora/backend/internal/domain"
	"tempora/backend/internal/store"
)

func validRecurrenceInput() CreateRecurrenceInput {
	return CreateRecurrenceInput{
		Organization: "org1",
		ResourcePath: "/rooms/7",
		Type:         "meeting",
		StartTime:    time.Date(2026, time.January, 5, 14, 30, 0, 0, time.UTC),
		Duration:     time.Hour,
		RRule:        "FREQ=WEEKLY;UNTIL=20260601T000000Z",
		TimeZone:     "America/New_York",
	}
}

func capturingRecurrences(got *domain.Recurrence) *fakeRecurrences {
	return &fakeRecurrences{
		createFn: func(ctx context.Context, tx store.Tx, r domain.Recurrence) (domain.Recurrence, error) {
			*got = r
			return r, nil
		},
	}
}

func TestCreateRecurrence_PersistsNormalizedPattern(t *testing.T) {
	var got domain.Recurrence
	svc := newTestService(capturingRecurrences(&got), nil, nil, nil)

	created, err := svc.CreateRecurrence(context.Background(), nil, validRecurrenceInput())
	if err != nil {
		t.Fatalf("CreateRecurrence error: %v", err)
	}
	if !got.StartTime.Equal(time.Date(2026, time.January, 5, 14, 30, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", got.StartTime)
	}
	if got.DurationSeconds != 3600 {
		t.Fatalf("duration_seconds = %d", got.DurationSeconds)
	}
	if !got.RecurrenceEndTime.Equal(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("recurrence_end_time = %v, want the UNTIL instant", got.RecurrenceEndTime)
	}
	if got.RRule != "FREQ=WEEKLY;UNTIL=20260601T000000Z" {
		t.Fatalf("rrule = %q, want stored bit-exact", got.RRule)
	}
	if created.TimeZone != "America/New_York" {
		t.Fatalf("timezone = %q", created.TimeZone)
	}
}

func TestCreateRecurrence_ResolvesWallClockStartInPatternZone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	var got domain.Recurrence
	svc := newTestService(capturingRecurrences(&got), nil, nil, nil)

	in := validRecurrenceInput()
	// The clock fields are read as 09:30 New York regardless of the
	// location the caller attached.
	in.StartTime = time.Date(2026, time.January, 5, 9, 30, 0, 0, berlin)
	if _, err := svc.CreateRecurrence(context.Background(), nil, in); err != nil {
		t.Fatalf("CreateRecurrence error: %v", err)
	}
	want := time.Date(2026, time.January, 5, 14, 30, 0, 0, time.UTC)
	if !got.StartTime.Equal(want) {
		t.Fatalf("start = %v, want %v", got.StartTime, want)
	}
}

func TestCreateRecurrence_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateRecurrenceInput)
	}{
		{"missing type", func(in *CreateRecurrenceInput) { in.Type = "" }},
		{"zero duration", func(in *CreateRecurrenceInput) { in.Duration = 0 }},
		{"negative duration", func(in *CreateRecurrenceInput) { in.Duration = -time.Hour }},
		{"sub-second duration", func(in *CreateRecurrenceInput) { in.Duration = time.Hour + 500*time.Millisecond }},
		{"zero start", func(in *CreateRecurrenceInput) { in.StartTime = time.Time{} }},
		{"bad zone", func(in *CreateRecurrenceInput) { in.TimeZone = "Eastern Standard Time" }},
		{"rrule with count", func(in *CreateRecurrenceInput) { in.RRule = "FREQ=DAILY;COUNT=3;UNTIL=20260601T000000Z" }},
		{"rrule without until", func(in *CreateRecurrenceInput) { in.RRule = "FREQ=DAILY" }},
		{"until before start", func(in *CreateRecurrenceInput) { in.RRule = "FREQ=DAILY;UNTIL=20250101T000000Z" }},
		{"bad behavior", func(in *CreateRecurrenceInput) {
			b := domain.MonthDayBehavior("explode")
			in.MonthDayBehavior = &b
		}},
		{"oversized extension value", func(in *CreateRecurrenceInput) {
			in.Extensions = domain.Extensions{"k": string(make([]byte, domain.MaxExtensionValueLength+1))}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(nil, nil, nil, nil)
			in := validRecurrenceInput()
			tc.mutate(&in)
			_, err := svc.CreateRecurrence(context.Background(), nil, in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v (%T), want *ValidationError", err, err)
			}
		})
	}
}

func TestCreateRecurrence_MonthDayGapRejectedByDefault(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)
	in := validRecurrenceInput()
	in.StartTime = time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)
	in.TimeZone = "UTC"
	in.RRule = "FREQ=MONTHLY;UNTIL=20260701T000000Z"

	_, err := svc.CreateRecurrence(context.Background(), nil, in)
	var mdErr *MonthDayOutOfBoundsError
	if !errors.As(err, &mdErr) {
		t.Fatalf("error = %v (%T), want *MonthDayOutOfBoundsError", err, err)
	}
	if mdErr.DayOfMonth != 31 {
		t.Fatalf("day = %d, want 31", mdErr.DayOfMonth)
	}
	want := []time.Month{time.February, time.April, time.June}
	if len(mdErr.AffectedMonths) != len(want) {
		t.Fatalf("months = %v, want %v", mdErr.AffectedMonths, want)
	}
	for i, m := range want {
		if mdErr.AffectedMonths[i] != m {
			t.Fatalf("months = %v, want %v", mdErr.AffectedMonths, want)
		}
	}
}

func TestCreateRecurrence_MonthDayGapAllowedWithBehavior(t *testing.T) {
	for _, b := range []domain.MonthDayBehavior{domain.MonthDaySkip, domain.MonthDayClamp} {
		var got domain.Recurrence
		svc := newTestService(capturingRecurrences(&got), nil, nil, nil)
		in := validRecurrenceInput()
		in.StartTime = time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)
		in.TimeZone = "UTC"
		in.RRule = "FREQ=MONTHLY;UNTIL=20260701T000000Z"
		in.MonthDayBehavior = &b

		if _, err := svc.CreateRecurrence(context.Background(), nil, in); err != nil {
			t.Fatalf("CreateRecurrence(%s) error: %v", b, err)
		}
		if got.MonthDayBehavior == nil || *got.MonthDayBehavior != b {
			t.Fatalf("stored behavior = %v, want %s", got.MonthDayBehavior, b)
		}
	}
}

func TestCreateRecurrence_NoGapForSafeDays(t *testing.T) {
	var got domain.Recurrence
	svc := newTestService(capturingRecurrences(&got), nil, nil, nil)
	in := validRecurrenceInput()
	in.StartTime = time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	in.TimeZone = "UTC"
	in.RRule = "FREQ=MONTHLY;UNTIL=20270101T000000Z"

	if _, err := svc.CreateRecurrence(context.Background(), nil, in); err != nil {
		t.Fatalf("CreateRecurrence error: %v", err)
	}
}

func TestCreateRecurrence_BimonthlyGapSkipsUnvisitedMonths(t *testing.T) {
	svc := newTestService(capturingRecurrences(&domain.Recurrence{}), nil, nil, nil)
	in := validRecurrenceInput()
	// Every second month from January lands on Jan, Mar, May, Jul; none of
	// those is short of a 31st, so no gap despite February in the span.
	in.StartTime = time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)
	in.TimeZone = "UTC"
	in.RRule = "FREQ=MONTHLY;INTERVAL=2;UNTIL=20260801T000000Z"

	if _, err := svc.CreateRecurrence(context.Background(), nil, in); err != nil {
		t.Fatalf("CreateRecurrence error: %v", err)
	}
}

func TestCreateRecurrence_ExtraByRulesBypassGapAnalysis(t *testing.T) {
	var got domain.Recurrence
	svc := newTestService(capturingRecurrences(&got), nil, nil, nil)
	in := validRecurrenceInput()
	// BYMONTH restricts the rule to months the gap walk cannot reason
	// about, so the rule is stored as written and the enumerator decides.
	in.StartTime = time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)
	in.TimeZone = "UTC"
	in.RRule = "FREQ=MONTHLY;BYMONTH=1,3;UNTIL=20260701T000000Z"

	if _, err := svc.CreateRecurrence(context.Background(), nil, in); err != nil {
		t.Fatalf("CreateRecurrence error: %v", err)
	}
	if got.RRule != in.RRule {
		t.Fatalf("rrule = %q, want %q", got.RRule, in.RRule)
	}
}

func TestCreateOccurrence_PersistsWithDerivedEnd(t *testing.T) {
	var got domain.Occurrence
	occs := &fakeOccurrences{
		createFn: func(ctx context.Context, tx store.Tx, o domain.Occurrence) (domain.Occurrence, error) {
			got = o
			return o, nil
		},
	}
	svc := newTestService(nil, occs, nil, nil)

	_, err := svc.CreateOccurrence(context.Background(), nil, CreateOccurrenceInput{
		Organization: "org1",
		ResourcePath: "/rooms/7",
		Type:         "inspection",
		StartTime:    time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC),
		Duration:     15 * time.Minute,
		TimeZone:     "Europe/Berlin",
		Extensions:   domain.Extensions{"inspector": "a"},
	})
	if err != nil {
		t.Fatalf("CreateOccurrence error: %v", err)
	}
	if !got.EndTime.Equal(got.StartTime.Add(15 * time.Minute)) {
		t.Fatalf("end = %v, want start+15m", got.EndTime)
	}
	if got.TimeZone != "Europe/Berlin" || got.Extensions["inspector"] != "a" {
		t.Fatalf("occurrence = %+v", got)
	}
}

func TestCreateOccurrence_Validation(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)
	_, err := svc.CreateOccurrence(context.Background(), nil, CreateOccurrenceInput{
		Type:      "inspection",
		StartTime: time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC),
		Duration:  15 * time.Minute,
		TimeZone:  "Local",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
}
