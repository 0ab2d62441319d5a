package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError marks malformed input; transports map it to an
// invalid-argument status.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

var (
	ErrInvalidOperation = errors.New("invalid operation for this calendar entry")

	// ErrUseDeleteRecurrence rejects per-occurrence deletion of a pattern;
	// pattern deletion has its own entry point with cascade semantics.
	ErrUseDeleteRecurrence = fmt.Errorf("%w: delete recurrence patterns through DeleteRecurrence", ErrInvalidOperation)
	ErrUseUpdateRecurrence = fmt.Errorf("%w: update recurrence patterns through UpdateRecurrence", ErrInvalidOperation)
)

// ImmutableFieldError reports an update that tried to change a field fixed
// at creation.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("field %s is immutable", e.Field)
}

// MonthDayOutOfBoundsError is the creation-time signal for monthly rules
// anchored on a day that some months of the recurrence span do not have.
// The caller recovers by re-issuing the create with the skip or clamp
// behavior.
type MonthDayOutOfBoundsError struct {
	DayOfMonth     int
	AffectedMonths []time.Month
}

func (e *MonthDayOutOfBoundsError) Error() string {
	names := make([]string, 0, len(e.AffectedMonths))
	for _, m := range e.AffectedMonths {
		names = append(names, m.String())
	}
	return fmt.Sprintf("day %d does not exist in %s; choose a month-day behavior", e.DayOfMonth, strings.Join(names, ", "))
}
