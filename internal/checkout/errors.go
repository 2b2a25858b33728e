package checkout

import (
	"errors"
	"sort"
	"strings"

	"github.com/diewo77/invoice-pay/validation"
)

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrFormLocked        = errors.New("form is not editable")
	ErrSubmitInFlight    = errors.New("a submission is already in flight")
	ErrUnknownField      = errors.New("unknown field")
	ErrUnknownCountry    = errors.New("unknown country")
)

// ValidationError is returned when a submit is refused because the form is invalid.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for field := range e.Violations {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + "=" + e.Violations[field]
	}
	return "invalid form: " + strings.Join(parts, ", ")
}
