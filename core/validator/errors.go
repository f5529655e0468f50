package validator

import (
	"errors"
	"strings"
)

// ValidationError describes a single failed rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failed rule of one validation pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return strings.Join(parts, ", ")
}

// Add appends a failure.
func (e *ValidationErrors) Add(err ValidationError) {
	*e = append(*e, err)
}

// IsEmpty reports whether no rule failed.
func (e ValidationErrors) IsEmpty() bool {
	return len(e) == 0
}

// Has reports whether field has at least one failure.
func (e ValidationErrors) Has(field string) bool {
	for _, ve := range e {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// Fields returns the failing field names in order, without duplicates.
func (e ValidationErrors) Fields() []string {
	seen := make(map[string]struct{}, len(e))
	out := make([]string, 0, len(e))
	for _, ve := range e {
		if _, ok := seen[ve.Field]; ok {
			continue
		}
		seen[ve.Field] = struct{}{}
		out = append(out, ve.Field)
	}
	return out
}

// Messages returns every failure rendered as "field: message".
func (e ValidationErrors) Messages() []string {
	out := make([]string, len(e))
	for i, ve := range e {
		out[i] = ve.Error()
	}
	return out
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors inside err, if any.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
