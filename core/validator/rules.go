package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Rule is a deferred check plus the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs rules in order and returns ValidationErrors for the failing ones, or nil.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if rule.Check != nil && !rule.Check() {
			errs.Add(rule.Error)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()\-.]{5,19}$`)

// Required fails for blank strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// ValidEmail fails unless value is a bare address (no display name).
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			return err == nil && addr.Address == value && strings.Contains(value[strings.LastIndex(value, "@"):], ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// ValidPhone accepts digits with optional leading plus and common separators.
func ValidPhone(field, value string) Rule {
	return Rule{
		Check: func() bool { return phoneRegex.MatchString(value) },
		Error: ValidationError{Field: field, Message: "must be a valid phone number"},
	}
}

// MinLenString fails when value has fewer than min runes.
func MinLenString(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= min },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d characters", min)},
	}
}

// MaxLenString fails when value has more than max runes.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)},
	}
}

// InList fails unless value is one of allowed.
func InList(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", "))},
	}
}
