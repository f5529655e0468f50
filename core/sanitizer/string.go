package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
)

// Trim removes leading and trailing whitespace from the string.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// ToLower converts the string to lowercase.
func ToLower(s string) string {
	return strings.ToLower(s)
}

// ToUpper converts the string to uppercase.
func ToUpper(s string) string {
	return strings.ToUpper(s)
}

// MaxLength truncates s to maxLen runes.
func MaxLength(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	return string(runes[:maxLen])
}

// RemoveExtraWhitespace collapses whitespace runs into single spaces and trims.
func RemoveExtraWhitespace(s string) string {
	normalized := whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(normalized)
}

// RemoveControlChars drops control characters except newline, carriage return and tab.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// StripHTML removes tags and decodes entities.
func StripHTML(s string) string {
	stripped := htmlTagRegex.ReplaceAllString(s, "")
	return html.UnescapeString(stripped)
}

// SingleLine replaces line breaks with spaces and collapses whitespace.
func SingleLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	return RemoveExtraWhitespace(s)
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone keeps digits, a leading plus and single spaces between digit groups.
// "  +1 (555) 010-9999 " becomes "+1 555 010 9999".
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	pendingSpace := false
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 && !strings.HasSuffix(b.String(), "+") {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}
	return b.String()
}
