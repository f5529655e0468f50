package credential

import (
	"context"
	"strings"
)

// Store persists at most one credential.
//
// Implementations report failures honestly. Callers that treat persistence as
// best-effort (the gateway) log and swallow those errors themselves.
type Store interface {
	// Load returns the stored credential, or ErrNotFound when nothing is stored.
	Load(ctx context.Context) (string, error)
	// Save replaces the stored credential.
	Save(ctx context.Context, token string) error
	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Normalize trims token and maps sentinel values ("null", "undefined") to the empty string.
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	switch token {
	case "null", "undefined":
		return ""
	}
	return token
}

// IsValid reports whether token is a usable credential after normalization.
func IsValid(token string) bool {
	return Normalize(token) != ""
}
