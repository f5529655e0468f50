package credential

import "errors"

var (
	// ErrNotFound is returned by Load when no credential is stored.
	ErrNotFound = errors.New("credential: not found")
	// ErrCorrupt is returned when stored data cannot be decoded.
	ErrCorrupt = errors.New("credential: corrupt data")
	// ErrInvalidConfig is returned for unusable store configuration.
	ErrInvalidConfig = errors.New("credential: invalid configuration")
)
