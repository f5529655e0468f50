package session

import "errors"

var (
	// ErrNoCredentialIssued is returned when login or registration succeeds without an api_key.
	ErrNoCredentialIssued = errors.New("session: no API key received from server")
	// ErrMissingUser is returned when the identity endpoint answers without a user.
	ErrMissingUser = errors.New("session: no user in identity response")
)

// Fallback messages used when the backend gave none.
const (
	msgLoginFailed       = "login failed"
	msgRegisterFailed    = "registration failed"
	msgNoAPIKey          = "no API key received from server"
	msgUserInfo          = "could not retrieve user information"
	msgCurrentUserFailed = "could not get current user"
	msgRefreshFailed     = "API key refresh failed"
)
