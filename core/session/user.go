package session

import (
	"encoding/json"
	"slices"
)

// Well-known roles.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User is the identity returned by the auth endpoints.
type User struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles,omitempty"`
	IsActive bool     `json:"is_active"`
	// APIKey is echoed by some backends on login. It is never used as the credential source.
	APIKey string `json:"api_key,omitempty"`
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// IsAdmin reports whether the user holds RoleAdmin.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// DisplayName returns the name, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Roles = slices.Clone(u.Roles)
	return &cp
}

// State is the snapshot delivered to listeners.
type State struct {
	User            *User
	IsAuthenticated bool
}

// AuthResponse is the body of login, register and refresh responses.
type AuthResponse struct {
	APIKey  string `json:"api_key,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email string   `json:"email" sanitize:"email" validate:"required;email"`
	Name  string   `json:"name" sanitize:"text" validate:"required;max:100"`
	Roles []string `json:"roles,omitempty" sanitize:"trim,upper"`
}

// ConnectionStatus is the result of TestConnection.
type ConnectionStatus struct {
	Success bool
	Data    json.RawMessage
	Error   string
}
