package restaurant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a restaurant identifier. The backend sends it as a number or a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("restaurant: invalid id %s", b)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer IDs as numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// Restaurant is a restaurant record.
type Restaurant struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// UnmarshalJSON accepts both snake_case and camelCase timestamps.
func (r *Restaurant) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID         ID      `json:"id"`
		Name       *string `json:"name"`
		Address    *string `json:"address"`
		Phone      *string `json:"phone"`
		CreatedAt  *string `json:"created_at"`
		UpdatedAt  *string `json:"updated_at"`
		CreatedAtC *string `json:"createdAt"`
		UpdatedAtC *string `json:"updatedAt"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*r = Restaurant{
		ID:        wire.ID,
		Name:      deref(wire.Name),
		Address:   deref(wire.Address),
		Phone:     deref(wire.Phone),
		CreatedAt: firstNonEmpty(wire.CreatedAtC, wire.CreatedAt),
		UpdatedAt: firstNonEmpty(wire.UpdatedAtC, wire.UpdatedAt),
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

// Input is the full payload for Create and Update.
type Input struct {
	Name    string `json:"name" sanitize:"plain_text" validate:"required;max:255"`
	Address string `json:"address" sanitize:"plain_text" validate:"required;max:500"`
	Phone   string `json:"phone" sanitize:"phone" validate:"max:50"`
}

// Changes is a partial update. Nil fields are left untouched.
type Changes struct {
	Name    *string `json:"name,omitempty" sanitize:"plain_text" validate:"max:255"`
	Address *string `json:"address,omitempty" sanitize:"plain_text" validate:"max:500"`
	Phone   *string `json:"phone,omitempty" sanitize:"phone" validate:"max:50"`
}

// IsEmpty reports whether no field is set.
func (c Changes) IsEmpty() bool {
	return c.Name == nil && c.Address == nil && c.Phone == nil
}

// SearchParams are the filters accepted by Search. Zero values are omitted.
type SearchParams struct {
	Search         string
	Name           string
	Address        string
	Phone          string
	CreatedFrom    string
	CreatedTo      string
	UpdatedFrom    string
	UpdatedTo      string
	OrderBy        string
	OrderDirection string
	Page           int
	Limit          int
}
