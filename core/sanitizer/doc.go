// Package sanitizer normalizes user input before it is validated or sent to the backend.
//
// Fields opt in through the sanitize struct tag, applied left to right:
//
//	type RestaurantInput struct {
//		Name    string `sanitize:"text,max:255"`
//		Address string `sanitize:"single_line"`
//		Phone   string `sanitize:"phone"`
//	}
//
//	if err := sanitizer.SanitizeStruct(&in); err != nil {
//		return err
//	}
//
// Built-in names: trim, lower, upper, single_line, no_spaces, strip_html, digits,
// no_control, email, phone, text and plain_text. "max:N" truncates to N runes.
// Unknown names are ignored. Nested structs and string pointers are processed;
// string slices are processed when the slice field carries a tag.
//
// RegisterSanitizer adds custom functions to the registry.
package sanitizer
