package gateway

import (
	"fmt"
	"net/url"
	"reflect"
)

// Query holds GET parameters. Entries whose value is nil, an empty string or a
// nil pointer are dropped before the request path is built.
type Query map[string]any

// Encode returns the URL-encoded query with keys sorted, so equal queries always
// produce the same fingerprint.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	values := url.Values{}
	for k, v := range q {
		if s, ok := queryValue(v); ok {
			values.Set(k, s)
		}
	}
	// url.Values.Encode sorts by key.
	return values.Encode()
}

func queryValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	var s string
	switch val := rv.Interface().(type) {
	case string:
		s = val
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}
	if s == "" {
		return "", false
	}
	return s, true
}
