package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// successMarker is returned for 204 responses and empty success bodies.
var successMarker = json.RawMessage(`{"success":true}`)

// errorBody covers the error envelopes the backend is known to produce.
type errorBody struct {
	Details json.RawMessage `json:"details"`
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

// requestFailed builds the error for a non-2xx status other than 401 and 429.
// Message priority: details list > error > message > "Error <status>".
func requestFailed(status int, body []byte) *Error {
	e := &Error{Kind: ErrRequestFailed, Status: status}

	var eb errorBody
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &eb) == nil {
		if details := stringList(eb.Details); len(details) > 0 {
			e.Details = details
			e.Message = strings.Join(details, ", ")
			return e
		}
		if s := jsonString(eb.Error); s != "" {
			e.Message = s
			return e
		}
		if s := jsonString(eb.Message); s != "" {
			e.Message = s
			return e
		}
	}

	e.Message = fmt.Sprintf("Error %d", status)
	return e
}

func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// stringList decodes a JSON array, rendering non-string items with fmt.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
		case string:
			if v != "" {
				out = append(out, v)
			}
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// parseRetryAfter understands delta-seconds and HTTP-date forms.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now).Truncate(time.Second)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
