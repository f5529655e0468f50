package restaurant_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restokit/core/restaurant"
)

func items(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"id":%d,"name":"R%d","address":"Street %d","phone":""}`, i+1, i+1, i+1)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want restaurant.Envelope
	}{
		{"hydra", `{"hydra:member":[],"hydra:totalItems":0}`, restaurant.EnvelopeHydra},
		{"results", `{"results":[],"count":0}`, restaurant.EnvelopeResults},
		{"data with total", `{"data":[],"total":0}`, restaurant.EnvelopeData},
		{"data without total", `{"data":[]}`, restaurant.EnvelopeUnknown},
		{"array", `[]`, restaurant.EnvelopeArray},
		{"object", `{"foo":1}`, restaurant.EnvelopeUnknown},
		{"null", `null`, restaurant.EnvelopeUnknown},
		{"empty", ``, restaurant.EnvelopeUnknown},
		{"success marker", `{"success":true}`, restaurant.EnvelopeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, restaurant.Classify(json.RawMessage(tt.raw)))
		})
	}
}

func TestNormalizeList(t *testing.T) {
	t.Parallel()

	t.Run("hydra collection", func(t *testing.T) {
		t.Parallel()
		raw := `{
			"hydra:member": [{"id":1,"name":"A","address":"x","createdAt":"2024-01-01T00:00:00Z"}],
			"hydra:totalItems": 25,
			"hydra:view": {"@id":"/restaurants?page=2&itemsPerPage=10","hydra:next":"/restaurants?page=3"}
		}`
		p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
		require.NoError(t, err)
		assert.Equal(t, restaurant.EnvelopeHydra, p.Envelope)
		assert.Equal(t, 25, p.Total)
		require.Len(t, p.Items, 1)
		assert.Equal(t, restaurant.ID("1"), p.Items[0].ID)
		assert.Equal(t, "2024-01-01T00:00:00Z", p.Items[0].CreatedAt)
		require.NotNil(t, p.Pagination)
		assert.True(t, p.Pagination.HasMore)
		assert.Equal(t, 2, p.Pagination.CurrentPage)
		assert.Equal(t, 1, p.Pagination.ItemsInCurrentPage)
		assert.Equal(t, 3, p.Pagination.TotalPages)
	})

	t.Run("hydra last page", func(t *testing.T) {
		t.Parallel()
		raw := `{"hydra:member":[],"hydra:totalItems":20,"hydra:view":{"@id":"https://api.example.com/restaurants?page=2"}}`
		p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
		require.NoError(t, err)
		assert.False(t, p.Pagination.HasMore)
		assert.Equal(t, 2, p.Pagination.CurrentPage)
		assert.NotNil(t, p.Items)
		assert.Empty(t, p.Items)
	})

	t.Run("hydra without view defaults to page 1", func(t *testing.T) {
		t.Parallel()
		raw := `{"hydra:member":` + items(2) + `}`
		p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
		require.NoError(t, err)
		assert.Equal(t, 2, p.Total)
		assert.Equal(t, 1, p.Pagination.CurrentPage)
		assert.False(t, p.Pagination.HasMore)
	})

	t.Run("hydra view with unparsable page", func(t *testing.T) {
		t.Parallel()
		raw := `{"hydra:member":[],"hydra:view":{"@id":"/restaurants?page=abc"}}`
		p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Pagination.CurrentPage)
	})

	t.Run("results with count", func(t *testing.T) {
		t.Parallel()
		raw := `{"results":` + items(2) + `,"count":7,"query":"pi"}`
		p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
		require.NoError(t, err)
		assert.Equal(t, restaurant.EnvelopeResults, p.Envelope)
		assert.Equal(t, 7, p.Total)
		assert.Len(t, p.Items, 2)
		assert.Nil(t, p.Pagination)
	})

	t.Run("results with pagination total", func(t *testing.T) {
		t.Parallel()
		raw := `{"results":` + items(3) + `,"count":3,"pagination":{"total":40,"page":2,"pages":4}}`
		p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
		require.NoError(t, err)
		assert.Equal(t, 40, p.Total)
		require.NotNil(t, p.Pagination)
		assert.Equal(t, 2, p.Pagination.CurrentPage)
		assert.Equal(t, 4, p.Pagination.TotalPages)
		assert.Equal(t, 3, p.Pagination.ItemsInCurrentPage)
		assert.True(t, p.Pagination.HasMore)
		assert.JSONEq(t, `{"total":40,"page":2,"pages":4}`, string(p.Pagination.Raw))
	})

	t.Run("results with explicit has_more", func(t *testing.T) {
		t.Parallel()
		raw := `{"results":[],"pagination":{"has_more":false,"page":1,"pages":9}}`
		p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
		require.NoError(t, err)
		assert.False(t, p.Pagination.HasMore)
		assert.Equal(t, 0, p.Total)
	})

	t.Run("data with total", func(t *testing.T) {
		t.Parallel()
		raw := `{"data":` + items(1) + `,"total":12}`
		p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
		require.NoError(t, err)
		assert.Equal(t, restaurant.EnvelopeData, p.Envelope)
		assert.Equal(t, 12, p.Total)
		assert.Len(t, p.Items, 1)
	})

	t.Run("full direct array guesses more pages", func(t *testing.T) {
		t.Parallel()
		p, err := restaurant.NormalizeList(json.RawMessage(items(10)), 10)
		require.NoError(t, err)
		assert.Equal(t, restaurant.EnvelopeArray, p.Envelope)
		assert.Equal(t, 10, p.Total)
		require.NotNil(t, p.Pagination)
		assert.True(t, p.Pagination.HasMore)
		assert.True(t, p.Pagination.DirectArray)
		assert.Equal(t, 10, p.Pagination.ItemsInCurrentPage)
	})

	t.Run("short direct array is the last page", func(t *testing.T) {
		t.Parallel()
		p, err := restaurant.NormalizeList(json.RawMessage(items(3)), 10)
		require.NoError(t, err)
		assert.False(t, p.Pagination.HasMore)
	})

	t.Run("empty direct array has no more pages", func(t *testing.T) {
		t.Parallel()
		p, err := restaurant.NormalizeList(json.RawMessage(`[]`), 0)
		require.NoError(t, err)
		assert.False(t, p.Pagination.HasMore)
		assert.NotNil(t, p.Items)
	})

	t.Run("unknown shapes are empty", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{`{"foo":1}`, `null`, ``, `{"data":[{"id":1}]}`} {
			p, err := restaurant.NormalizeList(json.RawMessage(raw), 10)
			require.NoError(t, err, raw)
			assert.Equal(t, restaurant.EnvelopeUnknown, p.Envelope, raw)
			assert.Empty(t, p.Items, raw)
			assert.Zero(t, p.Total, raw)
		}
	})

	t.Run("invalid JSON fails", func(t *testing.T) {
		t.Parallel()
		_, err := restaurant.NormalizeList(json.RawMessage(`{"results":`), 10)
		require.Error(t, err)
		_, err = restaurant.NormalizeList(json.RawMessage(`[1,2`), 10)
		require.Error(t, err)
	})
}
