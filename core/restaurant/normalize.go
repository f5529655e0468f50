package restaurant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Envelope identifies the response shape a list was decoded from.
type Envelope string

const (
	// EnvelopeHydra is a JSON-LD collection with hydra:member and hydra:totalItems.
	EnvelopeHydra Envelope = "hydra"
	// EnvelopeResults is an object with a results array plus count or pagination.
	EnvelopeResults Envelope = "results"
	// EnvelopeData is an object with a data array and a total.
	EnvelopeData Envelope = "data"
	// EnvelopeArray is a bare JSON array.
	EnvelopeArray Envelope = "array"
	// EnvelopeUnknown is anything else. It normalizes to an empty page.
	EnvelopeUnknown Envelope = "unknown"
)

// Pagination is the normalized paging state of a Page.
type Pagination struct {
	CurrentPage        int  `json:"current_page,omitempty"`
	ItemsInCurrentPage int  `json:"items_in_current_page"`
	TotalPages         int  `json:"total_pages,omitempty"`
	HasMore            bool `json:"has_more"`
	// DirectArray is set when the backend returned a bare array and HasMore is a guess.
	DirectArray bool `json:"direct_array,omitempty"`
	// Raw is the backend's own pagination object, when it sent one.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Page is the canonical list result regardless of the backend envelope.
type Page struct {
	Items      []Restaurant `json:"items"`
	Total      int          `json:"total"`
	Pagination *Pagination  `json:"pagination,omitempty"`
	Envelope   Envelope     `json:"envelope"`
}

// EmptyPage returns a page with no items.
func EmptyPage() *Page {
	return &Page{Items: []Restaurant{}, Envelope: EnvelopeUnknown}
}

type hydraView struct {
	ID   string `json:"@id"`
	Next string `json:"hydra:next"`
}

type hydraCollection struct {
	Member     []Restaurant `json:"hydra:member"`
	TotalItems *int         `json:"hydra:totalItems"`
	View       *hydraView   `json:"hydra:view"`
}

type resultsCollection struct {
	Results    []Restaurant    `json:"results"`
	Count      *int            `json:"count"`
	Pagination json.RawMessage `json:"pagination"`
}

type dataCollection struct {
	Data       []Restaurant    `json:"data"`
	Total      int             `json:"total"`
	Pagination json.RawMessage `json:"pagination"`
}

// backendPagination lists the paging fields the backend is known to use.
type backendPagination struct {
	Page        int   `json:"page"`
	CurrentPage int   `json:"current_page"`
	Total       int   `json:"total"`
	Pages       int   `json:"pages"`
	TotalPages  int   `json:"total_pages"`
	HasMore     *bool `json:"has_more"`
	HasNext     *bool `json:"has_next"`
}

// Classify reports which envelope raw uses.
func Classify(raw json.RawMessage) Envelope {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return EnvelopeUnknown
	}
	switch raw[0] {
	case '[':
		return EnvelopeArray
	case '{':
	default:
		return EnvelopeUnknown
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return EnvelopeUnknown
	}
	if isArray(keys["hydra:member"]) {
		return EnvelopeHydra
	}
	if isArray(keys["results"]) {
		return EnvelopeResults
	}
	if isArray(keys["data"]) && present(keys["total"]) {
		return EnvelopeData
	}
	return EnvelopeUnknown
}

// NormalizeList converts any supported list envelope into a Page.
// pageSize is the requested page size. Bare arrays use it to guess HasMore.
// Unknown shapes, including null, yield an empty page.
func NormalizeList(raw json.RawMessage, pageSize int) (*Page, error) {
	switch kind := Classify(raw); kind {
	case EnvelopeHydra:
		var c hydraCollection
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("restaurant: decode %s list: %w", kind, err)
		}
		items := nonNil(c.Member)
		p := &Page{
			Items:    items,
			Total:    len(items),
			Envelope: kind,
			Pagination: &Pagination{
				CurrentPage:        1,
				ItemsInCurrentPage: len(items),
			},
		}
		if c.TotalItems != nil {
			p.Total = *c.TotalItems
		}
		if c.View != nil {
			p.Pagination.HasMore = c.View.Next != ""
			p.Pagination.CurrentPage = pageFromIRI(c.View.ID)
		}
		if pageSize > 0 && p.Total > 0 {
			p.Pagination.TotalPages = (p.Total + pageSize - 1) / pageSize
		}
		return p, nil

	case EnvelopeResults:
		var c resultsCollection
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("restaurant: decode %s list: %w", kind, err)
		}
		items := nonNil(c.Results)
		p := &Page{Items: items, Envelope: kind}
		bp, ok := parseBackendPagination(c.Pagination)
		switch {
		case ok && bp.Total > 0:
			p.Total = bp.Total
		case c.Count != nil:
			p.Total = *c.Count
		}
		if ok {
			p.Pagination = bp.normalize(c.Pagination, len(items))
		}
		return p, nil

	case EnvelopeData:
		var c dataCollection
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("restaurant: decode %s list: %w", kind, err)
		}
		items := nonNil(c.Data)
		p := &Page{Items: items, Total: c.Total, Envelope: kind}
		if bp, ok := parseBackendPagination(c.Pagination); ok {
			p.Pagination = bp.normalize(c.Pagination, len(items))
		}
		return p, nil

	case EnvelopeArray:
		var items []Restaurant
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("restaurant: decode %s list: %w", kind, err)
		}
		items = nonNil(items)
		return &Page{
			Items:    items,
			Total:    len(items),
			Envelope: kind,
			Pagination: &Pagination{
				ItemsInCurrentPage: len(items),
				HasMore:            pageSize > 0 && len(items) == pageSize,
				DirectArray:        true,
			},
		}, nil

	default:
		if raw = bytes.TrimSpace(raw); len(raw) > 0 && !json.Valid(raw) {
			return nil, fmt.Errorf("restaurant: list response is not valid JSON")
		}
		return EmptyPage(), nil
	}
}

// pageFromIRI extracts the page query parameter from a hydra:view @id,
// which may be absolute or relative. Anything unparsable is page 1.
func pageFromIRI(iri string) int {
	if iri == "" {
		return 1
	}
	u, err := url.Parse(iri)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func parseBackendPagination(raw json.RawMessage) (backendPagination, bool) {
	var bp backendPagination
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return bp, false
	}
	if err := json.Unmarshal(raw, &bp); err != nil {
		// Keep the raw object even when the field types are unexpected.
		return backendPagination{}, true
	}
	return bp, true
}

func (bp backendPagination) normalize(raw json.RawMessage, n int) *Pagination {
	p := &Pagination{
		CurrentPage:        max(bp.CurrentPage, bp.Page),
		ItemsInCurrentPage: n,
		TotalPages:         max(bp.TotalPages, bp.Pages),
		Raw:                raw,
	}
	switch {
	case bp.HasMore != nil:
		p.HasMore = *bp.HasMore
	case bp.HasNext != nil:
		p.HasMore = *bp.HasNext
	case p.CurrentPage > 0 && p.TotalPages > 0:
		p.HasMore = p.CurrentPage < p.TotalPages
	}
	return p
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func nonNil(items []Restaurant) []Restaurant {
	if items == nil {
		return []Restaurant{}
	}
	return items
}
