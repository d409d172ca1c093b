package tower

import "encoding/json"

// Page describes the pagination window of a list request. Query is an
// optional free-text filter.
type Page struct {
	Limit  int
	Offset int
	Query  string
}

// NewPage creates a pagination window starting at the given offset.
func NewPage(limit, offset int) Page {
	return Page{Limit: limit, Offset: offset}
}

// Next returns the window shifted forward by one page.
func (p Page) Next() Page {
	return Page{Limit: p.Limit, Offset: p.Offset + p.Limit, Query: p.Query}
}

// Prev returns the window shifted back by one page, clamped at zero.
func (p Page) Prev() Page {
	offset := p.Offset - p.Limit
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: p.Limit, Offset: offset, Query: p.Query}
}

// PaginatedResponse is the envelope of every list endpoint. Data is left
// raw; use Decode to unmarshal it into a concrete slice type.
type PaginatedResponse struct {
	Data   json.RawMessage `json:"data"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// Decode unmarshals the Data payload into v.
func (r *PaginatedResponse) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

// HasNext reports whether a further page exists.
func (r *PaginatedResponse) HasNext() bool {
	return r.Offset+r.Limit < r.Total
}

// HasPrev reports whether a preceding page exists.
func (r *PaginatedResponse) HasPrev() bool {
	return r.Offset > 0
}

// TotalPages returns the number of pages at the response's window size.
func (r *PaginatedResponse) TotalPages() int {
	if r.Limit <= 0 {
		return 0
	}
	return (r.Total + r.Limit - 1) / r.Limit
}

// CurrentPage returns the 1-based index of the page the response holds.
func (r *PaginatedResponse) CurrentPage() int {
	if r.Limit <= 0 {
		return 0
	}
	return r.Offset/r.Limit + 1
}
