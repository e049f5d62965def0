// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows returned when the caller does
// not ask for a specific limit.
const DefaultPageSize = 20

// MaxPageSize caps the per-request limit.
const MaxPageSize = 100

// Params carries the offset pagination inputs parsed from a request.
type Params struct {
	Page  int
	Limit int64
}

// Skip returns the number of rows to skip for the current page.
func (p Params) Skip() int64 {
	return int64(p.Page-1) * p.Limit
}

// Parse reads the "page" and "limit" query parameters. Invalid or
// missing values fall back to page 1 and DefaultPageSize; limit is
// clamped to MaxPageSize.
func Parse(r *http.Request) Params {
	p := Params{Page: 1, Limit: DefaultPageSize}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		p.Limit = int64(n)
		if p.Limit > MaxPageSize {
			p.Limit = MaxPageSize
		}
	}
	return p
}

// Meta is the pagination block included in list responses.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// NewMeta computes the pagination block for a list response.
func NewMeta(p Params, total int64) Meta {
	pages := (total + p.Limit - 1) / p.Limit
	if pages < 1 {
		pages = 1
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
