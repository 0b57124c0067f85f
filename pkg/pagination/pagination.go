package pagination

import (
	"net/http"
	"strconv"
)

// Params is a 1-based page request.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// New clamps page to at least 1 and perPage to at least 1.
func New(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	return Params{Page: page, PerPage: perPage}
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// FromRequest reads ?page= from r. The page size is fixed by the caller.
func FromRequest(r *http.Request, perPage int) Params {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return New(page, perPage)
}

// Result is one page of a larger ordered list.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Paginate slices the page described by p out of all. A page past the end
// yields an empty, non-nil slice. TotalPages is never below 1.
func Paginate[T any](all []T, p Params) Result[T] {
	p = New(p.Page, p.PerPage)
	total := len(all)

	totalPages := (total + p.PerPage - 1) / p.PerPage
	if totalPages < 1 {
		totalPages = 1
	}

	// Pages past the last one are empty; checking first keeps Offset from
	// overflowing on huge page numbers.
	start := total
	if p.Page <= totalPages {
		start = min(p.Offset(), total)
	}
	end := min(start+p.PerPage, total)
	data := make([]T, end-start)
	copy(data, all[start:end])

	return Result[T]{
		Data:       data,
		TotalCount: total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
