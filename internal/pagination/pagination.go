// Package pagination slices ordered result sets into numbered pages.
// Each resource type carries its own default page size; clients may
// override it with the page_size query parameter.
package pagination

import (
	"errors"
	"net/http"
	"strconv"
)

var ErrPageNotFound = errors.New("pagination: page not found")

// Params identifies one page of an ordered sequence. Number is 1-indexed.
type Params struct {
	Number int
	Size   int
}

// FromRequest reads page and page_size query parameters, falling back to
// page 1 and the resource default size.
func FromRequest(r *http.Request, defaultSize int) Params {
	p := Params{Number: 1, Size: defaultSize}
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		p.Number = n
	}
	if s, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && s > 0 {
		p.Size = s
	}
	return p
}

// Offset returns the number of items preceding this page.
func (p Params) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pages returns how many pages a sequence of total items occupies.
func Pages(total, size int) int {
	if total == 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Page is one bounded slice of an ordered result sequence.
type Page[T any] struct {
	Count    int  `json:"count"`
	Next     *int `json:"next"`
	Previous *int `json:"previous"`
	Results  []T  `json:"results"`
}

// NewPage wraps results already narrowed to one page (LIMIT/OFFSET in the
// store) together with the total count. Requesting a page past the end is
// an error; page 1 of an empty sequence is an empty page.
func NewPage[T any](results []T, total int, p Params) (Page[T], error) {
	pages := Pages(total, p.Size)
	if p.Number > 1 && p.Number > pages {
		return Page[T]{}, ErrPageNotFound
	}
	page := Page[T]{Count: total, Results: results}
	if page.Results == nil {
		page.Results = []T{}
	}
	if p.Number < pages {
		n := p.Number + 1
		page.Next = &n
	}
	if p.Number > 1 {
		n := p.Number - 1
		page.Previous = &n
	}
	return page, nil
}

// Window paginates an in-memory ordered sequence.
func Window[T any](items []T, p Params) (Page[T], error) {
	total := len(items)
	lo := p.Offset()
	if lo > total {
		lo = total
	}
	hi := lo + p.Size
	if hi > total {
		hi = total
	}
	return NewPage(items[lo:hi], total, p)
}
