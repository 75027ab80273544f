package utils

import (
	"errors"
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	// MaxPageNumber keeps Offset and Number*Size within int.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage parses query values, falling back to page 1 and the default size.
// Page numbers past MaxPageNumber are clamped to it.
func NewPage(number, size string) Page {
	p := Page{Number: parseQueryInt(number), Size: parseQueryInt(size)}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paginated is the list envelope: total count plus neighbouring page numbers.
type Paginated[T any] struct {
	Count    int64 `json:"count"`
	Next     *int  `json:"next"`
	Previous *int  `json:"previous"`
	Results  []T   `json:"results"`
}

func NewPaginated[T any](p Page, total int64, results []T) *Paginated[T] {
	if results == nil {
		results = []T{}
	}
	out := &Paginated[T]{Count: total, Results: results}
	if int64(p.Number*p.Size) < total {
		next := p.Number + 1
		out.Next = &next
	}
	if p.Number > 1 {
		prev := p.Number - 1
		out.Previous = &prev
	}
	return out
}

// parseQueryInt returns 0 for garbage; out-of-range numbers saturate.
func parseQueryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return n
		}
		return 0
	}
	return n
}
