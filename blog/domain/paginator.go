package domain

import (
	"context"
	"errors"
)

// ErrOutOfRangePage is returned by SetCurrentPage when the page is outside
// the result set and clamping was not requested.
var ErrOutOfRangePage = errors.New("page out of range")

// Paginator walks a sorted post collection one page at a time.
type Paginator interface {
	// SetCurrentPage moves to page. Pages below 1 are clamped to 1 when
	// clampLow is set, pages beyond the last are clamped to the last when
	// clampHigh is set; otherwise they fail with ErrOutOfRangePage.
	SetCurrentPage(page int, clampLow, clampHigh bool) error

	CurrentPage() int
	MaxPerPage() int
	NbPages() int
	NbResults() int
	HasPreviousPage() bool
	HasNextPage() bool

	CurrentPageResults(ctx context.Context) ([]*Post, error)
}
