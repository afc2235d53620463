package service

import (
	"strconv"
	"strings"

	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

// PageSize is the number of rows on every paginated list.
const PageSize = 10

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int
}

// IsPaginated reports whether the listing spans more than one page.
func (p Page[T]) IsPaginated() bool { return p.NumPages > 1 }

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasPrevious reports whether an earlier page exists.
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// NextNumber is the number of the following page.
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// PreviousNumber is the number of the preceding page.
func (p Page[T]) PreviousNumber() int { return p.Number - 1 }

// Offset is the zero-based index of the first row on the page.
func (p Page[T]) Offset() int {
	return (p.Number - 1) * PageSize
}

// NumPages returns the page count for total rows. An empty listing still
// has one (empty) page.
func NumPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

// ResolvePage validates the raw ?page= value against total rows. Empty means
// the first page and "last" the final one. Anything else that is not a page
// number in range is a not-found error.
func ResolvePage(raw string, total int) (int, error) {
	pages := NumPages(total)
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return 1, nil
	case "last":
		return pages, nil
	}

	number, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errorutil.NewNotFound("page", map[string]any{"page": raw})
	}
	if number < 1 || number > pages {
		return 0, errorutil.NewNotFound("page", map[string]any{"page": raw})
	}
	return number, nil
}

func newPage[T any](items []T, number, total int) Page[T] {
	return Page[T]{Items: items, Number: number, NumPages: NumPages(total), Total: total}
}
