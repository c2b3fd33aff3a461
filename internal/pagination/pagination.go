// Package pagination slices ordered queries into fixed-size pages.
package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Page is one slice of an ordered collection plus its position
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

// NumPages returns the number of pages needed for count items. An empty
// collection still has one (empty) page.
func NumPages(count int64, perPage int) int {
	if perPage < 1 || count <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

// Resolve turns the raw page query parameter into a valid page number.
// Missing or non-numeric input selects the first page; numbers outside
// [1, numPages] select the last page.
func Resolve(raw string, numPages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

// Paginate counts the rows matched by query and loads the requested page.
// query must carry its model, filters and ordering; scopes apply to the page
// load only (preloads and the like).
func Paginate[T any](query *gorm.DB, raw string, perPage int, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	if perPage < 1 {
		return nil, fmt.Errorf("pagination: invalid page size %d", perPage)
	}

	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, err
	}

	page := &Page[T]{
		NumPages: NumPages(count, perPage),
		Count:    count,
		PerPage:  perPage,
	}
	page.Number = Resolve(raw, page.NumPages)

	items := make([]T, 0, perPage)
	if count > 0 {
		err := query.Session(&gorm.Session{}).
			Scopes(scopes...).
			Offset((page.Number - 1) * perPage).
			Limit(perPage).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
	}
	page.Items = items
	return page, nil
}

func (p *Page[T]) Len() int { return len(p.Items) }

func (p *Page[T]) HasNext() bool { return p.Number < p.NumPages }

func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p *Page[T]) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }

func (p *Page[T]) NextPageNumber() int { return p.Number + 1 }

func (p *Page[T]) PreviousPageNumber() int { return p.Number - 1 }

// StartIndex is the 1-based index of the first item on the page
func (p *Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// EndIndex is the 1-based index of the last item on the page
func (p *Page[T]) EndIndex() int {
	return (p.Number-1)*p.PerPage + len(p.Items)
}

// PageRange lists every page number, for rendering page links
func (p *Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}
