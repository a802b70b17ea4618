package api

import (
	"math"

	"github.com/gofiber/fiber/v2"
)

// MaxPageSize caps page_size to keep list queries bounded.
const MaxPageSize = 100

// DefaultPageSize is used when page_size is absent.
const DefaultPageSize = 20

// Pagination holds normalized paging parameters parsed from the query string.
type Pagination struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the row limit for the current page.
func (p Pagination) Limit() int {
	return p.PageSize
}

// ParsePagination reads page/page_size from the request, clamping to sane bounds.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	size := c.QueryInt("page_size", DefaultPageSize)
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Pagination{Page: page, PageSize: size}
}

// PageMeta describes the position of a page within the full result set.
type PageMeta struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Paginated is the standard envelope for list responses.
type Paginated[T any] struct {
	Items []T      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// NewPaginated builds the standard list envelope from items and total count.
func NewPaginated[T any](items []T, total int64, p Pagination) Paginated[T] {
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.PageSize)))
	}
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{
		Items: items,
		Meta: PageMeta{
			Page:        p.Page,
			PageSize:    p.PageSize,
			TotalItems:  total,
			TotalPages:  totalPages,
			HasNext:     p.Page < totalPages,
			HasPrevious: p.Page > 1,
		},
	}
}
