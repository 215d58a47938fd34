package plain

import (
	"grumbler/schemas"
)

// DefaultPageSize is the floor: requested sizes below it are raised.
const DefaultPageSize = 10

// Layout is one page window over an ordered result set.
type Layout struct {
	Page      int
	PageCount int
	Size      int
	Skip      int
}

// LayoutFor computes the effective window for a requested page number.
// The page is coerced to a positive integer and clamped to the last
// page; with no results the clamp degenerates to page 0 and an empty
// window, which callers treat as an empty page rather than an error.
func LayoutFor(requestedPage int, totalCount int, size int) Layout {
	if size < DefaultPageSize {
		size = DefaultPageSize
	}

	pageCount := 0
	if totalCount > 0 {
		pageCount = (totalCount + size - 1) / size
	}

	page := requestedPage
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	skip := 0
	if page > 0 {
		skip = (page - 1) * size
	}

	return Layout{
		Page:      page,
		PageCount: pageCount,
		Size:      size,
		Skip:      skip,
	}
}

// Page bundles one listing page with its navigation metadata. The nav
// pointers are nil when they would point at the current page.
type Page struct {
	Posts       []schemas.PostView `json:"posts"`
	CurrentPage int                `json:"currentPage"`
	PageCount   int                `json:"pageCount"`
	TotalCount  int                `json:"totalCount"`
	First       *int               `json:"first"`
	Prev        *int               `json:"prev"`
	Next        *int               `json:"next"`
	Last        *int               `json:"last"`
}

func NewPage(layout Layout, totalCount int, posts []schemas.PostView) *Page {
	page := &Page{
		Posts:       posts,
		CurrentPage: layout.Page,
		PageCount:   layout.PageCount,
		TotalCount:  totalCount,
	}
	if layout.Page > 1 {
		page.First = intRef(1)
		page.Prev = intRef(layout.Page - 1)
	}
	if layout.Page < layout.PageCount {
		page.Next = intRef(layout.Page + 1)
		page.Last = intRef(layout.PageCount)
	}
	return page
}

func intRef(v int) *int {
	return &v
}
