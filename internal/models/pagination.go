package models

// Pagination describes a page of a filtered list.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPagination normalises page/limit (defaults 1 and 10) for total items.
func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return Pagination{Page: page, Limit: limit, TotalItems: total, TotalPages: pageCount(total, limit)}
}

func pageCount(total, limit int) int {
	if total <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

// Bounds returns the slice window for a list of n items.
// Pages past the end yield an empty window at n.
func (p Pagination) Bounds(n int) (int, int) {
	if n <= 0 || p.Page < 1 || p.Limit < 1 || p.Page-1 >= pageCount(n, p.Limit) {
		return n, n
	}
	start := (p.Page - 1) * p.Limit
	end := n
	if p.Limit < n-start {
		end = start + p.Limit
	}
	return start, end
}
