// Package pager computes the page buttons shown under a paginated list.
package pager

// MaxButtons is the largest number of numbered buttons in a window.
const MaxButtons = 5

// Window is the set of page controls around the current page.
type Window struct {
	Pages            []int `json:"pages"`
	ShowFirst        bool  `json:"showFirst"`
	LeadingEllipsis  bool  `json:"leadingEllipsis"`
	ShowLast         bool  `json:"showLast"`
	TrailingEllipsis bool  `json:"trailingEllipsis"`
	Last             int   `json:"last"`
}

// Compute returns at most MaxButtons pages centred on page and kept inside
// [1, totalPages]. page is clamped first. A zero or negative totalPages
// yields an empty window.
func Compute(page, totalPages int) Window {
	if totalPages <= 0 {
		return Window{}
	}
	page = clamp(page, 1, totalPages)

	start, end := 1, totalPages
	if totalPages > MaxButtons {
		start = page - MaxButtons/2
		start = clamp(start, 1, totalPages-MaxButtons+1)
		end = start + MaxButtons - 1
	}

	w := Window{Pages: make([]int, 0, end-start+1), Last: totalPages}
	for p := start; p <= end; p++ {
		w.Pages = append(w.Pages, p)
	}
	if start > 1 {
		w.ShowFirst = true
		w.LeadingEllipsis = start > 2
	}
	if end < totalPages {
		w.ShowLast = true
		w.TrailingEllipsis = end < totalPages-1
	}
	return w
}

// Range returns the 1-based bounds of the items shown on page, for
// "showing from to of total". Both are zero when total is zero.
func Range(page, pageSize, total int) (from, to int) {
	if total <= 0 || pageSize <= 0 || page < 1 {
		return 0, 0
	}
	from = min((page-1)*pageSize+1, total)
	to = min(page*pageSize, total)
	return from, to
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
