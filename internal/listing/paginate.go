// Package listing provides the pagination and filtering helpers used by the
// product listings (category pages, search results and favorites).
package listing

// Pagination limits.
const (
	DefaultPageSize = 12
	MaxPageSize     = 60
	DefaultWindow   = 5
)

// Page is one page of a locally paginated list.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// Paginate cuts page `page` of size `size` out of items. Out-of-range pages
// are clamped to the nearest valid page; the input slice is never modified.
func Paginate[T any](items []T, page, size int) Page[T] {
	size = ClampPageSize(size)
	total := len(items)
	totalPages := (total + size - 1) / size

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = max(totalPages, 1)
	}

	p := Page[T]{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
		HasPrev:    page > 1 && totalPages > 0,
		HasNext:    page < totalPages,
	}
	if total == 0 {
		p.Items = []T{}
		return p
	}

	start := (page - 1) * size
	end := min(start+size, total)
	p.Items = make([]T, end-start)
	copy(p.Items, items[start:end])
	return p
}

// ClampPageSize applies the default and maximum page sizes.
func ClampPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}

// PageWindow returns up to width consecutive page numbers around current,
// clamped to [1, total]. It returns nil when there is at most one page.
func PageWindow(current, total, width int) []int {
	if total <= 1 {
		return nil
	}
	if width <= 0 {
		width = DefaultWindow
	}
	width = min(width, total)
	current = max(1, min(current, total))

	start := current - width/2
	start = max(1, min(start, total-width+1))

	pages := make([]int, width)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
