package catalog

import "xsplot/pkg/nuclide"

// DefaultPageSize is the number of table rows shown per page.
const DefaultPageSize = 10

// Page is one slice of a filtered result set.
type Page struct {
	Number     int              `json:"page"`
	Size       int              `json:"page_size"`
	TotalItems int              `json:"total_items"`
	TotalPages int              `json:"total_pages"`
	Items      []nuclide.Record `json:"items"`
}

// ClampPage bounds requested to the pages available for n items.
func ClampPage(n, pageSize, requested int) int {
	if n == 0 || requested <= 0 {
		return 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	last := (n - 1) / pageSize
	if requested > last {
		return last
	}
	return requested
}

// Paginate returns the requested page of filtered, clamped to the valid range
// so a shrinking result set never produces an out-of-range page.
func Paginate(filtered []nuclide.Record, pageSize, requested int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	n := len(filtered)
	page := ClampPage(n, pageSize, requested)
	start := page * pageSize
	end := min(start+pageSize, n)
	items := make([]nuclide.Record, 0, end-start)
	items = append(items, filtered[start:end]...)
	return Page{
		Number:     page,
		Size:       pageSize,
		TotalItems: n,
		TotalPages: (n + pageSize - 1) / pageSize,
		Items:      items,
	}
}
