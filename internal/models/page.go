package models

// PageSize is the fixed number of posts per page for every listing
// context (index, category, profile).
const PageSize = 10

// Page is one fixed-size slice of a post listing.
type Page struct {
	Items      []*Post `json:"items"`
	Number     int     `json:"number"`
	Size       int     `json:"size"`
	TotalItems int64   `json:"total_items"`
	TotalPages int     `json:"total_pages"`
	HasNext    bool    `json:"has_next"`
	HasPrev    bool    `json:"has_prev"`
}

// ClampPage normalizes a requested page number against the number of
// available pages: values below 1 become 1, values past the end become
// the last page. An empty collection still has one (empty) page.
func ClampPage(requested, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if requested < 1 {
		return 1
	}
	if requested > totalPages {
		return totalPages
	}
	return requested
}

// TotalPages computes the page count for a collection of n items.
func TotalPages(n int64, size int) int {
	if n <= 0 {
		return 1
	}
	pages := int((n + int64(size) - 1) / int64(size))
	return pages
}
