// Package pagination provides utilities around page/limit query parameters.
package pagination

import "strconv"

// Bounds for page sizes.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a normalized page request.
type Page struct {
	Number int64 // 1-based page number
	Limit  int64 // entries per page
}

// Parse reads page and limit values as submitted by the client and clamps
// them into valid bounds. Empty or malformed values fall back to the first
// page with the default limit.
func Parse(page, limit string) Page {
	p := Page{Number: 1, Limit: DefaultLimit}
	if n, err := strconv.ParseInt(page, 10, 64); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.ParseInt(limit, 10, 64); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int64 {
	return (p.Number - 1) * p.Limit
}
