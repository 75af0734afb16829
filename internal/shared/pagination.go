package shared

// PageLink is one numbered pagination control.
type PageLink struct {
	Number  int
	Current bool
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	TotalPages int
}

// NewPagination computes pagination metadata. Page is at least 1; it may
// exceed TotalPages when the server reports fewer pages than requested.
func NewPagination(page, totalPages int) Pagination {
	if page <= 0 {
		page = 1
	}
	if totalPages < 0 {
		totalPages = 0
	}
	return Pagination{Page: page, TotalPages: totalPages}
}

// Links returns a control per page from 1 to TotalPages.
func (p Pagination) Links() []PageLink {
	links := make([]PageLink, 0, p.TotalPages)
	for n := 1; n <= p.TotalPages; n++ {
		links = append(links, PageLink{Number: n, Current: n == p.Page})
	}
	return links
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }

func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

func (p Pagination) Prev() int { return max(p.Page-1, 1) }

func (p Pagination) Next() int { return min(p.Page+1, max(p.TotalPages, 1)) }
