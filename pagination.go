package main

// Pagination is offset/limit page state synchronized with the server-side
// total. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

func NewPagination(pageSize int) Pagination {
	if pageSize < 1 {
		pageSize = 10
	}
	return Pagination{Page: 1, PageSize: pageSize}
}

// Offset is the request offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages derives the page count from the server total. Always at least 1
// so "Page 1 of 1" renders for an empty listing.
func (p Pagination) TotalPages() int {
	if p.Total <= 0 {
		return 1
	}
	pages := (p.Total + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// SetTotal records the authoritative count from the backend response and
// clamps the current page into range.
func (p Pagination) SetTotal(total int) Pagination {
	p.Total = total
	if p.Page > p.TotalPages() {
		p.Page = p.TotalPages()
	}
	return p
}

// Next advances one page, clamped to the last page.
func (p Pagination) Next() Pagination {
	if p.Page < p.TotalPages() {
		p.Page++
	}
	return p
}

// Prev goes back one page, clamped to page 1.
func (p Pagination) Prev() Pagination {
	if p.Page > 1 {
		p.Page--
	}
	return p
}

// SetPage jumps to a page, clamped to [1, TotalPages].
func (p Pagination) SetPage(page int) Pagination {
	if page < 1 {
		page = 1
	}
	if page > p.TotalPages() {
		page = p.TotalPages()
	}
	p.Page = page
	return p
}

// SetPageSize changes the page size and resets to page 1.
func (p Pagination) SetPageSize(size int) Pagination {
	if size < 1 {
		return p
	}
	p.PageSize = size
	p.Page = 1
	return p
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }

func (p Pagination) HasNext() bool { return p.Page < p.TotalPages() }

// RangeLabel returns the "start-end of total" label for the footer.
func (p Pagination) RangeLabel() (start, end int) {
	if p.Total == 0 {
		return 0, 0
	}
	start = p.Offset() + 1
	end = p.Offset() + p.PageSize
	if end > p.Total {
		end = p.Total
	}
	return start, end
}
