package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int64 `json:"from"`
	To         int64 `json:"to"`
}

// NewPagination describes page of size out of total items. From and To are
// the 1-based bounds of the page window in the full result, zero when the
// page lies past the last item. Rows hidden after paging do not move them.
func NewPagination(page, size int, total int64) *Pagination {
	p := &Pagination{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: 1,
	}
	if size > 0 && total > 0 {
		p.TotalPages = (total + int64(size) - 1) / int64(size)
	}
	p.HasMore = int64(page) < p.TotalPages
	if page >= 1 && size > 0 && total > 0 && int64(page) <= p.TotalPages {
		p.From = int64(page-1)*int64(size) + 1
		p.To = min(int64(page)*int64(size), total)
	}
	return p
}
