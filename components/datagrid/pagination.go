package datagrid

// PageInfo describes the page a Result holds, for "Showing From to To of Total".
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	From       int `json:"from"`
	To         int `json:"to"`
}

// Paginate clamps page into [1, TotalPages] for total rows. A zero total still
// reports one (empty) page.
func Paginate(total, page, pageSize int) PageInfo {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := TotalPages(total, pageSize)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	info := PageInfo{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
	if total == 0 {
		return info
	}
	offset := (page - 1) * pageSize
	info.From = offset + 1
	info.To = offset + min(pageSize, total-offset)
	return info
}

// TotalPages returns ceil(total/pageSize), never less than one.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

func (p PageInfo) offset() int {
	if p.From == 0 {
		return 0
	}
	return p.From - 1
}

// HasPrevious reports whether a page precedes this one.
func (p PageInfo) HasPrevious() bool { return p.Page > 1 }

// HasNext reports whether a page follows this one.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }
