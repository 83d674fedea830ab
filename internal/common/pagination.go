package common

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// PageBounds returns the half-open slice bounds of page within total items.
func PageBounds(total, page, perPage int) (start, end int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return 0, 0
	}
	if total < 0 {
		total = 0
	}
	if page-1 > total/perPage {
		return total, total
	}
	start = (page - 1) * perPage
	if start > total {
		start = total
	}
	end = total
	if perPage < total-start {
		end = start + perPage
	}
	return start, end
}
