package inkpost

import "strconv"

// Pagination describes one page window over a filtered post listing.
// Skip and Limit feed straight into Store.ListPosts.
type Pagination struct {
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
	Skip       int
	Limit      int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

// Paginate computes the page window for a 1-based page number. Pages below 1
// are clamped to 1; pages beyond the last are left alone, yielding an empty
// listing rather than an error.
func Paginate(page, pageSize, totalCount int) Pagination {
	if page < 1 {
		page = 1
	}
	totalPages := (totalCount + pageSize - 1) / pageSize
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		Skip:       (page - 1) * pageSize,
		Limit:      pageSize,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
}

// ParsePage parses a page query parameter. Absent, non-numeric, or sub-1
// values all mean page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
