package requests

import "strconv"

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// normalizePaging clamps page to at least 1 and page_size to [1, 200] with a
// default of 50.
func normalizePaging(pageStr, sizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		size = defaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
