package shared

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit/offset, falling back to defaultLimit and
// capping at maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	page := Pagination{Limit: defaultLimit}
	query := r.URL.Query()
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if v, err := strconv.Atoi(query.Get("offset")); err == nil && v >= 0 {
		page.Offset = v
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}
