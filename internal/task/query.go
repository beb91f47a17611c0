package task

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	// maxPage keeps (page-1)*limit within int for every accepted limit.
	maxPage = math.MaxInt / maxLimit
)

// ListQuery filters and pages an owner's tasks. Build it with ParseListQuery.
type ListQuery struct {
	Status   Status
	Priority Priority
	Search   string
	SortBy   string
	Desc     bool
	Page     int
	Limit    int
}

// ParseListQuery reads list parameters from a query string. Unknown filter
// values are ignored and out-of-range paging falls back to defaults.
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{
		SortBy: "createdAt",
		Desc:   values.Get("order") != "asc",
		Page:   1,
		Limit:  defaultLimit,
		Search: strings.TrimSpace(values.Get("search")),
	}

	if s := values.Get("status"); slices.Contains(statuses, s) {
		q.Status = Status(s)
	}
	if p := values.Get("priority"); slices.Contains(priorities, p) {
		q.Priority = Priority(p)
	}
	if _, ok := sortColumns[values.Get("sortBy")]; ok {
		q.SortBy = values.Get("sortBy")
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = min(page, maxPage)
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		q.Limit = min(limit, maxLimit)
	}

	return q
}

func (q ListQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

func (q ListQuery) sortColumn() string {
	if col, ok := sortColumns[q.SortBy]; ok {
		return col
	}
	return "created_at"
}

// Pagination is the paging block returned with a listing.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

func newPagination(q ListQuery, total int64) Pagination {
	limit := int64(q.Limit)
	return Pagination{
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
		Pages: (total + limit - 1) / limit,
	}
}
