package task

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  ListQuery
	}{
		{
			name:  "defaults",
			query: "",
			want:  ListQuery{SortBy: "createdAt", Desc: true, Page: 1, Limit: 20},
		},
		{
			name:  "all parameters",
			query: "status=in-progress&priority=high&search=+report+&sortBy=dueDate&order=asc&page=3&limit=5",
			want: ListQuery{
				Status: StatusInProgress, Priority: PriorityHigh, Search: "report",
				SortBy: "dueDate", Desc: false, Page: 3, Limit: 5,
			},
		},
		{
			name:  "unknown values are ignored",
			query: "status=archived&priority=urgent&sortBy=owner&order=sideways",
			want:  ListQuery{SortBy: "createdAt", Desc: true, Page: 1, Limit: 20},
		},
		{
			name:  "paging bounds",
			query: "page=0&limit=1000",
			want:  ListQuery{SortBy: "createdAt", Desc: true, Page: 1, Limit: 100},
		},
		{
			name:  "page beyond offset range",
			query: "page=922337203685477581&limit=20",
			want:  ListQuery{SortBy: "createdAt", Desc: true, Page: maxPage, Limit: 20},
		},
		{
			name:  "non numeric paging",
			query: "page=two&limit=-4",
			want:  ListQuery{SortBy: "createdAt", Desc: true, Page: 1, Limit: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParseListQuery(values))
		})
	}
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Total: 41, Page: 2, Limit: 20, Pages: 3}, newPagination(ListQuery{Page: 2, Limit: 20}, 41))
	assert.Equal(t, Pagination{Total: 0, Page: 1, Limit: 20, Pages: 0}, newPagination(ListQuery{Page: 1, Limit: 20}, 0))
}

func TestListQuery_OffsetNeverOverflows(t *testing.T) {
	values := url.Values{"page": {"922337203685477581"}, "limit": {"100"}}
	q := ParseListQuery(values)
	assert.Positive(t, q.offset())
	assert.Equal(t, (maxPage-1)*maxLimit, q.offset())
}
