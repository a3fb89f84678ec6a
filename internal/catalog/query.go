package catalog

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var (
	separators = regexp.MustCompile(`[_-]+`)
	spaces     = regexp.MustCompile(`\s+`)
)

// NormalizeSearch turns underscores and hyphens into spaces and collapses
// whitespace, so "red_t-shirt" searches for "red t shirt".
func NormalizeSearch(s string) string {
	s = separators.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Query selects one page of a list endpoint. Page is 1-based.
type Query struct {
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PageSize int    `query:"pageSize"`
	SortBy   string `query:"sortBy"`
	SortDir  string `query:"sortDir"`
}

// Normalized returns q with defaults applied and out-of-range values fixed.
func (q Query) Normalized() Query {
	q.Search = NormalizeSearch(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize <= 0:
		q.PageSize = DefaultPageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	q.SortBy = strings.TrimSpace(q.SortBy)
	q.SortDir = strings.ToLower(strings.TrimSpace(q.SortDir))
	if q.SortDir != "asc" && q.SortDir != "desc" {
		q.SortDir = ""
	}
	if q.SortBy == "" {
		q.SortDir = ""
	}
	return q
}

// Values encodes the normalized query. Empty fields are omitted.
func (q Query) Values() url.Values {
	q = q.Normalized()
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortDir != "" {
		v.Set("sortDir", q.SortDir)
	}
	return v
}
