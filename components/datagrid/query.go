package datagrid

import (
	"slices"
	"strings"
)

// DefaultPageSize is the page length used when a query or grid sets none.
const DefaultPageSize = 10

// FilterAll is the filter value that disables a column filter.
const FilterAll = "all"

// Query is the consumer-owned search/filter/sort/pagination state.
type Query struct {
	SearchText    string            `json:"search,omitempty" yaml:"search,omitempty"`
	Filters       map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"`
	SortKey       string            `json:"sort_key,omitempty" yaml:"sort_key,omitempty"`
	SortDirection SortDirection     `json:"sort_direction,omitempty" yaml:"sort_direction,omitempty"`
	Page          int               `json:"page,omitempty" yaml:"page,omitempty"`
	PageSize      int               `json:"page_size,omitempty" yaml:"page_size,omitempty"`
}

// Result is the visible page plus the number of rows matched before paging.
type Result struct {
	Rows  []Row    `json:"rows"`
	Total int      `json:"total"`
	Page  PageInfo `json:"page"`
}

// ApplyQuery runs search, filter, sort and paginate, in that order, over rows.
// The input slice and its rows are never modified; returned rows share storage
// with the input and must be treated as read-only.
func ApplyQuery(rows []Row, q Query) Result {
	matched := MatchRows(rows, q)
	info := Paginate(len(matched), q.Page, q.PageSize)
	page := matched[info.offset():info.To]
	return Result{
		Rows:  slices.Clip(page),
		Total: len(matched),
		Page:  info,
	}
}

// MatchRows applies search, filter and sort without paginating.
func MatchRows(rows []Row, q Query) []Row {
	search := q.SearchText
	active := activeFilters(q.Filters)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !matchesSearch(row, search) {
			continue
		}
		if !matchesFilters(row, active) {
			continue
		}
		out = append(out, row)
	}
	if q.SortKey != "" {
		sortRows(out, q.SortKey, q.SortDirection)
	}
	return out
}

func matchesSearch(row Row, search string) bool {
	if search == "" {
		return true
	}
	for _, value := range row {
		if containsFold(value, search) {
			return true
		}
	}
	return false
}

type filterTerm struct {
	key   string
	value string
}

// activeFilters drops empty and "all" filters and orders the rest by key so
// evaluation is deterministic.
func activeFilters(filters map[string]string) []filterTerm {
	if len(filters) == 0 {
		return nil
	}
	terms := make([]filterTerm, 0, len(filters))
	for key, value := range filters {
		if value == "" || value == FilterAll {
			continue
		}
		terms = append(terms, filterTerm{key: key, value: value})
	}
	slices.SortFunc(terms, func(a, b filterTerm) int { return strings.Compare(a.key, b.key) })
	return terms
}

func matchesFilters(row Row, terms []filterTerm) bool {
	for _, term := range terms {
		if !containsWordFold(row[term.key], term.value) {
			return false
		}
	}
	return true
}

// sortRows sorts in place; equal keys keep their relative order in either direction.
func sortRows(rows []Row, key string, dir SortDirection) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		c := compareValues(a[key], b[key])
		if dir == SortDesc {
			return -c
		}
		return c
	})
}

// Normalize fills defaults: page 1, the default page size, ascending sort.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.SortDirection != SortDesc {
		q.SortDirection = SortAsc
	}
	return q
}

// ToggleSort flips the direction when key is already the sort key, otherwise
// sorts ascending by key.
func (q Query) ToggleSort(key string) Query {
	if q.SortKey == key {
		if q.SortDirection == SortDesc {
			q.SortDirection = SortAsc
		} else {
			q.SortDirection = SortDesc
		}
		return q
	}
	q.SortKey = key
	q.SortDirection = SortAsc
	return q
}

// WithSearch replaces the search text and resets to the first page.
func (q Query) WithSearch(text string) Query {
	q.SearchText = text
	q.Page = 1
	return q
}

// WithFilter sets (or clears, for "" and "all") a column filter and resets to
// the first page.
func (q Query) WithFilter(key, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	if value == "" || value == FilterAll {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	q.Filters = filters
	q.Page = 1
	return q
}

// WithPage moves to page n. Clamping happens when the query is applied.
func (q Query) WithPage(n int) Query {
	q.Page = n
	return q
}
