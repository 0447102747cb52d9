package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

// FilterParamPrefix marks request parameters carrying column filters, e.g.
// filter.status=active.
const FilterParamPrefix = "filter."

// Request parameter names understood by ParseQuery.
const (
	ParamSearch   = "search"
	ParamSort     = "sort"
	ParamDir      = "dir"
	ParamToggle   = "toggle"
	ParamPage     = "page"
	ParamPageSize = "page_size"
	ParamFormat   = "format"
)

// ParseQuery builds query state from request parameters. get returns the
// value of a single parameter and filterKeys lists the column keys whose
// filter.<key> parameters should be read. A toggle parameter is applied
// after sort and dir so links can flip the current order.
func ParseQuery(get func(string) string, filterKeys []string) (datagrid.Query, error) {
	q := datagrid.Query{
		SearchText: strings.TrimSpace(get(ParamSearch)),
		SortKey:    strings.TrimSpace(get(ParamSort)),
	}
	switch dir := strings.ToLower(strings.TrimSpace(get(ParamDir))); dir {
	case "", string(datagrid.SortAsc):
		q.SortDirection = datagrid.SortAsc
	case string(datagrid.SortDesc):
		q.SortDirection = datagrid.SortDesc
	default:
		return datagrid.Query{}, fmt.Errorf("httpapi: invalid sort direction %q", dir)
	}
	for _, key := range filterKeys {
		value := strings.TrimSpace(get(FilterParamPrefix + key))
		if value == "" || value == datagrid.FilterAll {
			continue
		}
		if q.Filters == nil {
			q.Filters = map[string]string{}
		}
		q.Filters[key] = value
	}
	var err error
	if q.Page, err = intParam(get, ParamPage); err != nil {
		return datagrid.Query{}, err
	}
	if q.PageSize, err = intParam(get, ParamPageSize); err != nil {
		return datagrid.Query{}, err
	}
	if toggle := strings.TrimSpace(get(ParamToggle)); toggle != "" {
		q = q.ToggleSort(toggle)
	}
	return q, nil
}

// QueryFromValues parses url.Values, reading every filter.<key> parameter.
func QueryFromValues(values url.Values) (datagrid.Query, error) {
	var keys []string
	for name := range values {
		if key, ok := strings.CutPrefix(name, FilterParamPrefix); ok && key != "" {
			keys = append(keys, key)
		}
	}
	return ParseQuery(values.Get, keys)
}

// FilterKeys returns the keys of the filterable columns of def.
func FilterKeys(def datagrid.GridDefinition) []string {
	keys := make([]string, 0, len(def.Columns))
	for _, col := range def.Columns {
		if col.Filterable {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

func intParam(get func(string) string, name string) (int, error) {
	raw := strings.TrimSpace(get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("httpapi: invalid %s %q", name, raw)
	}
	return n, nil
}
