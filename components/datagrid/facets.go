package datagrid

import "strings"

// FilterOptions lists the distinct, non-blank string values a column takes
// across rows, in first-seen order. These are the choices offered for a
// column filter besides "all".
func FilterOptions(rows []Row, key string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		value, ok := row[key]
		if !ok || value == nil {
			continue
		}
		s := stringify(value)
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ValueCount pairs a column value with the number of rows holding it.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountValues tallies the non-blank values of a column, in first-seen order.
func CountValues(rows []Row, key string) []ValueCount {
	index := make(map[string]int)
	var out []ValueCount
	for _, row := range rows {
		s := stringify(row[key])
		if strings.TrimSpace(s) == "" {
			continue
		}
		if i, ok := index[s]; ok {
			out[i].Count++
			continue
		}
		index[s] = len(out)
		out = append(out, ValueCount{Value: s, Count: 1})
	}
	return out
}
