package datagrid

// applyColumnOrder moves the listed columns to the front, in order. Unknown
// keys are ignored and unlisted columns keep their declared order.
func applyColumnOrder(columns []Column, order []string) []Column {
	if len(order) == 0 {
		return columns
	}
	index := make(map[string]Column, len(columns))
	for _, col := range columns {
		index[col.Key] = col
	}
	result := make([]Column, 0, len(columns))
	seen := make(map[string]struct{}, len(order))
	for _, key := range order {
		if col, ok := index[key]; ok {
			if _, dup := seen[key]; dup {
				continue
			}
			result = append(result, col)
			seen[key] = struct{}{}
		}
	}
	for _, col := range columns {
		if _, ok := seen[col.Key]; !ok {
			result = append(result, col)
		}
	}
	return result
}

// applyHiddenColumns marks viewer-hidden columns so they drop out of
// rendering and export.
func applyHiddenColumns(columns []Column, hidden map[string]bool) []Column {
	if len(hidden) == 0 {
		return columns
	}
	out := make([]Column, len(columns))
	for i, col := range columns {
		if hidden[col.Key] {
			col.Hidden = true
		}
		out[i] = col
	}
	return out
}
