package datagrid

import "context"

// IDField is the mandatory identity field carried by every row.
const IDField = "id"

// Row is a single record keyed by field name. The "id" field is mandatory.
type Row map[string]any

// ID returns the row identity as a string.
func (r Row) ID() string {
	if r == nil {
		return ""
	}
	switch v := r[IDField].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return stringify(v)
	}
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ValueType declares how a column's values are interpreted.
type ValueType string

const (
	ValueText    ValueType = "text"
	ValueNumber  ValueType = "number"
	ValueDate    ValueType = "date"
	ValueBoolean ValueType = "boolean"
)

// Option is a selectable value for columns edited through a picker.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Column describes how a field is displayed, sorted, filtered and edited.
type Column struct {
	Key        string    `json:"key" yaml:"key"`
	Label      string    `json:"label" yaml:"label"`
	Sortable   bool      `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Filterable bool      `json:"filterable,omitempty" yaml:"filterable,omitempty"`
	ValueType  ValueType `json:"value_type,omitempty" yaml:"value_type,omitempty"`
	Editable   bool      `json:"editable,omitempty" yaml:"editable,omitempty"`
	Required   bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Hidden     bool      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Default    any       `json:"default,omitempty" yaml:"default,omitempty"`
	Options    []Option  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Type returns the declared value type, defaulting to text.
func (c Column) Type() ValueType {
	if c.ValueType == "" {
		return ValueText
	}
	return c.ValueType
}

// SortDirection orders sorted output.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// GridDefinition describes a registered grid.
type GridDefinition struct {
	Code        string   `json:"code" yaml:"code"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Columns     []Column `json:"columns" yaml:"columns"`
	PageSize    int      `json:"page_size,omitempty" yaml:"page_size,omitempty"`
}

// Column returns the column descriptor for key.
func (def GridDefinition) Column(key string) (Column, bool) {
	for _, col := range def.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// ViewerContext identifies who is looking at a grid.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// GridEvent describes changes that transports might care about.
type GridEvent struct {
	Code   string `json:"code"`
	RowID  string `json:"row_id,omitempty"`
	Reason string `json:"reason"`
	Total  int    `json:"total"`
	Actor  string `json:"actor,omitempty"`
}

// RefreshHook notifies transports (REST/WebSocket) about grid changes.
type RefreshHook interface {
	GridUpdated(ctx context.Context, event GridEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) GridUpdated(context.Context, GridEvent) error { return nil }
