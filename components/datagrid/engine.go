package datagrid

import (
	"fmt"
	"maps"
	"slices"
)

// DefaultIDPrefix prefixes ids minted by the default sequence generator.
const DefaultIDPrefix = "row-"

// EngineOptions configures an Engine.
type EngineOptions struct {
	Columns     []Column
	IDGenerator IDGenerator
}

// Engine computes views of, and mutations over, caller-held row snapshots.
// It keeps no row state: every method takes the snapshot it works on and
// returns a new one, leaving its input untouched.
type Engine struct {
	columns []Column
	ids     IDGenerator
}

// NewEngine builds an Engine with safe defaults.
func NewEngine(opts EngineOptions) *Engine {
	if opts.IDGenerator == nil {
		opts.IDGenerator = NewSequenceGenerator(DefaultIDPrefix)
	}
	return &Engine{
		columns: slices.Clone(opts.Columns),
		ids:     opts.IDGenerator,
	}
}

// Columns returns a copy of the engine's column descriptors.
func (e *Engine) Columns() []Column {
	return slices.Clone(e.columns)
}

// SetRows validates a replacement base set. Every row needs a non-empty id and
// ids must be unique; declared fields are converted to their column types.
func (e *Engine) SetRows(rows []Row) ([]Row, error) {
	if err := checkIDs(rows); err != nil {
		return nil, err
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		coerced, err := CoerceRow(e.columns, row)
		if err != nil {
			return nil, err
		}
		out[i] = coerced
	}
	return out, nil
}

func checkIDs(rows []Row) error {
	seen := make(map[string]int, len(rows))
	var missing []FieldError
	for i, row := range rows {
		id := row.ID()
		if id == "" {
			missing = append(missing, FieldError{Field: IDField, Message: fmt.Sprintf("row %d has no id", i)})
			continue
		}
		seen[id]++
	}
	if len(missing) > 0 {
		return newValidationError(missing...)
	}
	var dups []string
	for id, count := range seen {
		if count > 1 {
			dups = append(dups, id)
		}
	}
	if len(dups) > 0 {
		slices.Sort(dups)
		return &DuplicateIDError{IDs: dups}
	}
	return nil
}

// ApplyQuery computes the visible page for q.
func (e *Engine) ApplyQuery(rows []Row, q Query) Result {
	return ApplyQuery(rows, q)
}

// AddRow creates a row from partial and prepends it. The id is taken from
// partial when present, otherwise minted. Absent fields take the column
// default, or the zero value of the column type.
func (e *Engine) AddRow(rows []Row, partial Row) ([]Row, Row, error) {
	existing := idSet(rows)
	id := partial.ID()
	if id != "" {
		if _, taken := existing[id]; taken {
			return nil, nil, &DuplicateIDError{IDs: []string{id}}
		}
	} else {
		minted, err := e.ids.NextID(existing)
		if err != nil {
			return nil, nil, err
		}
		if _, taken := existing[minted]; taken || minted == "" {
			return nil, nil, errIDExhausted
		}
		id = minted
	}
	row := make(Row, len(e.columns)+len(partial)+1)
	for _, col := range e.columns {
		if col.Key == IDField {
			continue
		}
		row[col.Key] = defaultFor(col)
	}
	for k, v := range partial {
		row[k] = v
	}
	row[IDField] = id
	created, err := CoerceRow(e.columns, row)
	if err != nil {
		return nil, nil, err
	}
	out := make([]Row, 0, len(rows)+1)
	out = append(out, created)
	out = append(out, rows...)
	return out, created.Clone(), nil
}

// EditRow shallow-merges partial onto the row with the given id. The id itself
// cannot be changed through partial.
func (e *Engine) EditRow(rows []Row, id string, partial Row) ([]Row, error) {
	idx := indexOf(rows, id)
	if idx < 0 {
		return nil, &NotFoundError{ID: id}
	}
	changes := make(Row, len(partial))
	for k, v := range partial {
		if k == IDField {
			continue
		}
		changes[k] = v
	}
	// Only the changed fields are coerced; untouched values stay as the caller
	// holds them.
	coerced, err := CoerceRow(e.columns, changes)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(rows)
	if len(coerced) == 0 {
		return out, nil
	}
	merged := rows[idx].Clone()
	maps.Copy(merged, coerced)
	out[idx] = merged
	return out, nil
}

// DeleteRow returns rows without the row identified by id.
func (e *Engine) DeleteRow(rows []Row, id string) ([]Row, error) {
	idx := indexOf(rows, id)
	if idx < 0 {
		return nil, &NotFoundError{ID: id}
	}
	out := make([]Row, 0, len(rows)-1)
	out = append(out, rows[:idx]...)
	out = append(out, rows[idx+1:]...)
	return out, nil
}

// ExportRows serializes rows using the engine's columns.
func (e *Engine) ExportRows(rows []Row, format ExportFormat) ([]byte, error) {
	return ExportRows(rows, e.columns, format)
}

// FilterOptions lists the distinct values of a column, see FilterOptions.
func (e *Engine) FilterOptions(rows []Row, key string) []string {
	return FilterOptions(rows, key)
}

// FindRow returns the row with the given id.
func FindRow(rows []Row, id string) (Row, bool) {
	idx := indexOf(rows, id)
	if idx < 0 {
		return nil, false
	}
	return rows[idx], true
}

func indexOf(rows []Row, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(rows, func(r Row) bool { return r.ID() == id })
}

func idSet(rows []Row) map[string]struct{} {
	set := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		set[row.ID()] = struct{}{}
	}
	return set
}
