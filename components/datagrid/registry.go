package datagrid

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// GridHook lets packages register grids during init().
type GridHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []GridHook
)

// RegisterGridHook registers a hook executed against new registries.
func RegisterGridHook(h GridHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry holds grid definitions keyed by code.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]GridDefinition
}

// NewRegistry builds an empty registry and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{definitions: map[string]GridDefinition{}}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered grid hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores grid metadata, replacing any previous definition
// with the same code.
func (r *Registry) RegisterDefinition(def GridDefinition) error {
	if err := CheckDefinition(def); err != nil {
		return err
	}
	def.Columns = slices.Clone(def.Columns)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// Definition fetches a grid definition by code.
func (r *Registry) Definition(code string) (GridDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Definitions returns all registered definitions ordered by code.
func (r *Registry) Definitions() []GridDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]GridDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b GridDefinition) int { return strings.Compare(a.Code, b.Code) })
	return defs
}

// CheckDefinition reports structural problems with a grid definition.
func CheckDefinition(def GridDefinition) error {
	if strings.TrimSpace(def.Code) == "" {
		return fmt.Errorf("datagrid: grid code is required")
	}
	if def.PageSize < 0 {
		return fmt.Errorf("datagrid: grid %s page size must be positive", def.Code)
	}
	seen := make(map[string]struct{}, len(def.Columns))
	for i, col := range def.Columns {
		if strings.TrimSpace(col.Key) == "" {
			return fmt.Errorf("datagrid: grid %s column %d is missing a key", def.Code, i)
		}
		if _, dup := seen[col.Key]; dup {
			return fmt.Errorf("datagrid: grid %s declares column %s twice", def.Code, col.Key)
		}
		seen[col.Key] = struct{}{}
		switch col.Type() {
		case ValueText, ValueNumber, ValueDate, ValueBoolean:
		default:
			return fmt.Errorf("datagrid: grid %s column %s has unknown value type %q", def.Code, col.Key, col.ValueType)
		}
	}
	return nil
}
