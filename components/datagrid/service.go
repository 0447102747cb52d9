package datagrid

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxSwapAttempts bounds compare-and-swap retries when writers race.
const maxSwapAttempts = 8

var (
	errMissingCode  = errors.New("datagrid: grid code is required")
	errMissingRowID = errors.New("datagrid: row id is required")
)

// UnknownGridError reports an operation against a grid that was never
// registered.
type UnknownGridError struct {
	Code string
}

func (e *UnknownGridError) Error() string {
	return fmt.Sprintf("datagrid: grid %q is not registered", e.Code)
}

func (e *UnknownGridError) Is(target error) bool { return target == ErrNotFound }

// GridRegistry stores grid definitions.
type GridRegistry interface {
	RegisterDefinition(def GridDefinition) error
	Definition(code string) (GridDefinition, bool)
	Definitions() []GridDefinition
}

// RowSource supplies the rows of a grid from outside the process.
type RowSource interface {
	FetchRows(ctx context.Context) ([]Row, error)
}

// DefinitionSource is implemented by sources that also describe their grid.
type DefinitionSource interface {
	GridDefinition(ctx context.Context) (GridDefinition, error)
}

// Options configures the grid Service. Every collaborator is an interface so
// applications can swap implementations.
type Options struct {
	Store           RowStore
	Registry        GridRegistry
	Validator       RowValidator
	PreferenceStore PreferenceStore
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	IDGenerator     IDGenerator
	Charts          *SummaryChartProvider
	// SkipValidation turns off schema validation of added and edited rows.
	// Values are still coerced to their column types.
	SkipValidation bool
	// SourceConcurrency caps parallel fetches in LoadSources. Zero means no limit.
	SourceConcurrency int
}

// Service keeps the current rows of each grid and runs the engine over them.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewInMemoryRowStore()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.SkipValidation {
		opts.Validator = noopRowValidator{}
	}
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = NewSequenceGenerator(DefaultIDPrefix)
	}
	if opts.Charts == nil {
		opts.Charts = NewSummaryChartProvider()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// Register stores a grid definition and replaces its rows.
func (s *Service) Register(ctx context.Context, def GridDefinition, rows []Row) error {
	if err := CheckDefinition(def); err != nil {
		return err
	}
	validated, err := s.engine(def).SetRows(rows)
	if err != nil {
		return fmt.Errorf("datagrid: register %s: %w", def.Code, err)
	}
	if err := s.opts.Registry.RegisterDefinition(def); err != nil {
		return err
	}
	if inv, ok := s.opts.Validator.(interface{ InvalidateSchema(string) }); ok {
		inv.InvalidateSchema(def.Code)
	}
	s.opts.Charts.Invalidate(def.Code)
	snap, err := s.replace(ctx, def.Code, validated)
	if err != nil {
		return err
	}
	s.notify(ctx, "datagrid.grid.register", GridEvent{Code: def.Code, Reason: "register", Total: len(snap.Rows)})
	return nil
}

// SetRows replaces the rows of a registered grid.
func (s *Service) SetRows(ctx context.Context, code string, rows []Row) error {
	def, err := s.definition(code)
	if err != nil {
		return err
	}
	validated, err := s.engine(def).SetRows(rows)
	if err != nil {
		return fmt.Errorf("datagrid: set rows for %s: %w", code, err)
	}
	snap, err := s.replace(ctx, code, validated)
	if err != nil {
		return err
	}
	s.notify(ctx, "datagrid.grid.reset", GridEvent{Code: code, Reason: "reset", Total: len(snap.Rows)})
	return nil
}

func (s *Service) replace(ctx context.Context, code string, rows []Row) (Snapshot, error) {
	for range maxSwapAttempts {
		current, err := s.opts.Store.Load(ctx, code)
		if err != nil {
			return Snapshot{}, fmt.Errorf("datagrid: load %s: %w", code, err)
		}
		snap, err := s.opts.Store.Swap(ctx, code, current.Version, rows)
		if errors.Is(err, ErrStaleSnapshot) {
			continue
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("datagrid: store %s: %w", code, err)
		}
		return snap, nil
	}
	return Snapshot{}, fmt.Errorf("datagrid: store %s: %w", code, ErrStaleSnapshot)
}

// Definition returns the registered definition for code.
func (s *Service) Definition(code string) (GridDefinition, error) {
	return s.definition(code)
}

// Definitions lists every registered grid.
func (s *Service) Definitions() []GridDefinition {
	return s.opts.Registry.Definitions()
}

// Rows returns the full current row set of a grid.
func (s *Service) Rows(ctx context.Context, code string) ([]Row, error) {
	if _, err := s.definition(code); err != nil {
		return nil, err
	}
	snap, err := s.opts.Store.Load(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("datagrid: load %s: %w", code, err)
	}
	return snap.Rows, nil
}

// Row returns a single row by id.
func (s *Service) Row(ctx context.Context, code, id string) (Row, error) {
	rows, err := s.Rows(ctx, code)
	if err != nil {
		return nil, err
	}
	row, ok := FindRow(rows, id)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return row.Clone(), nil
}

// Query computes the visible page of a grid. A zero page size falls back to
// the grid's configured page size.
func (s *Service) Query(ctx context.Context, code string, q Query) (Result, error) {
	def, err := s.definition(code)
	if err != nil {
		return Result{}, err
	}
	snap, err := s.opts.Store.Load(ctx, code)
	if err != nil {
		return Result{}, fmt.Errorf("datagrid: load %s: %w", code, err)
	}
	result := s.engine(def).ApplyQuery(snap.Rows, s.normalizeQuery(def, q))
	s.recordTelemetry(ctx, "datagrid.grid.query", map[string]any{
		"code":  code,
		"total": result.Total,
		"page":  result.Page.Page,
	})
	return result, nil
}

// AddRow creates a row in grid code and returns it.
func (s *Service) AddRow(ctx context.Context, code string, partial Row) (Row, error) {
	def, err := s.definition(code)
	if err != nil {
		return nil, err
	}
	var created Row
	snap, err := s.mutate(ctx, def, func(e *Engine, rows []Row) ([]Row, error) {
		next, row, err := e.AddRow(rows, partial)
		if err != nil {
			return nil, err
		}
		if err := s.opts.Validator.Validate(def, row); err != nil {
			return nil, err
		}
		created = row
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("datagrid: add row to %s: %w", code, err)
	}
	s.notify(ctx, "datagrid.row.add", GridEvent{Code: code, RowID: created.ID(), Reason: "add", Total: len(snap.Rows)})
	return created, nil
}

// EditRow merges partial onto row id and returns the updated row.
func (s *Service) EditRow(ctx context.Context, code, id string, partial Row) (Row, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errMissingRowID
	}
	def, err := s.definition(code)
	if err != nil {
		return nil, err
	}
	var updated Row
	snap, err := s.mutate(ctx, def, func(e *Engine, rows []Row) ([]Row, error) {
		next, err := e.EditRow(rows, id, partial)
		if err != nil {
			return nil, err
		}
		row, _ := FindRow(next, id)
		if err := s.opts.Validator.Validate(def, row); err != nil {
			return nil, err
		}
		updated = row.Clone()
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("datagrid: edit row %s in %s: %w", id, code, err)
	}
	s.notify(ctx, "datagrid.row.edit", GridEvent{Code: code, RowID: id, Reason: "edit", Total: len(snap.Rows)})
	return updated, nil
}

// DeleteRow removes row id from grid code.
func (s *Service) DeleteRow(ctx context.Context, code, id string) error {
	if strings.TrimSpace(id) == "" {
		return errMissingRowID
	}
	def, err := s.definition(code)
	if err != nil {
		return err
	}
	snap, err := s.mutate(ctx, def, func(e *Engine, rows []Row) ([]Row, error) {
		return e.DeleteRow(rows, id)
	})
	if err != nil {
		return fmt.Errorf("datagrid: delete row %s from %s: %w", id, code, err)
	}
	s.notify(ctx, "datagrid.row.delete", GridEvent{Code: code, RowID: id, Reason: "delete", Total: len(snap.Rows)})
	return nil
}

// mutate runs fn against the latest snapshot and stores the result, retrying
// when another writer got there first.
func (s *Service) mutate(ctx context.Context, def GridDefinition, fn func(e *Engine, rows []Row) ([]Row, error)) (Snapshot, error) {
	engine := s.engine(def)
	for range maxSwapAttempts {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		current, err := s.opts.Store.Load(ctx, def.Code)
		if err != nil {
			return Snapshot{}, err
		}
		next, err := fn(engine, current.Rows)
		if err != nil {
			return Snapshot{}, err
		}
		snap, err := s.opts.Store.Swap(ctx, def.Code, current.Version, next)
		if errors.Is(err, ErrStaleSnapshot) {
			continue
		}
		if err != nil {
			return Snapshot{}, err
		}
		return snap, nil
	}
	return Snapshot{}, ErrStaleSnapshot
}

// Export serializes every row matching q (search, filters and sort; no
// paging) in the requested format.
func (s *Service) Export(ctx context.Context, code string, q Query, format ExportFormat) ([]byte, error) {
	def, err := s.definition(code)
	if err != nil {
		return nil, err
	}
	snap, err := s.opts.Store.Load(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("datagrid: load %s: %w", code, err)
	}
	matched := MatchRows(snap.Rows, q)
	data, err := s.engine(def).ExportRows(matched, format)
	if err != nil {
		return nil, fmt.Errorf("datagrid: export %s: %w", code, err)
	}
	s.recordTelemetry(ctx, "datagrid.grid.export", map[string]any{
		"code":   code,
		"format": string(format),
		"rows":   len(matched),
	})
	return data, nil
}

// FilterOptions lists the filter choices for column key of grid code.
func (s *Service) FilterOptions(ctx context.Context, code, key string) ([]string, error) {
	def, err := s.definition(code)
	if err != nil {
		return nil, err
	}
	if _, ok := def.Column(key); !ok {
		return nil, fmt.Errorf("datagrid: grid %s has no column %s", code, key)
	}
	snap, err := s.opts.Store.Load(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("datagrid: load %s: %w", code, err)
	}
	return s.engine(def).FilterOptions(snap.Rows, key), nil
}

// SummaryChart renders a value-count chart for column key.
func (s *Service) SummaryChart(ctx context.Context, code, key string, kind ChartKind) (SummaryChart, error) {
	def, err := s.definition(code)
	if err != nil {
		return SummaryChart{}, err
	}
	snap, err := s.opts.Store.Load(ctx, code)
	if err != nil {
		return SummaryChart{}, fmt.Errorf("datagrid: load %s: %w", code, err)
	}
	return s.opts.Charts.Render(def, snap, key, kind)
}

// SaveQuery remembers a viewer's query state for grid code.
func (s *Service) SaveQuery(ctx context.Context, viewer ViewerContext, code string, q Query) error {
	if viewer.UserID == "" {
		return errors.New("datagrid: viewer context missing user id")
	}
	def, err := s.definition(code)
	if err != nil {
		return err
	}
	prefs, err := s.opts.PreferenceStore.GridPreferences(ctx, viewer, code)
	if err != nil {
		return err
	}
	prefs.Query = s.normalizeQuery(def, q)
	return s.opts.PreferenceStore.SaveGridPreferences(ctx, viewer, code, prefs)
}

// LoadQuery returns a viewer's saved query, or the grid's default query.
func (s *Service) LoadQuery(ctx context.Context, viewer ViewerContext, code string) (Query, error) {
	def, err := s.definition(code)
	if err != nil {
		return Query{}, err
	}
	prefs, err := s.opts.PreferenceStore.GridPreferences(ctx, viewer, code)
	if err != nil {
		return Query{}, err
	}
	return s.normalizeQuery(def, prefs.Query), nil
}

// SaveColumnLayout stores a viewer's column order and hidden columns.
func (s *Service) SaveColumnLayout(ctx context.Context, viewer ViewerContext, code string, order []string, hidden map[string]bool) error {
	if viewer.UserID == "" {
		return errors.New("datagrid: viewer context missing user id")
	}
	if _, err := s.definition(code); err != nil {
		return err
	}
	prefs, err := s.opts.PreferenceStore.GridPreferences(ctx, viewer, code)
	if err != nil {
		return err
	}
	prefs.ColumnOrder = order
	prefs.HiddenColumns = hidden
	return s.opts.PreferenceStore.SaveGridPreferences(ctx, viewer, code, prefs)
}

// Columns returns grid columns arranged for the viewer.
func (s *Service) Columns(ctx context.Context, viewer ViewerContext, code string) ([]Column, error) {
	def, err := s.definition(code)
	if err != nil {
		return nil, err
	}
	prefs, err := s.opts.PreferenceStore.GridPreferences(ctx, viewer, code)
	if err != nil {
		return nil, err
	}
	cols := applyColumnOrder(slices.Clone(def.Columns), prefs.ColumnOrder)
	return applyHiddenColumns(cols, prefs.HiddenColumns), nil
}

// LoadSources fetches rows from every source concurrently and stores them.
// Grids must already be registered unless their source describes itself.
func (s *Service) LoadSources(ctx context.Context, sources map[string]RowSource) error {
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.SourceConcurrency > 0 {
		g.SetLimit(s.opts.SourceConcurrency)
	}
	codes := make([]string, 0, len(sources))
	for code := range sources {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		source := sources[code]
		if source == nil {
			return fmt.Errorf("datagrid: source for %s is nil", code)
		}
		g.Go(func() error {
			return s.loadSource(gctx, code, source)
		})
	}
	return g.Wait()
}

func (s *Service) loadSource(ctx context.Context, code string, source RowSource) error {
	rows, err := source.FetchRows(ctx)
	if err != nil {
		s.recordTelemetry(ctx, "datagrid.source.error", map[string]any{"code": code, "error": err.Error()})
		return fmt.Errorf("datagrid: fetch rows for %s: %w", code, err)
	}
	if ds, ok := source.(DefinitionSource); ok {
		def, err := ds.GridDefinition(ctx)
		if err != nil {
			return fmt.Errorf("datagrid: describe %s: %w", code, err)
		}
		if def.Code == "" {
			def.Code = code
		}
		return s.Register(ctx, def, rows)
	}
	return s.SetRows(ctx, code, rows)
}

// NotifyGridUpdated exposes refresh hook invocation for commands and transports.
func (s *Service) NotifyGridUpdated(ctx context.Context, event GridEvent) error {
	if event.Code == "" {
		return errMissingCode
	}
	if event.Actor == "" {
		event.Actor = ActivityFromContext(ctx).ActorID
	}
	if err := s.opts.RefreshHook.GridUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "datagrid.grid.event", eventPayload(event))
	return nil
}

// notify reports a committed change. Hook failures are recorded but do not
// fail the operation since the new snapshot is already stored.
func (s *Service) notify(ctx context.Context, name string, event GridEvent) {
	if event.Actor == "" {
		event.Actor = ActivityFromContext(ctx).ActorID
	}
	if err := s.opts.RefreshHook.GridUpdated(ctx, event); err != nil {
		s.recordTelemetry(ctx, "datagrid.refresh.error", map[string]any{
			"code":  event.Code,
			"error": err.Error(),
		})
	}
	s.recordTelemetry(ctx, name, eventPayload(event))
}

func eventPayload(event GridEvent) map[string]any {
	payload := map[string]any{
		"code":   event.Code,
		"reason": event.Reason,
		"total":  event.Total,
	}
	if event.RowID != "" {
		payload["row_id"] = event.RowID
	}
	if event.Actor != "" {
		payload["actor"] = event.Actor
	}
	return payload
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	if meta := ActivityFromContext(ctx); meta.TenantID != "" {
		payload["tenant_id"] = meta.TenantID
	}
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) definition(code string) (GridDefinition, error) {
	if strings.TrimSpace(code) == "" {
		return GridDefinition{}, errMissingCode
	}
	def, ok := s.opts.Registry.Definition(code)
	if !ok {
		return GridDefinition{}, &UnknownGridError{Code: code}
	}
	return def, nil
}

func (s *Service) engine(def GridDefinition) *Engine {
	return NewEngine(EngineOptions{Columns: def.Columns, IDGenerator: s.opts.IDGenerator})
}

func (s *Service) normalizeQuery(def GridDefinition, q Query) Query {
	if q.PageSize < 1 && def.PageSize > 0 {
		q.PageSize = def.PageSize
	}
	return q.Normalize()
}
