package datagrid

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
	last   map[string]map[string]any
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.last == nil {
		r.last = map[string]map[string]any{}
	}
	r.last[event] = payload
}

type recordingHook struct {
	mu     sync.Mutex
	events []GridEvent
	err    error
}

func (h *recordingHook) GridUpdated(_ context.Context, event GridEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func newPeopleService(t *testing.T, opts Options) *Service {
	t.Helper()
	svc := NewService(opts)
	def := GridDefinition{Code: "people", Name: "People", Columns: []Column{
		{Key: "name", Label: "Name", Sortable: true, Required: true},
		{Key: "status", Label: "Status", Filterable: true},
		{Key: "age", Label: "Age", ValueType: ValueNumber, Sortable: true},
	}}
	require.NoError(t, svc.Register(context.Background(), def, peopleRows()))
	return svc
}

func TestServiceQueryUsesStoredRows(t *testing.T) {
	svc := newPeopleService(t, Options{})
	result, err := svc.Query(context.Background(), "people", Query{SortKey: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, rowIDs(result.Rows))
	assert.Equal(t, DefaultPageSize, result.Page.PageSize)
}

func TestServiceQueryUsesGridPageSize(t *testing.T) {
	svc := NewService(Options{})
	def := GridDefinition{Code: "nums", PageSize: 4}
	require.NoError(t, svc.Register(context.Background(), def, numberedRows(10)))
	result, err := svc.Query(context.Background(), "nums", Query{})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 4)
	assert.Equal(t, 3, result.Page.TotalPages)
}

func TestServiceUnknownGrid(t *testing.T) {
	svc := NewService(Options{})
	_, err := svc.Query(context.Background(), "nope", Query{})
	var unknown *UnknownGridError
	require.True(t, errors.As(err, &unknown))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceAddEditDeleteLifecycle(t *testing.T) {
	hook := &recordingHook{}
	telemetry := &recordingTelemetry{}
	svc := newPeopleService(t, Options{RefreshHook: hook, Telemetry: telemetry})
	ctx := ContextWithActivity(context.Background(), ActivityContext{ActorID: "admin", TenantID: "acme"})

	created, err := svc.AddRow(ctx, "people", Row{"name": "Cid", "age": "33"})
	require.NoError(t, err)
	assert.Equal(t, float64(33), created["age"])

	rows, err := svc.Rows(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID(), "1", "2"}, rowIDs(rows))

	updated, err := svc.EditRow(ctx, "people", created.ID(), Row{"status": "Active"})
	require.NoError(t, err)
	assert.Equal(t, "Active", updated["status"])
	assert.Equal(t, "Cid", updated["name"])

	require.NoError(t, svc.DeleteRow(ctx, "people", created.ID()))
	rows, err = svc.Rows(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, rowIDs(rows))

	require.Len(t, hook.events, 4)
	assert.Equal(t, "register", hook.events[0].Reason)
	assert.Equal(t, "add", hook.events[1].Reason)
	assert.Equal(t, "edit", hook.events[2].Reason)
	assert.Equal(t, "delete", hook.events[3].Reason)
	assert.Equal(t, "admin", hook.events[1].Actor)
	assert.Equal(t, 2, hook.events[3].Total)

	assert.Contains(t, telemetry.events, "datagrid.row.add")
	assert.Equal(t, "acme", telemetry.last["datagrid.row.delete"]["tenant_id"])
}

func TestServiceAddRowValidationLeavesRowsUntouched(t *testing.T) {
	svc := newPeopleService(t, Options{})
	_, err := svc.AddRow(context.Background(), "people", Row{"status": "Active"})
	assert.ErrorIs(t, err, ErrValidation)

	rows, err := svc.Rows(context.Background(), "people")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestServiceSkipValidation(t *testing.T) {
	svc := newPeopleService(t, Options{SkipValidation: true})
	created, err := svc.AddRow(context.Background(), "people", Row{"status": "Active"})
	require.NoError(t, err)
	assert.Equal(t, "", created["name"])
}

func TestServiceEditAndDeleteUnknownRow(t *testing.T) {
	svc := newPeopleService(t, Options{})
	_, err := svc.EditRow(context.Background(), "people", "404", Row{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteRow(context.Background(), "people", "404"), ErrNotFound)
	assert.Error(t, svc.DeleteRow(context.Background(), "people", ""))
}

func TestServiceHookFailureDoesNotUndoWrite(t *testing.T) {
	telemetry := &recordingTelemetry{}
	svc := newPeopleService(t, Options{Telemetry: telemetry})
	svc.opts.RefreshHook = &recordingHook{err: errors.New("socket closed")}

	require.NoError(t, svc.DeleteRow(context.Background(), "people", "1"))
	rows, err := svc.Rows(context.Background(), "people")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Contains(t, telemetry.events, "datagrid.refresh.error")
}

func TestServiceConcurrentAddsAllLand(t *testing.T) {
	svc := newPeopleService(t, Options{})
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddRow(context.Background(), "people", Row{"name": "n"}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		// Heavy contention may exhaust retries; anything else is a bug.
		require.ErrorIs(t, err, ErrStaleSnapshot)
	}
	rows, err := svc.Rows(context.Background(), "people")
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, row := range rows {
		require.False(t, ids[row.ID()])
		ids[row.ID()] = true
	}
}

func TestServiceExportAppliesQueryWithoutPaging(t *testing.T) {
	svc := NewService(Options{})
	def := DemoUsersDefinition()
	require.NoError(t, svc.Register(context.Background(), def, DemoUsers(30, 11)))

	q := Query{Filters: map[string]string{"department": "engineering"}, PageSize: 2}
	data, err := svc.Export(context.Background(), def.Code, q, ExportCSV)
	require.NoError(t, err)

	matched, err := svc.Query(context.Background(), def.Code, q.WithPage(1))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, matched.Total+1)
	assert.True(t, strings.HasPrefix(lines[0], "Name,Email,Phone,Department"))
}

func TestServiceFilterOptions(t *testing.T) {
	svc := newPeopleService(t, Options{})
	options, err := svc.FilterOptions(context.Background(), "people", "status")
	require.NoError(t, err)
	assert.Equal(t, []string{"Active", "Inactive"}, options)

	_, err = svc.FilterOptions(context.Background(), "people", "nope")
	assert.Error(t, err)
}

func TestServiceSavedQueries(t *testing.T) {
	svc := newPeopleService(t, Options{})
	ctx := context.Background()
	viewer := ViewerContext{UserID: "u1"}

	q, err := svc.LoadQuery(ctx, viewer, "people")
	require.NoError(t, err)
	assert.Equal(t, Query{Page: 1, PageSize: DefaultPageSize, SortDirection: SortAsc}, q)

	saved := Query{SearchText: "bob", Filters: map[string]string{"status": "Active"}, SortKey: "name", SortDirection: SortDesc, Page: 2, PageSize: 25}
	require.NoError(t, svc.SaveQuery(ctx, viewer, "people", saved))
	loaded, err := svc.LoadQuery(ctx, viewer, "people")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	other, err := svc.LoadQuery(ctx, ViewerContext{UserID: "u2"}, "people")
	require.NoError(t, err)
	assert.Empty(t, other.SearchText)

	assert.Error(t, svc.SaveQuery(ctx, ViewerContext{}, "people", saved))
}

func TestServiceColumnLayout(t *testing.T) {
	svc := newPeopleService(t, Options{})
	ctx := context.Background()
	viewer := ViewerContext{UserID: "u1"}
	require.NoError(t, svc.SaveColumnLayout(ctx, viewer, "people", []string{"age", "name"}, map[string]bool{"status": true}))

	cols, err := svc.Columns(ctx, viewer, "people")
	require.NoError(t, err)
	keys := []string{}
	for _, c := range cols {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"age", "name", "status"}, keys)
	assert.True(t, cols[2].Hidden)

	def, err := svc.Definition("people")
	require.NoError(t, err)
	assert.False(t, def.Columns[1].Hidden, "definition stays untouched")
}

type staticRows struct {
	rows []Row
	def  *GridDefinition
	err  error
}

func (s staticRows) FetchRows(context.Context) ([]Row, error) { return s.rows, s.err }

type describedRows struct {
	staticRows
}

func (d describedRows) GridDefinition(context.Context) (GridDefinition, error) { return *d.def, nil }

func TestServiceLoadSources(t *testing.T) {
	svc := newPeopleService(t, Options{SourceConcurrency: 2})
	ctx := context.Background()
	err := svc.LoadSources(ctx, map[string]RowSource{
		"people": staticRows{rows: []Row{{"id": "9", "name": "Zed"}}},
		"teams": describedRows{staticRows{
			rows: []Row{{"id": "t1", "title": "Core"}},
			def:  &GridDefinition{Columns: []Column{{Key: "title"}}},
		}},
	})
	require.NoError(t, err)

	people, err := svc.Rows(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, rowIDs(people))

	teams, err := svc.Rows(ctx, "teams")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, rowIDs(teams))
}

func TestServiceLoadSourcesReportsFailures(t *testing.T) {
	svc := newPeopleService(t, Options{})
	err := svc.LoadSources(context.Background(), map[string]RowSource{
		"people": staticRows{err: errors.New("boom")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	err = svc.LoadSources(context.Background(), map[string]RowSource{
		"ghost": staticRows{rows: []Row{{"id": "1"}}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceRegisterRejectsDuplicates(t *testing.T) {
	svc := NewService(Options{})
	err := svc.Register(context.Background(), GridDefinition{Code: "g"}, []Row{{"id": "a"}, {"id": "a"}})
	assert.ErrorIs(t, err, ErrDuplicateID)
	_, err = svc.Definition("g")
	assert.Error(t, err, "failed registration must not leave a definition behind")
}

func TestServiceSummaryChart(t *testing.T) {
	svc := NewService(Options{Charts: NewSummaryChartProvider(WithChartCache(nil))})
	def := DemoUsersDefinition()
	require.NoError(t, svc.Register(context.Background(), def, DemoUsers(20, 5)))
	chart, err := svc.SummaryChart(context.Background(), def.Code, "department", ChartPie)
	require.NoError(t, err)
	total := 0
	for _, c := range chart.Counts {
		total += c.Count
	}
	assert.Equal(t, 20, total)
	assert.Contains(t, chart.HTML, "echarts")
}

func TestServiceSummaryChartFollowsSnapshots(t *testing.T) {
	cache := NewChartCache(time.Minute)
	svc := newPeopleService(t, Options{Charts: NewSummaryChartProvider(WithChartCache(cache))})
	ctx := context.Background()

	chart, err := svc.SummaryChart(ctx, "people", "status", ChartBar)
	require.NoError(t, err)
	assert.Equal(t, []ValueCount{{Value: "Active", Count: 1}, {Value: "Inactive", Count: 1}}, chart.Counts)
	assert.Equal(t, 1, cache.Len())

	_, err = svc.EditRow(ctx, "people", "2", Row{"status": "Active"})
	require.NoError(t, err)
	chart, err = svc.SummaryChart(ctx, "people", "status", ChartBar)
	require.NoError(t, err)
	assert.Equal(t, []ValueCount{{Value: "Active", Count: 2}}, chart.Counts)

	def, err := svc.Definition("people")
	require.NoError(t, err)
	require.NoError(t, svc.Register(ctx, def, peopleRows()))
	assert.Zero(t, cache.Len(), "re-registering drops cached charts")
}
