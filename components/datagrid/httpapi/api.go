package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/commands"
	"github.com/goliatone/go-datagrid/components/datagrid/queries"
)

// Executor is the operation surface transports call into. Handlers
// implements it on top of commands and queries.
type Executor interface {
	AddRow(ctx context.Context, input commands.AddRowInput) error
	EditRow(ctx context.Context, input commands.EditRowInput) error
	DeleteRow(ctx context.Context, input commands.DeleteRowInput) error
	SetRows(ctx context.Context, input commands.SetRowsInput) error
	Refresh(ctx context.Context, input commands.RefreshGridInput) error
	Preferences(ctx context.Context, input commands.SavePreferencesInput) error
	Query(ctx context.Context, input queries.GridQueryInput) (datagrid.Result, error)
	Export(ctx context.Context, input queries.ExportInput) (queries.ExportOutput, error)
	FilterOptions(ctx context.Context, input queries.FilterOptionsInput) ([]string, error)
	SavedQuery(ctx context.Context, input queries.SavedQueryInput) (datagrid.Query, error)
	Chart(ctx context.Context, input queries.SummaryChartInput) (datagrid.SummaryChart, error)
}

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Add           gocommand.Commander[commands.AddRowInput]
	Edit          gocommand.Commander[commands.EditRowInput]
	Delete        gocommand.Commander[commands.DeleteRowInput]
	Replace       gocommand.Commander[commands.SetRowsInput]
	Notify        gocommand.Commander[commands.RefreshGridInput]
	Save          gocommand.Commander[commands.SavePreferencesInput]
	Rows          gocommand.Querier[queries.GridQueryInput, datagrid.Result]
	Download      gocommand.Querier[queries.ExportInput, queries.ExportOutput]
	Options       gocommand.Querier[queries.FilterOptionsInput, []string]
	Saved         gocommand.Querier[queries.SavedQueryInput, datagrid.Query]
	Summary       gocommand.Querier[queries.SummaryChartInput, datagrid.SummaryChart]
	ViewerFromReq func(*http.Request) datagrid.ViewerContext
}

// NewHandlers wires every command and query against service.
func NewHandlers(service *datagrid.Service, telemetry commands.Telemetry) *Handlers {
	return &Handlers{
		Add:      commands.NewAddRowCommand(service, telemetry),
		Edit:     commands.NewEditRowCommand(service, telemetry),
		Delete:   commands.NewDeleteRowCommand(service, telemetry),
		Replace:  commands.NewSetRowsCommand(service, telemetry),
		Notify:   commands.NewRefreshGridCommand(service, telemetry),
		Save:     commands.NewSavePreferencesCommand(service, telemetry),
		Rows:     queries.NewGridQuery(service),
		Download: queries.NewExportQuery(service),
		Options:  queries.NewFilterOptionsQuery(service),
		Saved:    queries.NewSavedQueryQuery(service),
		Summary:  queries.NewSummaryChartQuery(service),
	}
}

var _ Executor = (*Handlers)(nil)

var errNotConfigured = errors.New("httpapi: operation not configured")

func (h *Handlers) AddRow(ctx context.Context, input commands.AddRowInput) error {
	return execute(ctx, h.Add, input)
}

func (h *Handlers) EditRow(ctx context.Context, input commands.EditRowInput) error {
	return execute(ctx, h.Edit, input)
}

func (h *Handlers) DeleteRow(ctx context.Context, input commands.DeleteRowInput) error {
	return execute(ctx, h.Delete, input)
}

func (h *Handlers) SetRows(ctx context.Context, input commands.SetRowsInput) error {
	return execute(ctx, h.Replace, input)
}

func (h *Handlers) Refresh(ctx context.Context, input commands.RefreshGridInput) error {
	return execute(ctx, h.Notify, input)
}

func (h *Handlers) Preferences(ctx context.Context, input commands.SavePreferencesInput) error {
	return execute(ctx, h.Save, input)
}

func (h *Handlers) Query(ctx context.Context, input queries.GridQueryInput) (datagrid.Result, error) {
	return query(ctx, h.Rows, input)
}

func (h *Handlers) Export(ctx context.Context, input queries.ExportInput) (queries.ExportOutput, error) {
	return query(ctx, h.Download, input)
}

func (h *Handlers) FilterOptions(ctx context.Context, input queries.FilterOptionsInput) ([]string, error) {
	return query(ctx, h.Options, input)
}

func (h *Handlers) SavedQuery(ctx context.Context, input queries.SavedQueryInput) (datagrid.Query, error) {
	return query(ctx, h.Saved, input)
}

func (h *Handlers) Chart(ctx context.Context, input queries.SummaryChartInput) (datagrid.SummaryChart, error) {
	return query(ctx, h.Summary, input)
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func query[In, Out any](ctx context.Context, q gocommand.Querier[In, Out], input In) (Out, error) {
	if q == nil {
		var zero Out
		return zero, errNotConfigured
	}
	return q.Query(ctx, input)
}

func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request, code string) {
	q, err := QueryFromValues(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.Query(r.Context(), queries.GridQueryInput{Code: code, Query: q})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleAddRow(w http.ResponseWriter, r *http.Request, code string) {
	var row datagrid.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var created datagrid.Row
	if err := h.AddRow(r.Context(), commands.AddRowInput{Code: code, Row: row, Result: &created}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) HandleEditRow(w http.ResponseWriter, r *http.Request, code, id string) {
	var changes datagrid.Row
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var updated datagrid.Row
	if err := h.EditRow(r.Context(), commands.EditRowInput{Code: code, ID: id, Changes: changes, Result: &updated}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) HandleDeleteRow(w http.ResponseWriter, r *http.Request, code, id string) {
	if err := h.DeleteRow(r.Context(), commands.DeleteRowInput{Code: code, ID: id}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleSetRows(w http.ResponseWriter, r *http.Request, code string) {
	var rows []datagrid.Row
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.SetRows(r.Context(), commands.SetRowsInput{Code: code, Rows: rows}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "replaced", "total": len(rows)})
}

// HandleExport streams every matched row as a download. The format
// parameter selects csv (default), json or yaml.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request, code string) {
	values := r.URL.Query()
	format, err := datagrid.ParseExportFormat(values.Get(ParamFormat))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	q, err := QueryFromValues(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := h.Export(r.Context(), queries.ExportInput{Code: code, Query: q, Format: format})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

func (h *Handlers) HandleFilterOptions(w http.ResponseWriter, r *http.Request, code, key string) {
	options, err := h.FilterOptions(r.Context(), queries.FilterOptionsInput{Code: code, Key: key})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "options": options})
}

func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request, code, key string) {
	kind := datagrid.ChartKind(r.URL.Query().Get("kind"))
	chart, err := h.Chart(r.Context(), queries.SummaryChartInput{Code: code, Key: key, Kind: kind})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshGridInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Refresh(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleSavePreferences(w http.ResponseWriter, r *http.Request, code string) {
	var payload commands.SavePreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	payload.Code = code
	payload.Viewer = h.viewer(r)
	if err := h.Preferences(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handlers) HandleLoadPreferences(w http.ResponseWriter, r *http.Request, code string) {
	q, err := h.SavedQuery(r.Context(), queries.SavedQueryInput{Viewer: h.viewer(r), Code: code})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Mount registers every handler on mux below base, e.g. base "/api" serves
// GET /api/grids/{code}/rows.
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	grid := base + "/grids/{code}"
	mux.HandleFunc("GET "+grid+"/rows", func(w http.ResponseWriter, r *http.Request) {
		h.HandleQuery(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("POST "+grid+"/rows", func(w http.ResponseWriter, r *http.Request) {
		h.HandleAddRow(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("PUT "+grid+"/rows", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSetRows(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("PATCH "+grid+"/rows/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleEditRow(w, r, r.PathValue("code"), r.PathValue("id"))
	})
	mux.HandleFunc("DELETE "+grid+"/rows/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDeleteRow(w, r, r.PathValue("code"), r.PathValue("id"))
	})
	mux.HandleFunc("GET "+grid+"/export", func(w http.ResponseWriter, r *http.Request) {
		h.HandleExport(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("GET "+grid+"/filters/{key}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleFilterOptions(w, r, r.PathValue("code"), r.PathValue("key"))
	})
	mux.HandleFunc("GET "+grid+"/charts/{key}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleChart(w, r, r.PathValue("code"), r.PathValue("key"))
	})
	mux.HandleFunc("GET "+grid+"/preferences", func(w http.ResponseWriter, r *http.Request) {
		h.HandleLoadPreferences(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("POST "+grid+"/preferences", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSavePreferences(w, r, r.PathValue("code"))
	})
	mux.HandleFunc("POST "+base+"/refresh", h.HandleRefresh)
}

func (h *Handlers) viewer(r *http.Request) datagrid.ViewerContext {
	if h.ViewerFromReq != nil {
		return h.ViewerFromReq(r)
	}
	return datagrid.ViewerContext{UserID: r.Header.Get("X-User-ID")}
}
