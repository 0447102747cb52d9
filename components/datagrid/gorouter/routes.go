package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/commands"
	"github.com/goliatone/go-datagrid/components/datagrid/httpapi"
	"github.com/goliatone/go-datagrid/components/datagrid/queries"
)

// ViewerResolver converts a router.Context into a datagrid.ViewerContext.
type ViewerResolver func(router.Context) datagrid.ViewerContext

// Config wires go-router with the grid controller, API and refresh hook.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *datagrid.Controller
	API            httpapi.Executor
	Broadcast      *datagrid.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for grid endpoints.
type RouteConfig struct {
	HTML        string
	View        string
	Rows        string
	Row         string
	Export      string
	Filters     string
	Chart       string
	Preferences string
	Refresh     string
	WebSocket   string
}

// Register mounts grid routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)
	views := queries.NewGridViewQuery(cfg.Controller)

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		code := ctx.Param("code")
		q, status, err := parseQuery(ctx, cfg.Controller, code)
		if err != nil {
			return respondError(ctx, status, err)
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewerResolver(ctx), code, q, &buf); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		code := ctx.Param("code")
		q, status, err := parseQuery(ctx, cfg.Controller, code)
		if err != nil {
			return respondError(ctx, status, err)
		}
		view, err := views.Query(ctx.Context(), queries.GridViewInput{Viewer: viewerResolver(ctx), Code: code, Query: q})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, cfg.Controller, viewerResolver, routes)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, defs definitionReader, resolver ViewerResolver, routes RouteConfig) {
	r.Get(routes.Rows, router.WrapHandler(func(ctx router.Context) error {
		code := ctx.Param("code")
		q, status, err := parseQuery(ctx, defs, code)
		if err != nil {
			return respondError(ctx, status, err)
		}
		result, err := api.Query(ctx.Context(), queries.GridQueryInput{Code: code, Query: q})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))

	r.Post(routes.Rows, router.WrapHandler(func(ctx router.Context) error {
		var row datagrid.Row
		if err := json.Unmarshal(ctx.Body(), &row); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var created datagrid.Row
		input := commands.AddRowInput{Code: ctx.Param("code"), Row: row, Result: &created}
		if err := api.AddRow(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, created)
	}))

	r.Put(routes.Row, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("row id is required"))
		}
		var changes datagrid.Row
		if err := json.Unmarshal(ctx.Body(), &changes); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var updated datagrid.Row
		input := commands.EditRowInput{Code: ctx.Param("code"), ID: id, Changes: changes, Result: &updated}
		if err := api.EditRow(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, updated)
	}))

	r.Delete(routes.Row, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("row id is required"))
		}
		if err := api.DeleteRow(ctx.Context(), commands.DeleteRowInput{Code: ctx.Param("code"), ID: id}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.NoContent(http.StatusNoContent)
	}))

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		code := ctx.Param("code")
		format, err := datagrid.ParseExportFormat(ctx.Query(httpapi.ParamFormat))
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		q, status, err := parseQuery(ctx, defs, code)
		if err != nil {
			return respondError(ctx, status, err)
		}
		out, err := api.Export(ctx.Context(), queries.ExportInput{Code: code, Query: q, Format: format})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", out.ContentType)
		ctx.SetHeader("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
		return ctx.Send(out.Data)
	}))

	r.Get(routes.Filters, router.WrapHandler(func(ctx router.Context) error {
		key := ctx.Param("key")
		options, err := api.FilterOptions(ctx.Context(), queries.FilterOptionsInput{Code: ctx.Param("code"), Key: key})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"key": key, "options": options})
	}))

	r.Get(routes.Chart, router.WrapHandler(func(ctx router.Context) error {
		input := queries.SummaryChartInput{
			Code: ctx.Param("code"),
			Key:  ctx.Param("key"),
			Kind: datagrid.ChartKind(ctx.Query("kind")),
		}
		chart, err := api.Chart(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, chart)
	}))

	r.Get(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		q, err := api.SavedQuery(ctx.Context(), queries.SavedQueryInput{Viewer: resolver(ctx), Code: ctx.Param("code")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, q)
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SavePreferencesInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Code = ctx.Param("code")
		payload.Viewer = resolver(ctx)
		if err := api.Preferences(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RefreshGridInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Refresh(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *datagrid.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe("")
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

type definitionReader interface {
	Definition(code string) (datagrid.GridDefinition, error)
}

// parseQuery reads query state from the request, limited to the filterable
// columns of grid code.
func parseQuery(ctx router.Context, defs definitionReader, code string) (datagrid.Query, int, error) {
	def, err := defs.Definition(code)
	if err != nil {
		return datagrid.Query{}, httpapi.StatusFor(err), err
	}
	q, err := httpapi.ParseQuery(func(name string) string { return ctx.Query(name) }, httpapi.FilterKeys(def))
	if err != nil {
		return datagrid.Query{}, http.StatusBadRequest, err
	}
	return q, http.StatusOK, nil
}

func defaultViewerResolver(ctx router.Context) datagrid.ViewerContext {
	var viewer datagrid.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, httpapi.ErrorBody(err))
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/grids/:code"
	}
	if routes.View == "" {
		routes.View = "/grids/:code/view"
	}
	if routes.Rows == "" {
		routes.Rows = "/grids/:code/rows"
	}
	if routes.Row == "" {
		routes.Row = "/grids/:code/rows/:id"
	}
	if routes.Export == "" {
		routes.Export = "/grids/:code/export"
	}
	if routes.Filters == "" {
		routes.Filters = "/grids/:code/filters/:key"
	}
	if routes.Chart == "" {
		routes.Chart = "/grids/:code/charts/:key"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/grids/:code/preferences"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/grid-events/refresh"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/grid-events/ws"
	}
	return routes
}
