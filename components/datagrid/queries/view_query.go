package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// GridViewInput requests the presentation model of a grid page.
type GridViewInput struct {
	Viewer datagrid.ViewerContext
	Code   string
	Query  datagrid.Query
}

type viewService interface {
	View(ctx context.Context, viewer datagrid.ViewerContext, code string, q datagrid.Query) (datagrid.GridView, error)
}

// GridViewQuery builds the view model rendered by templates and JSON clients.
type GridViewQuery struct {
	service viewService
}

// NewGridViewQuery builds the query.
func NewGridViewQuery(service viewService) *GridViewQuery {
	return &GridViewQuery{service: service}
}

var _ gocommand.Querier[GridViewInput, datagrid.GridView] = (*GridViewQuery)(nil)

func (q *GridViewQuery) Query(ctx context.Context, input GridViewInput) (datagrid.GridView, error) {
	return q.service.View(ctx, input.Viewer, input.Code, input.Query)
}

// SummaryChartInput names the column and chart kind to summarise.
type SummaryChartInput struct {
	Code string             `json:"code"`
	Key  string             `json:"key"`
	Kind datagrid.ChartKind `json:"kind"`
}

type chartService interface {
	SummaryChart(ctx context.Context, code, key string, kind datagrid.ChartKind) (datagrid.SummaryChart, error)
}

// SummaryChartQuery renders a value-count chart for a column.
type SummaryChartQuery struct {
	service chartService
}

// NewSummaryChartQuery builds the query.
func NewSummaryChartQuery(service chartService) *SummaryChartQuery {
	return &SummaryChartQuery{service: service}
}

var _ gocommand.Querier[SummaryChartInput, datagrid.SummaryChart] = (*SummaryChartQuery)(nil)

func (q *SummaryChartQuery) Query(ctx context.Context, input SummaryChartInput) (datagrid.SummaryChart, error) {
	kind := input.Kind
	if kind == "" {
		kind = datagrid.ChartBar
	}
	return q.service.SummaryChart(ctx, input.Code, input.Key, kind)
}
