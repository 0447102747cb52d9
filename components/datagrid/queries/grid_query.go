package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// GridQueryInput identifies a page request against a grid.
type GridQueryInput struct {
	Code  string         `json:"code"`
	Query datagrid.Query `json:"query"`
}

type gridService interface {
	Query(ctx context.Context, code string, q datagrid.Query) (datagrid.Result, error)
}

// GridQuery computes the visible page of a grid.
type GridQuery struct {
	service gridService
}

// NewGridQuery builds the query.
func NewGridQuery(service gridService) *GridQuery {
	return &GridQuery{service: service}
}

var _ gocommand.Querier[GridQueryInput, datagrid.Result] = (*GridQuery)(nil)

// Query runs search, filter, sort and paginate for the grid.
func (q *GridQuery) Query(ctx context.Context, input GridQueryInput) (datagrid.Result, error) {
	return q.service.Query(ctx, input.Code, input.Query)
}

// FilterOptionsInput names the column whose distinct values are requested.
type FilterOptionsInput struct {
	Code string `json:"code"`
	Key  string `json:"key"`
}

type filterOptionsService interface {
	FilterOptions(ctx context.Context, code, key string) ([]string, error)
}

// FilterOptionsQuery lists the dropdown choices of a filterable column.
type FilterOptionsQuery struct {
	service filterOptionsService
}

// NewFilterOptionsQuery builds the query.
func NewFilterOptionsQuery(service filterOptionsService) *FilterOptionsQuery {
	return &FilterOptionsQuery{service: service}
}

var _ gocommand.Querier[FilterOptionsInput, []string] = (*FilterOptionsQuery)(nil)

func (q *FilterOptionsQuery) Query(ctx context.Context, input FilterOptionsInput) ([]string, error) {
	return q.service.FilterOptions(ctx, input.Code, input.Key)
}

// SavedQueryInput identifies a viewer's saved state for a grid.
type SavedQueryInput struct {
	Viewer datagrid.ViewerContext
	Code   string
}

type savedQueryService interface {
	LoadQuery(ctx context.Context, viewer datagrid.ViewerContext, code string) (datagrid.Query, error)
}

// SavedQueryQuery returns the query state a viewer last saved.
type SavedQueryQuery struct {
	service savedQueryService
}

// NewSavedQueryQuery builds the query.
func NewSavedQueryQuery(service savedQueryService) *SavedQueryQuery {
	return &SavedQueryQuery{service: service}
}

var _ gocommand.Querier[SavedQueryInput, datagrid.Query] = (*SavedQueryQuery)(nil)

func (q *SavedQueryQuery) Query(ctx context.Context, input SavedQueryInput) (datagrid.Query, error) {
	return q.service.LoadQuery(ctx, input.Viewer, input.Code)
}
