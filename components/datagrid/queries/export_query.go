package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// ExportInput selects the rows and format of an export.
type ExportInput struct {
	Code   string                `json:"code"`
	Query  datagrid.Query        `json:"query"`
	Format datagrid.ExportFormat `json:"format"`
}

// ExportOutput carries the serialized rows and how to deliver them.
type ExportOutput struct {
	Data        []byte
	Format      datagrid.ExportFormat
	ContentType string
	Filename    string
}

type exportService interface {
	Export(ctx context.Context, code string, q datagrid.Query, format datagrid.ExportFormat) ([]byte, error)
}

// ExportQuery serializes every matched row of a grid, ignoring pagination.
type ExportQuery struct {
	service exportService
}

// NewExportQuery builds the query.
func NewExportQuery(service exportService) *ExportQuery {
	return &ExportQuery{service: service}
}

var _ gocommand.Querier[ExportInput, ExportOutput] = (*ExportQuery)(nil)

// Query exports the grid. An empty format exports CSV.
func (q *ExportQuery) Query(ctx context.Context, input ExportInput) (ExportOutput, error) {
	format := input.Format
	if format == "" {
		format = datagrid.ExportCSV
	}
	data, err := q.service.Export(ctx, input.Code, input.Query, format)
	if err != nil {
		return ExportOutput{}, err
	}
	return ExportOutput{
		Data:        data,
		Format:      format,
		ContentType: format.ContentType(),
		Filename:    input.Code + "." + format.Extension(),
	}, nil
}
