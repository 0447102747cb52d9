package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// AddRowInput carries a partial row for grid Code. When Result is set it
// receives the created row.
type AddRowInput struct {
	Code   string        `json:"code"`
	Row    datagrid.Row  `json:"row"`
	Result *datagrid.Row `json:"-"`
}

type addService interface {
	AddRow(ctx context.Context, code string, partial datagrid.Row) (datagrid.Row, error)
}

// AddRowCommand wraps Service.AddRow so transports can create rows without
// linking directly against the service.
type AddRowCommand struct {
	service   addService
	telemetry Telemetry
}

// NewAddRowCommand creates a command instance.
func NewAddRowCommand(service addService, telemetry Telemetry) *AddRowCommand {
	return &AddRowCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddRowInput] = (*AddRowCommand)(nil)

// Execute delegates to the grid service.
func (c *AddRowCommand) Execute(ctx context.Context, msg AddRowInput) error {
	if c.service == nil {
		return errors.New("add row command requires service")
	}
	created, err := c.service.AddRow(ctx, msg.Code, msg.Row)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = created
	}
	c.telemetry.Record(ctx, "datagrid.command.add", map[string]any{
		"code":   msg.Code,
		"row_id": created.ID(),
	})
	return nil
}
