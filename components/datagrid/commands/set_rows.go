package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// SetRowsInput replaces every row of grid Code.
type SetRowsInput struct {
	Code string         `json:"code"`
	Rows []datagrid.Row `json:"rows"`
}

type setRowsService interface {
	SetRows(ctx context.Context, code string, rows []datagrid.Row) error
}

// SetRowsCommand swaps in a new base set.
type SetRowsCommand struct {
	service   setRowsService
	telemetry Telemetry
}

// NewSetRowsCommand creates the command.
func NewSetRowsCommand(service setRowsService, telemetry Telemetry) *SetRowsCommand {
	return &SetRowsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetRowsInput] = (*SetRowsCommand)(nil)

// Execute delegates to the grid service.
func (c *SetRowsCommand) Execute(ctx context.Context, msg SetRowsInput) error {
	if c.service == nil {
		return errors.New("set rows command requires service")
	}
	if err := c.service.SetRows(ctx, msg.Code, msg.Rows); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datagrid.command.set_rows", map[string]any{
		"code":  msg.Code,
		"count": len(msg.Rows),
	})
	return nil
}
