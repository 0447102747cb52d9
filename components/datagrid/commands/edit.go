package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// EditRowInput merges Changes onto row ID of grid Code.
type EditRowInput struct {
	Code    string        `json:"code"`
	ID      string        `json:"id"`
	Changes datagrid.Row  `json:"changes"`
	Result  *datagrid.Row `json:"-"`
}

type editService interface {
	EditRow(ctx context.Context, code, id string, partial datagrid.Row) (datagrid.Row, error)
}

// EditRowCommand updates a single row.
type EditRowCommand struct {
	service   editService
	telemetry Telemetry
}

// NewEditRowCommand creates the command.
func NewEditRowCommand(service editService, telemetry Telemetry) *EditRowCommand {
	return &EditRowCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[EditRowInput] = (*EditRowCommand)(nil)

// Execute delegates to the grid service.
func (c *EditRowCommand) Execute(ctx context.Context, msg EditRowInput) error {
	if c.service == nil {
		return errors.New("edit row command requires service")
	}
	if msg.ID == "" {
		return errors.New("edit row command requires row id")
	}
	updated, err := c.service.EditRow(ctx, msg.Code, msg.ID, msg.Changes)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = updated
	}
	c.telemetry.Record(ctx, "datagrid.command.edit", map[string]any{
		"code":   msg.Code,
		"row_id": msg.ID,
		"fields": len(msg.Changes),
	})
	return nil
}
