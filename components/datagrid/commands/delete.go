package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// DeleteRowInput identifies the row to remove.
type DeleteRowInput struct {
	Code string `json:"code"`
	ID   string `json:"id"`
}

type deleteService interface {
	DeleteRow(ctx context.Context, code, id string) error
}

// DeleteRowCommand removes rows by id.
type DeleteRowCommand struct {
	service   deleteService
	telemetry Telemetry
}

// NewDeleteRowCommand creates the command.
func NewDeleteRowCommand(service deleteService, telemetry Telemetry) *DeleteRowCommand {
	return &DeleteRowCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteRowInput] = (*DeleteRowCommand)(nil)

// Execute delegates to the grid service.
func (c *DeleteRowCommand) Execute(ctx context.Context, msg DeleteRowInput) error {
	if c.service == nil {
		return errors.New("delete row command requires service")
	}
	if msg.ID == "" {
		return errors.New("delete row command requires row id")
	}
	if err := c.service.DeleteRow(ctx, msg.Code, msg.ID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datagrid.command.delete", map[string]any{
		"code":   msg.Code,
		"row_id": msg.ID,
	})
	return nil
}
