package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// RefreshGridInput emits a refresh notification for a grid.
type RefreshGridInput struct {
	Event datagrid.GridEvent `json:"event"`
}

type refreshNotifier interface {
	NotifyGridUpdated(ctx context.Context, event datagrid.GridEvent) error
}

// RefreshGridCommand triggers refresh hooks without touching rows.
type RefreshGridCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshGridCommand creates the command.
func NewRefreshGridCommand(service refreshNotifier, telemetry Telemetry) *RefreshGridCommand {
	return &RefreshGridCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshGridInput] = (*RefreshGridCommand)(nil)

// Execute notifies the service's refresh hooks.
func (c *RefreshGridCommand) Execute(ctx context.Context, msg RefreshGridInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = "refresh"
	}
	if err := c.service.NotifyGridUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "datagrid.command.refresh", map[string]any{
		"code": msg.Event.Code,
	})
	return nil
}
