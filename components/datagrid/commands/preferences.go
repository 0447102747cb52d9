package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// SavePreferencesInput captures a viewer's query state and column layout for
// a grid. A nil Query leaves the saved query alone; nil Order and Hidden
// leave the layout alone.
type SavePreferencesInput struct {
	Viewer datagrid.ViewerContext `json:"viewer"`
	Code   string                 `json:"code"`
	Query  *datagrid.Query        `json:"query,omitempty"`
	Order  []string               `json:"column_order,omitempty"`
	Hidden []string               `json:"hidden_columns,omitempty"`
}

type preferenceService interface {
	SaveQuery(ctx context.Context, viewer datagrid.ViewerContext, code string, q datagrid.Query) error
	SaveColumnLayout(ctx context.Context, viewer datagrid.ViewerContext, code string, order []string, hidden map[string]bool) error
}

// SavePreferencesCommand persists per-viewer grid preferences.
type SavePreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewSavePreferencesCommand creates the command.
func NewSavePreferencesCommand(service preferenceService, telemetry Telemetry) *SavePreferencesCommand {
	return &SavePreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SavePreferencesInput] = (*SavePreferencesCommand)(nil)

// Execute stores the provided preferences for the viewer.
func (c *SavePreferencesCommand) Execute(ctx context.Context, msg SavePreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("preferences command requires viewer user id")
	}
	if msg.Query != nil {
		if err := c.service.SaveQuery(ctx, msg.Viewer, msg.Code, *msg.Query); err != nil {
			return err
		}
	}
	if msg.Order != nil || msg.Hidden != nil {
		hidden := make(map[string]bool, len(msg.Hidden))
		for _, key := range msg.Hidden {
			hidden[key] = true
		}
		if err := c.service.SaveColumnLayout(ctx, msg.Viewer, msg.Code, msg.Order, hidden); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "datagrid.command.preferences", map[string]any{
		"code":   msg.Code,
		"viewer": msg.Viewer.UserID,
	})
	return nil
}
