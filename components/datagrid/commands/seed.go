package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-datagrid/components/datagrid"
)

// defaultDemoRows matches the size of the bundled demo directory.
const defaultDemoRows = 50

// SeedGridsInput controls bootstrap behavior.
type SeedGridsInput struct {
	Manifest *datagrid.GridManifestDocument
	Sources  map[string]datagrid.RowSource
	Demo     bool
	DemoRows int
	DemoSeed uint64
}

type seedService interface {
	Register(ctx context.Context, def datagrid.GridDefinition, rows []datagrid.Row) error
	LoadSources(ctx context.Context, sources map[string]datagrid.RowSource) error
}

// SeedGridsCommand registers manifest grids, remote sources and, optionally,
// the demo users grid.
type SeedGridsCommand struct {
	service   seedService
	telemetry Telemetry
}

// NewSeedGridsCommand wires dependencies.
func NewSeedGridsCommand(service seedService, telemetry Telemetry) *SeedGridsCommand {
	return &SeedGridsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedGridsInput] = (*SeedGridsCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedGridsCommand) Execute(ctx context.Context, msg SeedGridsInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	grids := 0
	if msg.Manifest != nil {
		for _, grid := range msg.Manifest.Grids {
			if err := c.service.Register(ctx, grid.GridDefinition, grid.Rows); err != nil {
				return err
			}
			grids++
		}
	}
	if len(msg.Sources) > 0 {
		if err := c.service.LoadSources(ctx, msg.Sources); err != nil {
			return err
		}
	}
	if msg.Demo {
		n := msg.DemoRows
		if n <= 0 {
			n = defaultDemoRows
		}
		if err := c.service.Register(ctx, datagrid.DemoUsersDefinition(), datagrid.DemoUsers(n, msg.DemoSeed)); err != nil {
			return err
		}
		grids++
	}
	c.telemetry.Record(ctx, "datagrid.seed", map[string]any{
		"grids":   grids,
		"sources": len(msg.Sources),
		"demo":    msg.Demo,
	})
	return nil
}
