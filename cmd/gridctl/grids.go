package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/commands"
	"github.com/goliatone/go-datagrid/pkg/source"
)

// gridFlags selects where grids come from. Without a manifest the bundled
// demo grid is loaded.
type gridFlags struct {
	Manifest string `short:"m" type:"existingfile" env:"GRIDCTL_MANIFEST" help:"Grid manifest (YAML)."`
	Demo     bool   `help:"Also load the bundled demo users grid."`
	DemoRows int    `name:"demo-rows" default:"50" help:"Number of generated demo rows."`
	Seed     uint64 `default:"1" help:"Seed for the generated demo rows."`
}

// queryFlags maps CLI flags onto grid query state.
type queryFlags struct {
	Search   string            `short:"s" help:"Case-insensitive text searched across every field."`
	Filter   map[string]string `short:"f" help:"Column filter as key=value (repeatable)."`
	Sort     string            `help:"Column key to sort by."`
	Desc     bool              `help:"Sort descending."`
	Page     int               `default:"1" help:"Page number (clamped to the last page)."`
	PageSize int               `name:"page-size" help:"Rows per page (defaults to the grid's page size)."`
}

func (f queryFlags) query() datagrid.Query {
	q := datagrid.Query{
		SearchText:    f.Search,
		SortKey:       f.Sort,
		SortDirection: datagrid.SortAsc,
		Page:          f.Page,
		PageSize:      f.PageSize,
	}
	if f.Desc {
		q.SortDirection = datagrid.SortDesc
	}
	for key, value := range f.Filter {
		q = q.WithFilter(key, value)
	}
	q.Page = f.Page
	return q
}

func newService(logger *slog.Logger, hook datagrid.RefreshHook) *datagrid.Service {
	return datagrid.NewService(datagrid.Options{
		RefreshHook: hook,
		Telemetry:   datagrid.SlogTelemetry{Logger: logger, Level: slog.LevelDebug},
	})
}

// load registers the manifest grids, fetches remote sources and seeds the
// demo grid through the seed command.
func (f gridFlags) load(ctx context.Context, svc *datagrid.Service, logger *slog.Logger) error {
	input := commands.SeedGridsInput{
		Demo:     f.Demo || f.Manifest == "",
		DemoRows: f.DemoRows,
		DemoSeed: f.Seed,
	}
	if f.Manifest != "" {
		doc, err := datagrid.ReadManifest(f.Manifest)
		if err != nil {
			return err
		}
		sources, err := source.FromManifest(doc, &http.Client{Timeout: 30 * time.Second})
		if err != nil {
			return err
		}
		input.Manifest = doc
		input.Sources = sources
		logger.DebugContext(ctx, "manifest loaded", "path", f.Manifest, "grids", len(doc.Grids), "remote", len(sources))
	}
	telemetry := datagrid.SlogTelemetry{Logger: logger, Level: slog.LevelDebug}
	if err := commands.NewSeedGridsCommand(svc, telemetry).Execute(ctx, input); err != nil {
		return fmt.Errorf("gridctl: load grids: %w", err)
	}
	return nil
}
