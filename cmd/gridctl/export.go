package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/queries"
)

type exportCmd struct {
	Source gridFlags  `embed:""`
	Params queryFlags `embed:""`
	Grid   string     `arg:"" optional:"" default:"demo.users" help:"Grid code to export."`
	Format string     `default:"csv" enum:"csv,json,yaml,yml" help:"Export format."`
	Out    string     `short:"o" type:"path" help:"Write to this file instead of stdout."`
}

func (cmd *exportCmd) Run(ctx context.Context, logger *slog.Logger) error {
	return cmd.run(ctx, logger, os.Stdout)
}

func (cmd *exportCmd) run(ctx context.Context, logger *slog.Logger, stdout io.Writer) error {
	format, err := datagrid.ParseExportFormat(cmd.Format)
	if err != nil {
		return err
	}
	svc := newService(logger, nil)
	if err := cmd.Source.load(ctx, svc, logger); err != nil {
		return err
	}
	out, err := queries.NewExportQuery(svc).Query(ctx, queries.ExportInput{
		Code:   cmd.Grid,
		Query:  cmd.Params.query(),
		Format: format,
	})
	if err != nil {
		return err
	}
	if cmd.Out == "" {
		_, err := stdout.Write(out.Data)
		return err
	}
	if err := os.WriteFile(cmd.Out, out.Data, 0o644); err != nil {
		return fmt.Errorf("gridctl: write export: %w", err)
	}
	logger.InfoContext(ctx, "export written", "path", cmd.Out, "format", string(out.Format), "bytes", len(out.Data))
	return nil
}
