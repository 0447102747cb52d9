package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/queries"
)

type queryCmd struct {
	Source gridFlags  `embed:""`
	Params queryFlags `embed:""`
	Grid   string     `arg:"" optional:"" default:"demo.users" help:"Grid code to query."`
	JSON   bool       `help:"Print the result as JSON instead of a table."`
}

func (cmd *queryCmd) Run(ctx context.Context, logger *slog.Logger) error {
	return cmd.run(ctx, logger, os.Stdout)
}

func (cmd *queryCmd) run(ctx context.Context, logger *slog.Logger, out io.Writer) error {
	svc := newService(logger, nil)
	if err := cmd.Source.load(ctx, svc, logger); err != nil {
		return err
	}
	def, err := svc.Definition(cmd.Grid)
	if err != nil {
		return err
	}
	result, err := queries.NewGridQuery(svc).Query(ctx, queries.GridQueryInput{Code: cmd.Grid, Query: cmd.Params.query()})
	if err != nil {
		return err
	}
	if cmd.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return writeTable(out, datagrid.VisibleColumns(def.Columns), result)
}

// writeTable prints the page as aligned columns followed by the summary line.
func writeTable(out io.Writer, columns []datagrid.Column, result datagrid.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Label
		if header[i] == "" {
			header[i] = col.Key
		}
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cellText(row[col.Key])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, datagrid.PageSummary(result.Page, result.Total))
	return err
}

func cellText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
