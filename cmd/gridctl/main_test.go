package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeriveLabel(t *testing.T) {
	assert.Equal(t, "Join Date", deriveLabel("join_date"))
	assert.Equal(t, "Join Date", deriveLabel("joinDate"))
	assert.Equal(t, "Status", deriveLabel("status"))
}

func TestParseColumn(t *testing.T) {
	col, err := parseColumn("salary:number")
	require.NoError(t, err)
	assert.Equal(t, "salary", col.Key)
	assert.Equal(t, datagrid.ValueNumber, col.ValueType)
	assert.True(t, col.Sortable)

	_, err = parseColumn("salary:money")
	assert.Error(t, err)
	_, err = parseColumn(":number")
	assert.Error(t, err)
}

func TestQueryFlags(t *testing.T) {
	q := queryFlags{
		Search: "ada",
		Filter: map[string]string{"status": "Active", "role": "all"},
		Sort:   "name",
		Desc:   true,
		Page:   3,
	}.query()
	assert.Equal(t, "ada", q.SearchText)
	assert.Equal(t, map[string]string{"status": "Active"}, q.Filters)
	assert.Equal(t, datagrid.SortDesc, q.SortDirection)
	assert.Equal(t, 3, q.Page)
}

func TestScaffoldCreatesManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grids.yaml")
	cmd := &scaffoldCmd{
		ManifestPath: path,
		Code:         "acme.orders",
		Column:       []string{"customer", "total:number", "placed_at:date"},
		Filterable:   []string{"customer"},
		Required:     []string{"customer"},
	}
	var out bytes.Buffer
	require.NoError(t, cmd.run(context.Background(), discardLogger(), &out))
	assert.Contains(t, out.String(), "acme.orders")

	doc, err := datagrid.ReadManifest(path)
	require.NoError(t, err)
	grid, ok := doc.Grid("acme.orders")
	require.True(t, ok)
	assert.Equal(t, "Orders", grid.Name)
	require.Len(t, grid.Columns, 4)
	assert.Equal(t, "id", grid.Columns[0].Key)
	assert.True(t, grid.Columns[0].Hidden)
	assert.Equal(t, "Placed At", grid.Columns[3].Label)
	assert.True(t, grid.Columns[1].Filterable)
	assert.True(t, grid.Columns[1].Required)

	err = cmd.run(context.Background(), discardLogger(), io.Discard)
	require.Error(t, err)
	cmd.Overwrite = true
	require.NoError(t, cmd.run(context.Background(), discardLogger(), io.Discard))
}

func TestQueryCommandPrintsDemoTable(t *testing.T) {
	cmd := &queryCmd{
		Source: gridFlags{DemoRows: 12, Seed: 1},
		Params: queryFlags{Page: 2, PageSize: 5},
		Grid:   datagrid.DemoUsersCode,
	}
	var out bytes.Buffer
	require.NoError(t, cmd.run(context.Background(), discardLogger(), &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "Name"))
	assert.Equal(t, "Showing 6 to 10 of 12", lines[6])
}

func TestExportCommandWritesFile(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "grids.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`version: "1"
grids:
  - code: teams
    columns:
      - key: id
        hidden: true
      - key: name
        label: Name
    rows:
      - id: t1
        name: Platform
      - id: t2
        name: Growth
`), 0o644))
	out := filepath.Join(t.TempDir(), "teams.csv")
	cmd := &exportCmd{
		Source: gridFlags{Manifest: manifest},
		Params: queryFlags{Search: "grow"},
		Grid:   "teams",
		Format: "csv",
		Out:    out,
	}
	require.NoError(t, cmd.run(context.Background(), discardLogger(), io.Discard))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Name\nGrowth\n", string(data))
}
