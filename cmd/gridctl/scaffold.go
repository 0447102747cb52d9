package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

type scaffoldCmd struct {
	ManifestPath string   `name:"manifest" required:"" type:"path" help:"Path to the grid manifest YAML file to create or update."`
	Code         string   `required:"" help:"Grid code (e.g. acme.orders)."`
	Name         string   `help:"Display name (defaults to a title-cased code segment)."`
	Description  string   `help:"One-line description."`
	Column       []string `short:"c" required:"" help:"Column as key[:type], type one of text, number, date, boolean (repeatable)."`
	Filterable   []string `help:"Column keys rendered with a filter dropdown."`
	Required     []string `help:"Column keys that must be non-empty on add and edit."`
	PageSize     int      `name:"page-size" help:"Default rows per page."`
	Overwrite    bool     `help:"Replace an existing grid with the same code."`
}

func (cmd *scaffoldCmd) Run(ctx context.Context, logger *slog.Logger) error {
	return cmd.run(ctx, logger, os.Stdout)
}

func (cmd *scaffoldCmd) run(ctx context.Context, logger *slog.Logger, out io.Writer) error {
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("gridctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	def, err := cmd.definition()
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(doc.Grids, func(g datagrid.ManifestGrid) bool { return g.Code == def.Code })
	switch {
	case idx >= 0 && !cmd.Overwrite:
		return fmt.Errorf("gridctl: manifest already defines grid %s (use --overwrite to replace)", def.Code)
	case idx >= 0:
		doc.Grids[idx] = datagrid.ManifestGrid{GridDefinition: def}
	default:
		doc.Grids = append(doc.Grids, datagrid.ManifestGrid{GridDefinition: def})
	}
	slices.SortFunc(doc.Grids, func(a, b datagrid.ManifestGrid) int {
		return strings.Compare(a.Code, b.Code)
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	logger.DebugContext(ctx, "manifest updated", "path", manifestPath, "grids", len(doc.Grids))
	_, err = fmt.Fprintf(out, "✓ Added %s to %s (%d columns)\n", def.Code, manifestPath, len(def.Columns))
	return err
}

// definition builds the grid from flags. An id column is prepended, hidden,
// when the flags do not declare one.
func (cmd *scaffoldCmd) definition() (datagrid.GridDefinition, error) {
	def := datagrid.GridDefinition{
		Code:        strings.TrimSpace(cmd.Code),
		Name:        cmd.Name,
		Description: cmd.Description,
		PageSize:    cmd.PageSize,
	}
	if def.Name == "" {
		def.Name = deriveLabel(lastSegment(def.Code))
	}
	for _, raw := range cmd.Column {
		col, err := parseColumn(raw)
		if err != nil {
			return datagrid.GridDefinition{}, err
		}
		col.Filterable = slices.Contains(cmd.Filterable, col.Key)
		col.Required = slices.Contains(cmd.Required, col.Key)
		def.Columns = append(def.Columns, col)
	}
	if _, ok := def.Column(datagrid.IDField); !ok {
		id := datagrid.Column{Key: datagrid.IDField, Label: "ID", Hidden: true}
		def.Columns = append([]datagrid.Column{id}, def.Columns...)
	}
	if err := datagrid.CheckDefinition(def); err != nil {
		return datagrid.GridDefinition{}, err
	}
	return def, nil
}

// parseColumn reads key[:type]. Columns are sortable and editable; the id
// column is only sortable.
func parseColumn(raw string) (datagrid.Column, error) {
	key, kind, _ := strings.Cut(strings.TrimSpace(raw), ":")
	key = strings.TrimSpace(key)
	if key == "" {
		return datagrid.Column{}, fmt.Errorf("gridctl: column %q is missing a key", raw)
	}
	col := datagrid.Column{
		Key:      key,
		Label:    deriveLabel(key),
		Sortable: true,
		Editable: key != datagrid.IDField,
	}
	switch vt := datagrid.ValueType(strings.ToLower(strings.TrimSpace(kind))); vt {
	case "":
	case datagrid.ValueText, datagrid.ValueNumber, datagrid.ValueDate, datagrid.ValueBoolean:
		col.ValueType = vt
	default:
		return datagrid.Column{}, fmt.Errorf("gridctl: column %s has unknown type %q", key, kind)
	}
	return col, nil
}

// deriveLabel turns keys like join_date or joinDate into "Join Date".
func deriveLabel(key string) string {
	return strcase.ToCase(key, strcase.TitleCase, ' ')
}

func lastSegment(code string) string {
	parts := strings.Split(code, ".")
	return parts[len(parts)-1]
}

func loadOrInitManifest(path string) (*datagrid.GridManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &datagrid.GridManifestDocument{
				Version: datagrid.ManifestVersion,
				Grids:   []datagrid.ManifestGrid{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("gridctl: stat manifest: %w", err)
	}
	return datagrid.ReadManifest(path)
}

func writeManifest(path string, doc *datagrid.GridManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("gridctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("gridctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return datagrid.EncodeManifest(file, doc)
}
