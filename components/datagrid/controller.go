package datagrid

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const defaultGridTemplate = "grid"

// GridReader is the slice of Service the controller needs.
type GridReader interface {
	Definition(code string) (GridDefinition, error)
	Columns(ctx context.Context, viewer ViewerContext, code string) ([]Column, error)
	Query(ctx context.Context, code string, q Query) (Result, error)
	FilterOptions(ctx context.Context, code, key string) ([]string, error)
}

// ControllerOptions configures the grid controller.
type ControllerOptions struct {
	Service  GridReader
	Renderer Renderer
	Template string
}

// Controller builds view models for HTML and JSON transports.
type Controller struct {
	service  GridReader
	renderer Renderer
	template string
}

// NewController wires the service and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultGridTemplate
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
	}
}

// GridView is the render-ready state of one grid page.
type GridView struct {
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Columns       []Column       `json:"columns"`
	Rows          []ViewRow      `json:"rows"`
	Filters       []ViewFilter   `json:"filters,omitempty"`
	Query         Query          `json:"query"`
	Page          PageInfo       `json:"page"`
	Total         int            `json:"total"`
	Summary       string         `json:"summary"`
	SortKey       string         `json:"sort_key,omitempty"`
	SortDirection SortDirection  `json:"sort_direction,omitempty"`
	Data          []Row          `json:"data"`
	Meta          map[string]any `json:"meta,omitempty"`
}

// ViewRow is a row flattened to display strings in column order.
type ViewRow struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

// ViewFilter describes a filter dropdown.
type ViewFilter struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Selected string   `json:"selected"`
	Options  []string `json:"options"`
}

// Definition returns the metadata of grid code.
func (c *Controller) Definition(code string) (GridDefinition, error) {
	if c.service == nil {
		return GridDefinition{}, errors.New("datagrid: controller service is not configured")
	}
	return c.service.Definition(code)
}

// View resolves the page of grid code that q selects for viewer.
func (c *Controller) View(ctx context.Context, viewer ViewerContext, code string, q Query) (GridView, error) {
	if c.service == nil {
		return GridView{}, errors.New("datagrid: controller service is not configured")
	}
	def, err := c.service.Definition(code)
	if err != nil {
		return GridView{}, err
	}
	columns, err := c.service.Columns(ctx, viewer, code)
	if err != nil {
		return GridView{}, err
	}
	result, err := c.service.Query(ctx, code, q)
	if err != nil {
		return GridView{}, err
	}
	visible := VisibleColumns(columns)
	view := GridView{
		Code:          def.Code,
		Name:          def.Name,
		Description:   def.Description,
		Columns:       visible,
		Rows:          make([]ViewRow, len(result.Rows)),
		Query:         q,
		Page:          result.Page,
		Total:         result.Total,
		Summary:       PageSummary(result.Page, result.Total),
		SortKey:       q.SortKey,
		SortDirection: q.SortDirection,
		Data:          result.Rows,
	}
	for i, row := range result.Rows {
		cells := make([]string, len(visible))
		for j, col := range visible {
			cells[j] = stringify(row[col.Key])
		}
		view.Rows[i] = ViewRow{ID: row.ID(), Cells: cells}
	}
	for _, col := range visible {
		if !col.Filterable {
			continue
		}
		options, err := c.service.FilterOptions(ctx, code, col.Key)
		if err != nil {
			return GridView{}, err
		}
		selected := q.Filters[col.Key]
		if selected == "" {
			selected = FilterAll
		}
		view.Filters = append(view.Filters, ViewFilter{
			Key:      col.Key,
			Label:    columnLabel(col),
			Selected: selected,
			Options:  options,
		})
	}
	return view, nil
}

// RenderTemplate renders the grid page through the configured renderer.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, code string, q Query, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("datagrid: renderer not configured")
	}
	view, err := c.View(ctx, viewer, code, q)
	if err != nil {
		return err
	}
	if _, err := c.renderer.Render(c.template, map[string]any{"grid": view, "viewer": viewer}, out); err != nil {
		return fmt.Errorf("datagrid: render %s: %w", code, err)
	}
	return nil
}

// PageSummary formats the "Showing X to Y of N" footer line.
func PageSummary(info PageInfo, total int) string {
	return fmt.Sprintf("Showing %d to %d of %d", info.From, info.To, total)
}
