package goadmin

import (
	"context"
	"errors"

	datagridpkg "github.com/goliatone/go-datagrid/pkg/datagrid"
)

// MenuBuilder ensures grid entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures grid link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the grid service + feature flags into an admin shell.
type Config struct {
	EnableGrids bool
	MenuCode    string
	MenuBuilder MenuBuilder
	Service     *datagridpkg.Service
	RoutePrefix string
	Icon        string
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed grid menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableGrids && cfg.Service == nil {
		return nil, errors.New("goadmin: grid service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.RoutePrefix == "" {
		cfg.RoutePrefix = "admin.grids."
	}
	if cfg.Icon == "" {
		cfg.Icon = "table"
	}
	return &Admin{cfg: cfg}, nil
}

// Grids exposes the configured grid service when enabled.
func (a *Admin) Grids() *datagridpkg.Service {
	if !a.cfg.EnableGrids {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds one menu entry per registered grid, in code order.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableGrids || a.cfg.MenuBuilder == nil {
		return nil
	}
	var errs []error
	for i, def := range a.cfg.Service.Definitions() {
		label := def.Name
		if label == "" {
			label = def.Code
		}
		item := MenuItem{
			Label:    label,
			Route:    a.cfg.RoutePrefix + def.Code,
			Icon:     a.cfg.Icon,
			Position: i,
		}
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
