package datagrid

import (
	core "github.com/goliatone/go-datagrid/components/datagrid"
)

// Service exposes the underlying components/datagrid.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Row, Column, Query and friends mirror the core types.
type (
	Row            = core.Row
	Column         = core.Column
	GridDefinition = core.GridDefinition
	Query          = core.Query
	Result         = core.Result
	PageInfo       = core.PageInfo
	ExportFormat   = core.ExportFormat
	Engine         = core.Engine
	EngineOptions  = core.EngineOptions
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewEngine builds a stateless engine for a column set.
func NewEngine(opts EngineOptions) *Engine {
	return core.NewEngine(opts)
}
