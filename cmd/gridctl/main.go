package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

type cli struct {
	LogLevel string `name:"log-level" enum:"debug,info,warn,error" default:"info" env:"GRIDCTL_LOG_LEVEL" help:"Minimum log level (debug, info, warn, error)."`

	Query    queryCmd    `cmd:"" help:"Print one page of a grid after search, filter and sort."`
	Export   exportCmd   `cmd:"" help:"Export every matching row of a grid as csv, json or yaml."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a grid definition to a manifest."`
	Serve    serveCmd    `cmd:"" help:"Serve grids over HTTP with live refresh events."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := &slog.LevelVar{}
	logger := newLogger(level)
	slog.SetDefault(logger)

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("gridctl"),
		kong.Description("Query, export and serve data grids defined in YAML manifests."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(logger),
	)
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		kctx.FatalIfErrorf(fmt.Errorf("gridctl: log level: %w", err))
	}
	kctx.FatalIfErrorf(kctx.Run())
}

func newLogger(level slog.Leveler) *slog.Logger {
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}
