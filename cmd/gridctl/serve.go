package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/goliatone/go-datagrid/components/datagrid/gorouter"
	"github.com/goliatone/go-datagrid/components/datagrid/httpapi"
	"github.com/goliatone/go-datagrid/pkg/source"
)

type serveCmd struct {
	Source   gridFlags `embed:""`
	Addr     string    `default:":8080" env:"GRIDCTL_ADDR" help:"Listen address."`
	BasePath string    `name:"base-path" default:"/admin" help:"Prefix for every grid route."`
	Watch    bool      `help:"Reload the manifest when it changes on disk."`
	User     string    `default:"admin" help:"Viewer user id used for saved preferences."`
}

func (cmd *serveCmd) Run(ctx context.Context, logger *slog.Logger) error {
	hook := datagrid.NewBroadcastHook()
	svc := newService(logger, hook)
	if err := cmd.Source.load(ctx, svc, logger); err != nil {
		return err
	}
	renderer, err := datagrid.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("gridctl: template renderer: %w", err)
	}
	controller := datagrid.NewController(datagrid.ControllerOptions{
		Service:  svc,
		Renderer: renderer,
	})
	telemetry := datagrid.SlogTelemetry{Logger: logger, Level: slog.LevelInfo}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        httpapi.NewHandlers(svc, telemetry),
		Broadcast:  hook,
		BasePath:   cmd.BasePath,
		ViewerResolver: func(router.Context) datagrid.ViewerContext {
			return datagrid.ViewerContext{UserID: cmd.User, Roles: []string{"admin"}}
		},
	}); err != nil {
		return fmt.Errorf("gridctl: register routes: %w", err)
	}

	if cmd.Watch && cmd.Source.Manifest != "" {
		if err := watchManifest(ctx, cmd.Source.Manifest, svc, logger); err != nil {
			return fmt.Errorf("gridctl: watch manifest: %w", err)
		}
	}

	for _, def := range svc.Definitions() {
		logger.InfoContext(ctx, "grid ready", "code", def.Code, "url", "http://localhost"+cmd.Addr+cmd.BasePath+"/grids/"+def.Code)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(cmd.Addr)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.InfoContext(ctx, "shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

// watchManifest re-applies the manifest whenever it is written. The parent
// directory is watched because editors often replace files on save.
func watchManifest(ctx context.Context, path string, svc *datagrid.Service, logger *slog.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				if err := reloadManifest(ctx, abs, svc); err != nil {
					logger.WarnContext(ctx, "manifest reload failed", "path", abs, "err", err)
					continue
				}
				logger.InfoContext(ctx, "manifest reloaded", "path", abs)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.WarnContext(ctx, "error watching manifest", "err", err)
			}
		}
	}()
	return nil
}

// reloadManifest registers the manifest grids again and refetches remote
// rows, so remote grids are not left empty after a reload.
func reloadManifest(ctx context.Context, path string, svc *datagrid.Service) error {
	doc, err := datagrid.ReadManifest(path)
	if err != nil {
		return err
	}
	if err := doc.Apply(ctx, svc); err != nil {
		return err
	}
	sources, err := source.FromManifest(doc, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return err
	}
	return svc.LoadSources(ctx, sources)
}
