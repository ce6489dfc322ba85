package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/urfave/cli/v2"

	"github.com/kbukum/smartsearch/imagequery"
	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/observability"
	"github.com/kbukum/smartsearch/search"
	"github.com/kbukum/smartsearch/searchinput"
	"github.com/kbukum/smartsearch/server"
	"github.com/kbukum/smartsearch/sse"
	"github.com/kbukum/smartsearch/version"
)

const shutdownTimeout = 15 * time.Second

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"), c.String("env-file"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	logger.Init(&cfg.Logging)
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := app.srv.Start(ctx); err != nil {
		app.shutdown(log)
		return err
	}

	log.Info("smartsearch ready", logger.Fields(
		"addr", app.srv.Addr(),
		"version", cfg.Version,
		"build", version.GetFullVersion(),
		"default_provider", cfg.Providers.Default,
		"workers", cfg.Workers.PoolSize,
	))
	<-ctx.Done()
	log.Info("shutdown signal received")
	return app.shutdown(log)
}

type application struct {
	srv       *server.Server
	hub       *sse.Hub
	sessions  *server.Sessions
	pool      *ants.Pool
	telemetry observability.ShutdownFunc
}

// build wires the process: telemetry, providers, upstream clients, the
// shared worker pool, the event hub, the session manager and the routes.
func build(ctx context.Context, cfg *Config, log *logger.Logger) (*application, error) {
	ver := cfg.Version
	if ver == "" {
		ver = version.GetShortVersion()
	}
	telemetry, err := observability.Setup(ctx, cfg.Name, ver, cfg.Environment, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	providers, err := searchinput.BuildProviders(cfg.Config, log, metrics)
	if err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}
	images, err := imagequery.New(cfg.ImageSearch, log)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	searcher, err := search.New(cfg.Search, log)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	pool, err := ants.NewPool(cfg.Workers.PoolSize, ants.WithPanicHandler(func(p any) {
		log.Error("pipeline worker panicked", logger.Fields(logger.FieldError, fmt.Sprint(p)))
	}))
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}

	hub := sse.NewHub(log)
	hub.Start()

	sessions := server.NewSessions(cfg.Config, server.SessionDeps{
		Providers: providers,
		Images:    images,
		Search:    searcher,
		Events:    hub,
		Pool:      pool,
		Metrics:   metrics,
	}, cfg.Server.MaxSessions, log)

	srv := server.New(cfg.Server, log)
	srv.RegisterDefaultEndpoints(cfg.Name, ver, server.ProviderHealth(providers))
	server.NewHandlers(sessions, hub, cfg.ImageSearch.MaxBytes, log).Register(srv.API())

	return &application{
		srv:       srv,
		hub:       hub,
		sessions:  sessions,
		pool:      pool,
		telemetry: telemetry,
	}, nil
}

// shutdown stops accepting requests, closes sessions and event streams,
// drains the worker pool and flushes telemetry.
func (a *application) shutdown(log *logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	a.hub.Stop()
	if err := a.srv.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	a.sessions.CloseAll()
	if err := a.pool.ReleaseTimeout(shutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("worker pool: %w", err))
	}
	if err := a.telemetry(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		log.Error("shutdown finished with errors", logger.ErrorFields("shutdown", err))
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func checkConfigCommand(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"), c.String("env-file"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	providers, err := searchinput.BuildProviders(cfg.Config, logger.NewDefault(serviceName), nil)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "config ok: %s (%s)\n", cfg.Name, cfg.Environment)
	fmt.Fprintf(w, "search: %s\nimage search: %s\n", cfg.Search.URL, cfg.ImageSearch.URL)
	for _, name := range providers.List() {
		p, _ := providers.Get(name)
		status := "missing credential"
		if p.HasCredential() {
			status = "credential configured"
		}
		marker := " "
		if name == cfg.Providers.Default {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s: %s\n", marker, name, status)
	}
	return nil
}
