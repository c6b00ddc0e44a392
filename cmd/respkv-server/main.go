package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
	"github.com/yndnr/respkv-go/internal/infra/confloader"
	"github.com/yndnr/respkv-go/internal/infra/shutdown"
	"github.com/yndnr/respkv-go/internal/server/config"
	"github.com/yndnr/respkv-go/internal/server/httpserver"
	"github.com/yndnr/respkv-go/internal/server/redisserver"
	"github.com/yndnr/respkv-go/internal/storage/memory"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "In-memory key-value server speaking RESP",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "RESP listen address (overrides server.redis.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides log.level)",
			},
		},
		Action: run,
	}
}

// flagOverrides maps explicitly set flags onto config keys. Flags win over
// the file and the environment.
func flagOverrides(c *cli.Context) map[string]any {
	m := make(map[string]any)
	if c.IsSet("addr") {
		m["server.redis.addr"] = c.String("addr")
	}
	if c.IsSet("log-level") {
		m["log.level"] = c.String("log-level")
	}
	return m
}

func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithOverrides(flagOverrides(c)),
	)
	cfg, err := loadConfig(loader)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogger := logger.Slog(log)

	log.Info("starting respkv-server",
		"version", buildinfo.Version,
		"config", loader.FilePath(),
	)

	store := memory.New()
	metrics := metric.NewRegistry()
	metrics.MustRegister(metric.NewCollector(store))

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sh := shutdown.NewHandler(shutdownTimeout, slogger)

	// Hooks run in reverse order: the RESP listener stops first.
	sweeper := memory.NewSweeper(store, cfg.Storage.SweepInterval, slogger)
	sweeper.OnSweep = func(removed int) {
		metrics.ExpiredSwept.Add(float64(removed))
	}
	sweeper.Start()
	sh.OnShutdown("sweeper", func(context.Context) error {
		sweeper.Stop()
		return nil
	})

	rc := cfg.Server.Redis
	srv := redisserver.New(&redisserver.Config{
		Address:        rc.Addr,
		ReadTimeout:    rc.ReadTimeout,
		WriteTimeout:   rc.WriteTimeout,
		IdleTimeout:    rc.IdleTimeout,
		RateLimit:      rc.RateLimit,
		MaxConnections: rc.MaxConnections,
	}, store, metrics, slogger)

	if cfg.Server.Admin.Enabled {
		admin := httpserver.New(cfg.Server.Admin.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: metrics,
			Conns:   srv,
			Keys:    store,
			Logger:  slogger,
		}), slogger)
		if err := admin.Start(); err != nil {
			return fmt.Errorf("start admin server: %w", err)
		}
		sh.OnShutdown("admin", admin.Shutdown)
	}

	if err := srv.Start(ctx); err != nil {
		_ = sh.Shutdown()
		return fmt.Errorf("start resp server: %w", err)
	}
	sh.OnShutdown("resp", srv.Shutdown)

	if path := loader.FilePath(); path != "" {
		r := newReloader(loader, cfg, srv, slogger)
		w, err := r.watch(path)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			sh.OnShutdown("config watcher", func(context.Context) error {
				return w.Stop()
			})
		}
	}

	log.Info("respkv-server ready", "addr", srv.Addr().String())
	return sh.Wait(ctx)
}
