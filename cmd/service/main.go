package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/multilogin/internal/app"
	"github.com/dropDatabas3/multilogin/internal/config"
	"github.com/dropDatabas3/multilogin/internal/http/server"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"

	// registra los adapters de storage vía init()
	_ "github.com/dropDatabas3/multilogin/internal/store/adapters/all"
)

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $MULTILOGIN_CONFIG o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime config efectiva y termina")
	)
	flag.Parse()

	if *flagEnvFile != "" && fileExists(*flagEnvFile) {
		if err := godotenv.Load(*flagEnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "dotenv: %v\n", err)
		}
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	if cfgPath == "" && fileExists("configs/config.yaml") {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation:\n%v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.Log.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()

	if *flagPrint {
		printConfigSummary(cfg)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.L().Error("service stopped with error", logger.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.L().Info("service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	c, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.L().Warn("cleanup", logger.Err(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	srv := server.New("http", server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, c.Handler)
	g.Go(func() error { return srv.Run(gctx) })

	if cfg.Server.MetricsAddr != "" {
		ms := server.New("metrics", server.Config{
			Addr:            cfg.Server.MetricsAddr,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		}, c.MetricsHandler)
		g.Go(func() error { return ms.Run(gctx) })
	}

	logger.L().Info("multilogin ready",
		logger.String("addr", cfg.Server.Addr),
		logger.String("metrics_addr", cfg.Server.MetricsAddr),
		logger.String("env", cfg.App.Env),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printConfigSummary(c *config.Config) {
	secret := "NOT_SET"
	if c.Admin.JWTSecret != "" {
		secret = "***masked***"
	}
	networks := make([]string, 0, len(c.SocialAuth.Networks))
	for k := range c.SocialAuth.Networks {
		networks = append(networks, k)
	}
	logger.L().Info("config",
		zap.String("server.addr", c.Server.Addr),
		zap.String("server.metrics_addr", c.Server.MetricsAddr),
		zap.Strings("server.cors", c.Server.CORSAllowedOrigins),
		zap.String("storage.driver", c.Storage.Driver),
		zap.String("storage.fs_root", c.Storage.FSRoot),
		zap.String("cache.kind", c.Cache.Kind),
		zap.Duration("cache.ttl", c.Cache.TTL),
		zap.Bool("rate.enabled", c.Rate.Enabled),
		zap.String("rate.backend", c.Rate.Backend),
		zap.Int("rate.public_limit", c.Rate.PublicLimit),
		zap.Int("rate.admin_limit", c.Rate.AdminLimit),
		zap.Bool("admin.enforce", c.Admin.Enforce),
		zap.String("admin.jwt_secret", secret),
		zap.Bool("social_auth.enabled", c.SocialAuth.Enabled),
		zap.String("social_auth.route_pattern", c.SocialAuth.RoutePattern),
		zap.Strings("social_auth.networks", networks),
		zap.String("modules.file", c.Modules.File),
		zap.String("help.url", c.Help.URL),
		zap.Bool("ui.editable_labels", c.UI.EditableLabels),
		zap.Strings("ui.locales", c.Locales()),
	)
}
