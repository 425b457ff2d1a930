// Package app arma el contenedor de dependencias del servicio a partir de la
// configuración: storage, cache, rate limit, resolver, renderer y router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/multilogin/internal/cache"
	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/config"
	"github.com/dropDatabas3/multilogin/internal/forms"
	"github.com/dropDatabas3/multilogin/internal/helpdoc"
	adminctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/auth"
	blocksctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/blocks"
	healthctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/health"
	helpctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/help"
	mw "github.com/dropDatabas3/multilogin/internal/http/middlewares"
	"github.com/dropDatabas3/multilogin/internal/http/router"
	adminsvc "github.com/dropDatabas3/multilogin/internal/http/services/admin"
	blockssvc "github.com/dropDatabas3/multilogin/internal/http/services/blocks"
	healthsvc "github.com/dropDatabas3/multilogin/internal/http/services/health"
	helpsvc "github.com/dropDatabas3/multilogin/internal/http/services/help"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/metrics"
	"github.com/dropDatabas3/multilogin/internal/modules"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
	"github.com/dropDatabas3/multilogin/internal/rate"
	"github.com/dropDatabas3/multilogin/internal/render"
	"github.com/dropDatabas3/multilogin/internal/resolver"
	"github.com/dropDatabas3/multilogin/internal/routes"
	"github.com/dropDatabas3/multilogin/internal/security/admintoken"
	"github.com/dropDatabas3/multilogin/internal/store"
	"github.com/dropDatabas3/multilogin/web"
)

// Container es el contenedor DI del servicio.
type Container struct {
	Config *config.Config

	Conn    store.AdapterConnection
	Cache   cache.Client // nil con cache.kind = none
	Blocks  *store.Blocks
	Modules modules.Manager

	Routes    *routes.Registry
	Redirects routes.NetworkRedirects
	Resolver  *resolver.Resolver
	Renderer  *render.Renderer
	I18n      *i18n.Bundle
	Issuer    *admintoken.Issuer // nil si no hay jwt_secret

	PublicLimiter rate.Limiter
	AdminLimiter  rate.Limiter
	limiterPing   healthsvc.Check // solo con backend redis

	// Handler es el router completo; MetricsHandler sirve /metrics.
	Handler        http.Handler
	MetricsHandler http.Handler

	closers []func() error
}

// Options permite inyectar dependencias en tests.
type Options struct {
	// Registerer de métricas; nil usa el default de prometheus.
	Registerer prometheus.Registerer
	// Conn reemplaza la conexión abierta desde cfg.Storage.
	Conn store.AdapterConnection
	// Modules reemplaza el checker basado en archivo.
	Modules modules.Manager
}

// New construye el contenedor. Los adapters de storage deben estar
// registrados (blank import de internal/store/adapters/all).
func New(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	c := &Container{Config: cfg}
	log := logger.L().With(logger.Component("app"))

	fail := func(err error) (*Container, error) {
		_ = c.Close()
		return nil, err
	}

	// 1. Storage
	conn := opts.Conn
	if conn == nil {
		var err error
		conn, err = store.OpenAdapter(ctx, store.AdapterConfig{
			Name:         cfg.Storage.Driver,
			DSN:          cfg.Storage.DSN,
			FSRoot:       cfg.Storage.FSRoot,
			MaxOpenConns: cfg.Storage.MaxOpenConns,
			MaxIdleConns: cfg.Storage.MaxIdleConns,
		})
		if err != nil {
			return fail(fmt.Errorf("open storage: %w", err))
		}
	}
	c.Conn = conn
	c.closers = append(c.closers, conn.Close)

	// 2. Cache de settings
	repo := conn.Blocks()
	if cfg.Cache.Kind != "none" {
		cc, err := cache.New(ctx, cache.Config{
			Driver:     cfg.Cache.Kind,
			Addr:       cfg.Cache.Redis.Addr,
			Password:   cfg.Cache.Redis.Password,
			DB:         cfg.Cache.Redis.DB,
			Prefix:     cfg.Cache.Prefix,
			DefaultTTL: cfg.Cache.TTL,
		})
		if err != nil {
			return fail(fmt.Errorf("open cache: %w", err))
		}
		c.Cache = cc
		c.closers = append(c.closers, cc.Close)
		repo = store.NewCachedBlocks(repo, cc, cfg.Cache.TTL)
	}
	c.Blocks = store.NewBlocks(repo)

	// 3. Módulos instalados
	if opts.Modules != nil {
		c.Modules = opts.Modules
	} else {
		f := modules.NewFile(cfg.Modules.File)
		if len(cfg.Modules.Seed) > 0 {
			if err := f.Seed(cfg.Modules.Seed); err != nil {
				return fail(fmt.Errorf("seed modules: %w", err))
			}
		}
		c.Modules = f
	}

	// 4. i18n, rutas, render, resolver
	bundle, err := i18n.NewBundle(cfg.Locales()...)
	if err != nil {
		return fail(err)
	}
	c.I18n = bundle

	c.Routes = routes.NewRegistry()
	c.Redirects = routes.NetworkRedirects{
		Routes:   c.Routes,
		Networks: cfg.SocialAuth.Networks,
		BaseURL:  cfg.App.BaseURL,
	}

	helpURL := ""
	if cfg.Help.URL != "" {
		helpURL = router.HelpPath
	}
	c.Renderer, err = render.New(cfg.StandardLogin.Action, helpURL, router.StaticPrefix)
	if err != nil {
		return fail(err)
	}
	c.Resolver = resolver.New(c.Redirects, nil, cfg.UI.EditableLabels)

	// 5. Admin tokens
	if cfg.Admin.JWTSecret != "" {
		c.Issuer, err = admintoken.NewIssuer(cfg.Admin.JWTSecret, cfg.Admin.Issuer, cfg.Admin.TokenTTL)
		if err != nil {
			return fail(err)
		}
	}

	// 6. Rate limit
	if cfg.Rate.Enabled {
		if err := c.buildLimiters(ctx, cfg); err != nil {
			return fail(err)
		}
	}

	// 7. Métricas
	c.MetricsHandler, err = metrics.Register(opts.Registerer)
	if err != nil {
		return fail(fmt.Errorf("register metrics: %w", err))
	}

	c.Handler = c.buildRouter(cfg)
	log.Info("container ready",
		logger.String("storage", conn.Name()),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", cfg.Rate.Enabled),
		logger.Bool("editable_labels", cfg.UI.EditableLabels),
		logger.Count(len(catalog.Known())),
	)
	return c, nil
}

func (c *Container) buildLimiters(ctx context.Context, cfg *config.Config) error {
	if cfg.Rate.Backend != "redis" {
		c.PublicLimiter = rate.NewMemoryLimiter(cfg.Rate.PublicLimit, cfg.Rate.Window)
		c.AdminLimiter = rate.NewMemoryLimiter(cfg.Rate.AdminLimit, cfg.Rate.Window)
		return nil
	}

	rc := cfg.Rate.Redis
	if rc.Addr == "" {
		rc = cfg.Cache.Redis
	}
	client := rdb.NewClient(&rdb.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("rate limiter redis: %w", err)
	}
	c.closers = append(c.closers, client.Close)
	c.limiterPing = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	c.PublicLimiter = rate.NewRedisLimiter(client, cfg.Rate.Prefix, cfg.Rate.PublicLimit, cfg.Rate.Window)
	c.AdminLimiter = rate.NewRedisLimiter(client, cfg.Rate.Prefix, cfg.Rate.AdminLimit, cfg.Rate.Window)
	return nil
}

func (c *Container) buildRouter(cfg *config.Config) http.Handler {
	blocks := blockssvc.NewBlockService(blockssvc.Deps{
		Blocks:   c.Blocks,
		Modules:  c.Modules,
		Resolver: c.Resolver,
		Renderer: c.Renderer,
	})

	var fetcher helpsvc.Fetcher
	if cfg.Help.URL != "" {
		fetcher = helpdoc.NewFetcher(cfg.Help.URL, cfg.Help.Timeout)
	}

	admin := adminsvc.NewAdminService(adminsvc.Deps{
		Blocks:    c.Blocks,
		Modules:   c.Modules,
		Redirects: c.Redirects,
		Options:   forms.Options{EditableLabels: cfg.UI.EditableLabels},
	})

	health := healthsvc.NewHealthService(healthsvc.Deps{
		Storage: c.Conn.Ping,
		Cache:   c.cachePing(),
		Limiter: c.limiterPing,
		Version: cfg.App.Version,
	})

	var verifier mw.TokenVerifier
	if c.Issuer != nil {
		verifier = c.Issuer
	}

	var metricsHandler http.Handler
	if cfg.Server.MetricsAddr == "" {
		metricsHandler = c.MetricsHandler
	}

	return router.New(router.Deps{
		Routes: c.Routes,
		Controllers: router.Controllers{
			Blocks: blocksctrl.NewBlocksController(blocks, c.Renderer),
			Login:  authctrl.NewLoginController(blocks, c.Renderer, c.Redirects),
			Help:   helpctrl.NewHelpController(helpsvc.NewHelpService(fetcher)),
			Admin:  adminctrl.NewAdminController(admin, c.Renderer, router.AdminIndexPath, cfg.UI.EditableLabels),
			Health: healthctrl.NewHealthController(health),
		},
		I18n:                  c.I18n,
		Static:                web.Static(),
		Metrics:               metricsHandler,
		PublicLimiter:         c.PublicLimiter,
		AdminLimiter:          c.AdminLimiter,
		AdminVerifier:         verifier,
		AdminConfig:           mw.AdminConfig{EnforceAdmin: cfg.Admin.Enforce, AdminSubs: cfg.Admin.Subs},
		CORSOrigins:           cfg.Server.CORSAllowedOrigins,
		SocialRedirect:        cfg.SocialAuth.Enabled,
		SocialRedirectPattern: cfg.SocialAuth.RoutePattern,
	})
}

func (c *Container) cachePing() healthsvc.Check {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Ping
}

// Close libera los recursos en orden inverso de apertura.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
