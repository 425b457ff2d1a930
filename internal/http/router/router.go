// Package router arma el árbol de rutas chi del servicio y registra los
// nombres de ruta que usan templates y resolver.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/auth"
	blocksctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/blocks"
	healthctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/health"
	helpctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/help"
	httperrors "github.com/dropDatabas3/multilogin/internal/http/errors"
	mw "github.com/dropDatabas3/multilogin/internal/http/middlewares"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/metrics"
	"github.com/dropDatabas3/multilogin/internal/rate"
	"github.com/dropDatabas3/multilogin/internal/routes"
)

// Paths por defecto.
const (
	DefaultSocialRedirectPattern = "/user/login/{network}"
	AdminIndexPath               = "/admin/config/people/multi-login"
	StaticPrefix                 = "/static"
	HelpPath                     = "/multi-login/help"
)

// Controllers agrupa los controllers HTTP.
type Controllers struct {
	Blocks *blocksctrl.BlocksController
	Login  *authctrl.LoginController
	Help   *helpctrl.HelpController
	Admin  *adminctrl.AdminController
	Health *healthctrl.HealthController
}

// Deps contiene todo lo que el router necesita.
type Deps struct {
	Routes      *routes.Registry
	Controllers Controllers
	I18n        *i18n.Bundle
	Static      fs.FS
	// Metrics se monta en /metrics si no es nil.
	Metrics http.Handler

	PublicLimiter rate.Limiter
	AdminLimiter  rate.Limiter
	AdminVerifier mw.TokenVerifier
	AdminConfig   mw.AdminConfig
	CORSOrigins   []string

	// SocialRedirect registra la ruta social_auth.network.redirect.
	SocialRedirect        bool
	SocialRedirectPattern string
}

// New construye el handler raíz.
func New(d Deps) http.Handler {
	if d.Routes == nil {
		d.Routes = routes.NewRegistry()
	}
	if d.SocialRedirectPattern == "" {
		d.SocialRedirectPattern = DefaultSocialRedirectPattern
	}
	c := d.Controllers
	reg := d.Routes

	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		metrics.WithMetrics,
		mw.WithLogging(),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Ops, sin locale ni rate limit.
	if c.Health != nil {
		r.Get("/healthz", c.Health.Healthz)
		r.Get("/readyz", c.Health.Readyz)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	if d.Static != nil {
		r.With(mw.WithCacheControl("public, max-age=3600")).
			Handle(StaticPrefix+"/*", http.StripPrefix(StaticPrefix+"/", http.FileServer(http.FS(d.Static))))
	}

	// Rutas públicas del bloque.
	r.Group(func(pub chi.Router) {
		pub.Use(
			mw.WithCORS(d.CORSOrigins),
			mw.WithPageSecurityHeaders(),
			mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.PublicLimiter, Scope: "public"}),
			mw.WithLocale(d.I18n),
		)
		if c.Blocks != nil {
			reg.Handle(pub, routes.BlockRender, http.MethodGet, "/blocks/{id}", http.HandlerFunc(c.Blocks.Render))
			pub.Get("/blocks/{id}/login-methods", c.Blocks.LoginMethods)
		}
		if c.Login != nil {
			reg.Handle(pub, routes.StandardLogin, http.MethodGet, "/user/login", http.HandlerFunc(c.Login.LoginPage))
			if d.SocialRedirect {
				reg.Handle(pub, routes.SocialRedirect, http.MethodGet, d.SocialRedirectPattern, http.HandlerFunc(c.Login.SocialRedirect))
			}
		}
		if c.Help != nil {
			reg.Handle(pub, routes.HelpContent, http.MethodGet, HelpPath, http.HandlerFunc(c.Help.Content))
		}
	})

	// Admin.
	if c.Admin != nil {
		r.Group(func(adm chi.Router) {
			adm.Use(
				mw.WithNoStore(),
				mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.AdminLimiter, Scope: "admin"}),
				mw.RequireAdminToken(d.AdminVerifier, d.AdminConfig),
				mw.RequireAdmin(d.AdminConfig),
				mw.WithLocale(d.I18n),
			)

			reg.Handle(adm, routes.AdminIndex, http.MethodGet, AdminIndexPath,
				mw.Chain(http.HandlerFunc(c.Admin.Index), mw.WithPageSecurityHeaders()))

			adm.Group(func(api chi.Router) {
				api.Use(mw.WithSecurityHeaders())
				api.Get("/admin/blocks", c.Admin.ListBlocks)
				api.Post("/admin/blocks", c.Admin.PlaceBlock)
				api.Get("/admin/blocks/{id}", c.Admin.GetBlock)
				api.Delete("/admin/blocks/{id}", c.Admin.DeleteBlock)
				api.Get("/admin/providers", c.Admin.Providers)
				api.Put("/admin/modules/{id}", c.Admin.EnableModule)
				api.Delete("/admin/modules/{id}", c.Admin.DisableModule)
			})
			adm.Group(func(page chi.Router) {
				page.Use(mw.WithPageSecurityHeaders())
				page.Get("/admin/blocks/{id}/form", c.Admin.Form)
				page.Post("/admin/blocks/{id}/form", c.Admin.Submit)
			})
		})
	}

	return r
}
