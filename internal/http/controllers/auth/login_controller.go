// Package auth contiene los controllers de las rutas de login: el formulario
// standard y el redirect hacia las redes sociales.
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/multilogin/internal/http/errors"
	svc "github.com/dropDatabas3/multilogin/internal/http/services/blocks"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
	"github.com/dropDatabas3/multilogin/internal/render"
)

// AuthorizeURLs resuelve la URL upstream de una red integrada.
type AuthorizeURLs interface {
	AuthorizeURL(network string) (string, bool)
}

// LoginController maneja /user/login y /user/login/{network}.
type LoginController struct {
	blocks    svc.BlockService
	renderer  *render.Renderer
	redirects AuthorizeURLs
}

// NewLoginController crea el controller.
func NewLoginController(blocks svc.BlockService, renderer *render.Renderer, redirects AuthorizeURLs) *LoginController {
	return &LoginController{blocks: blocks, renderer: renderer, redirects: redirects}
}

// LoginPage maneja GET /user/login.
func (c *LoginController) LoginPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tr := i18n.From(ctx)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = c.renderer.Page(w, render.PageData{
		Lang:  tr.Locale(),
		Title: tr.T("Log in", nil),
		Body:  c.blocks.StandardLoginForm(ctx),
	})
}

// SocialRedirect maneja GET /user/login/{network}: 302 a la authorize URL.
func (c *LoginController) SocialRedirect(w http.ResponseWriter, r *http.Request) {
	network := chi.URLParam(r, "network")
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Network(network))

	target, ok := c.redirects.AuthorizeURL(network)
	if !ok {
		log.Debug("network without integration")
		httperrors.WriteError(w, httperrors.ErrNetworkNotFound.WithDetail(network))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusFound)
}
