// Package blocks contiene el controller de las rutas públicas del bloque.
package blocks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/multilogin/internal/http/dto/blocks"
	httperrors "github.com/dropDatabas3/multilogin/internal/http/errors"
	"github.com/dropDatabas3/multilogin/internal/http/helpers"
	svc "github.com/dropDatabas3/multilogin/internal/http/services/blocks"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/render"
	"github.com/dropDatabas3/multilogin/internal/resolver"
)

// BlocksController sirve el widget y su vista JSON.
type BlocksController struct {
	service  svc.BlockService
	renderer *render.Renderer
}

// NewBlocksController crea el controller.
func NewBlocksController(service svc.BlockService, renderer *render.Renderer) *BlocksController {
	return &BlocksController{service: service, renderer: renderer}
}

// Render maneja GET /blocks/{id}. Con X-Requested-With devuelve solo el
// fragmento; si no, una página completa.
func (c *BlocksController) Render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	body, err := c.service.Widget(ctx, id)
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if helpers.WantsFragment(r) {
		_, _ = w.Write([]byte(body))
		return
	}
	tr := i18n.From(ctx)
	_ = c.renderer.Page(w, render.PageData{Lang: tr.Locale(), Title: tr.T("Log in", nil), Body: body})
}

// LoginMethods maneja GET /blocks/{id}/login-methods.
func (c *BlocksController) LoginMethods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	methods, err := c.service.LoginMethods(ctx, id)
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.LoginMethodsResponse{
		BlockID: id,
		Locale:  i18n.From(ctx).Locale(),
		Active:  resolver.ActiveIndex(methods),
		Methods: methods,
	})
}
