// Package admin contiene el controller de la API y la página de administración.
package admin

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/multilogin/internal/forms"
	dto "github.com/dropDatabas3/multilogin/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/multilogin/internal/http/errors"
	"github.com/dropDatabas3/multilogin/internal/http/helpers"
	svc "github.com/dropDatabas3/multilogin/internal/http/services/admin"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
	"github.com/dropDatabas3/multilogin/internal/render"
)

// AdminController maneja /admin/*.
type AdminController struct {
	service  svc.AdminService
	renderer *render.Renderer
	// IndexPath es adonde se redirige después de un submit HTML.
	IndexPath string
	// EditableLabels se informa en el schema del formulario.
	EditableLabels bool
}

// NewAdminController crea el controller.
func NewAdminController(service svc.AdminService, renderer *render.Renderer, indexPath string, editableLabels bool) *AdminController {
	return &AdminController{service: service, renderer: renderer, IndexPath: indexPath, EditableLabels: editableLabels}
}

func formAction(id string) string { return "/admin/blocks/" + id + "/form" }

// Index maneja GET /admin/config/people/multi-login.
func (c *AdminController) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tr := i18n.From(ctx)

	res, err := c.service.Index(ctx)
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	body := res.Message
	if res.Block != nil {
		var buf bytes.Buffer
		if err := c.renderer.AdminForm(&buf, render.AdminFormData{Action: formAction(res.Block.ID), Form: res.Form, Tr: tr}); err != nil {
			httperrors.WriteErrorCtx(w, r, err)
			return
		}
		body = template.HTML(buf.String())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = c.renderer.Page(w, render.PageData{Lang: tr.Locale(), Title: "Multi Login Block", Body: body})
}

// ListBlocks maneja GET /admin/blocks.
func (c *AdminController) ListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := c.service.ListBlocks(r.Context())
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	resp := dto.ListBlocksResponse{Blocks: make([]dto.BlockResponse, 0, len(blocks))}
	for i := range blocks {
		resp.Blocks = append(resp.Blocks, dto.FromBlock(&blocks[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// PlaceBlock maneja POST /admin/blocks.
func (c *AdminController) PlaceBlock(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBlockRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	blk, err := c.service.PlaceBlock(r.Context(), req.Region, req.Weight)
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	w.Header().Set("Location", "/admin/blocks/"+blk.ID)
	helpers.WriteJSON(w, http.StatusCreated, dto.FromBlock(blk))
}

// GetBlock maneja GET /admin/blocks/{id}.
func (c *AdminController) GetBlock(w http.ResponseWriter, r *http.Request) {
	blk, err := c.service.GetBlock(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromBlock(blk))
}

// DeleteBlock maneja DELETE /admin/blocks/{id}.
func (c *AdminController) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteBlock(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Form maneja GET /admin/blocks/{id}/form. Devuelve el schema JSON, o el
// formulario HTML si el cliente acepta text/html.
func (c *AdminController) Form(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blk, form, err := c.service.Form(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		tr := i18n.From(ctx)
		var buf bytes.Buffer
		if err := c.renderer.AdminForm(&buf, render.AdminFormData{Action: formAction(blk.ID), Form: form, Tr: tr}); err != nil {
			httperrors.WriteErrorCtx(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = c.renderer.Page(w, render.PageData{Lang: tr.Locale(), Title: "Multi Login Block", Body: template.HTML(buf.String())})
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.FormResponse{BlockID: blk.ID, EditableLabels: c.EditableLabels, Form: form})
}

// Submit maneja POST /admin/blocks/{id}/form. Acepta JSON o
// application/x-www-form-urlencoded con nombres entre corchetes.
func (c *AdminController) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.BlockID(id))

	helpers.LimitBody(w, r)
	defer r.Body.Close()

	var (
		sub     forms.Submission
		err     error
		htmlReq = !helpers.IsJSON(r)
	)
	if htmlReq {
		if err = r.ParseForm(); err != nil {
			httperrors.WriteErrorCtx(w, r, helpers.BodyError(err))
			return
		}
		sub, err = forms.ParseValues(r.PostForm)
	} else {
		sub, err = forms.ParseJSON(r.Body)
	}
	if err != nil {
		httperrors.WriteErrorCtx(w, r, helpers.BodyError(err))
		return
	}

	blk, err := c.service.Submit(ctx, id, sub)
	if err != nil {
		log.Debug("submit rejected", logger.Err(err))
		if htmlReq && c.renderer != nil {
			c.rerender(w, r, id, err)
			return
		}
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	if htmlReq {
		http.Redirect(w, r, c.IndexPath, http.StatusSeeOther)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromBlock(blk))
}

// rerender vuelve a mostrar el formulario con el error de validación.
func (c *AdminController) rerender(w http.ResponseWriter, r *http.Request, id string, cause error) {
	ctx := r.Context()
	appErr := httperrors.FromError(cause)
	_, form, err := c.service.Form(ctx, id)
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}

	msg := appErr.Message
	if appErr.Detail != "" {
		msg += " " + appErr.Detail
	}
	tr := i18n.From(ctx)
	var buf bytes.Buffer
	if err := c.renderer.AdminForm(&buf, render.AdminFormData{Action: formAction(id), Form: form, Errors: []string{msg}, Tr: tr}); err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = c.renderer.Page(w, render.PageData{Lang: tr.Locale(), Title: "Multi Login Block", Body: template.HTML(buf.String())})
}

// Providers maneja GET /admin/providers.
func (c *AdminController) Providers(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.Providers(r.Context()))
}

// EnableModule maneja PUT /admin/modules/{id}.
func (c *AdminController) EnableModule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	list, err := c.service.EnableModule(r.Context(), id)
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ModuleResponse{ID: id, Enabled: true, Modules: list})
}

// DisableModule maneja DELETE /admin/modules/{id}.
func (c *AdminController) DisableModule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	list, err := c.service.DisableModule(r.Context(), id)
	if err != nil {
		httperrors.WriteErrorCtx(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ModuleResponse{ID: id, Enabled: false, Modules: list})
}
