// Package help contiene el controller del diálogo de ayuda.
package help

import (
	"net/http"

	svc "github.com/dropDatabas3/multilogin/internal/http/services/help"
)

// HelpController maneja GET /multi-login/help.
type HelpController struct {
	service svc.HelpService
}

// NewHelpController crea el controller.
func NewHelpController(service svc.HelpService) *HelpController {
	return &HelpController{service: service}
}

// Content responde siempre 200: el fragmento de ayuda o el mensaje de error.
func (c *HelpController) Content(w http.ResponseWriter, r *http.Request) {
	frag, ok := c.service.Content(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if ok {
		w.Header().Set("Cache-Control", "public, max-age=300")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(frag))
}
