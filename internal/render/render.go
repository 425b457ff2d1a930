// Package render produce el HTML del widget, del formulario standard, del
// formulario de administración y de las páginas que los envuelven.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dropDatabas3/multilogin/internal/forms"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
	"github.com/dropDatabas3/multilogin/internal/resolver"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Nombres de templates.
const (
	TemplateWidget       = "widget"
	TemplateStandardForm = "standard_form"
	TemplateAdminForm    = "admin_form"
	TemplatePage         = "page"
)

var funcs = template.FuncMap{
	"t": func(tr i18n.Translator, s string) string {
		if tr == nil {
			return s
		}
		return tr.T(s, nil)
	},
	"join": strings.Join,
	"truthy": func(v any) bool {
		b, _ := v.(bool)
		return b
	},
}

// Renderer envuelve los templates embebidos.
type Renderer struct {
	tpl *template.Template

	// LoginAction es el action del formulario standard.
	LoginAction string
	// HelpURL habilita el ícono de ayuda cuando no está vacío.
	HelpURL string
	// StaticPrefix es el prefijo donde se sirven los assets (sin "/" final).
	StaticPrefix string
}

// New parsea los templates.
func New(loginAction, helpURL, staticPrefix string) (*Renderer, error) {
	tpl, err := template.New("multilogin").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse templates: %w", err)
	}
	return &Renderer{
		tpl:          tpl,
		LoginAction:  loginAction,
		HelpURL:      helpURL,
		StaticPrefix: strings.TrimRight(staticPrefix, "/"),
	}, nil
}

// WidgetData es la entrada del template del widget.
type WidgetData struct {
	BlockID      string
	Methods      []resolver.LoginMethod
	Active       int
	HelpURL      string
	StaticPrefix string
	Tr           i18n.Translator
}

// Widget escribe el bloque con sus pestañas.
func (r *Renderer) Widget(w io.Writer, blockID string, methods []resolver.LoginMethod, tr i18n.Translator) error {
	if tr == nil {
		tr = i18n.Identity
	}
	return r.tpl.ExecuteTemplate(w, TemplateWidget, WidgetData{
		BlockID:      blockID,
		Methods:      methods,
		Active:       resolver.ActiveIndex(methods),
		HelpURL:      r.HelpURL,
		StaticPrefix: r.StaticPrefix,
		Tr:           tr,
	})
}

type standardFormData struct {
	Action string
	Tr     i18n.Translator
}

// StandardForm devuelve un renderer del formulario de contraseña para tr.
func (r *Renderer) StandardForm(tr i18n.Translator) resolver.StandardFormRenderer {
	if tr == nil {
		tr = i18n.Identity
	}
	return resolver.StandardFormFunc(func() template.HTML {
		var buf bytes.Buffer
		if err := r.tpl.ExecuteTemplate(&buf, TemplateStandardForm, standardFormData{Action: r.LoginAction, Tr: tr}); err != nil {
			logger.L().Error("render standard form", logger.Err(err))
			return ""
		}
		return template.HTML(buf.String())
	})
}

// AdminFormData es la entrada del formulario de administración.
type AdminFormData struct {
	Action string
	Form   forms.Form
	Errors []string
	Tr     i18n.Translator
}

// AdminForm escribe el formulario de configuración de un bloque.
func (r *Renderer) AdminForm(w io.Writer, data AdminFormData) error {
	if data.Tr == nil {
		data.Tr = i18n.Identity
	}
	return r.tpl.ExecuteTemplate(w, TemplateAdminForm, data)
}

// PageData envuelve un fragmento en un documento completo.
type PageData struct {
	Lang  string
	Title string
	Body  template.HTML
}

// Page escribe un documento HTML completo.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	if data.Lang == "" {
		data.Lang = "en"
	}
	return r.tpl.ExecuteTemplate(w, TemplatePage, data)
}

// Fragment ejecuta name y devuelve el resultado como HTML confiable.
func (r *Renderer) Fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
