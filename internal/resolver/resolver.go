// Package resolver turns the provider catalog, the set of installed provider
// modules and a block's saved settings into the ordered login methods the
// widget renders.
//
// Resolution never fails as a whole: a provider whose redirect URL cannot be
// built is logged and left out, everything else is still returned.
package resolver

import (
	"context"
	"html/template"

	"go.uber.org/zap"

	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/metrics"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
)

// Textos fuente (ids de traducción).
const (
	DefaultProviderLabel = "Login with @provider"
	DefaultTooltip       = "Sign in using your @provider account"
	DefaultDescription   = "Click the button below to login with your @provider account."
	DefaultButtonText    = "Login"
)

// RedirectURLBuilder construye la URL de redirect de una red social.
// Falla (envolviendo routes.ErrRouteNotFound) si la ruta no está disponible.
type RedirectURLBuilder interface {
	BuildRedirectURL(network string) (string, error)
}

// StandardFormRenderer embebe el formulario de login con contraseña.
type StandardFormRenderer interface {
	RenderStandardLoginForm() template.HTML
}

// StandardFormFunc adapta una función a StandardFormRenderer.
type StandardFormFunc func() template.HTML

func (f StandardFormFunc) RenderStandardLoginForm() template.HTML { return f() }

// Resolver arma la lista de login methods. Es stateless: puede compartirse entre requests.
type Resolver struct {
	Catalog   []catalog.Provider
	Redirects RedirectURLBuilder
	Form      StandardFormRenderer

	// EditableLabels en false ignora los labels guardados y usa los generados.
	EditableLabels bool
}

// New crea un Resolver sobre el catálogo conocido.
func New(redirects RedirectURLBuilder, form StandardFormRenderer, editableLabels bool) *Resolver {
	return &Resolver{
		Catalog:        catalog.Known(),
		Redirects:      redirects,
		Form:           form,
		EditableLabels: editableLabels,
	}
}

// WithForm devuelve una copia que embebe form. Se usa por request, cuando el
// formulario depende del idioma negociado.
func (r *Resolver) WithForm(form StandardFormRenderer) *Resolver {
	c := *r
	c.Form = form
	return &c
}

// EligibleProviders filtra el catálogo a los providers instalados, preservando orden.
func EligibleProviders(known []catalog.Provider, installed types.InstalledSet) []catalog.Provider {
	out := make([]catalog.Provider, 0, len(known))
	if installed.Len() == 0 {
		return out
	}
	for _, p := range known {
		if installed.Has(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// ResolveLoginMethods devuelve los métodos a renderizar: standard primero (si
// está habilitado) y luego los providers en orden de catálogo.
func (r *Resolver) ResolveLoginMethods(ctx context.Context, installed types.InstalledSet, settings types.BlockSettings, tr i18n.Translator) []LoginMethod {
	if tr == nil {
		tr = i18n.Identity
	}
	log := logger.From(ctx).With(logger.Component("resolver"))

	methods := make([]LoginMethod, 0, 1+len(settings.ProviderSettings))

	if settings.StandardLoginEnabled {
		methods = append(methods, r.standardMethod(settings, tr))
		metrics.LoginMethodsResolved.WithLabelValues("standard").Inc()
	}

	for _, p := range EligibleProviders(r.Catalog, installed) {
		ps, ok := settings.Provider(p.ID)
		if !ok || !ps.Enabled {
			continue
		}

		network := p.NetworkKey
		if ps.Network != "" {
			network = ps.Network
		}

		target := ps.CustomURL
		if target == "" {
			if r.Redirects == nil {
				log.Warn("redirect builder not configured, skipping provider",
					logger.Provider(p.ID), logger.Network(network))
				metrics.ProvidersSkipped.WithLabelValues(p.ID).Inc()
				continue
			}
			u, err := r.Redirects.BuildRedirectURL(network)
			if err != nil {
				log.Warn("redirect route unavailable, skipping provider",
					logger.Provider(p.ID), logger.Network(network), logger.Err(err))
				metrics.ProvidersSkipped.WithLabelValues(p.ID).Inc()
				continue
			}
			target = u
		}

		methods = append(methods, r.providerMethod(p, ps, target, tr))
		metrics.LoginMethodsResolved.WithLabelValues("social").Inc()
	}

	if len(methods) == 0 {
		log.Debug("no login methods resolved", zap.Int("installed", installed.Len()))
	}
	return methods
}

func (r *Resolver) standardMethod(s types.BlockSettings, tr i18n.Translator) LoginMethod {
	label := tr.T(types.DefaultStandardLabel, nil)
	if r.EditableLabels && s.StandardLabel != "" {
		label = s.StandardLabel
	}
	var form template.HTML
	if r.Form != nil {
		form = r.Form.RenderStandardLoginForm()
	}
	return LoginMethod{
		ID:            StandardMethodID,
		Label:         label,
		Icon:          "user",
		Tooltip:       label,
		OpenByDefault: s.StandardOpenByDefault,
		Content: Content{
			Kind: ContentForm,
			Form: form,
		},
	}
}

func (r *Resolver) providerMethod(p catalog.Provider, ps types.ProviderSettings, target string, tr i18n.Translator) LoginMethod {
	args := i18n.Args{"@provider": p.DisplayName}

	label := tr.T(DefaultProviderLabel, args)
	if r.EditableLabels && ps.Label != "" {
		label = ps.Label
	}
	button := tr.T(DefaultButtonText, nil)
	if ps.ButtonText != "" {
		button = ps.ButtonText
	}
	short := p.ShortID()

	return LoginMethod{
		ID:            short,
		Label:         label,
		Icon:          p.Icon,
		Tooltip:       tr.T(DefaultTooltip, args),
		OpenByDefault: ps.OpenByDefault,
		TargetURL:     target,
		Content: Content{
			Kind:        ContentLink,
			URL:         target,
			ButtonText:  button,
			Description: tr.T(DefaultDescription, args),
			Classes:     []string{"button", "button--primary", "oauth-button", "oauth-" + short},
		},
	}
}
