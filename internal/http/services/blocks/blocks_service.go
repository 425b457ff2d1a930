// Package blocks contiene el service de render del bloque de login.
package blocks

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/modules"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
	"github.com/dropDatabas3/multilogin/internal/render"
	"github.com/dropDatabas3/multilogin/internal/resolver"
	"github.com/dropDatabas3/multilogin/internal/store"
)

// BlockService resuelve y renderiza los login methods de un bloque.
type BlockService interface {
	LoginMethods(ctx context.Context, blockID string) ([]resolver.LoginMethod, error)
	Widget(ctx context.Context, blockID string) (template.HTML, error)
	StandardLoginForm(ctx context.Context) template.HTML
}

// Deps son las dependencias del service.
type Deps struct {
	Blocks   *store.Blocks
	Modules  modules.Checker
	Resolver *resolver.Resolver
	Renderer *render.Renderer
}

type blockService struct {
	deps Deps
}

// NewBlockService crea el service.
func NewBlockService(deps Deps) BlockService {
	return &blockService{deps: deps}
}

const componentBlocks = "blocks"

// LoginMethods arma #login_methods para blockID con el idioma del contexto.
// El set de módulos instalados se consulta en cada llamada.
func (s *blockService) LoginMethods(ctx context.Context, blockID string) ([]resolver.LoginMethod, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentBlocks),
		logger.BlockID(blockID),
	)
	ctx = logger.ToContext(ctx, log)

	blk, err := s.deps.Blocks.Get(ctx, blockID)
	if err != nil {
		return nil, err
	}

	tr := i18n.From(ctx)
	installed := modules.Installed(ctx, s.deps.Modules, s.deps.Resolver.Catalog)

	res := s.deps.Resolver
	if s.deps.Renderer != nil {
		res = res.WithForm(s.deps.Renderer.StandardForm(tr))
	}
	methods := res.ResolveLoginMethods(ctx, installed, blk.Settings, tr)
	log.Debug("login methods resolved", logger.Count(len(methods)))
	return methods, nil
}

func (s *blockService) Widget(ctx context.Context, blockID string) (template.HTML, error) {
	methods, err := s.LoginMethods(ctx, blockID)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := s.deps.Renderer.Widget(&buf, blockID, methods, i18n.From(ctx)); err != nil {
		return "", fmt.Errorf("render widget: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// StandardLoginForm renderiza el formulario de usuario y contraseña solo.
func (s *blockService) StandardLoginForm(ctx context.Context) template.HTML {
	return s.deps.Renderer.StandardForm(i18n.From(ctx)).RenderStandardLoginForm()
}
