// Package admin contiene el service de administración de bloques y módulos.
package admin

import (
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/dropDatabas3/multilogin/internal/audit"
	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/domain/repository"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/forms"
	dto "github.com/dropDatabas3/multilogin/internal/http/dto/admin"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/modules"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
	"github.com/dropDatabas3/multilogin/internal/resolver"
	"github.com/dropDatabas3/multilogin/internal/store"
)

// BlockLayoutURL es adonde se manda al admin cuando el bloque no está colocado.
const BlockLayoutURL = "/admin/structure/block"

const (
	notPlacedMessage = `Multi Login Block is not yet placed. Go to <a href="@url">Structure > Block layout</a> to add it.`
	loadErrorMessage = "Error loading Multi Login Block."
)

// IndexResult es lo que muestra la página de configuración.
type IndexResult struct {
	// Message se muestra en lugar del formulario cuando no hay bloque.
	Message template.HTML
	Block   *repository.Block
	Form    forms.Form
}

// AdminService define las operaciones de administración.
type AdminService interface {
	Index(ctx context.Context) (IndexResult, error)

	ListBlocks(ctx context.Context) ([]repository.Block, error)
	PlaceBlock(ctx context.Context, region string, weight int) (*repository.Block, error)
	GetBlock(ctx context.Context, id string) (*repository.Block, error)
	DeleteBlock(ctx context.Context, id string) error

	Form(ctx context.Context, id string) (*repository.Block, forms.Form, error)
	Submit(ctx context.Context, id string, sub forms.Submission) (*repository.Block, error)

	Providers(ctx context.Context) dto.ProvidersResponse
	EnableModule(ctx context.Context, id string) ([]string, error)
	DisableModule(ctx context.Context, id string) ([]string, error)
}

// Deps son las dependencias del service.
type Deps struct {
	Blocks    *store.Blocks
	Modules   modules.Manager
	Redirects resolver.RedirectURLBuilder
	Options   forms.Options
}

type adminService struct {
	deps    Deps
	catalog []catalog.Provider
}

// NewAdminService crea el service.
func NewAdminService(deps Deps) AdminService {
	return &adminService{deps: deps, catalog: catalog.Known()}
}

func (s *adminService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(logger.Layer("service"), logger.Component("admin"), logger.Op(op))
}

func (s *adminService) Index(ctx context.Context) (IndexResult, error) {
	tr := i18n.From(ctx)

	blk, err := s.deps.Blocks.FirstByPlugin(ctx, types.PluginID)
	if err != nil {
		if repository.IsNotFound(err) {
			msg := tr.T(notPlacedMessage, i18n.Args{"@url": BlockLayoutURL})
			return IndexResult{Message: template.HTML("<p>" + msg + "</p>")}, nil
		}
		s.log(ctx, "Index").Error("load first block", logger.Err(err))
		return IndexResult{Message: template.HTML("<p>" + template.HTMLEscapeString(tr.T(loadErrorMessage, nil)) + "</p>")}, nil
	}

	installed := modules.Installed(ctx, s.deps.Modules, s.catalog)
	return IndexResult{
		Block: blk,
		Form:  forms.Build(s.catalog, installed, blk.Settings, tr, s.deps.Options),
	}, nil
}

func (s *adminService) ListBlocks(ctx context.Context) ([]repository.Block, error) {
	return s.deps.Blocks.List(ctx)
}

func (s *adminService) PlaceBlock(ctx context.Context, region string, weight int) (*repository.Block, error) {
	blk, err := s.deps.Blocks.Place(ctx, region, weight)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventBlockPlaced, logger.BlockID(blk.ID), logger.String("region", blk.Region))
	return blk, nil
}

func (s *adminService) GetBlock(ctx context.Context, id string) (*repository.Block, error) {
	return s.deps.Blocks.Get(ctx, id)
}

func (s *adminService) DeleteBlock(ctx context.Context, id string) error {
	if err := s.deps.Blocks.Delete(ctx, id); err != nil {
		return err
	}
	audit.Log(ctx, audit.EventBlockDeleted, logger.BlockID(id))
	return nil
}

func (s *adminService) Form(ctx context.Context, id string) (*repository.Block, forms.Form, error) {
	blk, err := s.deps.Blocks.Get(ctx, id)
	if err != nil {
		return nil, forms.Form{}, err
	}
	installed := modules.Installed(ctx, s.deps.Modules, s.catalog)
	return blk, forms.Build(s.catalog, installed, blk.Settings, i18n.From(ctx), s.deps.Options), nil
}

// Submit aplica la submission sobre los settings guardados. Solo se conservan
// los providers elegibles en este momento.
func (s *adminService) Submit(ctx context.Context, id string, sub forms.Submission) (*repository.Block, error) {
	blk, err := s.deps.Blocks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	installed := modules.Installed(ctx, s.deps.Modules, s.catalog)
	eligible := resolver.EligibleProviders(s.catalog, installed)

	next := forms.Apply(blk.Settings, sub, eligible, s.deps.Options)
	saved, err := s.deps.Blocks.SaveSettings(ctx, id, next)
	if err != nil {
		return nil, err
	}
	blk.Settings = saved
	audit.Log(ctx, audit.EventSettingsSaved, logger.BlockID(id), logger.Count(len(eligible)))
	return blk, nil
}

func (s *adminService) Providers(ctx context.Context) dto.ProvidersResponse {
	installed := modules.Installed(ctx, s.deps.Modules, s.catalog)

	resp := dto.ProvidersResponse{
		Providers: make([]dto.ProviderItem, 0, len(s.catalog)),
		Eligible:  []string{},
	}
	for _, p := range s.catalog {
		item := dto.ProviderItem{
			ID:          p.ID,
			ShortID:     p.ShortID(),
			DisplayName: p.DisplayName,
			Network:     p.NetworkKey,
			Icon:        p.Icon,
			Installed:   installed.Has(p.ID),
		}
		if s.deps.Redirects != nil {
			_, err := s.deps.Redirects.BuildRedirectURL(p.NetworkKey)
			item.Redirect = err == nil
		}
		resp.Providers = append(resp.Providers, item)
	}
	for _, p := range resolver.EligibleProviders(s.catalog, installed) {
		resp.Eligible = append(resp.Eligible, p.ID)
	}
	return resp
}

func (s *adminService) EnableModule(ctx context.Context, id string) ([]string, error) {
	if err := s.deps.Modules.Enable(ctx, id); err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventModuleEnabled, logger.Module(id))
	return s.deps.Modules.List(ctx)
}

func (s *adminService) DisableModule(ctx context.Context, id string) ([]string, error) {
	if _, ok := catalog.Lookup(id); !ok {
		return nil, fmt.Errorf("%w: %s", modules.ErrUnknownModule, id)
	}
	if err := s.deps.Modules.Disable(ctx, id); err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventModuleDisabled, logger.Module(id))
	return s.deps.Modules.List(ctx)
}

