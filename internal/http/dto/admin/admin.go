// Package admin contiene los DTOs de la API de administración.
package admin

import (
	"time"

	"github.com/dropDatabas3/multilogin/internal/domain/repository"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/forms"
)

// BlockResponse representa un bloque colocado.
type BlockResponse struct {
	ID        string              `json:"id"`
	Plugin    string              `json:"plugin"`
	Region    string              `json:"region"`
	Weight    int                 `json:"weight"`
	Settings  types.BlockSettings `json:"settings"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// FromBlock convierte el modelo de repositorio.
func FromBlock(b *repository.Block) BlockResponse {
	return BlockResponse{
		ID:        b.ID,
		Plugin:    b.Plugin,
		Region:    b.Region,
		Weight:    b.Weight,
		Settings:  b.Settings,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ListBlocksResponse es la respuesta de GET /admin/blocks.
type ListBlocksResponse struct {
	Blocks []BlockResponse `json:"blocks"`
}

// PlaceBlockRequest es el body de POST /admin/blocks.
type PlaceBlockRequest struct {
	Region string `json:"region"`
	Weight int    `json:"weight"`
}

// FormResponse es el schema del formulario de un bloque.
type FormResponse struct {
	BlockID        string     `json:"block_id"`
	EditableLabels bool       `json:"editable_labels"`
	Form           forms.Form `json:"form"`
}

// ProviderItem describe un provider del catálogo y si su módulo está instalado.
type ProviderItem struct {
	ID          string `json:"id"`
	ShortID     string `json:"short_id"`
	DisplayName string `json:"display_name"`
	Network     string `json:"network"`
	Icon        string `json:"icon"`
	Installed   bool   `json:"installed"`
	Redirect    bool   `json:"redirect_available"`
}

// ProvidersResponse es la respuesta de GET /admin/providers.
type ProvidersResponse struct {
	Providers []ProviderItem `json:"providers"`
	// Eligible son los ids configurables en el formulario, en orden de catálogo.
	Eligible []string `json:"eligible"`
}

// ModuleResponse es la respuesta de PUT/DELETE /admin/modules/{id}.
type ModuleResponse struct {
	ID      string   `json:"id"`
	Enabled bool     `json:"enabled"`
	Modules []string `json:"modules"`
}
