package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/multilogin/internal/domain/types"
)

// Block es una instancia colocada del bloque de login.
type Block struct {
	ID        string
	Plugin    string
	Region    string
	Weight    int
	Settings  types.BlockSettings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlockRepository define operaciones sobre instancias de bloque.
type BlockRepository interface {
	// Create persiste un bloque nuevo. ErrConflict si el ID ya existe.
	Create(ctx context.Context, block *Block) error

	// Get obtiene un bloque por ID. ErrNotFound si no existe.
	Get(ctx context.Context, id string) (*Block, error)

	// List retorna los bloques ordenados por weight y luego por fecha de creación.
	List(ctx context.Context) ([]Block, error)

	// UpdateSettings reemplaza los settings de un bloque. ErrNotFound si no existe.
	UpdateSettings(ctx context.Context, id string, settings types.BlockSettings) error

	// Delete elimina un bloque. ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
