package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/multilogin/internal/domain/repository"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
	"github.com/dropDatabas3/multilogin/internal/validation"
)

// Blocks es el servicio de instancias de bloque. Valida settings al cargar y al guardar.
type Blocks struct {
	repo repository.BlockRepository
	now  func() time.Time
}

// NewBlocks crea el servicio sobre repo.
func NewBlocks(repo repository.BlockRepository) *Blocks {
	return &Blocks{repo: repo, now: time.Now}
}

// Place coloca un bloque nuevo con los settings por defecto.
func (b *Blocks) Place(ctx context.Context, region string, weight int) (*repository.Block, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, fmt.Errorf("%w: region is required", repository.ErrInvalidInput)
	}
	now := b.now().UTC()
	blk := &repository.Block{
		ID:        uuid.NewString(),
		Plugin:    types.PluginID,
		Region:    region,
		Weight:    weight,
		Settings:  types.DefaultBlockSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.repo.Create(ctx, blk); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("block placed", logger.BlockID(blk.ID), logger.String("region", region))
	return blk, nil
}

// Get carga un bloque y normaliza sus settings.
func (b *Blocks) Get(ctx context.Context, id string) (*repository.Block, error) {
	blk, err := b.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.load(ctx, blk); err != nil {
		return nil, err
	}
	return blk, nil
}

// List retorna los bloques por weight y fecha de creación. Los que tienen
// settings inválidos se omiten (y se loguean).
func (b *Blocks) List(ctx context.Context) ([]repository.Block, error) {
	blocks, err := b.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]repository.Block, 0, len(blocks))
	for i := range blocks {
		if err := b.load(ctx, &blocks[i]); err != nil {
			continue
		}
		out = append(out, blocks[i])
	}
	return out, nil
}

// FirstByPlugin retorna el primer bloque (en orden de List) del plugin dado.
func (b *Blocks) FirstByPlugin(ctx context.Context, plugin string) (*repository.Block, error) {
	blocks, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		if blocks[i].Plugin == plugin {
			return &blocks[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

// SaveSettings normaliza, valida y persiste los settings de un bloque.
func (b *Blocks) SaveSettings(ctx context.Context, id string, s types.BlockSettings) (types.BlockSettings, error) {
	s = validation.NormalizeBlockSettings(s)
	if err := validation.ValidateBlockSettings(s); err != nil {
		return types.BlockSettings{}, errors.Join(repository.ErrInvalidInput, err)
	}
	if err := b.repo.UpdateSettings(ctx, id, s); err != nil {
		return types.BlockSettings{}, err
	}
	logger.From(ctx).Info("block settings saved", logger.BlockID(id), logger.Count(len(s.ProviderSettings)))
	return s, nil
}

// Delete elimina un bloque.
func (b *Blocks) Delete(ctx context.Context, id string) error {
	if err := b.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.From(ctx).Info("block deleted", logger.BlockID(id))
	return nil
}

func (b *Blocks) load(ctx context.Context, blk *repository.Block) error {
	s := validation.NormalizeBlockSettings(blk.Settings)
	if err := validation.ValidateBlockSettings(s); err != nil {
		logger.From(ctx).Error("stored block settings are invalid", logger.BlockID(blk.ID), logger.Err(err))
		return fmt.Errorf("block %s: %w", blk.ID, errors.Join(repository.ErrInvalidInput, err))
	}
	blk.Settings = s
	return nil
}
