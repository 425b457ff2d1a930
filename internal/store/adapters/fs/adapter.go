// Package fs implementa el adapter FileSystem: un YAML por bloque en
// <root>/blocks/<id>.yaml, escrito de forma atómica.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/multilogin/internal/domain/repository"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/store"
	"github.com/dropDatabas3/multilogin/internal/util/atomicwrite"
)

func init() {
	store.RegisterAdapter(&fsAdapter{})
}

type fsAdapter struct{}

func (a *fsAdapter) Name() string { return "fs" }

func (a *fsAdapter) Connect(_ context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	root := cfg.FSRoot
	if root == "" {
		root = "data"
	}
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if mkErr := os.MkdirAll(root, 0o755); mkErr != nil {
			return nil, fmt.Errorf("fs: failed to create root path %s: %w", root, mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("fs: root path error: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("fs: root path is not a directory: %s", root)
	}
	return &Connection{root: root}, nil
}

// Connection es una conexión al directorio de datos.
type Connection struct {
	root string
	mu   sync.RWMutex
}

// Open abre una conexión directa (tests y CLI).
func Open(root string) (*Connection, error) {
	c, err := (&fsAdapter{}).Connect(context.Background(), store.AdapterConfig{FSRoot: root})
	if err != nil {
		return nil, err
	}
	return c.(*Connection), nil
}

func (c *Connection) Name() string { return "fs" }

func (c *Connection) Ping(context.Context) error {
	_, err := os.Stat(c.root)
	return err
}

func (c *Connection) Close() error { return nil }

func (c *Connection) Blocks() repository.BlockRepository { return &blockRepo{conn: c} }

func (c *Connection) blocksDir() string { return filepath.Join(c.root, "blocks") }

func (c *Connection) blockFile(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: bad block id %q", repository.ErrInvalidInput, id)
	}
	return filepath.Join(c.blocksDir(), id+".yaml"), nil
}

// blockYAML es el formato en disco.
type blockYAML struct {
	ID        string              `yaml:"id"`
	Plugin    string              `yaml:"plugin"`
	Region    string              `yaml:"region"`
	Weight    int                 `yaml:"weight"`
	Settings  types.BlockSettings `yaml:"settings"`
	CreatedAt time.Time           `yaml:"created_at"`
	UpdatedAt time.Time           `yaml:"updated_at"`
}

type blockRepo struct{ conn *Connection }

func (r *blockRepo) read(path string) (*repository.Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("fs: read block: %w", err)
	}
	var by blockYAML
	if err := yaml.Unmarshal(raw, &by); err != nil {
		return nil, fmt.Errorf("fs: parse %s: %w", filepath.Base(path), err)
	}
	b := repository.Block(by)
	if b.Settings.ProviderSettings == nil {
		b.Settings.ProviderSettings = map[string]types.ProviderSettings{}
	}
	return &b, nil
}

func (r *blockRepo) write(path string, b *repository.Block) error {
	return atomicwrite.WriteYAML(path, blockYAML(*b), 0o600)
}

func (r *blockRepo) Create(_ context.Context, b *repository.Block) error {
	path, err := r.conn.blockFile(b.ID)
	if err != nil {
		return err
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: block %s", repository.ErrConflict, b.ID)
	}
	return r.write(path, b)
}

func (r *blockRepo) Get(_ context.Context, id string) (*repository.Block, error) {
	path, err := r.conn.blockFile(id)
	if err != nil {
		return nil, err
	}
	r.conn.mu.RLock()
	defer r.conn.mu.RUnlock()
	return r.read(path)
}

func (r *blockRepo) List(_ context.Context) ([]repository.Block, error) {
	r.conn.mu.RLock()
	defer r.conn.mu.RUnlock()

	entries, err := os.ReadDir(r.conn.blocksDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []repository.Block{}, nil
		}
		return nil, fmt.Errorf("fs: read blocks dir: %w", err)
	}

	blocks := make([]repository.Block, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		b, err := r.read(filepath.Join(r.conn.blocksDir(), name))
		if err != nil {
			continue // archivos corruptos no tumban el listado
		}
		blocks = append(blocks, *b)
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Weight != blocks[j].Weight {
			return blocks[i].Weight < blocks[j].Weight
		}
		return blocks[i].CreatedAt.Before(blocks[j].CreatedAt)
	})
	return blocks, nil
}

func (r *blockRepo) UpdateSettings(_ context.Context, id string, s types.BlockSettings) error {
	path, err := r.conn.blockFile(id)
	if err != nil {
		return err
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	b, err := r.read(path)
	if err != nil {
		return err
	}
	b.Settings = s.Clone()
	b.UpdatedAt = time.Now().UTC()
	return r.write(path, b)
}

func (r *blockRepo) Delete(_ context.Context, id string) error {
	path, err := r.conn.blockFile(id)
	if err != nil {
		return err
	}
	r.conn.mu.Lock()
	defer r.conn.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("fs: delete block: %w", err)
	}
	return nil
}
