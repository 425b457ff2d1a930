// Package store provee el registry de adaptadores de persistencia y el
// servicio de bloques que se apoya en ellos.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dropDatabas3/multilogin/internal/domain/repository"
)

// Adapter representa un backend capaz de abrir conexiones.
type Adapter interface {
	// Name retorna el nombre del adapter ("fs", "postgres", "sqlite").
	Name() string

	// Connect establece conexión con el almacenamiento.
	Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error)
}

// AdapterConnection representa una conexión activa.
type AdapterConnection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	Blocks() repository.BlockRepository
}

// MigratableConnection la implementan las conexiones SQL.
type MigratableConnection interface {
	Migrate(ctx context.Context) (applied int, err error)
}

// AdapterConfig configuración para conectar a un almacenamiento.
type AdapterConfig struct {
	Name string

	// DSN connection string (postgres, sqlite)
	DSN string

	// FSRoot directorio raíz (fs)
	FSRoot string

	MaxOpenConns int
	MaxIdleConns int
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter. Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAdapter abre una conexión con el adapter de cfg.Name y, si es SQL, migra.
func OpenAdapter(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("adapter: %q not registered (have %v)", cfg.Name, ListAdapters())
	}
	conn, err := a.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if m, ok := conn.(MigratableConnection); ok {
		if _, err := m.Migrate(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("adapter %s: migrate: %w", cfg.Name, err)
		}
	}
	return conn, nil
}
