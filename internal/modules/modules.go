// Package modules answers "is this provider module installed?".
//
// The answer may change between two requests (a module gets enabled or
// disabled), so checkers never cache: callers build a fresh InstalledSet per
// evaluation with Installed.
package modules

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/util/atomicwrite"
)

// ErrUnknownModule se retorna al habilitar un id que no es un provider conocido.
var ErrUnknownModule = errors.New("unknown provider module")

// Checker consulta la presencia de un módulo.
type Checker interface {
	IsInstalled(ctx context.Context, id string) bool
}

// Manager además permite habilitar y deshabilitar módulos.
type Manager interface {
	Checker
	Enable(ctx context.Context, id string) error
	Disable(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// Installed consulta c por cada provider conocido y arma el set.
func Installed(ctx context.Context, c Checker, known []catalog.Provider) types.InstalledSet {
	set := types.NewInstalledSet()
	if c == nil {
		return set
	}
	for _, p := range known {
		if c.IsInstalled(ctx, p.ID) {
			set[p.ID] = struct{}{}
		}
	}
	return set
}

// ─── Static ───

// Static es un checker en memoria (tests y modo "todo instalado").
type Static struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewStatic crea un checker con los ids dados.
func NewStatic(ids ...string) *Static {
	s := &Static{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *Static) IsInstalled(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

func (s *Static) Enable(_ context.Context, id string) error {
	if _, ok := catalog.Lookup(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, id)
	}
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
	return nil
}

func (s *Static) Disable(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
	return nil
}

func (s *Static) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// ─── File ───

// fileDoc es el formato de modules.yaml:
//
//	enabled:
//	  - social_auth_google
//	  - social_auth_github
type fileDoc struct {
	Enabled []string `yaml:"enabled"`
}

// File lee modules.yaml en cada llamada. Un archivo inexistente equivale a
// ningún módulo instalado.
type File struct {
	Path string

	// mu serializa Enable/Disable dentro del proceso; las lecturas no bloquean.
	mu sync.Mutex
}

// NewFile crea un checker sobre path.
func NewFile(path string) *File { return &File{Path: path} }

func (f *File) read() (map[string]struct{}, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("read modules file: %w", err)
	}
	var doc fileDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse modules file: %w", err)
	}
	set := make(map[string]struct{}, len(doc.Enabled))
	for _, id := range doc.Enabled {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return set, nil
}

func (f *File) write(set map[string]struct{}) error {
	doc := fileDoc{Enabled: make([]string, 0, len(set))}
	for id := range set {
		doc.Enabled = append(doc.Enabled, id)
	}
	sort.Strings(doc.Enabled)
	return atomicwrite.WriteYAML(f.Path, doc, 0o644)
}

// IsInstalled reporta false si el archivo no se puede leer.
func (f *File) IsInstalled(_ context.Context, id string) bool {
	set, err := f.read()
	if err != nil {
		return false
	}
	_, ok := set[id]
	return ok
}

func (f *File) Enable(_ context.Context, id string) error {
	if _, ok := catalog.Lookup(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := set[id]; ok {
		return nil
	}
	set[id] = struct{}{}
	return f.write(set)
}

func (f *File) Disable(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := set[id]; !ok {
		return nil
	}
	delete(set, id)
	return f.write(set)
}

func (f *File) List(_ context.Context) ([]string, error) {
	set, err := f.read()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Seed crea el archivo con ids si todavía no existe.
func (f *File) Seed(ids []string) error {
	if _, err := os.Stat(f.Path); err == nil {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return f.write(set)
}
