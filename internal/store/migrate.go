package store

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
)

// Formato de archivo: {version}_{name}.up.sql (ej: 0001_blocks.up.sql)
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+?)(?:\.up)?\.sql$`)

// MigrationsTableDDL es portable entre postgres y sqlite.
const MigrationsTableDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL
)`

// Migration representa una migración individual.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationExecutor abstrae pgx vs database/sql (cada uno con sus placeholders).
type MigrationExecutor interface {
	Exec(ctx context.Context, query string) error
	AppliedVersions(ctx context.Context) (map[int]bool, error)
	RecordVersion(ctx context.Context, m Migration) error
}

// Migrator aplica migraciones SQL embebidas.
type Migrator struct {
	fsys fs.FS
	dir  string
}

// NewMigrator crea un Migrator sobre dir dentro de fsys.
func NewMigrator(fsys fs.FS, dir string) *Migrator {
	return &Migrator{fsys: fsys, dir: dir}
}

// ParseMigrations lee las migraciones ordenadas por versión.
func (m *Migrator) ParseMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var out []Migration
	seen := map[int]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		version, _ := strconv.Atoi(match[1])
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d (%s, %s)", version, prev, e.Name())
		}
		seen[version] = e.Name()

		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: match[2], SQL: string(content)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Run aplica las migraciones pendientes y retorna cuántas aplicó.
func (m *Migrator) Run(ctx context.Context, exec MigrationExecutor) (int, error) {
	if err := exec.Exec(ctx, MigrationsTableDDL); err != nil {
		return 0, fmt.Errorf("creating migrations table: %w", err)
	}
	applied, err := exec.AppliedVersions(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting applied migrations: %w", err)
	}
	migrations, err := m.ParseMigrations()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}
		if err := exec.Exec(ctx, mig.SQL); err != nil {
			return n, fmt.Errorf("applying migration %d_%s: %w", mig.Version, mig.Name, err)
		}
		if err := exec.RecordVersion(ctx, mig); err != nil {
			return n, fmt.Errorf("recording migration %d: %w", mig.Version, err)
		}
		n++
	}
	return n, nil
}
