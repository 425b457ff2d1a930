// Package sqlite implementa el adapter SQLite (modernc.org/sqlite, sin cgo)
// sobre database/sql. Útil para instalaciones de un solo nodo.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dropDatabas3/multilogin/internal/domain/repository"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/store"
	migrations "github.com/dropDatabas3/multilogin/migrations/sqlite"
)

func init() {
	store.RegisterAdapter(&sqliteAdapter{})
}

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string { return "sqlite" }

func (a *sqliteAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "file:multilogin.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// un solo writer: evita SQLITE_BUSY entre conexiones del pool
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return NewConnection(db), nil
}

// Connection envuelve un *sql.DB.
type Connection struct {
	db *sql.DB
}

// NewConnection usa un *sql.DB ya abierto (tests con sqlmock).
func NewConnection(db *sql.DB) *Connection { return &Connection{db: db} }

func (c *Connection) Name() string                       { return "sqlite" }
func (c *Connection) Ping(ctx context.Context) error     { return c.db.PingContext(ctx) }
func (c *Connection) Close() error                       { return c.db.Close() }
func (c *Connection) Blocks() repository.BlockRepository { return &blockRepo{db: c.db} }

// Migrate aplica migrations/sqlite.
func (c *Connection) Migrate(ctx context.Context) (int, error) {
	return store.NewMigrator(migrations.FS, migrations.Dir).Run(ctx, migrationExec{db: c.db})
}

type migrationExec struct{ db *sql.DB }

func (m migrationExec) Exec(ctx context.Context, q string) error {
	_, err := m.db.ExecContext(ctx, q)
	return err
}

func (m migrationExec) AppliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func (m migrationExec) RecordVersion(ctx context.Context, mig store.Migration) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		mig.Version, mig.Name, time.Now().UTC().Format(time.RFC3339))
	return err
}

// ─── BlockRepository ───

// Las fechas se guardan como TEXT con fracción fija para que ORDER BY sea cronológico.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type blockRepo struct{ db *sql.DB }

const selectBlock = `SELECT id, plugin, region, weight, settings, created_at, updated_at FROM login_block`

type scanner interface {
	Scan(dest ...any) error
}

func scanBlock(row scanner) (*repository.Block, error) {
	var (
		b                repository.Block
		raw              string
		created, updated string
	)
	if err := row.Scan(&b.ID, &b.Plugin, &b.Region, &b.Weight, &raw, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &b.Settings); err != nil {
		return nil, fmt.Errorf("sqlite: decode settings of %s: %w", b.ID, err)
	}
	if b.Settings.ProviderSettings == nil {
		b.Settings.ProviderSettings = map[string]types.ProviderSettings{}
	}
	var err error
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return &b, nil
}

func isUniqueViolation(err error) bool {
	// modernc reporta "constraint failed: UNIQUE constraint failed: ..."
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *blockRepo) Create(ctx context.Context, b *repository.Block) error {
	raw, err := json.Marshal(b.Settings)
	if err != nil {
		return fmt.Errorf("sqlite: encode settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO login_block (id, plugin, region, weight, settings, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Plugin, b.Region, b.Weight, string(raw),
		b.CreatedAt.UTC().Format(timeLayout), b.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: block %s", repository.ErrConflict, b.ID)
		}
		return fmt.Errorf("sqlite: insert block: %w", err)
	}
	return nil
}

func (r *blockRepo) Get(ctx context.Context, id string) (*repository.Block, error) {
	b, err := scanBlock(r.db.QueryRowContext(ctx, selectBlock+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return b, err
}

func (r *blockRepo) List(ctx context.Context) ([]repository.Block, error) {
	rows, err := r.db.QueryContext(ctx, selectBlock+` ORDER BY weight, created_at`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list blocks: %w", err)
	}
	defer rows.Close()

	out := []repository.Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *blockRepo) UpdateSettings(ctx context.Context, id string, s types.BlockSettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("sqlite: encode settings: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE login_block SET settings = ?, updated_at = ? WHERE id = ?`,
		string(raw), time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("sqlite: update settings: %w", err)
	}
	return expectOne(res)
}

func (r *blockRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_block WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete block: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
