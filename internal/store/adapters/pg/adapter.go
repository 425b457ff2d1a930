// Package pg implementa el adapter PostgreSQL sobre pgxpool.
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/multilogin/internal/domain/repository"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/store"
	"github.com/dropDatabas3/multilogin/migrations/postgres"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

// uniqueViolation es el SQLSTATE de PostgreSQL para duplicados.
const uniqueViolation = "23505"

type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}
	return &Connection{pool: pool}, nil
}

// Connection es una conexión activa a PostgreSQL.
type Connection struct {
	pool *pgxpool.Pool
}

func (c *Connection) Name() string                       { return "postgres" }
func (c *Connection) Ping(ctx context.Context) error     { return c.pool.Ping(ctx) }
func (c *Connection) Close() error                       { c.pool.Close(); return nil }
func (c *Connection) Blocks() repository.BlockRepository { return &blockRepo{pool: c.pool} }

// Migrate aplica migrations/postgres.
func (c *Connection) Migrate(ctx context.Context) (int, error) {
	return store.NewMigrator(postgres.FS, postgres.Dir).Run(ctx, migrationExec{pool: c.pool})
}

type migrationExec struct{ pool *pgxpool.Pool }

func (m migrationExec) Exec(ctx context.Context, q string) error {
	_, err := m.pool.Exec(ctx, q)
	return err
}

func (m migrationExec) AppliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(versions))
	for _, v := range versions {
		out[int(v)] = true
	}
	return out, nil
}

func (m migrationExec) RecordVersion(ctx context.Context, mig store.Migration) error {
	_, err := m.pool.Exec(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)`,
		mig.Version, mig.Name, time.Now().UTC().Format(time.RFC3339))
	return err
}

// ─── BlockRepository ───

type blockRepo struct{ pool *pgxpool.Pool }

const selectBlock = `SELECT id, plugin, region, weight, settings, created_at, updated_at FROM login_block`

func scanBlock(row pgx.Row) (*repository.Block, error) {
	var (
		b   repository.Block
		raw []byte
	)
	if err := row.Scan(&b.ID, &b.Plugin, &b.Region, &b.Weight, &raw, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &b.Settings); err != nil {
		return nil, fmt.Errorf("pg: decode settings of %s: %w", b.ID, err)
	}
	if b.Settings.ProviderSettings == nil {
		b.Settings.ProviderSettings = map[string]types.ProviderSettings{}
	}
	return &b, nil
}

func (r *blockRepo) Create(ctx context.Context, b *repository.Block) error {
	raw, err := json.Marshal(b.Settings)
	if err != nil {
		return fmt.Errorf("pg: encode settings: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO login_block (id, plugin, region, weight, settings, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.Plugin, b.Region, b.Weight, raw, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: block %s", repository.ErrConflict, b.ID)
		}
		return fmt.Errorf("pg: insert block: %w", err)
	}
	return nil
}

func (r *blockRepo) Get(ctx context.Context, id string) (*repository.Block, error) {
	b, err := scanBlock(r.pool.QueryRow(ctx, selectBlock+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return b, err
}

func (r *blockRepo) List(ctx context.Context) ([]repository.Block, error) {
	rows, err := r.pool.Query(ctx, selectBlock+` ORDER BY weight, created_at`)
	if err != nil {
		return nil, fmt.Errorf("pg: list blocks: %w", err)
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
		return fmt.Errorf("pg: encode settings: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE login_block SET settings = $2, updated_at = now() WHERE id = $1`, id, raw)
	if err != nil {
		return fmt.Errorf("pg: update settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *blockRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM login_block WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pg: delete block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
