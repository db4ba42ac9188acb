package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scalper/internal/config"
	"scalper/internal/observability"
	"scalper/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (storage.Repository, error) {
		return NewRepository(ctx, cfg, logger)
	})
}

type Repository struct {
	pool           *pgxpool.Pool
	table          string
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (*Repository, error) {
	if logger == nil {
		logger = observability.Nop()
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	commandTimeout := time.Duration(cfg.CommandTimeoutMS) * time.Millisecond

	pingCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		pool:           pool,
		table:          cfg.Table,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// columns задаёт порядок колонок для COPY, он совпадает с copyRow.
var columns = []string{
	"run_id", "started_at", "config_name", "url", "source_index", "param_index",
	"selector_index", "name", "kind", "text_value", "number_value", "error", "checksum",
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id             BIGSERIAL PRIMARY KEY,
			run_id         TEXT             NOT NULL,
			started_at     TIMESTAMPTZ      NOT NULL,
			config_name    TEXT             NOT NULL,
			url            TEXT             NOT NULL,
			source_index   INTEGER          NOT NULL,
			param_index    INTEGER          NOT NULL,
			selector_index INTEGER          NOT NULL,
			name           TEXT             NOT NULL,
			kind           TEXT             NOT NULL,
			text_value     TEXT             NOT NULL,
			number_value   DOUBLE PRECISION NULL,
			error          TEXT             NOT NULL,
			checksum       CHAR(64)         NOT NULL,
			CONSTRAINT %[1]s_position UNIQUE (run_id, source_index, param_index, selector_index)
		)`, table)
}

func copyRow(row storage.ResultRow) []any {
	var number *float64
	if row.Number.Valid {
		n := row.Number.Float64
		number = &n
	}
	return []any{
		row.RunID, row.StartedAt, row.ConfigName, row.URL, row.SourceIndex, row.ParamIndex,
		row.SelectorIndex, row.Name, row.Kind, row.Text, number, row.Error, row.CheckSum,
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, createTableSQL(r.table)); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// SaveResults копирует строки через COPY в одной транзакции
func (r *Repository) SaveResults(ctx context.Context, rows []storage.ResultRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	src := make([][]any, 0, len(rows))
	for _, row := range rows {
		src = append(src, copyRow(row))
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{r.table}, columns, pgx.CopyFromRows(src))
	if err != nil {
		return 0, fmt.Errorf("failed to copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return int(n), nil
}

func (r *Repository) CountRun(ctx context.Context, runID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE run_id = $1`, r.table)
	if err := r.pool.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}
