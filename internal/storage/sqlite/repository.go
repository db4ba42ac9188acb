package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"scalper/internal/config"
	"scalper/internal/observability"
	"scalper/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (storage.Repository, error) {
		return NewRepository(ctx, cfg, logger)
	})
}

// Repository выгружает результаты в файл SQLite (modernc.org/sqlite, без cgo).
// Время хранится как RFC3339Nano TEXT.
type Repository struct {
	db             *sql.DB
	table          string
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (*Repository, error) {
	if logger == nil {
		logger = observability.Nop()
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// один писатель; для ":memory:" это ещё и единственная база
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		table:          cfg.Table,
		commandTimeout: time.Duration(cfg.CommandTimeoutMS) * time.Millisecond,
		logger:         logger,
	}, nil
}

func (r *Repository) createTableSQL() string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT    NOT NULL,
			started_at     TEXT    NOT NULL,
			config_name    TEXT    NOT NULL,
			url            TEXT    NOT NULL,
			source_index   INTEGER NOT NULL,
			param_index    INTEGER NOT NULL,
			selector_index INTEGER NOT NULL,
			name           TEXT    NOT NULL,
			kind           TEXT    NOT NULL,
			text_value     TEXT    NOT NULL,
			number_value   REAL,
			error          TEXT    NOT NULL,
			checksum       TEXT    NOT NULL,
			UNIQUE (run_id, source_index, param_index, selector_index)
		)`, r.table)
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, r.createTableSQL()); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// SaveResults сохраняет строки запуска в одной транзакции
func (r *Repository) SaveResults(ctx context.Context, rows []storage.ResultRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, started_at, config_name, url, source_index, param_index,
			selector_index, name, kind, text_value, number_value, error, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.table)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err)
		}
	}()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			row.RunID,
			row.StartedAt.UTC().Format(time.RFC3339Nano),
			row.ConfigName,
			row.URL,
			row.SourceIndex,
			row.ParamIndex,
			row.SelectorIndex,
			row.Name,
			row.Kind,
			row.Text,
			row.Number,
			row.Error,
			row.CheckSum,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert %s/%s: %w", row.URL, row.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(rows), nil
}

// CountRun получает количество строк запуска
func (r *Repository) CountRun(ctx context.Context, runID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE run_id = ?`, r.table)
	if err := r.db.QueryRowContext(ctx, query, runID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
