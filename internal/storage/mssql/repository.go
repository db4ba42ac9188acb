package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"scalper/internal/config"
	"scalper/internal/observability"
	"scalper/internal/storage"
)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (storage.Repository, error) {
		return NewRepository(ctx, cfg, logger)
	})
}

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

	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	commandTimeout := time.Duration(cfg.CommandTimeoutMS) * time.Millisecond

	// Тестируем соединение
	pingCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		table:          cfg.Table,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`
		IF OBJECT_ID(N'dbo.%[1]s', N'U') IS NULL
		CREATE TABLE dbo.%[1]s (
			[UID]           BIGINT IDENTITY(1,1) PRIMARY KEY,
			[RunID]         UNIQUEIDENTIFIER NOT NULL,
			[StartedAt]     DATETIME2        NOT NULL,
			[ConfigName]    NVARCHAR(256)    NOT NULL,
			[URL]           NVARCHAR(2048)   NOT NULL,
			[SourceIndex]   INT              NOT NULL,
			[ParamIndex]    INT              NOT NULL,
			[SelectorIndex] INT              NOT NULL,
			[Name]          NVARCHAR(256)    NOT NULL,
			[Kind]          NVARCHAR(16)     NOT NULL,
			[TextValue]     NVARCHAR(MAX)    NOT NULL,
			[NumberValue]   FLOAT            NULL,
			[Error]         NVARCHAR(MAX)    NOT NULL,
			[CheckSum]      CHAR(64)         NOT NULL,
			CONSTRAINT UQ_%[1]s_Position UNIQUE ([RunID], [SourceIndex], [ParamIndex], [SelectorIndex])
		);`, table)
}

func insertSQL(table string) string {
	return fmt.Sprintf(`
		INSERT INTO dbo.%s ([RunID], [StartedAt], [ConfigName], [URL], [SourceIndex], [ParamIndex],
			[SelectorIndex], [Name], [Kind], [TextValue], [NumberValue], [Error], [CheckSum])
		VALUES (@RunID, @StartedAt, @ConfigName, @URL, @SourceIndex, @ParamIndex,
			@SelectorIndex, @Name, @Kind, @TextValue, @NumberValue, @Error, @CheckSum);`, table)
}

// EnsureSchema создаёт таблицу результатов, если её нет
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, createTableSQL(r.table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.table, err)
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

	stmt, err := tx.PrepareContext(ctx, insertSQL(r.table))
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
			sql.Named("RunID", row.RunID),
			sql.Named("StartedAt", row.StartedAt),
			sql.Named("ConfigName", row.ConfigName),
			sql.Named("URL", row.URL),
			sql.Named("SourceIndex", row.SourceIndex),
			sql.Named("ParamIndex", row.ParamIndex),
			sql.Named("SelectorIndex", row.SelectorIndex),
			sql.Named("Name", row.Name),
			sql.Named("Kind", row.Kind),
			sql.Named("TextValue", row.Text),
			sql.Named("NumberValue", row.Number),
			sql.Named("Error", row.Error),
			sql.Named("CheckSum", row.CheckSum),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to execute insert: %w", err)
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

	query := fmt.Sprintf(`SELECT COUNT(*) FROM dbo.%s WHERE [RunID] = @RunID`, r.table)

	var count int
	err := r.db.QueryRowContext(ctx, query, sql.Named("RunID", runID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}

	return count, nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
