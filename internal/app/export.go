package app

import (
	"context"
	"fmt"

	"scalper/internal/config"
	"scalper/internal/observability"
	"scalper/internal/scraper"
	"scalper/internal/storage"
)

// Export пишет результаты запуска в настроенную БД. Только выгрузка, обратно не читается.
func Export(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger, run storage.Run, items []scraper.ResultItem) (int, error) {
	if logger == nil {
		logger = observability.Nop()
	}

	repo, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s storage: %w", cfg.Driver, err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("Failed to close storage", "driver", cfg.Driver, "error", err)
		}
	}()

	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	saved, err := repo.SaveResults(ctx, storage.BuildRows(run, items))
	if err != nil {
		return 0, err
	}

	logger.Info("Results exported",
		"driver", cfg.Driver,
		"table", cfg.Table,
		"run_id", run.ID.String(),
		"rows", saved,
	)
	return saved, nil
}
