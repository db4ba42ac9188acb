// Package cli wires the scalper commands: grab, batch, new, edit and check.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"scalper/internal/app"
	"scalper/internal/config"
	"scalper/internal/fetcher"
	"scalper/internal/observability"
	"scalper/internal/scraper"
	_ "scalper/internal/storage/mssql"
	_ "scalper/internal/storage/postgres"
	_ "scalper/internal/storage/sqlite"
)

var (
	settingsPath string
	verbose      bool

	appConfig *config.Config
	logger    *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scalper",
	Short: "Extract named values from web pages with CSS selectors",
	Long: `Scalper fetches static HTML pages, picks values with CSS selectors and
normalizes them into text or numbers ("2.5k" becomes 2500).

Use grab for a single value, or describe many pages in a config file
(TOML, JSON or YAML) and run them with batch.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "path to settings YAML (default $"+config.SettingsEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with ctx; cancelling ctx abandons in-flight fetches.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(settingsPath)
	if err != nil {
		return err
	}

	level := cfg.Observability.LogLevel
	if verbose {
		level = "debug"
	}

	l, err := observability.NewLogger(observability.Options{
		LogPath:       cfg.Observability.LogPath,
		LogLevel:      level,
		MaxSizeMB:     cfg.Observability.LogMaxSizeMB,
		MaxBackups:    cfg.Observability.LogMaxBackups,
		MaxAgeDays:    cfg.Observability.LogMaxAgeDays,
		Console:       cmd.ErrOrStderr(),
		DisableColors: cfg.Observability.DisableColors,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	appConfig = cfg
	logger = l
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if logger != nil {
		_ = logger.Close()
	}
}

func newOrchestrator() *app.Orchestrator {
	f := fetcher.NewFetcher(appConfig, logger)
	return app.NewOrchestrator(appConfig, logger, scraper.NewExtractor(f.Get, logger))
}

// ExitCode переводит ошибку команды в код выхода. 130 означает прерывание сигналом,
// 2 означает, что все элементы с ошибкой, 1 покрывает ошибки конфигурации и аргументов.
func ExitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return 0
	case app.Interrupted(ctx):
		return 130
	case errors.Is(err, app.ErrAllItemsFailed):
		return 2
	default:
		return 1
	}
}
