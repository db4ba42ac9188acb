package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"scalper/internal/app"
	"scalper/internal/config"
	"scalper/internal/render"
	"scalper/internal/scraper"
	"scalper/internal/storage"
)

var (
	batchPath     string
	batchOneParam string
	batchParams   []string
	batchJSON     bool
	batchExport   bool
	batchOutput   string
)

var batchCmd = &cobra.Command{
	Use:   "batch [params...]",
	Short: "Grab values from every page of a config file",
	Long: `Runs every resource of a config file and prints one row per selector.

URLs may contain the %% placeholder. Fill it with one value for every
resource (--one-param) or expand each resource once per value (--params).
Failed rows are shown as <error: ...>; the exit code is 2 only when every
row failed.`,
	Example: `  scalper batch --path crates.toml --params serde tokio
  scalper batch -p crates.toml --one-param serde --json`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchPath, "path", "p", "", "path to the config file (.toml, .json, .yaml)")
	batchCmd.Flags().StringVar(&batchOneParam, "one-param", "", "value substituted into every %% placeholder")
	batchCmd.Flags().StringArrayVar(&batchParams, "params", nil, "value to expand %% placeholders with, taken verbatim (commas included); repeat the flag or list more as arguments")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output results as JSON")
	batchCmd.Flags().BoolVar(&batchExport, "export", false, "also save results to the configured database")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "write output to a file instead of stdout")
	_ = batchCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(batchCmd)
}

func batchParamsMode(cmd *cobra.Command, args []string) (scraper.Params, error) {
	listed := cmd.Flags().Changed("params")
	one := cmd.Flags().Changed("one-param")

	switch {
	case one && (listed || len(args) > 0):
		return scraper.Params{}, errors.New("--one-param cannot be combined with --params")
	case one:
		return scraper.OneParam(batchOneParam), nil
	case listed:
		return scraper.ListParams(append(append([]string(nil), batchParams...), args...)...), nil
	case len(args) > 0:
		return scraper.Params{}, fmt.Errorf("unexpected arguments %q: use --params", args)
	default:
		return scraper.NoParams(), nil
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	params, err := batchParamsMode(cmd, args)
	if err != nil {
		return err
	}

	conf, err := config.LoadResources(batchPath)
	if err != nil {
		return err
	}

	started := time.Now()
	items, stats, err := newOrchestrator().Run(cmd.Context(), conf, params)
	if err != nil {
		return err
	}

	if err := writeBatchOutput(cmd, items); err != nil {
		return err
	}

	if batchExport {
		run := storage.NewRun(conf.Name, started)
		saved, err := app.Export(cmd.Context(), appConfig.Storage, logger, run, items)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		cmd.PrintErrf("Exported %d rows (run %s)\n", saved, run.ID)
	}

	if stats.AllFailed() {
		return fmt.Errorf("%w: %d of %d", app.ErrAllItemsFailed, stats.Failed, stats.Items)
	}
	return nil
}

func writeBatchOutput(cmd *cobra.Command, items []scraper.ResultItem) (err error) {
	var w io.Writer = cmd.OutOrStdout()
	if batchOutput != "" {
		file, ferr := os.Create(batchOutput)
		if ferr != nil {
			return fmt.Errorf("failed to create output file: %w", ferr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = file
	}

	if batchJSON {
		return render.JSON(w, items)
	}
	return render.Table(w, items, render.Options{MaxCellChars: appConfig.Render.MaxCellChars})
}
