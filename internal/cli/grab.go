package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scalper/internal/app"
	"scalper/internal/render"
)

var (
	grabSelector string
	grabFrom     string
)

var grabCmd = &cobra.Command{
	Use:   "grab",
	Short: "Grab a single value from a web page",
	Long: `Fetches one page and prints the text of the first element matching the selector.
Numbers keep their original text, e.g. "2.5k". The URL is fetched as given:
%% is a placeholder only in config files.`,
	Example: `  scalper grab --selector "body > div > h1" --from https://example.com`,
	Args:    cobra.NoArgs,
	RunE:    runGrab,
}

func init() {
	grabCmd.Flags().StringVarP(&grabSelector, "selector", "s", "", "CSS selector of the value")
	grabCmd.Flags().StringVarP(&grabFrom, "from", "f", "", "URL of the page")
	_ = grabCmd.MarkFlagRequired("selector")
	_ = grabCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(grabCmd)
}

func runGrab(cmd *cobra.Command, _ []string) error {
	item, err := newOrchestrator().Grab(cmd.Context(), grabFrom, grabSelector)
	if err != nil {
		return err
	}

	if !item.OK() {
		return fmt.Errorf("%w: %s", app.ErrAllItemsFailed, render.ErrorMarker(item.Err))
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), render.Display(item))
	return err
}
