package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scalper/internal/config"
)

var editPath string

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a config file interactively",
	Long: `Lets you pick a resource and change its URL, add, rename, re-point or
delete its selectors, or delete the resource itself. The file is rewritten
in its own format after you confirm.`,
	Example: `  scalper edit --path crates.toml`,
	Args:    cobra.NoArgs,
	RunE:    runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editPath, "path", "p", "", "path to the config file (.toml, .json, .yaml)")
	_ = editCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, _ []string) error {
	conf, err := config.LoadResources(editPath)
	if err != nil {
		return err
	}

	save, err := dialog(cmd).Edit(conf)
	if err != nil {
		return err
	}

	if !save {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Changes discarded.")
		return err
	}

	if err := config.SaveResources(editPath, conf, true); err != nil {
		return err
	}

	logger.Info("Config saved", "path", editPath, "resources", len(conf.Resources))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Config file saved!")
	return err
}
