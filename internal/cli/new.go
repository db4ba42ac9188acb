package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scalper/internal/builder"
	"scalper/internal/config"
)

var (
	newName   string
	newFormat string
	newForce  bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a config file interactively",
	Long: `Asks for resources and their selectors and saves them as <name>.<format>.
An existing file is not replaced unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVarP(&newName, "name", "n", "default", "base name of the config file")
	newCmd.Flags().StringVar(&newFormat, "format", "toml", "file format: toml, json or yaml")
	newCmd.Flags().BoolVar(&newForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, _ []string) error {
	format, err := config.ParseFormat(newFormat)
	if err != nil {
		return err
	}
	path := newName + "." + string(format)

	conf, err := dialog(cmd).Build(newName)
	if err != nil {
		return err
	}

	if err := config.SaveResources(path, conf, newForce); err != nil {
		return err
	}

	logger.Info("Config saved", "path", path, "resources", len(conf.Resources))
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return err
}

// dialog печатает подсказки, только если ввод идёт с терминала.
func dialog(cmd *cobra.Command) *builder.Builder {
	in := cmd.InOrStdin()
	echo := true
	if f, ok := in.(*os.File); ok {
		echo = term.IsTerminal(int(f.Fd()))
	}
	return builder.New(in, cmd.OutOrStdout(), echo)
}
