package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scalper/internal/config"
)

var checkPath string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a config file without fetching anything",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkPath, "path", "p", "", "path to the config file")
	_ = checkCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	conf, err := config.LoadResources(checkPath)
	if err != nil {
		return err
	}

	selectors := 0
	for _, res := range conf.Resources {
		selectors += len(res.Selectors)
	}

	needs := "no"
	if conf.NeedsParameters() {
		needs = "yes"
	}

	out := cmd.OutOrStdout()
	if conf.Name != "" {
		fmt.Fprintf(out, "Config:           %s\n", conf.Name)
	}
	if conf.Description != "" {
		fmt.Fprintf(out, "Description:      %s\n", conf.Description)
	}
	fmt.Fprintf(out, "Resources:        %d\n", len(conf.Resources))
	fmt.Fprintf(out, "Selectors:        %d\n", selectors)
	fmt.Fprintf(out, "Needs parameters: %s\n", needs)
	return nil
}
