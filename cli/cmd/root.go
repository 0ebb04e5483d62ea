package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "tomlv",
		Short:        "tomlv",
		SilenceUsage: true,
		Long:         `CLI tool for validating and inspecting TOML documents. Syntax errors are reported with the exact source position of the offending text.`,
	}

	verbose bool
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each file as it is processed")
	return rootCmd.Execute()
}
