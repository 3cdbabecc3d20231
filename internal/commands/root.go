package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cpa005/internal/buildinfo"
	"github.com/cleared-dev/cpa005/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "cpa005",
		Short:   "Convert payment spreadsheets to CPA-005 bank files",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "config file (defaults apply if missing)")

	loadConfig := func() (*config.Config, error) {
		return config.LoadOrDefault(configPath)
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConvertCommand(loadConfig))
	rootCmd.AddCommand(newServeCommand(loadConfig))

	return rootCmd
}
