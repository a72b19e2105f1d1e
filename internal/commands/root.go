package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "bank-server",
		Short: "ATM money movement and limit enforcement server",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file; BANK_* variables override it")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newMigrateCommand(&configPath))
	rootCmd.AddCommand(newTokenCommand(&configPath))

	return rootCmd
}
