package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/authgate/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the authgate command tree
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "authgate",
		Short: "Authgate - session login and role-gated user routes",
		Long: `Authgate CLI - Manage the Authgate database.

Configuration is read from the environment and from .env files in the
current directory, the same way the server reads it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "authgate version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewSeedCmd())
	rootCmd.AddCommand(commands.NewHashPasswordCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
