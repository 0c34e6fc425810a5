package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/authgate/internal/store"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and sessions tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, _, err := openDatabase()
			if err != nil {
				return err
			}
			defer store.Close(db)

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Database migrated")
			return nil
		},
	}
}
