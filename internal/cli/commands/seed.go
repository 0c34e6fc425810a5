package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/branchd-dev/authgate/internal/auth"
	"github.com/branchd-dev/authgate/internal/seed"
	"github.com/branchd-dev/authgate/internal/store"
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all users with the fixture users",
		Long: `Deletes every user and inserts the fixture users with freshly salted
password hashes. Without --file the built-in fixtures are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file")

	return cmd
}

func runSeed(ctx context.Context, cmd *cobra.Command, file string) error {
	fixtures, err := loadFixtures(file)
	if err != nil {
		return err
	}

	cfg, db, log, err := openDatabase()
	if err != nil {
		return err
	}
	defer store.Close(db)

	hasher := auth.NewHasher(cfg.Security.BcryptCost)
	if err := seed.Run(ctx, store.NewUserStore(db), hasher, fixtures, log); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %d users\n", len(fixtures.Users))
	return nil
}

func loadFixtures(file string) (*seed.Fixtures, error) {
	if file == "" {
		return seed.Default()
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return seed.Parse(data)
}
