package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/db"
	"github.com/example/editorial/internal/wire"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cfg, err := wire.Config()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer database.Close()

		before, err := db.CurrentVersion(ctx, database)
		if err != nil {
			return err
		}
		if err := db.InitSchema(ctx, database); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		after, err := db.CurrentVersion(ctx, database)
		if err != nil {
			return err
		}

		switch {
		case before == 0:
			fmt.Printf("✓ Created schema at version %d (%s)\n", after, cfg.Database.Path)
		case before == after:
			fmt.Printf("✓ Schema already at version %d\n", after)
		default:
			fmt.Printf("✓ Migrated schema from version %d to %d\n", before, after)
		}
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cfg, err := wire.Config()
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer database.Close()

		current, err := db.CurrentVersion(ctx, database)
		if err != nil {
			return err
		}
		latest := db.LatestVersion()
		fmt.Printf("Database: %s\n", cfg.Database.Path)
		fmt.Printf("Schema version: %d of %d\n", current, latest)
		if current < latest {
			fmt.Println("Run 'editorial migrate' to apply pending migrations.")
		}
		return nil
	},
}

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	migrateCmd.AddCommand(migrateStatusCmd)
	return migrateCmd
}
