package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/db"
	"github.com/example/editorial/internal/wire"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load YAML fixtures into the database",
	Long: `Load forms, submissions, participants, rounds, assignments and tasks from a
YAML fixture file. Rows are inserted as given; no workflow rules run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := wire.Default()
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			path = a.Config.Seed.FixturesPath
		}
		if path == "" {
			return fmt.Errorf("no fixture file: pass --file or set seed.fixtures_path")
		}

		fx, err := db.LoadFixtures(path)
		if err != nil {
			return err
		}
		report, err := db.SeedFixtures(cmd.Context(), a.DB, fx)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		fmt.Printf("✓ Seeded from %s\n", path)
		fmt.Printf("  Forms: %d, submissions: %d, participants: %d\n", report.Forms, report.Submissions, report.Participants)
		fmt.Printf("  Rounds: %d, assignments: %d, tasks: %d\n", report.Rounds, report.Assignments, report.Tasks)
		return nil
	},
}

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	seedCmd.Flags().StringP("file", "f", "", "Fixture file (default seed.fixtures_path)")
	return seedCmd
}
