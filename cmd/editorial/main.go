package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/cli"
	"github.com/example/editorial/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "editorial",
		Short:   "Editorial workflow for journal submissions",
		Version: version.String(),
		Long: `editorial moves journal submissions through submission, review,
copyediting and production. It runs review rounds, tracks reviewer
assignments and keeps an activity log and task list per submission.`,
		SilenceUsage: true,
	}
	cli.RegisterGlobalFlags(rootCmd)

	// Workflow
	rootCmd.AddCommand(cli.SubmissionCmd())
	rootCmd.AddCommand(cli.RoundCmd())
	rootCmd.AddCommand(cli.ReviewCmd())
	rootCmd.AddCommand(cli.ParticipantCmd())
	rootCmd.AddCommand(cli.FormCmd())

	// Queues and ledger
	rootCmd.AddCommand(cli.QueueCmd())
	rootCmd.AddCommand(cli.DashboardCmd())
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.ActivityCmd())

	// Operations
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.SeedCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
