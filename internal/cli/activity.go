package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/wire"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Read and append to a submission's activity log",
}

var activityLogCmd = &cobra.Command{
	Use:   "log [submission-id] [message]",
	Short: "Append a note to the activity log",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		category, _ := cmd.Flags().GetString("category")
		entry, err := a.Ledger.LogActivity(ctx, primary.LogActivityRequest{
			SubmissionID: args[0],
			Category:     category,
			Message:      strings.Join(args[1:], " "),
		})
		if err != nil {
			return fmt.Errorf("failed to log activity: %w", err)
		}
		fmt.Printf("✓ Logged %s\n", entry.ID)
		return nil
	},
}

var activityListCmd = &cobra.Command{
	Use:   "list [submission-id]",
	Short: "Show the activity log, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		adapter, err := wire.LedgerAdapter()
		if err != nil {
			return err
		}
		return adapter.Activity(ctx, args[0], limit)
	},
}

// ActivityCmd returns the activity command
func ActivityCmd() *cobra.Command {
	activityLogCmd.Flags().StringP("category", "c", "note", "Entry category")
	activityListCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries")

	activityCmd.AddCommand(activityLogCmd)
	activityCmd.AddCommand(activityListCmd)
	return activityCmd
}
