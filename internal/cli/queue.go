package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/wire"
)

var queueCmd = &cobra.Command{
	Use:   "queue [my_queue|unassigned|all_active|archived]",
	Short: "List the submissions of an editorial queue",
	Long: `List one page of a queue as seen by the caller.

  my_queue    submissions you take part in that are still active
  unassigned  active submissions with no editor
  all_active  every active submission you may see
  archived    declined, published and scheduled submissions

An empty my_queue falls back to the unassigned queue for editors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext(cmd)
		if err != nil {
			return err
		}
		kind := "my_queue"
		if len(args) == 1 {
			kind = args[0]
		}
		journalID, _ := cmd.Flags().GetString("journal")
		stage, _ := cmd.Flags().GetString("stage")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		noFallback, _ := cmd.Flags().GetBool("no-fallback")

		adapter, err := wire.QueueAdapter()
		if err != nil {
			return err
		}
		req := primary.QueueRequest{
			Queue:     kind,
			JournalID: journalID,
			Stage:     stage,
			Search:    search,
			Limit:     limit,
			Offset:    offset,
		}
		if noFallback {
			return adapter.List(ctx, req)
		}
		return adapter.ListOrUnassigned(ctx, req)
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show queue counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext(cmd)
		if err != nil {
			return err
		}
		journalID, _ := cmd.Flags().GetString("journal")
		mine, _ := cmd.Flags().GetBool("my-tasks")

		adapter, err := wire.QueueAdapter()
		if err != nil {
			return err
		}
		return adapter.Dashboard(ctx, primary.DashboardRequest{JournalID: journalID, MyTasksOnly: mine})
	},
}

// QueueCmd returns the queue command
func QueueCmd() *cobra.Command {
	queueCmd.Flags().StringP("journal", "j", "", "Limit to one journal")
	queueCmd.Flags().String("stage", "", "Limit to one stage")
	queueCmd.Flags().StringP("search", "q", "", "Match title or ID")
	queueCmd.Flags().IntP("limit", "n", 0, "Page size (default from config)")
	queueCmd.Flags().Int("offset", 0, "Page offset")
	queueCmd.Flags().Bool("no-fallback", false, "Do not show unassigned submissions when my_queue is empty")
	return queueCmd
}

// DashboardCmd returns the dashboard command
func DashboardCmd() *cobra.Command {
	dashboardCmd.Flags().StringP("journal", "j", "", "Limit to one journal")
	dashboardCmd.Flags().Bool("my-tasks", false, "Count only your own open tasks")
	return dashboardCmd
}
