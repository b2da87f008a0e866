package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/wire"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage editorial tasks",
	Long:  "Create, list, claim and close the editorial tasks attached to submissions",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create [submission-id] [title]",
	Short: "Create a task on a submission",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		stage, _ := cmd.Flags().GetString("stage")
		assignee, _ := cmd.Flags().GetString("assignee")
		due, _ := cmd.Flags().GetString("due")

		task, err := a.Ledger.CreateTask(ctx, primary.CreateTaskRequest{
			SubmissionID: args[0],
			Stage:        stage,
			Title:        strings.Join(args[1:], " "),
			AssigneeID:   assignee,
			DueDate:      due,
		})
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		fmt.Printf("✓ Created task %s: %s\n", task.ID, task.Title)
		if task.AssigneeID != "" {
			fmt.Printf("  Assigned to: %s\n", task.AssigneeID)
		}
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext(cmd)
		if err != nil {
			return err
		}
		submissionID, _ := cmd.Flags().GetString("submission")
		journalID, _ := cmd.Flags().GetString("journal")
		assignee, _ := cmd.Flags().GetString("assignee")
		unassigned, _ := cmd.Flags().GetBool("unassigned")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		noFallback, _ := cmd.Flags().GetBool("no-fallback")

		adapter, err := wire.LedgerAdapter()
		if err != nil {
			return err
		}
		req := primary.ListTasksRequest{
			SubmissionID: submissionID,
			JournalID:    journalID,
			AssigneeID:   assignee,
			Unassigned:   unassigned,
			Status:       status,
			Limit:        limit,
		}
		if assignee != "" && (status == "" || status == "open") && !noFallback {
			return adapter.TasksOrUnassigned(ctx, req)
		}
		return adapter.Tasks(ctx, req)
	},
}

var taskClaimCmd = &cobra.Command{
	Use:   "claim [task-id]",
	Short: "Claim an unassigned task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		if err := a.Ledger.ClaimTask(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to claim task: %w", err)
		}
		fmt.Printf("✓ Task %s claimed\n", args[0])
		return nil
	},
}

var taskCloseCmd = &cobra.Command{
	Use:   "close [task-id]",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		if err := a.Ledger.CloseTask(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to close task: %w", err)
		}
		fmt.Printf("✓ Task %s closed\n", args[0])
		return nil
	},
}

// TaskCmd returns the task command
func TaskCmd() *cobra.Command {
	taskCreateCmd.Flags().String("stage", "", "Workflow stage (default: the submission's stage)")
	taskCreateCmd.Flags().String("assignee", "", "Assign to this user")
	taskCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD or RFC 3339)")

	taskListCmd.Flags().String("submission", "", "Filter by submission")
	taskListCmd.Flags().StringP("journal", "j", "", "Filter by journal")
	taskListCmd.Flags().String("assignee", "", "Filter by assignee")
	taskListCmd.Flags().Bool("unassigned", false, "Only unassigned tasks")
	taskListCmd.Flags().StringP("status", "s", "", "Filter by status (open, done)")
	taskListCmd.Flags().IntP("limit", "n", 0, "Maximum number of tasks")
	taskListCmd.Flags().Bool("no-fallback", false, "Do not show unassigned tasks when the assignee has none open")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskClaimCmd)
	taskCmd.AddCommand(taskCloseCmd)
	return taskCmd
}
