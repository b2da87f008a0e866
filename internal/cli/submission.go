package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/wire"
)

var submissionCmd = &cobra.Command{
	Use:   "submission",
	Short: "Manage submissions",
	Long:  "Create, inspect, move through the workflow and delete submissions",
}

var submissionCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Register a new submission",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		journalID, _ := cmd.Flags().GetString("journal")
		authorID, _ := cmd.Flags().GetString("author")
		rawMeta, _ := cmd.Flags().GetStringToString("meta")

		meta := make(map[string]any, len(rawMeta))
		for k, v := range rawMeta {
			meta[k] = v
		}
		resp, err := a.Submissions.CreateSubmission(ctx, primary.CreateSubmissionRequest{
			JournalID: journalID,
			Title:     strings.Join(args, " "),
			AuthorID:  authorID,
			Metadata:  meta,
		})
		if err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		fmt.Printf("✓ Created submission %s: %s\n", resp.SubmissionID, resp.Submission.Title)
		fmt.Printf("  Journal: %s\n", resp.Submission.JournalID)
		return nil
	},
}

var submissionShowCmd = &cobra.Command{
	Use:   "show [submission-id]",
	Short: "Show a submission with its rounds, reviewers and participants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext(cmd)
		if err != nil {
			return err
		}
		adapter, err := wire.ReviewAdapter()
		if err != nil {
			return err
		}
		return adapter.Show(ctx, args[0])
	},
}

var submissionWorkflowCmd = &cobra.Command{
	Use:   "workflow [submission-id]",
	Short: "Move a submission to another stage and/or status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		stage, _ := cmd.Flags().GetString("stage")
		status, _ := cmd.Flags().GetString("status")
		note, _ := cmd.Flags().GetString("note")
		correction, _ := cmd.Flags().GetBool("correction")

		sub, err := a.Submissions.ChangeWorkflow(ctx, primary.ChangeWorkflowRequest{
			SubmissionID: args[0],
			TargetStage:  stage,
			Status:       status,
			Note:         note,
			Correction:   correction,
		})
		if err != nil {
			return fmt.Errorf("failed to change workflow: %w", err)
		}
		fmt.Printf("✓ Submission %s is at %s (%s)\n", sub.ID, sub.Stage, sub.Status)
		return nil
	},
}

var submissionDeleteCmd = &cobra.Command{
	Use:   "delete [submission-id]",
	Short: "Delete a submission (its activity log is kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		if err := a.Submissions.DeleteSubmission(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to delete submission: %w", err)
		}
		fmt.Printf("✓ Submission %s deleted\n", args[0])
		return nil
	},
}

// SubmissionCmd returns the submission command
func SubmissionCmd() *cobra.Command {
	submissionCreateCmd.Flags().StringP("journal", "j", "", "Journal ID (required)")
	submissionCreateCmd.Flags().String("author", "", "Author user ID (defaults to --as)")
	submissionCreateCmd.Flags().StringToString("meta", nil, "Metadata key=value pairs")
	submissionWorkflowCmd.Flags().String("stage", "", "Target stage (submission, review, copyediting, production)")
	submissionWorkflowCmd.Flags().String("status", "", "Target status (queued, declined, published, scheduled)")
	submissionWorkflowCmd.Flags().String("note", "", "Activity note")
	submissionWorkflowCmd.Flags().Bool("correction", false, "Administrative correction (admins only)")

	submissionCmd.AddCommand(submissionCreateCmd)
	submissionCmd.AddCommand(submissionShowCmd)
	submissionCmd.AddCommand(submissionWorkflowCmd)
	submissionCmd.AddCommand(submissionDeleteCmd)
	return submissionCmd
}
