package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/wire"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Invite reviewers and act on review requests",
	Long: `Editors invite, update and remove reviewers. Reviewers accept or decline
requests, save drafts and submit recommendations on their own assignments.`,
}

var reviewAssignCmd = &cobra.Command{
	Use:   "assign [submission-id] [reviewer-id]",
	Short: "Invite a reviewer into the active round",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		stage, _ := cmd.Flags().GetString("stage")
		roundID, _ := cmd.Flags().GetString("round")
		due, _ := cmd.Flags().GetString("due")
		respondBy, _ := cmd.Flags().GetString("respond-by")
		method, _ := cmd.Flags().GetString("method")
		message, _ := cmd.Flags().GetString("message")

		resp, err := a.Assignments.AssignReviewer(ctx, primary.AssignReviewerRequest{
			SubmissionID:    args[0],
			ReviewerID:      args[1],
			Stage:           stage,
			RoundID:         roundID,
			DueDate:         due,
			ResponseDueDate: respondBy,
			ReviewMethod:    method,
			PersonalMessage: message,
		})
		if err != nil {
			return fmt.Errorf("failed to assign reviewer: %w", err)
		}
		fmt.Printf("✓ Invited %s (%s)\n", args[1], resp.AssignmentID)
		if resp.Assignment.ResponseDueDate != "" {
			fmt.Printf("  Respond by: %s\n", resp.Assignment.ResponseDueDate)
		}
		if resp.Assignment.DueDate != "" {
			fmt.Printf("  Review due: %s\n", resp.Assignment.DueDate)
		}
		return nil
	},
}

var reviewUpdateCmd = &cobra.Command{
	Use:   "update [assignment-id]",
	Short: "Change deadlines or the message of an open assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		req := primary.UpdateAssignmentRequest{
			AssignmentID:    args[0],
			DueDate:         optionalString(cmd, "due"),
			ResponseDueDate: optionalString(cmd, "respond-by"),
			PersonalMessage: optionalString(cmd, "message"),
		}
		if err := a.Assignments.UpdateAssignment(ctx, req); err != nil {
			return fmt.Errorf("failed to update assignment: %w", err)
		}
		fmt.Printf("✓ Assignment %s updated\n", args[0])
		return nil
	},
}

var reviewRemoveCmd = &cobra.Command{
	Use:   "remove [assignment-id]",
	Short: "Remove a reviewer assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if err := a.Assignments.RemoveAssignment(ctx, primary.RemoveAssignmentRequest{AssignmentID: args[0], Force: force}); err != nil {
			return fmt.Errorf("failed to remove assignment: %w", err)
		}
		fmt.Printf("✓ Assignment %s removed\n", args[0])
		return nil
	},
}

var reviewAcceptCmd = &cobra.Command{
	Use:   "accept [assignment-id]",
	Short: "Accept a review request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		consent, _ := cmd.Flags().GetBool("consent")
		interests, _ := cmd.Flags().GetString("competing-interests")
		err = a.Assignments.AcceptAssignment(ctx, primary.AcceptAssignmentRequest{
			AssignmentID:       args[0],
			CompetingInterests: interests,
			PrivacyConsent:     consent,
		})
		if err != nil {
			return fmt.Errorf("failed to accept: %w", err)
		}
		fmt.Printf("✓ Accepted %s\n", args[0])
		return nil
	},
}

var reviewDeclineCmd = &cobra.Command{
	Use:   "decline [assignment-id] [reason]",
	Short: "Decline a review request",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		err = a.Assignments.DeclineAssignment(ctx, primary.DeclineAssignmentRequest{
			AssignmentID: args[0],
			Reason:       strings.Join(args[1:], " "),
		})
		if err != nil {
			return fmt.Errorf("failed to decline: %w", err)
		}
		fmt.Printf("✓ Declined %s\n", args[0])
		return nil
	},
}

func recommendationFromFlags(cmd *cobra.Command, assignmentID string) primary.RecommendationRequest {
	rec, _ := cmd.Flags().GetString("recommendation")
	toAuthor, _ := cmd.Flags().GetString("to-author")
	toEditor, _ := cmd.Flags().GetString("to-editor")
	interests, _ := cmd.Flags().GetString("competing-interests")
	answers, _ := cmd.Flags().GetStringToString("answer")

	req := primary.RecommendationRequest{
		AssignmentID:       assignmentID,
		Recommendation:     rec,
		CommentsToAuthor:   toAuthor,
		CommentsToEditor:   toEditor,
		CompetingInterests: interests,
	}
	for q, r := range answers {
		req.FormResponses = append(req.FormResponses, primary.FormResponse{QuestionID: q, Response: r})
	}
	return req
}

var reviewDraftCmd = &cobra.Command{
	Use:   "draft [assignment-id]",
	Short: "Save a draft review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		if err := a.Assignments.SaveDraftRecommendation(ctx, recommendationFromFlags(cmd, args[0])); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		fmt.Printf("✓ Draft saved for %s\n", args[0])
		return nil
	},
}

var reviewSubmitCmd = &cobra.Command{
	Use:   "submit [assignment-id]",
	Short: "Submit a review with a recommendation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		if err := a.Assignments.SubmitRecommendation(ctx, recommendationFromFlags(cmd, args[0])); err != nil {
			return fmt.Errorf("failed to submit review: %w", err)
		}
		fmt.Printf("✓ Review submitted for %s\n", args[0])
		return nil
	},
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your own review assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext(cmd)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		adapter, err := wire.ReviewAdapter()
		if err != nil {
			return err
		}
		return adapter.Assignments(ctx, status)
	},
}

// ReviewCmd returns the review command
func ReviewCmd() *cobra.Command {
	reviewAssignCmd.Flags().String("stage", "review", "Review stage")
	reviewAssignCmd.Flags().String("round", "", "Round ID (default: the active round)")
	reviewAssignCmd.Flags().String("due", "", "Review due date (YYYY-MM-DD or RFC 3339)")
	reviewAssignCmd.Flags().String("respond-by", "", "Response due date (YYYY-MM-DD or RFC 3339)")
	reviewAssignCmd.Flags().String("method", "", "Review method (anonymous, doubleAnonymous, open)")
	reviewAssignCmd.Flags().StringP("message", "m", "", "Personal message to the reviewer")

	reviewUpdateCmd.Flags().String("due", "", "New review due date")
	reviewUpdateCmd.Flags().String("respond-by", "", "New response due date")
	reviewUpdateCmd.Flags().StringP("message", "m", "", "New personal message")

	reviewRemoveCmd.Flags().BoolP("force", "f", false, "Remove a non-pending assignment (admins only)")

	reviewAcceptCmd.Flags().Bool("consent", false, "Accept the privacy statement")
	reviewAcceptCmd.Flags().String("competing-interests", "", "Competing interests declaration")

	for _, c := range []*cobra.Command{reviewDraftCmd, reviewSubmitCmd} {
		c.Flags().StringP("recommendation", "r", "", "accept, minor_revision, major_revision or reject")
		c.Flags().String("to-author", "", "Comments for the author")
		c.Flags().String("to-editor", "", "Comments for the editor")
		c.Flags().String("competing-interests", "", "Competing interests declaration")
		c.Flags().StringToString("answer", nil, "Review form answers question-id=response")
	}

	reviewListCmd.Flags().StringP("status", "s", "", "Filter by status (pending, accepted, declined, completed)")

	reviewCmd.AddCommand(reviewAssignCmd)
	reviewCmd.AddCommand(reviewUpdateCmd)
	reviewCmd.AddCommand(reviewRemoveCmd)
	reviewCmd.AddCommand(reviewAcceptCmd)
	reviewCmd.AddCommand(reviewDeclineCmd)
	reviewCmd.AddCommand(reviewDraftCmd)
	reviewCmd.AddCommand(reviewSubmitCmd)
	reviewCmd.AddCommand(reviewListCmd)
	return reviewCmd
}
