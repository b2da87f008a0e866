package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/ports/primary"
)

var participantCmd = &cobra.Command{
	Use:   "participant",
	Short: "Manage who takes part in a submission",
	Long: `Register editors, reviewers and authors on a submission per stage, and set
their recommend-only and metadata permissions.`,
}

func participantRequest(cmd *cobra.Command, args []string) primary.ParticipantRequest {
	role, _ := cmd.Flags().GetString("role")
	stage, _ := cmd.Flags().GetString("stage")
	return primary.ParticipantRequest{
		SubmissionID: args[0],
		UserID:       args[1],
		Role:         role,
		Stage:        stage,
	}
}

var participantAssignCmd = &cobra.Command{
	Use:   "assign [submission-id] [user-id]",
	Short: "Register a participant for a stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		p, err := a.Participants.AssignParticipant(ctx, participantRequest(cmd, args))
		if err != nil {
			return fmt.Errorf("failed to assign participant: %w", err)
		}
		fmt.Printf("✓ %s is %s at %s (%s)\n", p.UserID, p.Role, p.Stage, p.ID)
		return nil
	},
}

var participantRemoveCmd = &cobra.Command{
	Use:   "remove [submission-id] [user-id]",
	Short: "Revoke a participant role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		if err := a.Participants.RemoveParticipant(ctx, participantRequest(cmd, args)); err != nil {
			return fmt.Errorf("failed to remove participant: %w", err)
		}
		fmt.Printf("✓ %s removed from %s\n", args[1], args[0])
		return nil
	},
}

var participantPermissionsCmd = &cobra.Command{
	Use:   "permissions [submission-id] [user-id]",
	Short: "Set recommend-only and metadata permissions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		recommendOnly, _ := cmd.Flags().GetBool("recommend-only")
		metadata, _ := cmd.Flags().GetBool("metadata")
		err = a.Participants.UpdateParticipantPermissions(ctx, primary.ParticipantPermissionsRequest{
			ParticipantRequest: participantRequest(cmd, args),
			RecommendOnly:      recommendOnly,
			CanChangeMetadata:  metadata,
		})
		if err != nil {
			return fmt.Errorf("failed to update permissions: %w", err)
		}
		fmt.Printf("✓ Permissions updated for %s\n", args[1])
		return nil
	},
}

var participantListCmd = &cobra.Command{
	Use:   "list [submission-id]",
	Short: "List the participants of a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		participants, err := a.Participants.ListParticipants(ctx, args[0])
		if err != nil {
			return err
		}
		if len(participants) == 0 {
			fmt.Println("No participants.")
			return nil
		}
		for _, p := range participants {
			flags := ""
			if p.RecommendOnly {
				flags += " recommend-only"
			}
			if p.CanChangeMetadata {
				flags += " metadata"
			}
			fmt.Printf("%-16s %-15s %-12s%s\n", p.UserID, p.Role, p.Stage, flags)
		}
		return nil
	},
}

var participantAssignedCmd = &cobra.Command{
	Use:   "assigned [user-id]",
	Short: "List submissions a user takes part in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		ids, err := a.Participants.GetAssignedSubmissionIDs(ctx, args[0])
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

// ParticipantCmd returns the participant command
func ParticipantCmd() *cobra.Command {
	for _, c := range []*cobra.Command{participantAssignCmd, participantRemoveCmd, participantPermissionsCmd} {
		c.Flags().StringP("role", "r", "", "Role (manager, editor, section_editor, reviewer, author)")
		c.Flags().String("stage", "submission", "Workflow stage")
		_ = c.MarkFlagRequired("role")
	}
	participantPermissionsCmd.Flags().Bool("recommend-only", false, "Participant may only recommend decisions")
	participantPermissionsCmd.Flags().Bool("metadata", false, "Participant may change metadata")

	participantCmd.AddCommand(participantAssignCmd)
	participantCmd.AddCommand(participantRemoveCmd)
	participantCmd.AddCommand(participantPermissionsCmd)
	participantCmd.AddCommand(participantListCmd)
	participantCmd.AddCommand(participantAssignedCmd)
	return participantCmd
}
