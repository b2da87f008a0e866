package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/ports/primary"
)

var roundCmd = &cobra.Command{
	Use:   "round",
	Short: "Manage review rounds",
}

var roundNextCmd = &cobra.Command{
	Use:   "next [submission-id]",
	Short: "Print the next round number for a stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		stage, _ := cmd.Flags().GetString("stage")
		n, err := a.Rounds.NextRoundNumber(ctx, args[0], stage)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

var roundCreateCmd = &cobra.Command{
	Use:   "create [submission-id]",
	Short: "Open a review round",
	Long: `Open a review round. Without --round the next number is used. An active
round whose reviewers have all finished is closed first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		stage, _ := cmd.Flags().GetString("stage")
		number, _ := cmd.Flags().GetInt("round")
		formID, _ := cmd.Flags().GetString("form")
		notes, _ := cmd.Flags().GetString("notes")

		resp, err := a.Rounds.CreateRound(ctx, primary.CreateRoundRequest{
			SubmissionID: args[0],
			Stage:        stage,
			Round:        number,
			ReviewFormID: formID,
			Notes:        notes,
		})
		if err != nil {
			return fmt.Errorf("failed to create round: %w", err)
		}
		fmt.Printf("✓ Opened %s round %d (%s)\n", resp.Round.Stage, resp.Round.Round, resp.RoundID)
		return nil
	},
}

var roundCloseCmd = &cobra.Command{
	Use:   "close [round-id]",
	Short: "Close a round whose assignments are all finished",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		if err := a.Rounds.CloseRound(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to close round: %w", err)
		}
		fmt.Printf("✓ Round %s closed\n", args[0])
		return nil
	},
}

var roundListCmd = &cobra.Command{
	Use:   "list [submission-id]",
	Short: "List the rounds of a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		stage, _ := cmd.Flags().GetString("stage")
		rounds, err := a.Rounds.ListRounds(ctx, args[0], stage)
		if err != nil {
			return err
		}
		if len(rounds) == 0 {
			fmt.Println("No review rounds.")
			return nil
		}
		for _, r := range rounds {
			fmt.Printf("%s  %-12s round %d  %s\n", r.ID, r.Stage, r.Round, r.Status)
		}
		return nil
	},
}

// RoundCmd returns the round command
func RoundCmd() *cobra.Command {
	roundNextCmd.Flags().String("stage", "review", "Review stage")
	roundCreateCmd.Flags().String("stage", "review", "Review stage")
	roundCreateCmd.Flags().Int("round", 0, "Explicit round number (default next)")
	roundCreateCmd.Flags().String("form", "", "Review form ID")
	roundCreateCmd.Flags().String("notes", "", "Round notes")
	roundListCmd.Flags().String("stage", "", "Filter by stage")

	roundCmd.AddCommand(roundNextCmd)
	roundCmd.AddCommand(roundCreateCmd)
	roundCmd.AddCommand(roundCloseCmd)
	roundCmd.AddCommand(roundListCmd)
	return roundCmd
}
