package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/ports/primary"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Manage structured review forms",
}

// parseQuestion reads "prompt" or "kind:prompt".
func parseQuestion(raw string, required bool) primary.ReviewFormQuestion {
	q := primary.ReviewFormQuestion{Prompt: raw, Required: required}
	if kind, prompt, ok := strings.Cut(raw, ":"); ok {
		switch kind {
		case "text", "textarea", "choice":
			q.Kind = kind
			q.Prompt = prompt
		}
	}
	return q
}

var formCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a review form",
	Long: `Create a review form. Questions are given as "prompt" or "kind:prompt"
where kind is text, textarea or choice.

Examples:
  editorial form create "Standard review" -q "Summarise the contribution" -r "text:Data availability"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		journalID, _ := cmd.Flags().GetString("journal")
		optional, _ := cmd.Flags().GetStringArray("question")
		required, _ := cmd.Flags().GetStringArray("required")

		req := primary.CreateReviewFormRequest{JournalID: journalID, Title: strings.Join(args, " ")}
		for _, raw := range required {
			req.Questions = append(req.Questions, parseQuestion(raw, true))
		}
		for _, raw := range optional {
			req.Questions = append(req.Questions, parseQuestion(raw, false))
		}
		form, err := a.Forms.CreateForm(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create form: %w", err)
		}
		fmt.Printf("✓ Created form %s: %s (%d questions)\n", form.ID, form.Title, len(form.Questions))
		return nil
	},
}

var formListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review forms",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		forms, err := a.Forms.ListForms(ctx)
		if err != nil {
			return err
		}
		if len(forms) == 0 {
			fmt.Println("No review forms.")
			return nil
		}
		for _, f := range forms {
			fmt.Printf("%s  %s\n", f.ID, f.Title)
		}
		return nil
	},
}

var formShowCmd = &cobra.Command{
	Use:   "show [form-id]",
	Short: "Show a review form and its questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, err := session(cmd)
		if err != nil {
			return err
		}
		form, err := a.Forms.GetForm(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", form.ID, form.Title)
		if form.JournalID != "" {
			fmt.Printf("Journal: %s\n", form.JournalID)
		}
		for _, q := range form.Questions {
			marker := " "
			if q.Required {
				marker = "*"
			}
			fmt.Printf("  %s %-14s [%s] %s\n", marker, q.ID, q.Kind, q.Prompt)
		}
		return nil
	},
}

// FormCmd returns the form command
func FormCmd() *cobra.Command {
	formCreateCmd.Flags().StringP("journal", "j", "", "Journal ID (empty for a site-wide form)")
	formCreateCmd.Flags().StringArrayP("question", "q", nil, "Optional question (repeatable)")
	formCreateCmd.Flags().StringArrayP("required", "r", nil, "Required question (repeatable)")

	formCmd.AddCommand(formCreateCmd)
	formCmd.AddCommand(formListCmd)
	formCmd.AddCommand(formShowCmd)
	return formCmd
}
