package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/example/editorial/internal/ports/primary"
)

// ReviewAdapter renders submissions and reviewer assignments.
type ReviewAdapter struct {
	submissions primary.SubmissionService
	assignments primary.ReviewAssignmentService
	out         io.Writer
}

// NewReviewAdapter creates a new ReviewAdapter.
func NewReviewAdapter(submissions primary.SubmissionService, assignments primary.ReviewAssignmentService, out io.Writer) *ReviewAdapter {
	return &ReviewAdapter{submissions: submissions, assignments: assignments, out: out}
}

// Show prints a submission with its rounds, reviewers and participants.
func (a *ReviewAdapter) Show(ctx context.Context, submissionID string) error {
	d, err := a.submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}

	s := d.Submission
	fmt.Fprintf(a.out, "\nSubmission: %s\n", s.ID)
	fmt.Fprintf(a.out, "Title:      %s\n", s.Title)
	fmt.Fprintf(a.out, "Journal:    %s\n", s.JournalID)
	fmt.Fprintf(a.out, "Stage:      %s\n", s.Stage)
	fmt.Fprintf(a.out, "Status:     %s\n", colorStatus(s.Status))
	if s.IsArchived {
		fmt.Fprintln(a.out, "Archived:   yes")
	}
	fmt.Fprintf(a.out, "Submitted:  %s\n\n", shortTime(s.SubmittedAt))

	if len(d.Rounds) > 0 {
		rows := make([][]string, 0, len(d.Rounds))
		for _, r := range d.Rounds {
			rows = append(rows, []string{r.ID, r.Stage, strconv.Itoa(r.Round), r.Status, orDash(r.ReviewFormID)})
		}
		fmt.Fprintln(a.out, renderTable([]string{"ROUND", "STAGE", "NO", "STATUS", "FORM"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight}))
	}
	if len(d.Assignments) > 0 {
		fmt.Fprintln(a.out, assignmentTable(d.Assignments))
	}
	if len(d.Participants) > 0 {
		rows := make([][]string, 0, len(d.Participants))
		for _, p := range d.Participants {
			flags := ""
			if p.RecommendOnly {
				flags = "recommend-only"
			}
			rows = append(rows, []string{p.UserID, p.Role, p.Stage, orDash(flags)})
		}
		fmt.Fprintln(a.out, renderTable([]string{"USER", "ROLE", "STAGE", "FLAGS"}, rows, nil))
	}
	fmt.Fprintf(a.out, "%d open task(s), %d activity entries\n", len(d.OpenTasks), len(d.Activity))
	return nil
}

// Assignments prints the caller's own reviewer assignments.
func (a *ReviewAdapter) Assignments(ctx context.Context, status string) error {
	list, err := a.assignments.ListReviewerAssignments(ctx, status)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No review assignments.")
		return nil
	}
	fmt.Fprintln(a.out, assignmentTable(list))
	return nil
}

func assignmentTable(list []*primary.ReviewAssignment) string {
	rows := make([][]string, 0, len(list))
	for _, as := range list {
		rows = append(rows, []string{
			as.ID,
			as.SubmissionID,
			as.ReviewerID,
			colorStatus(as.ReviewerView),
			orDash(as.Recommendation),
			shortTime(as.ResponseDueDate),
			shortTime(as.DueDate),
		})
	}
	return renderTable([]string{"ASSIGNMENT", "SUBMISSION", "REVIEWER", "STATE", "RECOMMENDATION", "RESPOND BY", "DUE"}, rows, nil)
}
