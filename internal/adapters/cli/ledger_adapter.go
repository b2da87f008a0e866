package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/primary"
)

// LedgerAdapter renders tasks and activity.
type LedgerAdapter struct {
	service primary.LedgerService
	out     io.Writer
}

// NewLedgerAdapter creates a new LedgerAdapter.
func NewLedgerAdapter(service primary.LedgerService, out io.Writer) *LedgerAdapter {
	return &LedgerAdapter{service: service, out: out}
}

// Tasks prints tasks matching req.
func (a *LedgerAdapter) Tasks(ctx context.Context, req primary.ListTasksRequest) error {
	tasks, err := a.service.ListTasks(ctx, req)
	if err != nil {
		return err
	}
	a.renderTasks(tasks)
	return nil
}

// TasksOrUnassigned prints the open tasks of req.AssigneeID, or the
// unassigned open tasks in the same scope when the assignee has none.
func (a *LedgerAdapter) TasksOrUnassigned(ctx context.Context, req primary.ListTasksRequest) error {
	req.Status = "open"
	tasks, err := a.service.ListTasks(ctx, req)
	if err != nil {
		return err
	}
	if len(tasks) > 0 || req.AssigneeID == "" {
		a.renderTasks(tasks)
		return nil
	}

	fallback := req
	fallback.AssigneeID = ""
	fallback.Unassigned = true
	unassigned, err := a.service.ListTasks(ctx, fallback)
	if apperr.Is(err, apperr.ErrForbidden) {
		a.renderTasks(nil)
		return nil
	}
	if err != nil {
		return err
	}
	if len(unassigned) > 0 {
		fmt.Fprintf(a.out, "%s\n", faint(fmt.Sprintf("No open tasks for %s; showing unassigned tasks.", req.AssigneeID)))
	}
	a.renderTasks(unassigned)
	return nil
}

func (a *LedgerAdapter) renderTasks(tasks []*primary.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks found.")
		return
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, t.SubmissionID, t.Stage, colorStatus(t.Status), orDash(t.AssigneeID), shortTime(t.DueDate), t.Title})
	}
	fmt.Fprintln(a.out, renderTable(
		[]string{"ID", "SUBMISSION", "STAGE", "STATUS", "ASSIGNEE", "DUE", "TITLE"},
		rows, nil))
}

// Activity prints a submission's activity, newest first.
func (a *LedgerAdapter) Activity(ctx context.Context, submissionID string, limit int) error {
	entries, err := a.service.ListActivity(ctx, submissionID, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No activity for %s.\n", submissionID)
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{shortTime(e.CreatedAt), orDash(e.ActorID), e.Category, e.Message})
	}
	fmt.Fprintln(a.out, renderTable([]string{"WHEN", "ACTOR", "CATEGORY", "MESSAGE"}, rows, nil))
	return nil
}
