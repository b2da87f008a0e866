package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/queue"
	"github.com/example/editorial/internal/ports/primary"
)

// QueueAdapter renders queue pages and dashboard counters.
type QueueAdapter struct {
	service primary.QueueService
	out     io.Writer
}

// NewQueueAdapter creates a new QueueAdapter.
func NewQueueAdapter(service primary.QueueService, out io.Writer) *QueueAdapter {
	return &QueueAdapter{service: service, out: out}
}

// List prints one page of a queue.
func (a *QueueAdapter) List(ctx context.Context, req primary.QueueRequest) error {
	page, err := a.service.ListQueue(ctx, req)
	if err != nil {
		return err
	}
	a.render(page)
	return nil
}

// ListOrUnassigned prints My Queue, or the Unassigned queue when the first
// page of My Queue is empty and the caller may see it.
func (a *QueueAdapter) ListOrUnassigned(ctx context.Context, req primary.QueueRequest) error {
	page, err := a.service.ListQueue(ctx, req)
	if err != nil {
		return err
	}
	if req.Offset > 0 || !queue.FallbackToUnassigned(queue.Kind(req.Queue), page.Total) {
		a.render(page)
		return nil
	}

	fallback := req
	fallback.Queue = string(queue.Unassigned)
	unassigned, err := a.service.ListQueue(ctx, fallback)
	if apperr.Is(err, apperr.ErrForbidden) || apperr.Is(err, apperr.ErrUnauthorized) {
		a.render(page)
		return nil
	}
	if err != nil {
		return err
	}
	if unassigned.Total > 0 {
		fmt.Fprintln(a.out, faint("Your queue is empty; showing unassigned submissions."))
	}
	a.render(unassigned)
	return nil
}

func (a *QueueAdapter) render(page *primary.QueuePage) {
	if len(page.Submissions) == 0 {
		fmt.Fprintf(a.out, "No submissions in %s.\n", page.Queue)
		return
	}

	rows := make([][]string, 0, len(page.Submissions))
	for _, s := range page.Submissions {
		rows = append(rows, []string{s.ID, s.JournalID, s.Stage, colorStatus(s.Status), s.Title, shortTime(s.UpdatedAt)})
	}
	fmt.Fprintln(a.out, renderTable(
		[]string{"ID", "JOURNAL", "STAGE", "STATUS", "TITLE", "UPDATED"},
		rows, nil))

	last := page.Offset + len(page.Submissions)
	fmt.Fprintf(a.out, "%s: %d-%d of %d\n", page.Queue, page.Offset+1, last, page.Total)
}

// Dashboard prints every counter.
func (a *QueueAdapter) Dashboard(ctx context.Context, req primary.DashboardRequest) error {
	stats, err := a.service.DashboardStats(ctx, req)
	if err != nil {
		return err
	}

	counters := []struct {
		label string
		value int
	}{
		{"My queue", stats.MyQueue},
		{"Unassigned", stats.Unassigned},
		{"Submission", stats.Submission},
		{"In review", stats.InReview},
		{"Copyediting", stats.Copyediting},
		{"Production", stats.Production},
		{"All active", stats.AllActive},
		{"Archived", stats.Archived},
		{"Open tasks", stats.Tasks},
	}
	rows := make([][]string, 0, len(counters))
	for _, c := range counters {
		rows = append(rows, []string{c.label, strconv.Itoa(c.value)})
	}
	fmt.Fprintln(a.out, renderTable([]string{"QUEUE", "COUNT"}, rows, []columnAlignment{alignLeft, alignRight}))
	return nil
}
