package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/primary"
)

func TestLogAndListActivity(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)

	entry, err := h.ledger.LogActivity(as(context.Background(), user("au-bob")), primary.LogActivityRequest{
		SubmissionID: "SUB-1",
		Message:      "Uploaded revised figures",
	})
	require.NoError(t, err)
	assert.Equal(t, "au-bob", entry.ActorID)
	assert.Equal(t, CategoryNote, entry.Category)

	h.clock.Advance(time.Minute)
	_, err = h.ledger.LogActivity(as(context.Background(), editor), primary.LogActivityRequest{
		SubmissionID: "SUB-1",
		Category:     CategoryWorkflow,
		Message:      "Asked the author for source data",
	})
	require.NoError(t, err)

	entries, err := h.ledger.ListActivity(as(context.Background(), editor), "SUB-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Asked the author for source data", entries[0].Message)
	assert.Equal(t, "Uploaded revised figures", entries[1].Message)

	limited, err := h.ledger.ListActivity(as(context.Background(), editor), "SUB-1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.Equal(t, []string{"Uploaded revised figures", "Asked the author for source data"}, h.events.messages())
}

func TestActivityAccess(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)

	_, err := h.ledger.LogActivity(as(context.Background(), user("rev-zoe")), primary.LogActivityRequest{SubmissionID: "SUB-1", Message: "hello"})
	requireKind(t, err, apperr.ErrForbidden)

	_, err = h.ledger.ListActivity(as(context.Background(), outsider), "SUB-1", 0)
	requireKind(t, err, apperr.ErrForbidden)

	_, err = h.ledger.LogActivity(as(context.Background(), editor), primary.LogActivityRequest{SubmissionID: "SUB-404", Message: "hello"})
	requireKind(t, err, apperr.ErrNotFound)

	_, err = h.ledger.LogActivity(as(context.Background(), editor), primary.LogActivityRequest{SubmissionID: "SUB-1", Message: "   "})
	requireKind(t, err, apperr.ErrValidation)
}

func TestActivityPublishFailureDoesNotFailOperation(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	h.events.err = assert.AnError

	_, err := h.ledger.LogActivity(as(context.Background(), editor), primary.LogActivityRequest{SubmissionID: "SUB-1", Message: "kept"})
	require.NoError(t, err)

	entries, err := h.ledger.ListActivity(as(context.Background(), editor), "SUB-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), editor)

	created, err := h.ledger.CreateTask(ctx, primary.CreateTaskRequest{
		SubmissionID: "SUB-1",
		Title:        "Chase late reviewer",
		DueDate:      "2026-03-20",
	})
	require.NoError(t, err)
	assert.Equal(t, "review", created.Stage, "stage defaults to the submission's stage")
	assert.Equal(t, "open", created.Status)
	assert.Empty(t, created.AssigneeID)

	unassigned, err := h.ledger.ListTasks(ctx, primary.ListTasksRequest{SubmissionID: "SUB-1", Unassigned: true})
	require.NoError(t, err)
	require.Len(t, unassigned, 1)

	require.NoError(t, h.ledger.ClaimTask(as(context.Background(), section), created.ID))
	err = h.ledger.ClaimTask(ctx, created.ID)
	requireKind(t, err, apperr.ErrConflict)

	mine, err := h.ledger.ListTasks(as(context.Background(), section), primary.ListTasksRequest{JournalID: "J-1", AssigneeID: "ed-bruno"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	require.NoError(t, h.ledger.CloseTask(ctx, created.ID))
	require.NoError(t, h.ledger.CloseTask(ctx, created.ID), "closing twice is a no-op")

	done, err := h.ledger.ListTasks(ctx, primary.ListTasksRequest{SubmissionID: "SUB-1", Status: "done"})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.NotEmpty(t, done[0].ClosedAt)

	err = h.ledger.ClaimTask(ctx, created.ID)
	requireKind(t, err, apperr.ErrValidation)

	closes := 0
	for _, m := range h.events.messages() {
		if m == `Task "Chase late reviewer" closed` {
			closes++
		}
	}
	assert.Equal(t, 1, closes)
}

func TestCreateTaskRejections(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)

	tests := []struct {
		name string
		ctx  context.Context
		req  primary.CreateTaskRequest
		want error
	}{
		{"empty title", as(context.Background(), editor), primary.CreateTaskRequest{SubmissionID: "SUB-1", Title: " "}, apperr.ErrValidation},
		{"unknown stage", as(context.Background(), editor), primary.CreateTaskRequest{SubmissionID: "SUB-1", Title: "x", Stage: "printing"}, apperr.ErrInvalidState},
		{"bad due date", as(context.Background(), editor), primary.CreateTaskRequest{SubmissionID: "SUB-1", Title: "x", DueDate: "soon"}, apperr.ErrValidation},
		{"missing submission", as(context.Background(), editor), primary.CreateTaskRequest{SubmissionID: "SUB-404", Title: "x"}, apperr.ErrNotFound},
		{"author", as(context.Background(), user("au-bob")), primary.CreateTaskRequest{SubmissionID: "SUB-1", Title: "x"}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ledger.CreateTask(tt.ctx, tt.req)
			requireKind(t, err, tt.want)
		})
	}
}

func TestListTasksScoping(t *testing.T) {
	h := newHarness(t)
	h.seed(t, queueFixture)

	t.Run("non-editor sees only own tasks", func(t *testing.T) {
		tasks, err := h.ledger.ListTasks(as(context.Background(), user("au-bob")), primary.ListTasksRequest{})
		require.NoError(t, err)
		assert.Empty(t, tasks)

		_, err = h.ledger.ListTasks(as(context.Background(), user("au-bob")), primary.ListTasksRequest{Unassigned: true})
		requireKind(t, err, apperr.ErrForbidden)
	})

	t.Run("journal editor without scope only sees own tasks", func(t *testing.T) {
		tasks, err := h.ledger.ListTasks(as(context.Background(), editor), primary.ListTasksRequest{Status: "open"})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "TSK-B1", tasks[0].ID)
	})

	t.Run("journal scope", func(t *testing.T) {
		tasks, err := h.ledger.ListTasks(as(context.Background(), editor), primary.ListTasksRequest{JournalID: "J-1", Unassigned: true, Status: "open"})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "TSK-D1", tasks[0].ID)

		_, err = h.ledger.ListTasks(as(context.Background(), outsider), primary.ListTasksRequest{JournalID: "J-1"})
		requireKind(t, err, apperr.ErrForbidden)
	})

	t.Run("site-wide", func(t *testing.T) {
		tasks, err := h.ledger.ListTasks(as(context.Background(), siteAdmin), primary.ListTasksRequest{Unassigned: true, Status: "open"})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("empty result does not fall back", func(t *testing.T) {
		tasks, err := h.ledger.ListTasks(as(context.Background(), section), primary.ListTasksRequest{JournalID: "J-1", AssigneeID: "ed-bruno"})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("invalid filters", func(t *testing.T) {
		_, err := h.ledger.ListTasks(as(context.Background(), siteAdmin), primary.ListTasksRequest{Status: "later"})
		requireKind(t, err, apperr.ErrValidation)
		_, err = h.ledger.ListTasks(as(context.Background(), siteAdmin), primary.ListTasksRequest{Unassigned: true, AssigneeID: "ed-alice"})
		requireKind(t, err, apperr.ErrValidation)
	})
}
