package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/core/queue"
	"github.com/example/editorial/internal/core/stage"
	"github.com/example/editorial/internal/core/task"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface.
type LedgerServiceImpl struct {
	env          Env
	submissions  secondary.SubmissionRepository
	participants secondary.ParticipantRepository
	tasks        secondary.TaskRepository
	activity     secondary.ActivityRepository
	paging       PagePolicy
}

// NewLedgerService creates a new LedgerService with injected dependencies.
func NewLedgerService(
	env Env,
	submissions secondary.SubmissionRepository,
	participants secondary.ParticipantRepository,
	tasks secondary.TaskRepository,
	activity secondary.ActivityRepository,
	paging PagePolicy,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		env:          env.withDefaults(),
		submissions:  submissions,
		participants: participants,
		tasks:        tasks,
		activity:     activity,
		paging:       paging,
	}
}

// canRead reports whether p is an editor of the submission's journal or one
// of its participants.
func (s *LedgerServiceImpl) canRead(ctx context.Context, p *access.Principal, sub *secondary.SubmissionRecord) error {
	if p.Has(access.CapEditorAccess, sub.JournalID) {
		return nil
	}
	held, err := s.participants.List(ctx, secondary.ParticipantFilters{SubmissionID: sub.ID, UserID: p.UserID})
	if err != nil {
		return err
	}
	if len(held) == 0 {
		return apperr.Newf(apperr.ErrForbidden, "user %s has no access to submission %s", p.UserID, sub.ID)
	}
	return nil
}

// LogActivity appends an entry to a submission the caller can see.
func (s *LedgerServiceImpl) LogActivity(ctx context.Context, req primary.LogActivityRequest) (*primary.ActivityEntry, error) {
	const op = "log_activity"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, s.env.fail(ctx, op, apperr.New(apperr.ErrValidation, "activity message is required"))
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = CategoryNote
	}

	var batch activityBatch
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.GetByID(ctx, req.SubmissionID)
		if err != nil {
			return err
		}
		if err := s.canRead(ctx, p, sub); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, sub.ID, category, message)
	})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	return recordToActivity(batch[0]), nil
}

// ListActivity lists a submission's entries, newest first.
func (s *LedgerServiceImpl) ListActivity(ctx context.Context, submissionID string, limit int) ([]*primary.ActivityEntry, error) {
	const op = "list_activity"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if err := s.canRead(ctx, p, sub); err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	records, err := s.activity.ListBySubmission(ctx, sub.ID, limit)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	out := make([]*primary.ActivityEntry, len(records))
	for i, r := range records {
		out[i] = recordToActivity(r)
	}
	return out, nil
}

// CreateTask creates an editorial task, optionally already assigned. The
// stage defaults to the submission's current stage.
func (s *LedgerServiceImpl) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.Task, error) {
	const op = "create_task"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	var st stage.Stage
	if strings.TrimSpace(req.Stage) != "" {
		if st, err = stage.ParseStage(req.Stage); err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	var (
		batch  activityBatch
		record *secondary.TaskRecord
	)
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.GetByID(ctx, req.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}
		if st == "" {
			st = stage.Stage(sub.Stage)
		}
		check := task.CanCreateTask(task.CreateTaskContext{
			SubmissionID:     sub.ID,
			SubmissionExists: true,
			Stage:            st,
			Title:            req.Title,
		})
		if err := check.Error(); err != nil {
			return err
		}

		now := s.env.nowString()
		record = &secondary.TaskRecord{
			ID:           s.env.NewID("TSK"),
			SubmissionID: sub.ID,
			Stage:        string(st),
			Title:        strings.TrimSpace(req.Title),
			Status:       string(task.StatusOpen),
			AssigneeID:   strings.TrimSpace(req.AssigneeID),
			DueDate:      due,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.tasks.Create(ctx, record); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, sub.ID, CategoryTask, fmt.Sprintf("Task %q created", record.Title))
	})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	s.env.info(ctx, "task created",
		logging.FieldSubmissionID, record.SubmissionID,
		logging.FieldTaskID, record.ID)
	return recordToTask(record), nil
}

// ListTasks lists tasks. Unscoped listings by callers without a site-wide
// editorial grant are narrowed to their own tasks. An empty result is
// returned as is; falling back to unassigned tasks is up to the caller.
func (s *LedgerServiceImpl) ListTasks(ctx context.Context, req primary.ListTasksRequest) ([]*primary.Task, error) {
	const op = "list_tasks"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	status := strings.TrimSpace(req.Status)
	if status != "" && !task.Status(status).Valid() {
		return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrValidation, "unknown task status %q", status))
	}

	filters := secondary.TaskFilters{
		SubmissionID: req.SubmissionID,
		JournalID:    req.JournalID,
		AssigneeID:   strings.TrimSpace(req.AssigneeID),
		Unassigned:   req.Unassigned,
		Status:       status,
		Limit:        queue.NormalizePage(req.Limit, 0, s.paging.DefaultLimit, s.paging.MaxLimit).Limit,
	}
	if filters.Unassigned && filters.AssigneeID != "" {
		return nil, s.env.fail(ctx, op, apperr.New(apperr.ErrValidation, "assignee and unassigned are mutually exclusive"))
	}

	switch {
	case req.SubmissionID != "":
		sub, err := s.submissions.GetByID(ctx, req.SubmissionID)
		if err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
		if err := s.canRead(ctx, p, sub); err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
	case req.JournalID != "":
		if _, err := access.AssertEditorAccess(p, req.JournalID); err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
	case !p.Has(access.CapEditorAccess, ""):
		if filters.Unassigned || (filters.AssigneeID != "" && filters.AssigneeID != p.UserID) {
			return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrForbidden, "user %s may only list their own tasks", p.UserID))
		}
		filters.AssigneeID = p.UserID
	}

	records, err := s.tasks.List(ctx, filters)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	out := make([]*primary.Task, len(records))
	for i, r := range records {
		out[i] = recordToTask(r)
	}
	return out, nil
}

// loadTask fetches a task and checks editor access to its submission.
func (s *LedgerServiceImpl) loadTask(ctx context.Context, p *access.Principal, taskID string) (*secondary.TaskRecord, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	sub, err := s.submissions.GetByID(ctx, t.SubmissionID)
	if err != nil {
		return nil, err
	}
	if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
		return nil, err
	}
	return t, nil
}

// ClaimTask assigns an open, unassigned task to the caller.
func (s *LedgerServiceImpl) ClaimTask(ctx context.Context, taskID string) error {
	const op = "claim_task"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var batch activityBatch
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.loadTask(ctx, p, taskID)
		if err != nil {
			return err
		}
		check := task.CanClaimTask(task.ClaimTaskContext{
			TaskID:     t.ID,
			AssigneeID: t.AssigneeID,
			Status:     task.Status(t.Status),
			UserID:     p.UserID,
		})
		if err := check.Error(); err != nil {
			return err
		}
		if err := s.tasks.Claim(ctx, t.ID, p.UserID, s.env.nowString()); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, t.SubmissionID, CategoryTask, fmt.Sprintf("Task %q claimed by %s", t.Title, p.UserID))
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	s.env.info(ctx, "task claimed", logging.FieldTaskID, taskID)
	return nil
}

// CloseTask marks a task done. Closing a done task is a no-op.
func (s *LedgerServiceImpl) CloseTask(ctx context.Context, taskID string) error {
	const op = "close_task"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var batch activityBatch
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.loadTask(ctx, p, taskID)
		if err != nil {
			return err
		}
		check := task.CanCloseTask(task.CloseTaskContext{TaskID: t.ID, Status: task.Status(t.Status)})
		if err := check.Error(); err != nil {
			return err
		}
		if t.Status == string(task.StatusDone) {
			return nil
		}
		if err := s.tasks.Close(ctx, t.ID, s.env.nowString()); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, t.SubmissionID, CategoryTask, fmt.Sprintf("Task %q closed", t.Title))
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	return nil
}

// Ensure LedgerServiceImpl implements the interface.
var _ primary.LedgerService = (*LedgerServiceImpl)(nil)
