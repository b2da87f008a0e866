package app

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/core/queue"
	"github.com/example/editorial/internal/core/stage"
	"github.com/example/editorial/internal/core/task"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

// PagePolicy bounds queue pages.
type PagePolicy struct {
	DefaultLimit int
	MaxLimit     int
}

// QueueServiceImpl implements the QueueService interface.
type QueueServiceImpl struct {
	env         Env
	submissions secondary.SubmissionRepository
	tasks       secondary.TaskRepository
	paging      PagePolicy
}

// NewQueueService creates a new QueueService with injected dependencies.
func NewQueueService(env Env, submissions secondary.SubmissionRepository, tasks secondary.TaskRepository, paging PagePolicy) *QueueServiceImpl {
	return &QueueServiceImpl{
		env:         env.withDefaults(),
		submissions: submissions,
		tasks:       tasks,
		paging:      paging,
	}
}

func toSubmissionFilters(c queue.Criteria) secondary.SubmissionFilters {
	f := secondary.SubmissionFilters{
		ParticipantUserID: c.ParticipantUserID,
		JournalID:         c.JournalID,
		Stage:             string(c.Stage),
		Search:            c.Search,
	}
	for _, st := range c.Statuses {
		f.Statuses = append(f.Statuses, string(st))
	}
	for _, r := range c.ExcludeHeldRoles {
		f.ExcludeHeldRoles = append(f.ExcludeHeldRoles, string(r))
	}
	return f
}

// checkQueueAccess enforces who may look at which queue. My Queue and the
// (filtered) archive are open to every signed-in user; the editorial
// queues need editor access to the journal, or a site-wide grant when
// unscoped.
func checkQueueAccess(p *access.Principal, kind queue.Kind, journalID string) error {
	if kind == queue.MyQueue || kind == queue.Archived {
		return nil
	}
	_, err := access.AssertEditorAccess(p, journalID)
	return err
}

func (s *QueueServiceImpl) criteria(p *access.Principal, kind queue.Kind, journalID, stageName, search string) (queue.Criteria, error) {
	var st stage.Stage
	if strings.TrimSpace(stageName) != "" {
		parsed, err := stage.ParseStage(stageName)
		if err != nil {
			return queue.Criteria{}, err
		}
		st = parsed
	}
	return queue.Resolve(queue.Request{
		Kind:            kind,
		UserID:          p.UserID,
		JournalID:       journalID,
		ViewAllArchived: p.IsManagerOrAdmin(journalID),
		Stage:           st,
		Search:          search,
	})
}

// ListQueue returns one page of a queue together with its total size.
func (s *QueueServiceImpl) ListQueue(ctx context.Context, req primary.QueueRequest) (*primary.QueuePage, error) {
	const op = "list_queue"
	started := time.Now()
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	kind, err := queue.ParseKind(req.Queue)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if err := checkQueueAccess(p, kind, req.JournalID); err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	c, err := s.criteria(p, kind, req.JournalID, req.Stage, req.Search)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	defer s.env.Metrics.ObserveQueue(string(kind), started)

	page := queue.NormalizePage(req.Limit, req.Offset, s.paging.DefaultLimit, s.paging.MaxLimit)
	filters := toSubmissionFilters(c)

	total, err := s.submissions.Count(ctx, filters)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	filters.Limit = page.Limit
	filters.Offset = page.Offset
	records, err := s.submissions.List(ctx, filters)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	out := &primary.QueuePage{
		Queue:       string(kind),
		Total:       total,
		Limit:       page.Limit,
		Offset:      page.Offset,
		Submissions: make([]*primary.Submission, len(records)),
	}
	for i, r := range records {
		out.Submissions[i] = recordToSubmission(r)
	}
	return out, nil
}

// DashboardStats counts every queue with the criteria ListQueue uses, so
// each counter equals the total of the matching list.
func (s *QueueServiceImpl) DashboardStats(ctx context.Context, req primary.DashboardRequest) (*primary.DashboardStats, error) {
	const op = "dashboard_stats"
	started := time.Now()
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if err := checkQueueAccess(p, queue.AllActive, req.JournalID); err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	defer s.env.Metrics.ObserveQueue("dashboard", started)

	var stats primary.DashboardStats
	counters := []struct {
		kind  queue.Kind
		stage stage.Stage
		dst   *int
	}{
		{queue.MyQueue, "", &stats.MyQueue},
		{queue.Unassigned, "", &stats.Unassigned},
		{queue.AllActive, "", &stats.AllActive},
		{queue.AllActive, stage.Submission, &stats.Submission},
		{queue.AllActive, stage.Review, &stats.InReview},
		{queue.AllActive, stage.Copyediting, &stats.Copyediting},
		{queue.AllActive, stage.Production, &stats.Production},
		{queue.Archived, "", &stats.Archived},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, counter := range counters {
		c, err := s.criteria(p, counter.kind, req.JournalID, string(counter.stage), "")
		if err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
		filters := toSubmissionFilters(c)
		dst := counter.dst
		g.Go(func() error {
			n, err := s.submissions.Count(gctx, filters)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	g.Go(func() error {
		filters := secondary.TaskFilters{Status: string(task.StatusOpen), JournalID: req.JournalID}
		if req.MyTasksOnly {
			filters.AssigneeID = p.UserID
		}
		n, err := s.tasks.Count(gctx, filters)
		if err != nil {
			return err
		}
		stats.Tasks = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	return &stats, nil
}

// Ensure QueueServiceImpl implements the interface.
var _ primary.QueueService = (*QueueServiceImpl)(nil)
