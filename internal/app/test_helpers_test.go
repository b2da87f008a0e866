package app

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/editorial/internal/adapters/sqlite"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/db"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/metrics"
	"github.com/example/editorial/internal/ports/secondary"
)

// ============================================================================
// Identity
// ============================================================================

type principalKey struct{}

// as returns ctx signed in as p.
func as(ctx context.Context, p *access.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// ctxIdentity implements secondary.IdentityProvider from the test context.
type ctxIdentity struct{}

func (ctxIdentity) CurrentPrincipal(ctx context.Context) (*access.Principal, error) {
	p, _ := ctx.Value(principalKey{}).(*access.Principal)
	return p, nil
}

var (
	siteAdmin = &access.Principal{UserID: "admin-ada", Grants: []access.Grant{{Role: access.Admin}}}
	manager   = &access.Principal{UserID: "mgr-mia", Grants: []access.Grant{{Role: access.Manager, JournalID: "J-1"}}}
	editor    = &access.Principal{UserID: "ed-alice", Grants: []access.Grant{{Role: access.Editor, JournalID: "J-1"}}}
	section   = &access.Principal{UserID: "ed-bruno", Grants: []access.Grant{{Role: access.SectionEditor, JournalID: "J-1"}}}
	outsider  = &access.Principal{UserID: "ed-zed", Grants: []access.Grant{{Role: access.Editor, JournalID: "J-2"}}}
)

// user is a principal without any editorial grant.
func user(id string) *access.Principal {
	return &access.Principal{UserID: id}
}

// ============================================================================
// Recording collaborators
// ============================================================================

type recordingPublisher struct {
	mu      sync.Mutex
	entries []*secondary.ActivityRecord
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, entry *secondary.ActivityRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.entries = append(p.entries, entry)
	return nil
}

func (p *recordingPublisher) messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Message
	}
	return out
}

type recordingNotifier struct {
	mu          sync.Mutex
	invitations []secondary.Invitation
	err         error
}

func (n *recordingNotifier) NotifyReviewerInvited(ctx context.Context, inv secondary.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invitations = append(n.invitations, inv)
	return n.err
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ============================================================================
// Harness
// ============================================================================

type harness struct {
	db        *sql.DB
	clock     *testClock
	events    *recordingPublisher
	notifier  *recordingNotifier
	metrics   *metrics.Collectors
	activity  *sqlite.ActivityRepository
	assignRep *sqlite.ReviewAssignmentRepository

	submissions  *SubmissionServiceImpl
	rounds       *ReviewRoundServiceImpl
	assignments  *ReviewAssignmentServiceImpl
	participants *ParticipantServiceImpl
	queues       *QueueServiceImpl
	ledger       *LedgerServiceImpl
	forms        *ReviewFormServiceImpl
}

type harnessConfig struct {
	fileDB bool
	policy AssignmentPolicy
}

type harnessOption func(*harnessConfig)

// withFileDB backs the harness with a file so several connections race.
func withFileDB() harnessOption {
	return func(c *harnessConfig) { c.fileDB = true }
}

func withPolicy(p AssignmentPolicy) harnessOption {
	return func(c *harnessConfig) { c.policy = p }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{policy: AssignmentPolicy{StrictRemoval: true}}
	for _, opt := range opts {
		opt(&cfg)
	}

	path := db.MemoryPath
	if cfg.fileDB {
		path = filepath.Join(t.TempDir(), "editorial.db")
	}
	database, err := db.OpenAndInit(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	h := &harness{
		db:       database,
		clock:    &testClock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)},
		events:   &recordingPublisher{},
		notifier: &recordingNotifier{},
		metrics:  metrics.New(),
	}

	submissions := sqlite.NewSubmissionRepository(database)
	rounds := sqlite.NewReviewRoundRepository(database)
	h.assignRep = sqlite.NewReviewAssignmentRepository(database)
	forms := sqlite.NewReviewFormRepository(database)
	participants := sqlite.NewParticipantRepository(database)
	tasks := sqlite.NewTaskRepository(database)
	h.activity = sqlite.NewActivityRepository(database)

	env := Env{
		Tx:       sqlite.NewTransactor(database),
		Identity: ctxIdentity{},
		Activity: sqlite.NewActivityLogWriter(h.activity).WithClock(h.clock.Now),
		Events:   h.events,
		Logger:   logging.NewNop(),
		Metrics:  h.metrics,
		Now:      h.clock.Now,
	}
	paging := PagePolicy{DefaultLimit: 20, MaxLimit: 100}

	h.submissions = NewSubmissionService(env, SubmissionRepos{
		Submissions:  submissions,
		Rounds:       rounds,
		Assignments:  h.assignRep,
		Participants: participants,
		Tasks:        tasks,
		Activity:     h.activity,
	})
	h.rounds = NewReviewRoundService(env, submissions, rounds, h.assignRep, forms)
	h.assignments = NewReviewAssignmentService(env, ReviewAssignmentRepos{
		Submissions:  submissions,
		Rounds:       rounds,
		Assignments:  h.assignRep,
		Forms:        forms,
		Participants: participants,
	}, h.notifier, cfg.policy)
	h.participants = NewParticipantService(env, submissions, participants)
	h.queues = NewQueueService(env, submissions, tasks, paging)
	h.ledger = NewLedgerService(env, submissions, participants, tasks, h.activity, paging)
	h.forms = NewReviewFormService(env, forms)
	return h
}

// seed loads a YAML fixture document.
func (h *harness) seed(t *testing.T, doc string) {
	t.Helper()
	fx, err := db.DecodeFixtures(strings.NewReader(doc))
	require.NoError(t, err)
	_, err = db.SeedFixtures(context.Background(), h.db, fx)
	require.NoError(t, err)
}

// assignment reads an assignment straight from storage.
func (h *harness) assignment(t *testing.T, id string) *secondary.ReviewAssignmentRecord {
	t.Helper()
	a, err := h.assignRep.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

// reviewFixture is one queued submission in review with an active round
// and a pending invitation for rev-carol.
const reviewFixture = `
forms:
  - id: FORM-STD
    title: Standard review
    questions:
      - {id: Q-ORIG, prompt: "Is the contribution original?", required: true}
      - {id: Q-NOTES, prompt: Further remarks, kind: text}
submissions:
  - id: SUB-1
    journal_id: J-1
    title: Tidal Forces in Shallow Seas
    stage: review
    participants:
      - {user_id: ed-alice, role: editor, stage: review}
      - {user_id: au-bob, role: author, stage: submission}
    rounds:
      - {id: RND-1, stage: review, round: 1}
    assignments:
      - {id: ASG-1, round_id: RND-1, reviewer_id: rev-carol}
`
