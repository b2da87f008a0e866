// Package wire assembles the editorial services from configuration.
// Commands share one lazily built App per process.
package wire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/example/editorial/internal/adapters/auth"
	cliadapter "github.com/example/editorial/internal/adapters/cli"
	"github.com/example/editorial/internal/adapters/events"
	"github.com/example/editorial/internal/adapters/mail"
	"github.com/example/editorial/internal/adapters/sqlite"
	"github.com/example/editorial/internal/app"
	"github.com/example/editorial/internal/config"
	"github.com/example/editorial/internal/db"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/metrics"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

// App holds the configured services and the resources behind them.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Logger  *slog.Logger
	Metrics *metrics.Collectors

	Submissions  primary.SubmissionService
	Rounds       primary.ReviewRoundService
	Assignments  primary.ReviewAssignmentService
	Participants primary.ParticipantService
	Queues       primary.QueueService
	Ledger       primary.LedgerService
	Forms        primary.ReviewFormService

	closers []func() error
}

type buildOptions struct {
	identity  secondary.IdentityProvider
	notifier  secondary.Notifier
	publisher secondary.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option overrides a collaborator chosen from configuration.
type Option func(*buildOptions)

// WithIdentity replaces the context identity provider.
func WithIdentity(p secondary.IdentityProvider) Option {
	return func(o *buildOptions) { o.identity = p }
}

// WithNotifier replaces the SMTP or no-op notifier.
func WithNotifier(n secondary.Notifier) Option {
	return func(o *buildOptions) { o.notifier = n }
}

// WithPublisher replaces the NATS or no-op publisher.
func WithPublisher(p secondary.EventPublisher) Option {
	return func(o *buildOptions) { o.publisher = p }
}

// WithLogger replaces the configured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *buildOptions) { o.now = now }
}

// Build wires every service over an open database.
func Build(cfg *config.Config, database *sql.DB, opts ...Option) (*App, error) {
	o := buildOptions{identity: auth.ContextProvider{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, DB: database, Metrics: metrics.New()}

	a.Logger = o.logger
	if a.Logger == nil {
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		a.Logger = logger
	}

	if o.notifier == nil {
		o.notifier = mail.Nop{}
		if cfg.SMTP.Host != "" {
			o.notifier = mail.NewSMTPNotifier(cfg.SMTP)
		}
	}
	if o.publisher == nil {
		o.publisher = events.Nop{}
		if cfg.NATS.URL != "" {
			pub, err := events.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, pub.Close)
			o.publisher = pub
		}
	}

	submissions := sqlite.NewSubmissionRepository(database)
	rounds := sqlite.NewReviewRoundRepository(database)
	assignments := sqlite.NewReviewAssignmentRepository(database)
	forms := sqlite.NewReviewFormRepository(database)
	participants := sqlite.NewParticipantRepository(database)
	tasks := sqlite.NewTaskRepository(database)
	activity := sqlite.NewActivityRepository(database)

	env := app.Env{
		Tx:       sqlite.NewTransactor(database),
		Identity: o.identity,
		Activity: sqlite.NewActivityLogWriter(activity).WithClock(o.now),
		Events:   o.publisher,
		Logger:   a.Logger,
		Metrics:  a.Metrics,
		Now:      o.now,
	}
	paging := app.PagePolicy{
		DefaultLimit: cfg.Workflow.DefaultPageSize,
		MaxLimit:     cfg.Workflow.MaxPageSize,
	}
	policy := app.AssignmentPolicy{
		StrictRemoval:          cfg.Workflow.StrictAssignmentRemoval,
		DefaultReviewDueDays:   cfg.Workflow.DefaultReviewDueDays,
		DefaultResponseDueDays: cfg.Workflow.DefaultResponseDueDays,
	}

	a.Submissions = app.NewSubmissionService(env, app.SubmissionRepos{
		Submissions:  submissions,
		Rounds:       rounds,
		Assignments:  assignments,
		Participants: participants,
		Tasks:        tasks,
		Activity:     activity,
	})
	a.Rounds = app.NewReviewRoundService(env, submissions, rounds, assignments, forms)
	a.Assignments = app.NewReviewAssignmentService(env, app.ReviewAssignmentRepos{
		Submissions:  submissions,
		Rounds:       rounds,
		Assignments:  assignments,
		Forms:        forms,
		Participants: participants,
	}, o.notifier, policy)
	a.Participants = app.NewParticipantService(env, submissions, participants)
	a.Queues = app.NewQueueService(env, submissions, tasks, paging)
	a.Ledger = app.NewLedgerService(env, submissions, participants, tasks, activity, paging)
	a.Forms = app.NewReviewFormService(env, forms)
	return a, nil
}

// Open opens the configured database, brings its schema up to date and
// wires the services. Fixtures are never loaded here.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	database, err := db.OpenAndInit(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a, err := Build(cfg, database, opts...)
	if err != nil {
		database.Close()
		return nil, err
	}
	a.closers = append(a.closers, database.Close)
	return a, nil
}

// Close releases the publisher connection and the database, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Process-wide App used by the CLI.
var (
	configPath string
	envFile    = ".env"
	current    *App
	initErr    error
	once       sync.Once
)

// Configure sets where Default reads its configuration. It must be called
// before the first Default call.
func Configure(path, dotenv string) {
	configPath = path
	envFile = dotenv
}

// Config loads the configuration without opening the database.
func Config() (*config.Config, error) {
	return config.Load(configPath, envFile)
}

// Default returns the process-wide App, building it on first use.
func Default() (*App, error) {
	once.Do(func() {
		cfg, err := Config()
		if err != nil {
			initErr = fmt.Errorf("load config: %w", err)
			return
		}
		current, initErr = Open(context.Background(), cfg)
	})
	return current, initErr
}

// Shutdown closes the process-wide App if it was built.
func Shutdown() error {
	if current == nil {
		return nil
	}
	return current.Close()
}

// QueueAdapter returns a queue renderer writing to stdout.
func QueueAdapter() (*cliadapter.QueueAdapter, error) {
	return QueueAdapterWithOutput(os.Stdout)
}

// QueueAdapterWithOutput returns a queue renderer writing to out.
func QueueAdapterWithOutput(out io.Writer) (*cliadapter.QueueAdapter, error) {
	a, err := Default()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewQueueAdapter(a.Queues, out), nil
}

// LedgerAdapter returns a task and activity renderer writing to stdout.
func LedgerAdapter() (*cliadapter.LedgerAdapter, error) {
	return LedgerAdapterWithOutput(os.Stdout)
}

// LedgerAdapterWithOutput returns a task and activity renderer writing to out.
func LedgerAdapterWithOutput(out io.Writer) (*cliadapter.LedgerAdapter, error) {
	a, err := Default()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewLedgerAdapter(a.Ledger, out), nil
}

// ReviewAdapter returns a submission, round and assignment renderer
// writing to stdout.
func ReviewAdapter() (*cliadapter.ReviewAdapter, error) {
	a, err := Default()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewReviewAdapter(a.Submissions, a.Assignments, os.Stdout), nil
}
