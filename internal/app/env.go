// Package app implements the primary ports: it evaluates core guards,
// drives the secondary repositories inside one transaction per operation
// and fans activity out after commit.
package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/ctxutil"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/metrics"
	"github.com/example/editorial/internal/ports/secondary"
)

// Activity categories.
const (
	CategorySubmission  = "submission"
	CategoryWorkflow    = "workflow"
	CategoryReview      = "review"
	CategoryParticipant = "participant"
	CategoryTask        = "task"
	CategoryNote        = "note"
)

// Env carries the collaborators every workflow service shares.
type Env struct {
	Tx       secondary.Transactor
	Identity secondary.IdentityProvider
	Activity secondary.ActivityWriter
	Events   secondary.EventPublisher // optional
	Logger   *slog.Logger             // optional
	Metrics  *metrics.Collectors      // optional
	Now      func() time.Time         // optional, defaults to time.Now
	NewID    func(prefix string) string
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = logging.NewNop()
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.NewID == nil {
		e.NewID = NewID
	}
	return e
}

// NewID returns a prefixed random identifier such as "RND-1f0c...".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func (e Env) nowString() string {
	return secondary.FormatTime(e.Now())
}

// authenticate resolves the caller and stamps it on ctx as the actor.
func (e Env) authenticate(ctx context.Context) (context.Context, *access.Principal, error) {
	p, err := e.Identity.CurrentPrincipal(ctx)
	if err != nil {
		return ctx, nil, err
	}
	if p == nil || p.UserID == "" {
		return ctx, nil, apperr.New(apperr.ErrUnauthorized, "authentication required")
	}
	return ctxutil.WithActorID(ctx, p.UserID), p, nil
}

// activityBatch collects entries written inside a transaction so they can be
// published once it commits.
type activityBatch []*secondary.ActivityRecord

func (e Env) record(ctx context.Context, batch *activityBatch, submissionID, category, message string) error {
	entry, err := e.Activity.Write(ctx, submissionID, category, message)
	if err != nil {
		return err
	}
	*batch = append(*batch, entry)
	return nil
}

// publish fans committed entries out. Failures are logged only.
func (e Env) publish(ctx context.Context, batch activityBatch) {
	if e.Events == nil {
		return
	}
	for _, entry := range batch {
		if err := e.Events.Publish(ctx, entry); err != nil {
			logging.WithContext(ctx, e.Logger).Warn("activity publish failed",
				logging.FieldSubmissionID, entry.SubmissionID,
				"activity_id", entry.ID,
				"error", err)
		}
	}
}

// fail logs and counts a failed operation and returns err unchanged.
func (e Env) fail(ctx context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	e.Metrics.OperationError(operation, err)
	level := slog.LevelWarn
	if apperr.Is(err, apperr.ErrInfrastructure) {
		level = slog.LevelError
	}
	logging.WithContext(ctx, e.Logger).Log(ctx, level, "operation failed",
		logging.FieldOperation, operation,
		"code", apperr.Code(apperr.KindOf(err)),
		"error", err)
	return err
}

func (e Env) info(ctx context.Context, msg string, args ...any) {
	logging.WithContext(ctx, e.Logger).Info(msg, args...)
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates; a date
// means the end of that day in UTC. Empty input yields "".
func parseDate(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return secondary.FormatTime(t), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return secondary.FormatTime(t.Add(24*time.Hour - time.Microsecond)), nil
	}
	return "", apperr.Newf(apperr.ErrValidation, "%s: expected RFC 3339 or YYYY-MM-DD, got %q", field, raw)
}

func optionalTime(s string) *time.Time {
	t, ok := secondary.ParseTime(s)
	if !ok {
		return nil
	}
	return &t
}

func cloneMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
