package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/editorial/internal/ctxutil"
	"github.com/example/editorial/internal/ports/secondary"
)

// ActivityLogWriter implements secondary.ActivityWriter on top of an
// ActivityRepository. The actor comes from the context.
type ActivityLogWriter struct {
	repo  secondary.ActivityRepository
	now   func() time.Time
	newID func() string
}

// NewActivityLogWriter creates a writer stamping entries with the wall clock.
func NewActivityLogWriter(repo secondary.ActivityRepository) *ActivityLogWriter {
	return &ActivityLogWriter{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the time source; used by tests.
func (w *ActivityLogWriter) WithClock(now func() time.Time) *ActivityLogWriter {
	w.now = now
	return w
}

// Write appends one entry for the submission.
func (w *ActivityLogWriter) Write(ctx context.Context, submissionID, category, message string) (*secondary.ActivityRecord, error) {
	record := &secondary.ActivityRecord{
		ID:           w.newID(),
		SubmissionID: submissionID,
		ActorID:      ctxutil.ActorFromContext(ctx),
		Category:     category,
		Message:      message,
		CreatedAt:    secondary.FormatTime(w.now()),
	}
	if err := w.repo.Append(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Ensure ActivityLogWriter implements the interface
var _ secondary.ActivityWriter = (*ActivityLogWriter)(nil)
