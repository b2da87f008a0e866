package wire

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/editorial/internal/adapters/auth"
	"github.com/example/editorial/internal/config"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/db"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/ports/primary"
)

func TestOpenWiresServices(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = db.MemoryPath

	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a, err := Open(context.Background(), &cfg, WithLogger(logging.NewNop()), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Submissions)
	assert.NotNil(t, a.Rounds)
	assert.NotNil(t, a.Assignments)
	assert.NotNil(t, a.Participants)
	assert.NotNil(t, a.Queues)
	assert.NotNil(t, a.Ledger)
	assert.NotNil(t, a.Forms)
	assert.NotNil(t, a.Metrics)

	editor := &access.Principal{UserID: "ed-alice", Grants: []access.Grant{{Role: access.Editor}}}
	ctx := auth.WithPrincipal(context.Background(), editor)

	created, err := a.Submissions.CreateSubmission(ctx, primary.CreateSubmissionRequest{
		JournalID: "JNL-1",
		Title:     "Glacial Melt Chronology",
		AuthorID:  "au-bea",
	})
	require.NoError(t, err)

	page, err := a.Queues.ListQueue(ctx, primary.QueueRequest{Queue: "all_active"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, created.SubmissionID, page.Submissions[0].ID)
	assert.Equal(t, cfg.Workflow.DefaultPageSize, page.Limit)
}

func TestOpenWithoutPrincipalIsUnauthorized(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = db.MemoryPath

	a, err := Open(context.Background(), &cfg, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Queues.ListQueue(context.Background(), primary.QueueRequest{Queue: "my_queue"})
	require.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = db.MemoryPath

	a, err := Open(context.Background(), &cfg, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}
