package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/primary"
)

func TestAssignParticipantIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), manager)
	req := primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "ed-bruno", Role: "section-editor", Stage: "review"}

	first, err := h.participants.AssignParticipant(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "section_editor", first.Role)
	assert.Equal(t, "review", first.Stage)

	before := len(h.events.messages())
	second, err := h.participants.AssignParticipant(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, h.events.messages(), before, "a repeated assignment writes no activity")

	all, err := h.participants.ListParticipants(ctx, "SUB-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// The same user may hold another role, or the same role at another stage.
	_, err = h.participants.AssignParticipant(ctx, primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "ed-bruno", Role: "section_editor", Stage: "copyediting"})
	require.NoError(t, err)
	all, err = h.participants.ListParticipants(ctx, "SUB-1")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestAssignParticipantRejections(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)

	tests := []struct {
		name string
		ctx  context.Context
		req  primary.ParticipantRequest
		want error
	}{
		{"admin is not a participant role", as(context.Background(), editor), primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "admin-ada", Role: "admin", Stage: "review"}, apperr.ErrValidation},
		{"unknown role", as(context.Background(), editor), primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "x", Role: "typesetter", Stage: "review"}, apperr.ErrValidation},
		{"unknown stage", as(context.Background(), editor), primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "x", Role: "editor", Stage: "printing"}, apperr.ErrInvalidState},
		{"missing user", as(context.Background(), editor), primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: " ", Role: "editor", Stage: "review"}, apperr.ErrValidation},
		{"missing submission", as(context.Background(), editor), primary.ParticipantRequest{SubmissionID: "SUB-404", UserID: "x", Role: "editor", Stage: "review"}, apperr.ErrNotFound},
		{"author cannot assign", as(context.Background(), user("au-bob")), primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "x", Role: "editor", Stage: "review"}, apperr.ErrForbidden},
		{"other journal", as(context.Background(), outsider), primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "x", Role: "editor", Stage: "review"}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.participants.AssignParticipant(tt.ctx, tt.req)
			requireKind(t, err, tt.want)
		})
	}
}

func TestParticipantPermissions(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), editor)
	alice := primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "ed-alice", Role: "editor", Stage: "review"}

	decide, err := h.participants.CanMakeDecision(ctx, "SUB-1", "ed-alice", "review")
	require.NoError(t, err)
	assert.True(t, decide)
	meta, err := h.participants.CanChangeMetadata(ctx, "SUB-1", "ed-alice", "review")
	require.NoError(t, err)
	assert.False(t, meta)

	require.NoError(t, h.participants.UpdateParticipantPermissions(ctx, primary.ParticipantPermissionsRequest{
		ParticipantRequest: alice,
		RecommendOnly:      true,
		CanChangeMetadata:  true,
	}))

	decide, err = h.participants.CanMakeDecision(ctx, "SUB-1", "ed-alice", "review")
	require.NoError(t, err)
	assert.False(t, decide, "recommend-only editors cannot decide")
	meta, err = h.participants.CanChangeMetadata(ctx, "SUB-1", "ed-alice", "review")
	require.NoError(t, err)
	assert.True(t, meta)

	// Holdings are per stage.
	has, err := h.participants.HasAssignment(ctx, "SUB-1", "ed-alice", "copyediting")
	require.NoError(t, err)
	assert.False(t, has)

	// Authors hold a role but never decide.
	has, err = h.participants.HasAssignment(as(context.Background(), user("au-bob")), "SUB-1", "au-bob", "submission")
	require.NoError(t, err)
	assert.True(t, has)
	decide, err = h.participants.CanMakeDecision(as(context.Background(), user("au-bob")), "SUB-1", "au-bob", "submission")
	require.NoError(t, err)
	assert.False(t, decide)

	_, err = h.participants.HasAssignment(as(context.Background(), user("au-bob")), "SUB-1", "ed-alice", "review")
	requireKind(t, err, apperr.ErrForbidden)

	err = h.participants.UpdateParticipantPermissions(ctx, primary.ParticipantPermissionsRequest{
		ParticipantRequest: primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "ghost", Role: "editor", Stage: "review"},
	})
	requireKind(t, err, apperr.ErrNotFound)
}

func TestRemoveParticipant(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), editor)
	alice := primary.ParticipantRequest{SubmissionID: "SUB-1", UserID: "ed-alice", Role: "editor", Stage: "review"}

	require.NoError(t, h.participants.RemoveParticipant(ctx, alice))
	has, err := h.participants.HasAssignment(ctx, "SUB-1", "ed-alice", "review")
	require.NoError(t, err)
	assert.False(t, has)

	requireKind(t, h.participants.RemoveParticipant(ctx, alice), apperr.ErrNotFound)

	// With its only editor gone the submission is unassigned again.
	unassigned := queueIDs(t, h, manager, primary.QueueRequest{Queue: "unassigned", JournalID: "J-1"})
	assert.Contains(t, unassigned, "SUB-1")
}

func TestAssignedSubmissionIDs(t *testing.T) {
	h := newHarness(t)
	h.seed(t, queueFixture)

	own, err := h.participants.GetAssignedSubmissionIDs(as(context.Background(), user("au-bob")), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"SUB-B", "SUB-C", "SUB-E"}, own)

	_, err = h.participants.GetAssignedSubmissionIDs(as(context.Background(), user("au-bob")), "ed-alice")
	requireKind(t, err, apperr.ErrForbidden)

	other, err := h.participants.GetAssignedSubmissionIDs(as(context.Background(), editor), "ed-bruno")
	require.NoError(t, err)
	assert.Equal(t, []string{"SUB-D"}, other)

	byRole, err := h.participants.GetAssignedSubmissionIDsForRoles(as(context.Background(), editor), []string{"editor", "section-editor"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"SUB-B", "SUB-D", "SUB-G"}, byRole)

	_, err = h.participants.GetAssignedSubmissionIDsForRoles(as(context.Background(), user("au-bob")), []string{"editor"})
	requireKind(t, err, apperr.ErrForbidden)

	_, err = h.participants.GetAssignedSubmissionIDsForRoles(as(context.Background(), editor), []string{"printer"})
	requireKind(t, err, apperr.ErrValidation)
}
