package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/primary"
)

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "want %s, got %v", apperr.Code(kind), err)
}

const formRoundFixture = `
submissions:
  - id: SUB-2
    journal_id: J-1
    title: A Survey of Lichen Symbiosis
    stage: review
    rounds:
      - {id: RND-2, stage: review, round: 1, review_form_id: FORM-STD}
    assignments:
      - {id: ASG-2, round_id: RND-2, reviewer_id: rev-dan, status: accepted}
`

func TestDeclineThenAcceptConflicts(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), user("rev-carol"))

	err := h.assignments.DeclineAssignment(ctx, primary.DeclineAssignmentRequest{AssignmentID: "ASG-1", Reason: "too busy"})
	require.NoError(t, err)

	a := h.assignment(t, "ASG-1")
	assert.Equal(t, "declined", a.Status)
	assert.Equal(t, "too busy", a.Metadata["decline_reason"])
	assert.Empty(t, a.Recommendation)

	err = h.assignments.AcceptAssignment(ctx, primary.AcceptAssignmentRequest{AssignmentID: "ASG-1", PrivacyConsent: true})
	requireKind(t, err, apperr.ErrConflict)
	assert.Equal(t, "declined", h.assignment(t, "ASG-1").Status)

	assert.Contains(t, h.events.messages(), "Reviewer rev-carol declined the review request: too busy")
}

func TestAcceptThenSubmitIsFinal(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), user("rev-carol"))

	require.NoError(t, h.assignments.AcceptAssignment(ctx, primary.AcceptAssignmentRequest{
		AssignmentID:       "ASG-1",
		PrivacyConsent:     true,
		CompetingInterests: "none",
	}))
	a := h.assignment(t, "ASG-1")
	assert.Equal(t, "accepted", a.Status)
	assert.Equal(t, "none", a.Metadata["competing_interests"])
	assert.NotEmpty(t, a.Metadata["date_confirmed"])

	require.NoError(t, h.assignments.SaveDraftRecommendation(ctx, primary.RecommendationRequest{
		AssignmentID:     "ASG-1",
		Recommendation:   "major_revision",
		CommentsToAuthor: "first thoughts",
	}))
	assert.Equal(t, "major_revision", h.assignment(t, "ASG-1").Metadata["draft_recommendation"])

	h.clock.Advance(time.Hour)
	require.NoError(t, h.assignments.SubmitRecommendation(ctx, primary.RecommendationRequest{
		AssignmentID:     "ASG-1",
		Recommendation:   "reject",
		CommentsToAuthor: "The tidal model ignores friction.",
	}))

	a = h.assignment(t, "ASG-1")
	assert.Equal(t, "completed", a.Status)
	assert.Equal(t, "reject", a.Recommendation)
	assert.Equal(t, "2026-03-02T11:00:00.000000Z", a.SubmittedAt)
	assert.Equal(t, "The tidal model ignores friction.", a.Metadata["comments_to_author"])
	assert.NotContains(t, a.Metadata, "draft_recommendation")
	assert.NotContains(t, a.Metadata, "draft_saved_at")

	err := h.assignments.SaveDraftRecommendation(ctx, primary.RecommendationRequest{AssignmentID: "ASG-1", CommentsToAuthor: "more"})
	requireKind(t, err, apperr.ErrConflict)

	err = h.assignments.SubmitRecommendation(ctx, primary.RecommendationRequest{
		AssignmentID: "ASG-1", Recommendation: "accept", CommentsToEditor: "changed my mind",
	})
	requireKind(t, err, apperr.ErrConflict)
	assert.Equal(t, "reject", h.assignment(t, "ASG-1").Recommendation)
}

func TestAcceptRequiresConsent(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), user("rev-carol"))

	err := h.assignments.AcceptAssignment(ctx, primary.AcceptAssignmentRequest{AssignmentID: "ASG-1"})
	requireKind(t, err, apperr.ErrValidation)
	assert.Equal(t, "pending", h.assignment(t, "ASG-1").Status)
}

func TestReviewerActionValidation(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	carol := as(context.Background(), user("rev-carol"))

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{
			name: "decline without reason",
			run: func() error {
				return h.assignments.DeclineAssignment(carol, primary.DeclineAssignmentRequest{AssignmentID: "ASG-1", Reason: "  "})
			},
			want: apperr.ErrValidation,
		},
		{
			name: "another reviewer",
			run: func() error {
				return h.assignments.AcceptAssignment(as(context.Background(), user("rev-dan")),
					primary.AcceptAssignmentRequest{AssignmentID: "ASG-1", PrivacyConsent: true})
			},
			want: apperr.ErrForbidden,
		},
		{
			name: "signed out",
			run: func() error {
				return h.assignments.AcceptAssignment(context.Background(), primary.AcceptAssignmentRequest{AssignmentID: "ASG-1", PrivacyConsent: true})
			},
			want: apperr.ErrUnauthorized,
		},
		{
			name: "unknown assignment",
			run: func() error {
				return h.assignments.AcceptAssignment(carol, primary.AcceptAssignmentRequest{AssignmentID: "ASG-404", PrivacyConsent: true})
			},
			want: apperr.ErrNotFound,
		},
		{
			name: "submit while pending",
			run: func() error {
				return h.assignments.SubmitRecommendation(carol, primary.RecommendationRequest{
					AssignmentID: "ASG-1", Recommendation: "accept", CommentsToEditor: "fine",
				})
			},
			want: apperr.ErrConflict,
		},
		{
			name: "unknown recommendation",
			run: func() error {
				return h.assignments.SubmitRecommendation(carol, primary.RecommendationRequest{
					AssignmentID: "ASG-1", Recommendation: "maybe", CommentsToEditor: "fine",
				})
			},
			want: apperr.ErrValidation,
		},
		{
			name: "draft with unknown recommendation",
			run: func() error {
				return h.assignments.SaveDraftRecommendation(carol, primary.RecommendationRequest{
					AssignmentID: "ASG-1", Recommendation: "maybe",
				})
			},
			want: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireKind(t, tt.run(), tt.want)
			assert.Equal(t, "pending", h.assignment(t, "ASG-1").Status)
		})
	}
}

func TestSubmitRequiresEitherCommentsOrForm(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	h.seed(t, formRoundFixture)

	t.Run("without form comments are required", func(t *testing.T) {
		carol := as(context.Background(), user("rev-carol"))
		require.NoError(t, h.assignments.AcceptAssignment(carol, primary.AcceptAssignmentRequest{AssignmentID: "ASG-1", PrivacyConsent: true}))
		err := h.assignments.SubmitRecommendation(carol, primary.RecommendationRequest{AssignmentID: "ASG-1", Recommendation: "accept"})
		requireKind(t, err, apperr.ErrValidation)
	})

	t.Run("with form required questions are required", func(t *testing.T) {
		dan := as(context.Background(), user("rev-dan"))
		err := h.assignments.SubmitRecommendation(dan, primary.RecommendationRequest{
			AssignmentID:     "ASG-2",
			Recommendation:   "minor_revision",
			CommentsToAuthor: "comments do not replace the form",
			FormResponses:    []primary.FormResponse{{QuestionID: "Q-NOTES", Response: "none"}},
		})
		requireKind(t, err, apperr.ErrValidation)
		assert.Contains(t, err.Error(), "Q-ORIG")

		require.NoError(t, h.assignments.SubmitRecommendation(dan, primary.RecommendationRequest{
			AssignmentID:   "ASG-2",
			Recommendation: "minor_revision",
			FormResponses:  []primary.FormResponse{{QuestionID: "Q-ORIG", Response: "Yes"}},
		}))
		a := h.assignment(t, "ASG-2")
		assert.Equal(t, "completed", a.Status)
		assert.Equal(t, map[string]any{"Q-ORIG": "Yes"}, a.Metadata["review_form_responses"])
	})
}

func TestAssignReviewer(t *testing.T) {
	h := newHarness(t, withPolicy(AssignmentPolicy{StrictRemoval: true, DefaultReviewDueDays: 28}))
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), editor)

	resp, err := h.assignments.AssignReviewer(ctx, primary.AssignReviewerRequest{
		SubmissionID:    "SUB-1",
		ReviewerID:      "rev-dan",
		ResponseDueDate: "2026-03-09",
		PersonalMessage: "Would you have time?",
	})
	require.NoError(t, err)

	got := resp.Assignment
	assert.Equal(t, "RND-1", got.ReviewRoundID)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "doubleAnonymous", got.ReviewMethod)
	assert.Equal(t, "awaiting_response", got.ReviewerView)
	assert.Equal(t, "2026-03-09T23:59:59.999999Z", got.ResponseDueDate)
	assert.Equal(t, "2026-03-30T10:00:00.000000Z", got.DueDate)
	assert.Equal(t, "Would you have time?", got.Metadata["personal_message"])

	require.Len(t, h.notifier.invitations, 1)
	inv := h.notifier.invitations[0]
	assert.Equal(t, resp.AssignmentID, inv.AssignmentID)
	assert.Equal(t, "Tidal Forces in Shallow Seas", inv.SubmissionTitle)
	assert.Equal(t, 1, inv.Round)

	has, err := h.participants.HasAssignment(ctx, "SUB-1", "rev-dan", "review")
	require.NoError(t, err)
	assert.True(t, has, "reviewer should be registered as a participant")

	h.clock.Advance(8 * 24 * time.Hour)
	view, err := h.assignments.GetAssignment(as(context.Background(), user("rev-dan")), resp.AssignmentID)
	require.NoError(t, err)
	assert.Equal(t, "response_overdue", view.ReviewerView)
}

func TestAssignReviewerRejections(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	h.seed(t, formRoundFixture)

	tests := []struct {
		name string
		ctx  context.Context
		req  primary.AssignReviewerRequest
		want error
	}{
		{
			name: "reviewer already invited",
			ctx:  as(context.Background(), editor),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", ReviewerID: "rev-carol"},
			want: apperr.ErrConflict,
		},
		{
			name: "editor of another journal",
			ctx:  as(context.Background(), outsider),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", ReviewerID: "rev-dan"},
			want: apperr.ErrForbidden,
		},
		{
			name: "author",
			ctx:  as(context.Background(), user("au-bob")),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", ReviewerID: "rev-dan"},
			want: apperr.ErrForbidden,
		},
		{
			name: "signed out",
			ctx:  context.Background(),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", ReviewerID: "rev-dan"},
			want: apperr.ErrUnauthorized,
		},
		{
			name: "missing round",
			ctx:  as(context.Background(), editor),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", RoundID: "RND-404", ReviewerID: "rev-dan"},
			want: apperr.ErrNotFound,
		},
		{
			name: "round of another submission",
			ctx:  as(context.Background(), editor),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", RoundID: "RND-2", ReviewerID: "rev-dan"},
			want: apperr.ErrValidation,
		},
		{
			name: "no active round at stage",
			ctx:  as(context.Background(), editor),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", Stage: "copyediting", ReviewerID: "rev-dan"},
			want: apperr.ErrNotFound,
		},
		{
			name: "unknown review method",
			ctx:  as(context.Background(), editor),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", ReviewerID: "rev-dan", ReviewMethod: "blind"},
			want: apperr.ErrValidation,
		},
		{
			name: "bad due date",
			ctx:  as(context.Background(), editor),
			req:  primary.AssignReviewerRequest{SubmissionID: "SUB-1", ReviewerID: "rev-dan", DueDate: "next week"},
			want: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.assignments.AssignReviewer(tt.ctx, tt.req)
			requireKind(t, err, tt.want)
		})
	}
	assert.Empty(t, h.notifier.invitations)
}

func TestAssignReviewerAfterDeclineOpensNewSlot(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)

	require.NoError(t, h.assignments.DeclineAssignment(as(context.Background(), user("rev-carol")),
		primary.DeclineAssignmentRequest{AssignmentID: "ASG-1", Reason: "travelling"}))

	_, err := h.assignments.AssignReviewer(as(context.Background(), editor), primary.AssignReviewerRequest{
		SubmissionID: "SUB-1", ReviewerID: "rev-carol",
	})
	require.NoError(t, err)
}

func TestAssignReviewerNotifierFailureKeepsAssignment(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	h.notifier.err = errors.New("smtp down")

	resp, err := h.assignments.AssignReviewer(as(context.Background(), editor), primary.AssignReviewerRequest{
		SubmissionID: "SUB-1", ReviewerID: "rev-dan",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", h.assignment(t, resp.AssignmentID).Status)
}

func TestUpdateAssignment(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), editor)

	t.Run("no fields is a successful no-op", func(t *testing.T) {
		before := h.assignment(t, "ASG-1")
		require.NoError(t, h.assignments.UpdateAssignment(ctx, primary.UpdateAssignmentRequest{AssignmentID: "ASG-1"}))
		assert.Equal(t, before, h.assignment(t, "ASG-1"))
	})

	t.Run("missing assignment", func(t *testing.T) {
		err := h.assignments.UpdateAssignment(ctx, primary.UpdateAssignmentRequest{AssignmentID: "ASG-404"})
		requireKind(t, err, apperr.ErrNotFound)
	})

	t.Run("personal message merges into metadata", func(t *testing.T) {
		require.NoError(t, h.assignments.AcceptAssignment(as(context.Background(), user("rev-carol")),
			primary.AcceptAssignmentRequest{AssignmentID: "ASG-1", PrivacyConsent: true, CompetingInterests: "none"}))

		msg := "Thanks for agreeing."
		due := "2026-04-01"
		require.NoError(t, h.assignments.UpdateAssignment(ctx, primary.UpdateAssignmentRequest{
			AssignmentID:    "ASG-1",
			PersonalMessage: &msg,
			DueDate:         &due,
		}))

		a := h.assignment(t, "ASG-1")
		assert.Equal(t, msg, a.Metadata["personal_message"])
		assert.Equal(t, "none", a.Metadata["competing_interests"])
		assert.Equal(t, "2026-04-01T23:59:59.999999Z", a.DueDate)
	})

	t.Run("completed assignment is frozen", func(t *testing.T) {
		require.NoError(t, h.assignments.SubmitRecommendation(as(context.Background(), user("rev-carol")), primary.RecommendationRequest{
			AssignmentID: "ASG-1", Recommendation: "accept", CommentsToEditor: "Sound work.",
		}))
		due := "2026-05-01"
		err := h.assignments.UpdateAssignment(ctx, primary.UpdateAssignmentRequest{AssignmentID: "ASG-1", DueDate: &due})
		requireKind(t, err, apperr.ErrConflict)
	})
}

func TestRemoveAssignmentStrictPolicy(t *testing.T) {
	h := newHarness(t, withPolicy(AssignmentPolicy{StrictRemoval: true}))
	h.seed(t, reviewFixture)
	h.seed(t, formRoundFixture)

	require.NoError(t, h.assignments.RemoveAssignment(as(context.Background(), editor), primary.RemoveAssignmentRequest{AssignmentID: "ASG-1"}))
	_, err := h.assignRep.GetByID(context.Background(), "ASG-1")
	requireKind(t, err, apperr.ErrNotFound)

	err = h.assignments.RemoveAssignment(as(context.Background(), editor), primary.RemoveAssignmentRequest{AssignmentID: "ASG-2"})
	requireKind(t, err, apperr.ErrValidation)

	err = h.assignments.RemoveAssignment(as(context.Background(), editor), primary.RemoveAssignmentRequest{AssignmentID: "ASG-2", Force: true})
	requireKind(t, err, apperr.ErrForbidden)

	require.NoError(t, h.assignments.RemoveAssignment(as(context.Background(), siteAdmin), primary.RemoveAssignmentRequest{AssignmentID: "ASG-2", Force: true}))
	assert.Contains(t, h.events.messages(), "Review assignment for rev-dan removed while accepted")
}

func TestRemoveAssignmentLenientPolicy(t *testing.T) {
	h := newHarness(t, withPolicy(AssignmentPolicy{StrictRemoval: false}))
	h.seed(t, reviewFixture)
	h.seed(t, formRoundFixture)

	require.NoError(t, h.assignments.RemoveAssignment(as(context.Background(), editor), primary.RemoveAssignmentRequest{AssignmentID: "ASG-2"}))
	_, err := h.assignRep.GetByID(context.Background(), "ASG-2")
	requireKind(t, err, apperr.ErrNotFound)
}

func TestListReviewerAssignments(t *testing.T) {
	h := newHarness(t)
	h.seed(t, reviewFixture)
	h.seed(t, formRoundFixture)

	mine, err := h.assignments.ListReviewerAssignments(as(context.Background(), user("rev-dan")), "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ASG-2", mine[0].ID)
	assert.Equal(t, "in_progress", mine[0].ReviewerView)

	none, err := h.assignments.ListReviewerAssignments(as(context.Background(), user("rev-dan")), "pending")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = h.assignments.ListReviewerAssignments(as(context.Background(), user("rev-dan")), "lost")
	requireKind(t, err, apperr.ErrValidation)

	_, err = h.assignments.GetAssignment(as(context.Background(), user("rev-carol")), "ASG-2")
	requireKind(t, err, apperr.ErrForbidden)
}

func TestConcurrentAcceptExactlyOneWins(t *testing.T) {
	h := newHarness(t, withFileDB())
	h.seed(t, reviewFixture)
	ctx := as(context.Background(), user("rev-carol"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.assignments.AcceptAssignment(ctx, primary.AcceptAssignmentRequest{AssignmentID: "ASG-1", PrivacyConsent: true})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireKind(t, err, apperr.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, "accepted", h.assignment(t, "ASG-1").Status)
}
