package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/db"
	"github.com/example/editorial/internal/ports/primary"
)

func TestCreateReviewForm(t *testing.T) {
	h := newHarness(t)
	ctx := as(context.Background(), editor)

	form, err := h.forms.CreateForm(ctx, primary.CreateReviewFormRequest{
		JournalID: "J-1",
		Title:     "Short form",
		Questions: []primary.ReviewFormQuestion{
			{Prompt: "Is the method sound?", Required: true},
			{ID: "Q-DATA", Prompt: "Is the data available?", Kind: "choice"},
		},
	})
	require.NoError(t, err)
	require.Len(t, form.Questions, 2)
	assert.Equal(t, form.ID+"-Q1", form.Questions[0].ID)
	assert.Equal(t, "textarea", form.Questions[0].Kind)
	assert.True(t, form.Questions[0].Required)
	assert.Equal(t, "Q-DATA", form.Questions[1].ID)

	got, err := h.forms.GetForm(as(context.Background(), user("rev-carol")), form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.Questions, got.Questions)

	list, err := h.forms.ListForms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Questions)

	// A round using the form makes its required question mandatory.
	h.seed(t, `
submissions:
  - id: SUB-7
    journal_id: J-1
    title: Form Bound
    stage: review
`)
	round, err := h.rounds.CreateRound(ctx, primary.CreateRoundRequest{SubmissionID: "SUB-7", ReviewFormID: form.ID})
	require.NoError(t, err)
	assigned, err := h.assignments.AssignReviewer(ctx, primary.AssignReviewerRequest{SubmissionID: "SUB-7", RoundID: round.RoundID, ReviewerID: "rev-carol"})
	require.NoError(t, err)
	carol := as(context.Background(), user("rev-carol"))
	require.NoError(t, h.assignments.AcceptAssignment(carol, primary.AcceptAssignmentRequest{AssignmentID: assigned.AssignmentID, PrivacyConsent: true}))
	err = h.assignments.SubmitRecommendation(carol, primary.RecommendationRequest{AssignmentID: assigned.AssignmentID, Recommendation: "accept", CommentsToEditor: "ok"})
	requireKind(t, err, apperr.ErrValidation)
}

func TestCreateReviewFormRejections(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		ctx  context.Context
		req  primary.CreateReviewFormRequest
		want error
	}{
		{"missing title", as(context.Background(), editor), primary.CreateReviewFormRequest{JournalID: "J-1"}, apperr.ErrValidation},
		{"empty prompt", as(context.Background(), editor), primary.CreateReviewFormRequest{JournalID: "J-1", Title: "x", Questions: []primary.ReviewFormQuestion{{Prompt: " "}}}, apperr.ErrValidation},
		{"unknown kind", as(context.Background(), editor), primary.CreateReviewFormRequest{JournalID: "J-1", Title: "x", Questions: []primary.ReviewFormQuestion{{Prompt: "p", Kind: "slider"}}}, apperr.ErrValidation},
		{"duplicate id", as(context.Background(), editor), primary.CreateReviewFormRequest{JournalID: "J-1", Title: "x", Questions: []primary.ReviewFormQuestion{{ID: "Q", Prompt: "a"}, {ID: "Q", Prompt: "b"}}}, apperr.ErrValidation},
		{"site-wide form needs a site grant", as(context.Background(), editor), primary.CreateReviewFormRequest{Title: "x"}, apperr.ErrForbidden},
		{"reviewer", as(context.Background(), user("rev-carol")), primary.CreateReviewFormRequest{JournalID: "J-1", Title: "x"}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.forms.CreateForm(tt.ctx, tt.req)
			requireKind(t, err, tt.want)
		})
	}

	_, err := h.forms.GetForm(as(context.Background(), editor), "FORM-404")
	requireKind(t, err, apperr.ErrNotFound)
}

func TestReviewFixtureSeedsFormQuestions(t *testing.T) {
	fx, err := db.DecodeFixtures(strings.NewReader(reviewFixture))
	require.NoError(t, err)
	require.Len(t, fx.Forms, 1)
	require.Len(t, fx.Forms[0].Questions, 2)

	q := fx.Forms[0].Questions[0]
	assert.Equal(t, "Q-ORIG", q.ID)
	assert.Equal(t, "Is the contribution original?", q.Prompt)
	assert.True(t, q.Required)

	h := newHarness(t)
	h.seed(t, reviewFixture)
	form, err := h.forms.GetForm(as(context.Background(), editor), "FORM-STD")
	require.NoError(t, err)
	require.Len(t, form.Questions, 2)
	assert.Equal(t, "Is the contribution original?", form.Questions[0].Prompt)
}
