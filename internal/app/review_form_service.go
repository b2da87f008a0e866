package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

var questionKinds = map[string]bool{"text": true, "textarea": true, "choice": true}

// ReviewFormServiceImpl implements the ReviewFormService interface.
type ReviewFormServiceImpl struct {
	env   Env
	forms secondary.ReviewFormRepository
}

// NewReviewFormService creates a new ReviewFormService with injected dependencies.
func NewReviewFormService(env Env, forms secondary.ReviewFormRepository) *ReviewFormServiceImpl {
	return &ReviewFormServiceImpl{env: env.withDefaults(), forms: forms}
}

// CreateForm stores a review form. Journal forms need editor access to the
// journal; site-wide forms need site-wide editor access.
func (s *ReviewFormServiceImpl) CreateForm(ctx context.Context, req primary.CreateReviewFormRequest) (*primary.ReviewForm, error) {
	const op = "create_review_form"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if _, err := access.AssertEditorAccess(p, req.JournalID); err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, s.env.fail(ctx, op, apperr.New(apperr.ErrValidation, "form title is required"))
	}
	form := &secondary.ReviewFormRecord{
		ID:        s.env.NewID("RVF"),
		JournalID: req.JournalID,
		Title:     title,
		CreatedAt: s.env.nowString(),
	}
	questions := make([]*secondary.ReviewFormQuestionRecord, 0, len(req.Questions))
	seen := make(map[string]bool, len(req.Questions))
	for i, q := range req.Questions {
		prompt := strings.TrimSpace(q.Prompt)
		if prompt == "" {
			return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrValidation, "question %d: prompt is required", i+1))
		}
		kind := strings.TrimSpace(q.Kind)
		if kind == "" {
			kind = "textarea"
		}
		if !questionKinds[kind] {
			return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrValidation, "question %d: unknown kind %q", i+1, q.Kind))
		}
		id := strings.TrimSpace(q.ID)
		if id == "" {
			id = fmt.Sprintf("%s-Q%d", form.ID, i+1)
		}
		if seen[id] {
			return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrValidation, "question id %s is used twice", id))
		}
		seen[id] = true
		questions = append(questions, &secondary.ReviewFormQuestionRecord{
			ID:       id,
			FormID:   form.ID,
			Seq:      i + 1,
			Prompt:   prompt,
			Kind:     kind,
			Required: q.Required,
		})
	}

	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.forms.Create(ctx, form, questions)
	})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	s.env.info(ctx, "review form created", "form_id", form.ID, "questions", len(questions))
	return toReviewForm(form, questions), nil
}

// GetForm returns a form with its questions.
func (s *ReviewFormServiceImpl) GetForm(ctx context.Context, formID string) (*primary.ReviewForm, error) {
	const op = "get_review_form"
	ctx, _, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	questions, err := s.forms.ListQuestions(ctx, form.ID)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	return toReviewForm(form, questions), nil
}

// ListForms lists every form without questions.
func (s *ReviewFormServiceImpl) ListForms(ctx context.Context) ([]*primary.ReviewForm, error) {
	const op = "list_review_forms"
	ctx, _, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	records, err := s.forms.List(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	out := make([]*primary.ReviewForm, len(records))
	for i, r := range records {
		out[i] = toReviewForm(r, nil)
	}
	return out, nil
}

func toReviewForm(form *secondary.ReviewFormRecord, questions []*secondary.ReviewFormQuestionRecord) *primary.ReviewForm {
	out := &primary.ReviewForm{
		ID:        form.ID,
		JournalID: form.JournalID,
		Title:     form.Title,
		CreatedAt: form.CreatedAt,
		Questions: make([]primary.ReviewFormQuestion, len(questions)),
	}
	for i, q := range questions {
		out.Questions[i] = primary.ReviewFormQuestion{ID: q.ID, Prompt: q.Prompt, Kind: q.Kind, Required: q.Required}
	}
	return out
}

// Ensure ReviewFormServiceImpl implements the interface.
var _ primary.ReviewFormService = (*ReviewFormServiceImpl)(nil)
