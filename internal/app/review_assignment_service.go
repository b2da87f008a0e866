package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/core/reviewassignment"
	"github.com/example/editorial/internal/core/reviewround"
	"github.com/example/editorial/internal/core/stage"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

// Metadata keys written on review assignments.
const (
	metaPersonalMessage    = "personal_message"
	metaCompetingInterests = "competing_interests"
	metaDateConfirmed      = "date_confirmed"
	metaDeclineReason      = "decline_reason"
	metaDateDeclined       = "date_declined"
	metaCommentsToAuthor   = "comments_to_author"
	metaCommentsToEditor   = "comments_to_editor"
	metaFormResponses      = "review_form_responses"
	metaDateCompleted      = "date_completed"
	metaDraftPrefix        = "draft_"
	metaDraftSavedAt       = "draft_saved_at"
)

// AssignmentPolicy holds the configurable parts of the assignment lifecycle.
type AssignmentPolicy struct {
	// StrictRemoval allows removing pending assignments only.
	StrictRemoval bool
	// Default deadlines in days, applied when an invitation leaves them out.
	// Zero leaves the deadline unset.
	DefaultReviewDueDays   int
	DefaultResponseDueDays int
}

// ReviewAssignmentRepos groups the repositories the assignment lifecycle uses.
type ReviewAssignmentRepos struct {
	Submissions  secondary.SubmissionRepository
	Rounds       secondary.ReviewRoundRepository
	Assignments  secondary.ReviewAssignmentRepository
	Forms        secondary.ReviewFormRepository
	Participants secondary.ParticipantRepository
}

// ReviewAssignmentServiceImpl implements the ReviewAssignmentService interface.
type ReviewAssignmentServiceImpl struct {
	env      Env
	repos    ReviewAssignmentRepos
	notifier secondary.Notifier
	policy   AssignmentPolicy
}

// NewReviewAssignmentService creates a new ReviewAssignmentService with injected dependencies.
// A nil notifier disables invitations.
func NewReviewAssignmentService(env Env, repos ReviewAssignmentRepos, notifier secondary.Notifier, policy AssignmentPolicy) *ReviewAssignmentServiceImpl {
	return &ReviewAssignmentServiceImpl{
		env:      env.withDefaults(),
		repos:    repos,
		notifier: notifier,
		policy:   policy,
	}
}

func (s *ReviewAssignmentServiceImpl) defaultDue(days int) string {
	if days <= 0 {
		return ""
	}
	return secondary.FormatTime(s.env.Now().Add(time.Duration(days) * 24 * time.Hour))
}

// resolveRound finds the round an invitation targets: the given round, or
// the active round of the stage.
func (s *ReviewAssignmentServiceImpl) resolveRound(ctx context.Context, sub *secondary.SubmissionRecord, req primary.AssignReviewerRequest) (*secondary.ReviewRoundRecord, error) {
	var wantStage stage.Stage
	if strings.TrimSpace(req.Stage) != "" {
		st, err := stage.ParseStage(req.Stage)
		if err != nil {
			return nil, err
		}
		wantStage = st
	}

	if req.RoundID != "" {
		round, err := s.repos.Rounds.GetByID(ctx, req.RoundID)
		if err != nil {
			return nil, err
		}
		if round.SubmissionID != sub.ID {
			return nil, apperr.Newf(apperr.ErrValidation, "review round %s does not belong to submission %s", round.ID, sub.ID)
		}
		if wantStage != "" && stage.Stage(round.Stage) != wantStage {
			return nil, apperr.Newf(apperr.ErrValidation, "review round %s is at stage %s, not %s", round.ID, round.Stage, wantStage)
		}
		return round, nil
	}

	if wantStage == "" {
		wantStage = stage.Review
	}
	round, err := s.repos.Rounds.GetActive(ctx, sub.ID, string(wantStage))
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, apperr.Newf(apperr.ErrNotFound, "submission %s has no active review round at stage %s", sub.ID, wantStage)
	}
	return round, nil
}

// AssignReviewer invites a reviewer to a round.
func (s *ReviewAssignmentServiceImpl) AssignReviewer(ctx context.Context, req primary.AssignReviewerRequest) (*primary.AssignReviewerResponse, error) {
	const op = "assign_reviewer"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	method := reviewassignment.ReviewMethod(strings.TrimSpace(req.ReviewMethod))
	if method == "" {
		method = reviewassignment.MethodDoubleAnonymous
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if dueDate == "" {
		dueDate = s.defaultDue(s.policy.DefaultReviewDueDays)
	}
	responseDue, err := parseDate("response_due_date", req.ResponseDueDate)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if responseDue == "" {
		responseDue = s.defaultDue(s.policy.DefaultResponseDueDays)
	}

	var (
		batch   activityBatch
		created *secondary.ReviewAssignmentRecord
		invite  secondary.Invitation
	)
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.repos.Submissions.GetByID(ctx, req.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}
		round, err := s.resolveRound(ctx, sub, req)
		if err != nil {
			return err
		}

		open, err := s.openAssignment(ctx, round.ID, req.ReviewerID)
		if err != nil {
			return err
		}
		check := reviewassignment.CanAssign(reviewassignment.AssignContext{
			RoundID:             round.ID,
			RoundExists:         true,
			RoundStatus:         reviewround.Status(round.Status),
			ReviewerID:          strings.TrimSpace(req.ReviewerID),
			ReviewMethod:        method,
			ReviewerHasOpenSlot: open,
		})
		if err := check.Error(); err != nil {
			return err
		}

		now := s.env.nowString()
		metadata := map[string]any{}
		if msg := strings.TrimSpace(req.PersonalMessage); msg != "" {
			metadata[metaPersonalMessage] = msg
		}
		created = &secondary.ReviewAssignmentRecord{
			ID:              s.env.NewID("RVA"),
			SubmissionID:    sub.ID,
			ReviewRoundID:   round.ID,
			ReviewerID:      strings.TrimSpace(req.ReviewerID),
			Stage:           round.Stage,
			Status:          string(reviewassignment.StatusPending),
			ReviewMethod:    string(method),
			AssignedAt:      now,
			DueDate:         dueDate,
			ResponseDueDate: responseDue,
			Metadata:        metadata,
			UpdatedAt:       now,
		}
		if err := s.repos.Assignments.Create(ctx, created); err != nil {
			return err
		}

		// Reviewers keep a presence row so the registry knows who is on the
		// submission at this stage.
		if _, err := s.repos.Participants.Insert(ctx, &secondary.ParticipantRecord{
			ID:           s.env.NewID("PRT"),
			SubmissionID: sub.ID,
			UserID:       created.ReviewerID,
			Role:         string(access.Reviewer),
			Stage:        round.Stage,
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		invite = secondary.Invitation{
			AssignmentID:    created.ID,
			SubmissionID:    sub.ID,
			SubmissionTitle: sub.Title,
			ReviewerID:      created.ReviewerID,
			Round:           round.Round,
			ResponseDueDate: created.ResponseDueDate,
			DueDate:         created.DueDate,
			PersonalMessage: strings.TrimSpace(req.PersonalMessage),
		}
		return s.env.record(ctx, &batch, sub.ID, CategoryReview,
			fmt.Sprintf("Reviewer %s invited to review round %d", created.ReviewerID, round.Round))
	})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	s.env.publish(ctx, batch)
	s.env.Metrics.AssignmentTransition(created.Status)
	s.notify(ctx, invite)
	s.env.info(ctx, "reviewer assigned",
		logging.FieldSubmissionID, created.SubmissionID,
		logging.FieldRoundID, created.ReviewRoundID,
		logging.FieldAssignmentID, created.ID,
		"reviewer_id", created.ReviewerID)

	return &primary.AssignReviewerResponse{
		AssignmentID: created.ID,
		Assignment:   recordToAssignment(created, s.env.Now()),
	}, nil
}

func (s *ReviewAssignmentServiceImpl) notify(ctx context.Context, inv secondary.Invitation) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyReviewerInvited(ctx, inv); err != nil {
		logging.WithContext(ctx, s.env.Logger).Warn("reviewer invitation not delivered",
			logging.FieldAssignmentID, inv.AssignmentID,
			"reviewer_id", inv.ReviewerID,
			"error", err)
	}
}

func (s *ReviewAssignmentServiceImpl) openAssignment(ctx context.Context, roundID, reviewerID string) (bool, error) {
	existing, err := s.repos.Assignments.List(ctx, secondary.ReviewAssignmentFilters{
		ReviewRoundID: roundID,
		ReviewerID:    strings.TrimSpace(reviewerID),
	})
	if err != nil {
		return false, err
	}
	for _, a := range existing {
		if !reviewassignment.Status(a.Status).Terminal() {
			return true, nil
		}
	}
	return false, nil
}

// loadForEditor fetches an assignment and checks editor access to its
// submission.
func (s *ReviewAssignmentServiceImpl) loadForEditor(ctx context.Context, p *access.Principal, id string) (*secondary.ReviewAssignmentRecord, *secondary.SubmissionRecord, error) {
	a, err := s.repos.Assignments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sub, err := s.repos.Submissions.GetByID(ctx, a.SubmissionID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
		return nil, nil, err
	}
	return a, sub, nil
}

// loadOwn fetches an assignment held by the caller.
func (s *ReviewAssignmentServiceImpl) loadOwn(ctx context.Context, p *access.Principal, id string) (*secondary.ReviewAssignmentRecord, error) {
	a, err := s.repos.Assignments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ReviewerID != p.UserID {
		return nil, apperr.Newf(apperr.ErrForbidden, "assignment %s belongs to another reviewer", a.ID)
	}
	return a, nil
}

// UpdateAssignment changes deadlines and the personal message. A request
// without fields succeeds once the assignment and its round are found.
func (s *ReviewAssignmentServiceImpl) UpdateAssignment(ctx context.Context, req primary.UpdateAssignmentRequest) error {
	const op = "update_assignment"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var batch activityBatch
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		a, sub, err := s.loadForEditor(ctx, p, req.AssignmentID)
		if err != nil {
			return err
		}
		if _, err := s.repos.Rounds.GetByID(ctx, a.ReviewRoundID); err != nil {
			return err
		}
		if req.DueDate == nil && req.ResponseDueDate == nil && req.PersonalMessage == nil {
			return nil
		}
		check := reviewassignment.CanUpdate(reviewassignment.UpdateContext{
			AssignmentID: a.ID,
			Status:       reviewassignment.Status(a.Status),
			RoundExists:  true,
			RoundID:      a.ReviewRoundID,
		})
		if err := check.Error(); err != nil {
			return err
		}

		update := secondary.AssignmentUpdate{
			DueDate:         a.DueDate,
			ResponseDueDate: a.ResponseDueDate,
			Metadata:        cloneMetadata(a.Metadata),
			UpdatedAt:       s.env.nowString(),
		}
		var changed []string
		if req.DueDate != nil {
			if update.DueDate, err = parseDate("due_date", *req.DueDate); err != nil {
				return err
			}
			changed = append(changed, "due date")
		}
		if req.ResponseDueDate != nil {
			if update.ResponseDueDate, err = parseDate("response_due_date", *req.ResponseDueDate); err != nil {
				return err
			}
			changed = append(changed, "response due date")
		}
		if req.PersonalMessage != nil {
			update.Metadata[metaPersonalMessage] = strings.TrimSpace(*req.PersonalMessage)
			changed = append(changed, "personal message")
		}

		if err := s.repos.Assignments.UpdateOpen(ctx, a.ID, update); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, sub.ID, CategoryReview,
			fmt.Sprintf("Review assignment for %s updated (%s)", a.ReviewerID, strings.Join(changed, ", ")))
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	return nil
}

// RemoveAssignment deletes an assignment. Under the strict policy only
// pending assignments can go; administrators may force removal.
func (s *ReviewAssignmentServiceImpl) RemoveAssignment(ctx context.Context, req primary.RemoveAssignmentRequest) error {
	const op = "remove_assignment"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var (
		batch   activityBatch
		removed *secondary.ReviewAssignmentRecord
	)
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		a, sub, err := s.loadForEditor(ctx, p, req.AssignmentID)
		if err != nil {
			return err
		}
		if req.Force {
			if err := access.Require(p, access.CapAdminCorrection, sub.JournalID); err != nil {
				return err
			}
		}
		check := reviewassignment.CanRemove(reviewassignment.RemoveContext{
			AssignmentID: a.ID,
			Status:       reviewassignment.Status(a.Status),
			Strict:       s.policy.StrictRemoval,
			Override:     req.Force,
		})
		if err := check.Error(); err != nil {
			return err
		}
		if err := s.repos.Assignments.Delete(ctx, a.ID); err != nil {
			return err
		}
		removed = a
		msg := fmt.Sprintf("Review assignment for %s removed", a.ReviewerID)
		if a.Status != string(reviewassignment.StatusPending) {
			msg = fmt.Sprintf("%s while %s", msg, a.Status)
		}
		return s.env.record(ctx, &batch, sub.ID, CategoryReview, msg)
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	s.env.info(ctx, "review assignment removed",
		logging.FieldSubmissionID, removed.SubmissionID,
		logging.FieldAssignmentID, removed.ID,
		"status", removed.Status,
		"forced", req.Force)
	return nil
}

// transition runs a reviewer action that changes status. build returns the
// metadata to store, or an error when the action is not allowed.
func (s *ReviewAssignmentServiceImpl) transition(
	ctx context.Context,
	op string,
	assignmentID string,
	action reviewassignment.Action,
	build func(ctx context.Context, a *secondary.ReviewAssignmentRecord, now string) (*secondary.AssignmentTransition, string, error),
) error {
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	from, to, _ := reviewassignment.Transition(action)

	var (
		batch activityBatch
		a     *secondary.ReviewAssignmentRecord
	)
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err = s.loadOwn(ctx, p, assignmentID)
		if err != nil {
			return err
		}
		now := s.env.nowString()
		t, message, err := build(ctx, a, now)
		if err != nil {
			return err
		}
		t.From = string(from)
		t.To = string(to)
		t.UpdatedAt = now
		if err := s.repos.Assignments.Transition(ctx, a.ID, *t); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, a.SubmissionID, CategoryReview, message)
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	s.env.publish(ctx, batch)
	s.env.Metrics.AssignmentTransition(string(to))
	s.env.info(ctx, "review assignment "+string(to),
		logging.FieldSubmissionID, a.SubmissionID,
		logging.FieldAssignmentID, a.ID)
	return nil
}

// AcceptAssignment accepts a pending review request.
func (s *ReviewAssignmentServiceImpl) AcceptAssignment(ctx context.Context, req primary.AcceptAssignmentRequest) error {
	return s.transition(ctx, "accept_assignment", req.AssignmentID, reviewassignment.ActionAccept,
		func(ctx context.Context, a *secondary.ReviewAssignmentRecord, now string) (*secondary.AssignmentTransition, string, error) {
			check := reviewassignment.CanAccept(reviewassignment.AcceptContext{
				AssignmentID:   a.ID,
				Status:         reviewassignment.Status(a.Status),
				PrivacyConsent: req.PrivacyConsent,
			})
			if err := check.Error(); err != nil {
				return nil, "", err
			}
			meta := cloneMetadata(a.Metadata)
			meta[metaDateConfirmed] = now
			if ci := strings.TrimSpace(req.CompetingInterests); ci != "" {
				meta[metaCompetingInterests] = ci
			}
			return &secondary.AssignmentTransition{Metadata: meta},
				fmt.Sprintf("Reviewer %s accepted the review request", a.ReviewerID), nil
		})
}

// DeclineAssignment declines a pending review request.
func (s *ReviewAssignmentServiceImpl) DeclineAssignment(ctx context.Context, req primary.DeclineAssignmentRequest) error {
	return s.transition(ctx, "decline_assignment", req.AssignmentID, reviewassignment.ActionDecline,
		func(ctx context.Context, a *secondary.ReviewAssignmentRecord, now string) (*secondary.AssignmentTransition, string, error) {
			check := reviewassignment.CanDecline(reviewassignment.DeclineContext{
				AssignmentID: a.ID,
				Status:       reviewassignment.Status(a.Status),
				Reason:       req.Reason,
			})
			if err := check.Error(); err != nil {
				return nil, "", err
			}
			meta := cloneMetadata(a.Metadata)
			meta[metaDeclineReason] = strings.TrimSpace(req.Reason)
			meta[metaDateDeclined] = now
			return &secondary.AssignmentTransition{Metadata: meta},
				fmt.Sprintf("Reviewer %s declined the review request: %s", a.ReviewerID, strings.TrimSpace(req.Reason)), nil
		})
}

func formResponseMap(responses []primary.FormResponse) map[string]string {
	out := make(map[string]string, len(responses))
	for _, r := range responses {
		out[r.QuestionID] = r.Response
	}
	return out
}

func asAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SaveDraftRecommendation stores work in progress without changing status.
func (s *ReviewAssignmentServiceImpl) SaveDraftRecommendation(ctx context.Context, req primary.RecommendationRequest) error {
	const op = "save_draft_recommendation"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var (
		batch activityBatch
		a     *secondary.ReviewAssignmentRecord
	)
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err = s.loadOwn(ctx, p, req.AssignmentID)
		if err != nil {
			return err
		}
		rec := reviewassignment.Recommendation(strings.ToLower(strings.TrimSpace(req.Recommendation)))
		check := reviewassignment.CanSaveDraft(reviewassignment.DraftContext{
			AssignmentID:   a.ID,
			Status:         reviewassignment.Status(a.Status),
			Recommendation: rec,
		})
		if err := check.Error(); err != nil {
			return err
		}

		now := s.env.nowString()
		meta := cloneMetadata(a.Metadata)
		meta[metaDraftPrefix+"recommendation"] = string(rec)
		meta[metaDraftPrefix+metaCommentsToAuthor] = req.CommentsToAuthor
		meta[metaDraftPrefix+metaCommentsToEditor] = req.CommentsToEditor
		meta[metaDraftPrefix+metaCompetingInterests] = req.CompetingInterests
		meta[metaDraftPrefix+metaFormResponses] = asAnyMap(formResponseMap(req.FormResponses))
		meta[metaDraftSavedAt] = now

		if err := s.repos.Assignments.UpdateOpen(ctx, a.ID, secondary.AssignmentUpdate{
			DueDate:         a.DueDate,
			ResponseDueDate: a.ResponseDueDate,
			Metadata:        meta,
			UpdatedAt:       now,
		}); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, a.SubmissionID, CategoryReview,
			fmt.Sprintf("Reviewer %s saved a draft review", a.ReviewerID))
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	return nil
}

// SubmitRecommendation completes an accepted assignment. The transition is
// final.
func (s *ReviewAssignmentServiceImpl) SubmitRecommendation(ctx context.Context, req primary.RecommendationRequest) error {
	return s.transition(ctx, "submit_recommendation", req.AssignmentID, reviewassignment.ActionSubmit,
		func(ctx context.Context, a *secondary.ReviewAssignmentRecord, now string) (*secondary.AssignmentTransition, string, error) {
			questions, err := s.formQuestions(ctx, a.ReviewRoundID)
			if err != nil {
				return nil, "", err
			}
			responses := formResponseMap(req.FormResponses)
			rec := reviewassignment.Recommendation(strings.ToLower(strings.TrimSpace(req.Recommendation)))
			check := reviewassignment.CanSubmit(reviewassignment.SubmitContext{
				AssignmentID:     a.ID,
				Status:           reviewassignment.Status(a.Status),
				Recommendation:   rec,
				CommentsToAuthor: req.CommentsToAuthor,
				CommentsToEditor: req.CommentsToEditor,
				FormQuestions:    questions,
				FormResponses:    responses,
			})
			if err := check.Error(); err != nil {
				return nil, "", err
			}

			meta := make(map[string]any, len(a.Metadata))
			for k, v := range a.Metadata {
				if !strings.HasPrefix(k, metaDraftPrefix) {
					meta[k] = v
				}
			}
			meta[metaCommentsToAuthor] = req.CommentsToAuthor
			meta[metaCommentsToEditor] = req.CommentsToEditor
			if ci := strings.TrimSpace(req.CompetingInterests); ci != "" {
				meta[metaCompetingInterests] = ci
			}
			if len(responses) > 0 {
				meta[metaFormResponses] = asAnyMap(responses)
			}
			meta[metaDateCompleted] = now

			return &secondary.AssignmentTransition{
					Recommendation: string(rec),
					SubmittedAt:    now,
					Metadata:       meta,
				},
				fmt.Sprintf("Reviewer %s submitted a recommendation: %s", a.ReviewerID, rec), nil
		})
}

// formQuestions returns the questions of the round's review form, or nil
// when the round has none.
func (s *ReviewAssignmentServiceImpl) formQuestions(ctx context.Context, roundID string) ([]reviewassignment.FormQuestion, error) {
	round, err := s.repos.Rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.ReviewFormID == "" {
		return nil, nil
	}
	records, err := s.repos.Forms.ListQuestions(ctx, round.ReviewFormID)
	if err != nil {
		return nil, err
	}
	questions := make([]reviewassignment.FormQuestion, len(records))
	for i, q := range records {
		questions[i] = reviewassignment.FormQuestion{ID: q.ID, Prompt: q.Prompt, Required: q.Required}
	}
	return questions, nil
}

// GetAssignment returns one assignment to its reviewer or to an editor.
func (s *ReviewAssignmentServiceImpl) GetAssignment(ctx context.Context, assignmentID string) (*primary.ReviewAssignment, error) {
	const op = "get_assignment"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	a, err := s.repos.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if a.ReviewerID != p.UserID {
		sub, err := s.repos.Submissions.GetByID(ctx, a.SubmissionID)
		if err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
	}
	return recordToAssignment(a, s.env.Now()), nil
}

// ListReviewerAssignments lists the caller's assignments, optionally by status.
func (s *ReviewAssignmentServiceImpl) ListReviewerAssignments(ctx context.Context, status string) ([]*primary.ReviewAssignment, error) {
	const op = "list_reviewer_assignments"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	status = strings.TrimSpace(status)
	if status != "" && !reviewassignment.Status(status).Valid() {
		return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrValidation, "unknown assignment status %q", status))
	}
	records, err := s.repos.Assignments.List(ctx, secondary.ReviewAssignmentFilters{ReviewerID: p.UserID, Status: status})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	now := s.env.Now()
	out := make([]*primary.ReviewAssignment, len(records))
	for i, r := range records {
		out[i] = recordToAssignment(r, now)
	}
	return out, nil
}

// Ensure ReviewAssignmentServiceImpl implements the interface.
var _ primary.ReviewAssignmentService = (*ReviewAssignmentServiceImpl)(nil)
