package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/core/stage"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

// activityPreview is how many activity entries GetSubmission returns.
const activityPreview = 20

// SubmissionRepos groups the repositories the submission aggregate reads.
type SubmissionRepos struct {
	Submissions  secondary.SubmissionRepository
	Rounds       secondary.ReviewRoundRepository
	Assignments  secondary.ReviewAssignmentRepository
	Participants secondary.ParticipantRepository
	Tasks        secondary.TaskRepository
	Activity     secondary.ActivityRepository
}

// SubmissionServiceImpl implements the SubmissionService interface.
type SubmissionServiceImpl struct {
	env   Env
	repos SubmissionRepos
}

// NewSubmissionService creates a new SubmissionService with injected dependencies.
func NewSubmissionService(env Env, repos SubmissionRepos) *SubmissionServiceImpl {
	return &SubmissionServiceImpl{env: env.withDefaults(), repos: repos}
}

// CreateSubmission registers a manuscript and its author.
func (s *SubmissionServiceImpl) CreateSubmission(ctx context.Context, req primary.CreateSubmissionRequest) (*primary.CreateSubmissionResponse, error) {
	const op = "create_submission"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, s.env.fail(ctx, op, apperr.New(apperr.ErrValidation, "title is required"))
	}
	if strings.TrimSpace(req.JournalID) == "" {
		return nil, s.env.fail(ctx, op, apperr.New(apperr.ErrValidation, "journal is required"))
	}
	authorID := strings.TrimSpace(req.AuthorID)
	if authorID == "" {
		authorID = p.UserID
	}
	if authorID != p.UserID {
		// Submitting on someone else's behalf is an editorial action.
		if _, err := access.AssertEditorAccess(p, req.JournalID); err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
	}

	now := s.env.nowString()
	record := &secondary.SubmissionRecord{
		ID:          s.env.NewID("SUB"),
		JournalID:   req.JournalID,
		Title:       title,
		Stage:       string(stage.Submission),
		Status:      string(stage.StatusQueued),
		IsArchived:  false,
		Metadata:    req.Metadata,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	var batch activityBatch
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repos.Submissions.Create(ctx, record); err != nil {
			return err
		}
		author := &secondary.ParticipantRecord{
			ID:           s.env.NewID("PRT"),
			SubmissionID: record.ID,
			UserID:       authorID,
			Role:         string(access.Author),
			Stage:        string(stage.Submission),
			CreatedAt:    now,
		}
		if _, err := s.repos.Participants.Insert(ctx, author); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, record.ID, CategorySubmission, fmt.Sprintf("Submission %q created by %s", title, authorID))
	})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	s.env.info(ctx, "submission created", logging.FieldSubmissionID, record.ID)

	return &primary.CreateSubmissionResponse{
		SubmissionID: record.ID,
		Submission:   recordToSubmission(record),
	}, nil
}

// GetSubmission returns the aggregate. Editors of the journal and
// participants of the submission may read it.
func (s *SubmissionServiceImpl) GetSubmission(ctx context.Context, submissionID string) (*primary.SubmissionDetail, error) {
	const op = "get_submission"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	sub, err := s.repos.Submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if !p.Has(access.CapEditorAccess, sub.JournalID) {
		held, err := s.repos.Participants.List(ctx, secondary.ParticipantFilters{SubmissionID: sub.ID, UserID: p.UserID})
		if err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
		if len(held) == 0 {
			return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrForbidden, "user %s has no access to submission %s", p.UserID, sub.ID))
		}
	}

	detail := &primary.SubmissionDetail{Submission: recordToSubmission(sub)}

	rounds, err := s.repos.Rounds.ListBySubmission(ctx, sub.ID, "")
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	for _, r := range rounds {
		detail.Rounds = append(detail.Rounds, recordToRound(r))
	}

	assignments, err := s.repos.Assignments.List(ctx, secondary.ReviewAssignmentFilters{SubmissionID: sub.ID})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	now := s.env.Now()
	for _, a := range assignments {
		detail.Assignments = append(detail.Assignments, recordToAssignment(a, now))
	}

	participants, err := s.repos.Participants.List(ctx, secondary.ParticipantFilters{SubmissionID: sub.ID})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	for _, pr := range participants {
		detail.Participants = append(detail.Participants, recordToParticipant(pr))
	}

	tasks, err := s.repos.Tasks.List(ctx, secondary.TaskFilters{SubmissionID: sub.ID, Status: "open"})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	for _, t := range tasks {
		detail.OpenTasks = append(detail.OpenTasks, recordToTask(t))
	}

	entries, err := s.repos.Activity.ListBySubmission(ctx, sub.ID, activityPreview)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	for _, e := range entries {
		detail.Activity = append(detail.Activity, recordToActivity(e))
	}

	return detail, nil
}

// ChangeWorkflow moves the stage and/or status of a submission.
func (s *SubmissionServiceImpl) ChangeWorkflow(ctx context.Context, req primary.ChangeWorkflowRequest) (*primary.Submission, error) {
	const op = "change_workflow"
	if strings.TrimSpace(req.TargetStage) == "" && strings.TrimSpace(req.Status) == "" {
		return nil, s.env.fail(ctx, op, apperr.New(apperr.ErrValidation, "a target stage or status is required"))
	}

	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	var (
		batch   activityBatch
		updated *secondary.SubmissionRecord
	)
	err = s.env.Tx.WithinTx(ctx, func(txCtx context.Context) error {
		sub, err := s.repos.Submissions.GetByID(txCtx, req.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}
		if req.Correction {
			if err := access.Require(p, access.CapAdminCorrection, sub.JournalID); err != nil {
				return err
			}
		}

		currentStage := stage.Stage(sub.Stage)
		currentStatus := stage.Status(sub.Status)
		targetStage, targetStatus := currentStage, currentStatus

		if strings.TrimSpace(req.TargetStage) != "" {
			if targetStage, err = stage.ParseStage(req.TargetStage); err != nil {
				return err
			}
			check := stage.CanChangeStage(stage.StageChangeContext{
				SubmissionID:  sub.ID,
				CurrentStage:  currentStage,
				TargetStage:   targetStage,
				CurrentStatus: currentStatus,
				Correction:    req.Correction,
			})
			if err := check.Error(); err != nil {
				return err
			}
		}
		if strings.TrimSpace(req.Status) != "" {
			if targetStatus, err = stage.ParseStatus(req.Status); err != nil {
				return err
			}
			if targetStatus != currentStatus {
				check := stage.CanChangeStatus(stage.StatusChangeContext{
					SubmissionID:  sub.ID,
					CurrentStatus: currentStatus,
					TargetStatus:  targetStatus,
					Correction:    req.Correction,
				})
				if err := check.Error(); err != nil {
					return err
				}
			}
		}

		change := secondary.WorkflowChange{
			Stage:      string(targetStage),
			Status:     string(targetStatus),
			IsArchived: stage.IsArchived(targetStatus),
			UpdatedAt:  s.env.nowString(),
		}
		if err := s.repos.Submissions.UpdateWorkflow(txCtx, sub.ID, change); err != nil {
			return err
		}

		message := strings.TrimSpace(req.Note)
		if message == "" {
			message = describeWorkflowChange(currentStage, targetStage, currentStatus, targetStatus, req.Correction)
		}
		if err := s.env.record(txCtx, &batch, sub.ID, CategoryWorkflow, message); err != nil {
			return err
		}

		updated, err = s.repos.Submissions.GetByID(txCtx, sub.ID)
		return err
	})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	s.env.info(ctx, "workflow changed",
		logging.FieldSubmissionID, updated.ID,
		"stage", updated.Stage,
		"status", updated.Status)
	return recordToSubmission(updated), nil
}

func describeWorkflowChange(fromStage, toStage stage.Stage, fromStatus, toStatus stage.Status, correction bool) string {
	var parts []string
	if fromStage != toStage {
		parts = append(parts, fmt.Sprintf("stage changed from %s to %s", fromStage, toStage))
	}
	if fromStatus != toStatus {
		parts = append(parts, fmt.Sprintf("status changed from %s to %s", fromStatus, toStatus))
	}
	if len(parts) == 0 {
		parts = append(parts, "workflow unchanged")
	}
	msg := strings.Join(parts, "; ")
	msg = strings.ToUpper(msg[:1]) + msg[1:]
	if correction {
		msg += " (administrative correction)"
	}
	return msg
}

// DeleteSubmission removes a submission. Owned records cascade; the
// activity log is kept and receives a final entry.
func (s *SubmissionServiceImpl) DeleteSubmission(ctx context.Context, submissionID string) error {
	const op = "delete_submission"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var batch activityBatch
	err = s.env.Tx.WithinTx(ctx, func(txCtx context.Context) error {
		sub, err := s.repos.Submissions.GetByID(txCtx, submissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}
		if err := s.repos.Submissions.Delete(txCtx, sub.ID); err != nil {
			return err
		}
		return s.env.record(txCtx, &batch, sub.ID, CategorySubmission, fmt.Sprintf("Submission %q deleted", sub.Title))
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	s.env.info(ctx, "submission deleted", logging.FieldSubmissionID, submissionID)
	return nil
}

// Ensure SubmissionServiceImpl implements the interface.
var _ primary.SubmissionService = (*SubmissionServiceImpl)(nil)
