package app

import (
	"time"

	"github.com/example/editorial/internal/core/reviewassignment"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

func recordToSubmission(r *secondary.SubmissionRecord) *primary.Submission {
	return &primary.Submission{
		ID:          r.ID,
		JournalID:   r.JournalID,
		Title:       r.Title,
		Stage:       r.Stage,
		Status:      r.Status,
		IsArchived:  r.IsArchived,
		Metadata:    r.Metadata,
		SubmittedAt: r.SubmittedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func recordToRound(r *secondary.ReviewRoundRecord) *primary.ReviewRound {
	return &primary.ReviewRound{
		ID:           r.ID,
		SubmissionID: r.SubmissionID,
		Stage:        r.Stage,
		Round:        r.Round,
		Status:       r.Status,
		ReviewFormID: r.ReviewFormID,
		Notes:        r.Notes,
		StartedAt:    r.StartedAt,
		ClosedAt:     r.ClosedAt,
	}
}

// recordToAssignment maps an assignment and computes its reviewer-facing
// view at now.
func recordToAssignment(r *secondary.ReviewAssignmentRecord, now time.Time) *primary.ReviewAssignment {
	view := reviewassignment.Project(
		reviewassignment.Status(r.Status),
		optionalTime(r.ResponseDueDate),
		optionalTime(r.DueDate),
		now,
	)
	return &primary.ReviewAssignment{
		ID:              r.ID,
		SubmissionID:    r.SubmissionID,
		ReviewRoundID:   r.ReviewRoundID,
		ReviewerID:      r.ReviewerID,
		Stage:           r.Stage,
		Status:          r.Status,
		ReviewerView:    string(view),
		Recommendation:  r.Recommendation,
		ReviewMethod:    r.ReviewMethod,
		AssignedAt:      r.AssignedAt,
		DueDate:         r.DueDate,
		ResponseDueDate: r.ResponseDueDate,
		SubmittedAt:     r.SubmittedAt,
		Metadata:        r.Metadata,
	}
}

func recordToParticipant(r *secondary.ParticipantRecord) *primary.Participant {
	return &primary.Participant{
		ID:                r.ID,
		SubmissionID:      r.SubmissionID,
		UserID:            r.UserID,
		Role:              r.Role,
		Stage:             r.Stage,
		RecommendOnly:     r.RecommendOnly,
		CanChangeMetadata: r.CanChangeMetadata,
		CreatedAt:         r.CreatedAt,
	}
}

func recordToTask(r *secondary.TaskRecord) *primary.Task {
	return &primary.Task{
		ID:           r.ID,
		SubmissionID: r.SubmissionID,
		Stage:        r.Stage,
		Title:        r.Title,
		Status:       r.Status,
		AssigneeID:   r.AssigneeID,
		DueDate:      r.DueDate,
		CreatedAt:    r.CreatedAt,
		ClosedAt:     r.ClosedAt,
	}
}

func recordToActivity(r *secondary.ActivityRecord) *primary.ActivityEntry {
	return &primary.ActivityEntry{
		ID:           r.ID,
		SubmissionID: r.SubmissionID,
		ActorID:      r.ActorID,
		Category:     r.Category,
		Message:      r.Message,
		CreatedAt:    r.CreatedAt,
	}
}
