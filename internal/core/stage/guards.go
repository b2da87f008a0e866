package stage

import (
	"fmt"

	"github.com/example/editorial/internal/apperr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.New(apperr.ErrInvalidState, r.Reason)
}

// StageChangeContext provides context for moving a submission between stages.
type StageChangeContext struct {
	SubmissionID  string
	CurrentStage  Stage
	TargetStage   Stage
	CurrentStatus Status
	Correction    bool // administrative correction
}

// StatusChangeContext provides context for changing a submission status.
type StatusChangeContext struct {
	SubmissionID  string
	CurrentStatus Status
	TargetStatus  Status
	Correction    bool
}

// CanChangeStage evaluates whether a submission may move to TargetStage.
// Rules:
// - Target stage must be known
// - Terminal submissions are frozen unless this is a correction
// - Stages only move forward unless this is a correction
// - Skipping stages is an explicit editor decision and is allowed
func CanChangeStage(ctx StageChangeContext) GuardResult {
	if !ctx.TargetStage.Valid() {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unrecognized stage %q", ctx.TargetStage)}
	}

	if ctx.Correction {
		return GuardResult{Allowed: true}
	}

	if IsArchived(ctx.CurrentStatus) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("submission %s is %s; stage is frozen", ctx.SubmissionID, ctx.CurrentStatus),
		}
	}

	if Index(ctx.TargetStage) < Index(ctx.CurrentStage) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot move submission %s back from %s to %s", ctx.SubmissionID, ctx.CurrentStage, ctx.TargetStage),
		}
	}

	return GuardResult{Allowed: true}
}

// CanChangeStatus evaluates whether a submission may move to TargetStatus.
// Rules:
// - Target status must be known
// - queued moves to exactly one terminal status
// - terminal statuses are immutable unless this is a correction
func CanChangeStatus(ctx StatusChangeContext) GuardResult {
	if !ctx.TargetStatus.Valid() {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unrecognized status %q", ctx.TargetStatus)}
	}

	if ctx.Correction {
		return GuardResult{Allowed: true}
	}

	if IsArchived(ctx.CurrentStatus) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("submission %s is already %s", ctx.SubmissionID, ctx.CurrentStatus),
		}
	}

	if ctx.TargetStatus == StatusQueued {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("submission %s is already queued", ctx.SubmissionID),
		}
	}

	return GuardResult{Allowed: true}
}
