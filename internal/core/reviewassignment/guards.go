package reviewassignment

import (
	"fmt"
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/reviewround"
)

// GuardResult represents the outcome of a guard evaluation. Conflict marks
// failures caused by the assignment no longer being in the expected state
// (a lost race or a repeated action), as opposed to bad input.
type GuardResult struct {
	Allowed  bool
	Reason   string
	Conflict bool
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Conflict {
		return apperr.New(apperr.ErrConflict, r.Reason)
	}
	return apperr.New(apperr.ErrValidation, r.Reason)
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...), Conflict: true}
}

// AssignContext provides context for reviewer assignment guards.
type AssignContext struct {
	RoundID             string
	RoundExists         bool
	RoundStatus         reviewround.Status
	ReviewerID          string
	ReviewMethod        ReviewMethod
	ReviewerHasOpenSlot bool // reviewer already holds a non-terminal assignment in the round
}

// CanAssign evaluates whether a reviewer may be invited to a round.
// Rules:
// - Round must exist and be active
// - Reviewer must be given
// - Review method must be known
// - A reviewer holds at most one non-terminal assignment per round
func CanAssign(ctx AssignContext) GuardResult {
	if !ctx.RoundExists {
		return deny("review round %s not found", ctx.RoundID)
	}
	if ctx.RoundStatus != reviewround.StatusActive {
		return deny("review round %s is %s", ctx.RoundID, ctx.RoundStatus)
	}
	if strings.TrimSpace(ctx.ReviewerID) == "" {
		return deny("reviewer is required")
	}
	if !ctx.ReviewMethod.Valid() {
		return deny("unknown review method %q", ctx.ReviewMethod)
	}
	if ctx.ReviewerHasOpenSlot {
		return conflict("reviewer %s already has an open assignment in round %s", ctx.ReviewerID, ctx.RoundID)
	}
	return allow()
}

// AcceptContext provides context for accepting a review request.
type AcceptContext struct {
	AssignmentID   string
	Status         Status
	PrivacyConsent bool
}

// CanAccept evaluates whether a reviewer may accept.
// Rules:
// - Assignment must be pending
// - Privacy consent is required
func CanAccept(ctx AcceptContext) GuardResult {
	if ctx.Status != StatusPending {
		return conflict("assignment %s is %s; only pending requests can be accepted", ctx.AssignmentID, ctx.Status)
	}
	if !ctx.PrivacyConsent {
		return deny("privacy consent is required to accept review request %s", ctx.AssignmentID)
	}
	return allow()
}

// DeclineContext provides context for declining a review request.
type DeclineContext struct {
	AssignmentID string
	Status       Status
	Reason       string
}

// CanDecline evaluates whether a reviewer may decline.
// Rules:
// - Reason must be non-empty
// - Assignment must be pending
func CanDecline(ctx DeclineContext) GuardResult {
	if strings.TrimSpace(ctx.Reason) == "" {
		return deny("reason for declining is required")
	}
	if ctx.Status != StatusPending {
		return conflict("assignment %s is %s; only pending requests can be declined", ctx.AssignmentID, ctx.Status)
	}
	return allow()
}

// DraftContext provides context for saving a draft recommendation.
type DraftContext struct {
	AssignmentID   string
	Status         Status
	Recommendation Recommendation // optional
}

// CanSaveDraft evaluates whether a draft may be saved.
// Rules:
// - Terminal assignments are read-only
// - A draft recommendation, when given, must be a known verdict
func CanSaveDraft(ctx DraftContext) GuardResult {
	if ctx.Status.Terminal() {
		return conflict("assignment %s is %s and can no longer be edited", ctx.AssignmentID, ctx.Status)
	}
	if ctx.Recommendation != "" && !ctx.Recommendation.Valid() {
		return deny("unknown recommendation %q", ctx.Recommendation)
	}
	return allow()
}

// FormQuestion is one question of a structured review form.
type FormQuestion struct {
	ID       string
	Prompt   string
	Required bool
}

// SubmitContext provides context for submitting a final recommendation.
type SubmitContext struct {
	AssignmentID     string
	Status           Status
	Recommendation   Recommendation
	CommentsToAuthor string
	CommentsToEditor string
	FormQuestions    []FormQuestion    // nil when the round has no review form
	FormResponses    map[string]string // question ID -> response
}

// CanSubmit evaluates whether a recommendation may be submitted.
// Rules:
// - Recommendation must be one of the four verdicts
// - Without a review form, comments to author or editor are required
// - With a review form, every required question needs an answer
// - Assignment must be accepted
func CanSubmit(ctx SubmitContext) GuardResult {
	if !ctx.Recommendation.Valid() {
		return deny("recommendation must be one of accept, minor_revision, major_revision, reject (got %q)", ctx.Recommendation)
	}

	if len(ctx.FormQuestions) == 0 {
		if strings.TrimSpace(ctx.CommentsToAuthor) == "" && strings.TrimSpace(ctx.CommentsToEditor) == "" {
			return deny("comments to the author or to the editor are required")
		}
	} else {
		var missing []string
		for _, q := range ctx.FormQuestions {
			if q.Required && strings.TrimSpace(ctx.FormResponses[q.ID]) == "" {
				missing = append(missing, q.ID)
			}
		}
		if len(missing) > 0 {
			return deny("required review form question(s) unanswered: %s", strings.Join(missing, ", "))
		}
	}

	if ctx.Status != StatusAccepted {
		return conflict("assignment %s is %s; only accepted assignments can be submitted", ctx.AssignmentID, ctx.Status)
	}
	return allow()
}

// UpdateContext provides context for editor edits of an assignment.
type UpdateContext struct {
	AssignmentID string
	Status       Status
	RoundExists  bool
	RoundID      string
}

// CanUpdate evaluates whether an editor may edit due dates or the message.
// Rules:
// - Round must still exist
// - Terminal assignments are read-only
func CanUpdate(ctx UpdateContext) GuardResult {
	if !ctx.RoundExists {
		return deny("review round %s not found", ctx.RoundID)
	}
	if ctx.Status.Terminal() {
		return conflict("assignment %s is %s and can no longer be edited", ctx.AssignmentID, ctx.Status)
	}
	return allow()
}

// RemoveContext provides context for removing an assignment.
type RemoveContext struct {
	AssignmentID string
	Status       Status
	Strict       bool // policy: only pending assignments are removable
	Override     bool // administrator override of the strict policy
}

// CanRemove evaluates whether an assignment may be deleted.
// Rules:
// - Under the strict policy only pending assignments are removable
// - An administrator override lifts the restriction
func CanRemove(ctx RemoveContext) GuardResult {
	if !ctx.Strict || ctx.Override {
		return allow()
	}
	if ctx.Status != StatusPending {
		return deny("assignment %s is %s; only pending assignments can be removed", ctx.AssignmentID, ctx.Status)
	}
	return allow()
}
