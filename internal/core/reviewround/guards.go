// Package reviewround contains the pure rules for numbered review rounds.
package reviewround

import (
	"fmt"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/stage"
)

// Status of a review round.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	// Precondition marks a denial caused by the round's current state.
	Precondition bool
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Precondition {
		return apperr.New(apperr.ErrPreconditionFailed, r.Reason)
	}
	return apperr.New(apperr.ErrValidation, r.Reason)
}

// NextRoundNumber returns 1 when no round exists, else max(existing)+1.
func NextRoundNumber(existing []int) int {
	highest := 0
	for _, n := range existing {
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

// CreateRoundContext provides context for round creation guards.
type CreateRoundContext struct {
	SubmissionID     string
	SubmissionExists bool
	SubmissionStatus stage.Status
	Stage            stage.Stage
	Round            int
	ExistingRounds   []int
	// ActiveRound is the currently active round number (0 when none) and
	// ActiveOpenAssignments counts its non-terminal assignments.
	ActiveRound           int
	ActiveOpenAssignments int
}

// CanCreateRound evaluates whether a round may be opened.
// Rules:
// - Submission must exist and still be queued
// - Stage must support review rounds
// - Round number must be positive and not already taken
// - Round numbers stay contiguous (no gaps)
// - An active round may only be superseded once all its assignments are terminal
func CanCreateRound(ctx CreateRoundContext) GuardResult {
	if !ctx.SubmissionExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("submission %s not found", ctx.SubmissionID)}
	}

	if stage.IsArchived(ctx.SubmissionStatus) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("submission %s is %s; no new review rounds", ctx.SubmissionID, ctx.SubmissionStatus),
		}
	}

	if !stage.SupportsReviewRounds(ctx.Stage) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("stage %s does not hold review rounds", ctx.Stage)}
	}

	if ctx.Round < 1 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("round number must be positive (got %d)", ctx.Round)}
	}

	for _, n := range ctx.ExistingRounds {
		if n == ctx.Round {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("round %d already exists for submission %s at stage %s", ctx.Round, ctx.SubmissionID, ctx.Stage),
			}
		}
	}

	if next := NextRoundNumber(ctx.ExistingRounds); ctx.Round > next {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("round %d would leave a gap (next round is %d)", ctx.Round, next),
		}
	}

	if ctx.ActiveRound > 0 && ctx.ActiveOpenAssignments > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("round %d still has %d unresolved assignment(s)", ctx.ActiveRound, ctx.ActiveOpenAssignments),
		}
	}

	return GuardResult{Allowed: true}
}

// CloseRoundContext provides context for round close guards.
type CloseRoundContext struct {
	RoundID         string
	Status          Status
	OpenAssignments int
}

// CanCloseRound evaluates whether a round may be closed.
// Rules:
// - Round must be active
// - Every assignment must be declined or completed
func CanCloseRound(ctx CloseRoundContext) GuardResult {
	if ctx.Status != StatusActive {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("round %s is already %s", ctx.RoundID, ctx.Status), Precondition: true}
	}

	if ctx.OpenAssignments > 0 {
		return GuardResult{
			Allowed:      false,
			Reason:       fmt.Sprintf("round %s has %d assignment(s) awaiting a response or recommendation", ctx.RoundID, ctx.OpenAssignments),
			Precondition: true,
		}
	}

	return GuardResult{Allowed: true}
}
