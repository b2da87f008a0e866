// Package participant contains the pure rules for the participant registry:
// who holds which role on a submission at which stage.
package participant

import (
	"fmt"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/core/stage"
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
	return apperr.New(apperr.ErrValidation, r.Reason)
}

// Key identifies one participant row. The registry never holds two rows
// with the same key.
type Key struct {
	SubmissionID string
	UserID       string
	Role         access.Role
	Stage        stage.Stage
}

// Flags are the per-assignment permissions an editor may hold.
type Flags struct {
	RecommendOnly     bool
	CanChangeMetadata bool
}

// AssignContext provides context for participant assignment guards.
type AssignContext struct {
	Key              Key
	SubmissionExists bool
}

// CanAssign evaluates whether a participant row may be registered.
// Rules:
// - Submission must exist
// - User must be given
// - Role must be a participant role (admin is a site role only)
// - Stage must be known
func CanAssign(ctx AssignContext) GuardResult {
	if !ctx.SubmissionExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("submission %s not found", ctx.Key.SubmissionID)}
	}
	if ctx.Key.UserID == "" {
		return GuardResult{Allowed: false, Reason: "user is required"}
	}
	if !ctx.Key.Role.Valid() || ctx.Key.Role == access.Admin {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("role %q cannot participate in a submission", ctx.Key.Role)}
	}
	if !ctx.Key.Stage.Valid() {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unrecognized stage %q", ctx.Key.Stage)}
	}
	return GuardResult{Allowed: true}
}

// Holding is a participant row as seen by permission checks.
type Holding struct {
	Role  access.Role
	Stage stage.Stage
	Flags Flags
}

// HasAssignment reports whether any holding exists at the stage.
func HasAssignment(holdings []Holding, at stage.Stage) bool {
	for _, h := range holdings {
		if h.Stage == at {
			return true
		}
	}
	return false
}

// CanMakeDecision is true iff the user holds an editorial role at the stage
// that is not marked recommend-only.
func CanMakeDecision(holdings []Holding, at stage.Stage) bool {
	for _, h := range holdings {
		if h.Stage == at && isEditorial(h.Role) && !h.Flags.RecommendOnly {
			return true
		}
	}
	return false
}

// CanChangeMetadata is true iff the user holds an editorial role at the stage
// with metadata permission.
func CanChangeMetadata(holdings []Holding, at stage.Stage) bool {
	for _, h := range holdings {
		if h.Stage == at && isEditorial(h.Role) && h.Flags.CanChangeMetadata {
			return true
		}
	}
	return false
}

func isEditorial(r access.Role) bool {
	for _, e := range access.EditorialRoles {
		if r == e {
			return true
		}
	}
	return false
}
