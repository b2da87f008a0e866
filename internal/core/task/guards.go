// Package task contains the pure business logic for editorial to-do items.
// Guards are pure functions that evaluate preconditions without side effects.
package task

import (
	"fmt"
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/stage"
)

// Status of an editorial task.
type Status string

const (
	StatusOpen Status = "open"
	StatusDone Status = "done"
)

// Valid reports whether s is a known task status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusDone
}

// GuardResult represents the outcome of a guard evaluation.
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

// CreateTaskContext provides context for task creation guards.
type CreateTaskContext struct {
	SubmissionID     string
	SubmissionExists bool
	Stage            stage.Stage
	Title            string
}

// CanCreateTask evaluates whether a task can be created.
// Rules:
// - Submission must exist
// - Stage must be known
// - Title must be non-empty
func CanCreateTask(ctx CreateTaskContext) GuardResult {
	if !ctx.SubmissionExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("submission %s not found", ctx.SubmissionID)}
	}
	if !ctx.Stage.Valid() {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unrecognized stage %q", ctx.Stage)}
	}
	if strings.TrimSpace(ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "task title is required"}
	}
	return GuardResult{Allowed: true}
}

// ClaimTaskContext provides context for claiming a task.
type ClaimTaskContext struct {
	TaskID     string
	AssigneeID string // current assignee, empty if unassigned
	Status     Status
	UserID     string
}

// CanClaimTask evaluates whether a user may claim a task.
// Rules:
// - Claimant must be given
// - Task must still be open
// - Task must be unassigned
func CanClaimTask(ctx ClaimTaskContext) GuardResult {
	if ctx.UserID == "" {
		return GuardResult{Allowed: false, Reason: "claimant is required"}
	}
	if ctx.Status == StatusDone {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("task %s is already done", ctx.TaskID)}
	}
	if ctx.AssigneeID != "" {
		return GuardResult{
			Allowed:  false,
			Reason:   fmt.Sprintf("task %s is already claimed by %s", ctx.TaskID, ctx.AssigneeID),
			Conflict: true,
		}
	}
	return GuardResult{Allowed: true}
}

// CloseTaskContext provides context for closing a task.
type CloseTaskContext struct {
	TaskID string
	Status Status
}

// CanCloseTask evaluates whether a task may be closed. Closing an already
// done task is a no-op and is allowed.
func CanCloseTask(ctx CloseTaskContext) GuardResult {
	if !ctx.Status.Valid() {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("task %s has unknown status %q", ctx.TaskID, ctx.Status)}
	}
	return GuardResult{Allowed: true}
}
