// Package stage contains the fixed submission stage and lifecycle status
// model. Everything here is pure classification logic without side effects.
package stage

import (
	"strings"

	"github.com/example/editorial/internal/apperr"
)

// Stage is one of the four fixed phases a submission passes through.
type Stage string

const (
	Submission  Stage = "submission"
	Review      Stage = "review"
	Copyediting Stage = "copyediting"
	Production  Stage = "production"
)

// Status is the lifecycle status of a submission.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusPublished Status = "published"
	StatusDeclined  Status = "declined"
	StatusScheduled Status = "scheduled"
)

var order = []Stage{Submission, Review, Copyediting, Production}

// ArchivedStatuses lists the terminal statuses, in a stable order.
var ArchivedStatuses = []Status{StatusDeclined, StatusPublished, StatusScheduled}

// Order returns the only legal forward progression of stages.
func Order() []Stage {
	out := make([]Stage, len(order))
	copy(out, order)
	return out
}

// Index returns the position of s in Order, or -1 when unknown.
func Index(s Stage) int {
	for i, candidate := range order {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return Index(s) >= 0
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusPublished, StatusDeclined, StatusScheduled:
		return true
	}
	return false
}

// ParseStage converts a raw string into a Stage.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", apperr.Newf(apperr.ErrInvalidState, "unrecognized stage %q", raw)
	}
	return s, nil
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", apperr.Newf(apperr.ErrInvalidState, "unrecognized status %q", raw)
	}
	return s, nil
}

// IsArchived is true for published, declined and scheduled submissions.
func IsArchived(status Status) bool {
	switch status {
	case StatusPublished, StatusDeclined, StatusScheduled:
		return true
	}
	return false
}

// SupportsReviewRounds reports whether numbered review rounds may be opened
// at the stage.
func SupportsReviewRounds(s Stage) bool {
	return s == Review
}
