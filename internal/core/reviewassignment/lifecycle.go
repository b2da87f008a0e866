// Package reviewassignment holds the state machine governing one reviewer's
// engagement with one review round:
//
//	pending --accept--> accepted --submit--> completed
//	pending --decline----------------------> declined
//
// All functions are pure; persistence applies the resulting transition with a
// conditional update on the expected source status.
package reviewassignment

import (
	"strings"
	"time"

	"github.com/example/editorial/internal/apperr"
)

// Status of a review assignment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusDeclined || s == StatusCompleted
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCompleted:
		return true
	}
	return false
}

// TerminalStatuses lists the statuses a round may close on.
var TerminalStatuses = []Status{StatusDeclined, StatusCompleted}

// Recommendation is the reviewer's final verdict.
type Recommendation string

const (
	RecommendAccept        Recommendation = "accept"
	RecommendMinorRevision Recommendation = "minor_revision"
	RecommendMajorRevision Recommendation = "major_revision"
	RecommendReject        Recommendation = "reject"
)

// Valid reports whether r is one of the four enumerated verdicts.
func (r Recommendation) Valid() bool {
	switch r {
	case RecommendAccept, RecommendMinorRevision, RecommendMajorRevision, RecommendReject:
		return true
	}
	return false
}

// ParseRecommendation converts a raw verdict into a Recommendation.
func ParseRecommendation(raw string) (Recommendation, error) {
	r := Recommendation(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", apperr.Newf(apperr.ErrValidation, "recommendation must be one of accept, minor_revision, major_revision, reject (got %q)", raw)
	}
	return r, nil
}

// ReviewMethod is how identities are disclosed during review.
type ReviewMethod string

const (
	MethodAnonymous       ReviewMethod = "anonymous"
	MethodDoubleAnonymous ReviewMethod = "doubleAnonymous"
	MethodOpen            ReviewMethod = "open"
)

// Valid reports whether m is a known review method.
func (m ReviewMethod) Valid() bool {
	switch m {
	case MethodAnonymous, MethodDoubleAnonymous, MethodOpen:
		return true
	}
	return false
}

// Action names a lifecycle operation.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
	ActionDraft   Action = "save_draft"
	ActionSubmit  Action = "submit"
	ActionUpdate  Action = "update"
	ActionRemove  Action = "remove"
)

var transitions = map[Action]struct {
	from Status
	to   Status
}{
	ActionAccept:  {from: StatusPending, to: StatusAccepted},
	ActionDecline: {from: StatusPending, to: StatusDeclined},
	ActionSubmit:  {from: StatusAccepted, to: StatusCompleted},
}

// Transition returns the source and target status for a status-changing
// action. ok is false for actions that leave status untouched.
func Transition(action Action) (from, to Status, ok bool) {
	t, ok := transitions[action]
	return t.from, t.to, ok
}

// ReviewerView is the reviewer-facing status of an assignment, computed on
// read from the assignment record rather than stored.
type ReviewerView string

const (
	ViewAwaitingResponse ReviewerView = "awaiting_response"
	ViewResponseOverdue  ReviewerView = "response_overdue"
	ViewInProgress       ReviewerView = "in_progress"
	ViewReviewOverdue    ReviewerView = "review_overdue"
	ViewCompleted        ReviewerView = "completed"
	ViewDeclined         ReviewerView = "declined"
)

// Project computes the reviewer-facing status at instant now.
func Project(status Status, responseDue, reviewDue *time.Time, now time.Time) ReviewerView {
	switch status {
	case StatusPending:
		if responseDue != nil && now.After(*responseDue) {
			return ViewResponseOverdue
		}
		return ViewAwaitingResponse
	case StatusAccepted:
		if reviewDue != nil && now.After(*reviewDue) {
			return ViewReviewOverdue
		}
		return ViewInProgress
	case StatusCompleted:
		return ViewCompleted
	default:
		return ViewDeclined
	}
}
