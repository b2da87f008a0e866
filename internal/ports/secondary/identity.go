package secondary

import (
	"context"

	"github.com/example/editorial/internal/core/access"
)

// IdentityProvider resolves the authenticated caller. A nil principal
// with a nil error means nobody is signed in.
type IdentityProvider interface {
	CurrentPrincipal(ctx context.Context) (*access.Principal, error)
}

// Invitation is the content of a review request sent to a reviewer.
type Invitation struct {
	AssignmentID    string
	SubmissionID    string
	SubmissionTitle string
	ReviewerID      string
	Round           int
	ResponseDueDate string
	DueDate         string
	PersonalMessage string
}

// Notifier delivers reviewer-facing messages. Delivery happens after commit
// and its failures never roll back the workflow change.
type Notifier interface {
	NotifyReviewerInvited(ctx context.Context, inv Invitation) error
}
