package primary

import "context"

// SubmissionService defines the primary port for the submission aggregate.
type SubmissionService interface {
	// CreateSubmission registers a new manuscript at stage submission with
	// status queued, and the author as a participant.
	CreateSubmission(ctx context.Context, req CreateSubmissionRequest) (*CreateSubmissionResponse, error)

	// GetSubmission returns the submission with everything it owns.
	GetSubmission(ctx context.Context, submissionID string) (*SubmissionDetail, error)

	// ChangeWorkflow moves stage and/or status and records a workflow entry.
	ChangeWorkflow(ctx context.Context, req ChangeWorkflowRequest) (*Submission, error)

	// DeleteSubmission removes a submission; its activity log is retained.
	DeleteSubmission(ctx context.Context, submissionID string) error
}

// CreateSubmissionRequest contains parameters for creating a submission.
type CreateSubmissionRequest struct {
	JournalID string
	Title     string
	AuthorID  string
	Metadata  map[string]any
}

// CreateSubmissionResponse contains the result of creating a submission.
type CreateSubmissionResponse struct {
	SubmissionID string
	Submission   *Submission
}

// ChangeWorkflowRequest contains parameters for a workflow change. Empty
// fields are left as they are.
type ChangeWorkflowRequest struct {
	SubmissionID string
	TargetStage  string
	Status       string
	Note         string
	// Correction is an administrative correction that may move backwards or
	// leave a terminal status.
	Correction bool
}

// Submission represents a submission at the port boundary.
type Submission struct {
	ID          string         `json:"id"`
	JournalID   string         `json:"journal_id"`
	Title       string         `json:"title"`
	Stage       string         `json:"stage"`
	Status      string         `json:"status"`
	IsArchived  bool           `json:"is_archived"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	SubmittedAt string         `json:"submitted_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// SubmissionDetail is the submission aggregate.
type SubmissionDetail struct {
	Submission   *Submission         `json:"submission"`
	Rounds       []*ReviewRound      `json:"rounds"`
	Assignments  []*ReviewAssignment `json:"assignments"`
	Participants []*Participant      `json:"participants"`
	OpenTasks    []*Task             `json:"open_tasks"`
	Activity     []*ActivityEntry    `json:"activity"`
}
