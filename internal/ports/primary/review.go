package primary

import "context"

// ReviewRoundService defines the primary port for numbered review rounds.
type ReviewRoundService interface {
	// NextRoundNumber returns 1 when no round exists, else max+1.
	NextRoundNumber(ctx context.Context, submissionID, stage string) (int, error)

	// CreateRound opens a round. Round 0 means "next number".
	CreateRound(ctx context.Context, req CreateRoundRequest) (*CreateRoundResponse, error)

	// CloseRound closes a round whose assignments are all terminal.
	CloseRound(ctx context.Context, roundID string) error

	// ListRounds lists the rounds of a submission.
	ListRounds(ctx context.Context, submissionID, stage string) ([]*ReviewRound, error)
}

// CreateRoundRequest contains parameters for opening a review round.
type CreateRoundRequest struct {
	SubmissionID string
	Stage        string
	Round        int // 0 computes the next number
	ReviewFormID string
	Notes        string
}

// CreateRoundResponse contains the result of opening a review round.
type CreateRoundResponse struct {
	RoundID string
	Round   *ReviewRound
}

// ReviewRound represents a review round at the port boundary.
type ReviewRound struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	Stage        string `json:"stage"`
	Round        int    `json:"round"`
	Status       string `json:"status"`
	ReviewFormID string `json:"review_form_id,omitempty"`
	Notes        string `json:"notes,omitempty"`
	StartedAt    string `json:"started_at"`
	ClosedAt     string `json:"closed_at,omitempty"`
}

// ReviewAssignmentService defines the primary port for the reviewer
// assignment lifecycle. Editor operations require editor access to the
// submission; reviewer operations require the caller to be the reviewer.
type ReviewAssignmentService interface {
	AssignReviewer(ctx context.Context, req AssignReviewerRequest) (*AssignReviewerResponse, error)
	UpdateAssignment(ctx context.Context, req UpdateAssignmentRequest) error
	RemoveAssignment(ctx context.Context, req RemoveAssignmentRequest) error

	AcceptAssignment(ctx context.Context, req AcceptAssignmentRequest) error
	DeclineAssignment(ctx context.Context, req DeclineAssignmentRequest) error
	SaveDraftRecommendation(ctx context.Context, req RecommendationRequest) error
	SubmitRecommendation(ctx context.Context, req RecommendationRequest) error

	// GetAssignment returns one assignment with its reviewer-facing view.
	GetAssignment(ctx context.Context, assignmentID string) (*ReviewAssignment, error)

	// ListReviewerAssignments lists the caller's own assignments.
	ListReviewerAssignments(ctx context.Context, status string) ([]*ReviewAssignment, error)
}

// AssignReviewerRequest contains parameters for inviting a reviewer.
type AssignReviewerRequest struct {
	SubmissionID    string
	Stage           string
	RoundID         string
	ReviewerID      string
	DueDate         string // optional, RFC 3339 or YYYY-MM-DD
	ResponseDueDate string // optional, RFC 3339 or YYYY-MM-DD
	ReviewMethod    string
	PersonalMessage string
}

// AssignReviewerResponse contains the result of inviting a reviewer.
type AssignReviewerResponse struct {
	AssignmentID string
	Assignment   *ReviewAssignment
}

// UpdateAssignmentRequest is a partial update; nil fields are untouched.
type UpdateAssignmentRequest struct {
	AssignmentID    string
	DueDate         *string
	ResponseDueDate *string
	PersonalMessage *string
}

// RemoveAssignmentRequest contains parameters for removing an assignment.
type RemoveAssignmentRequest struct {
	AssignmentID string
	// Force lifts the pending-only restriction; administrators only.
	Force bool
}

// AcceptAssignmentRequest contains parameters for accepting a review request.
type AcceptAssignmentRequest struct {
	AssignmentID       string
	CompetingInterests string
	PrivacyConsent     bool
}

// DeclineAssignmentRequest contains parameters for declining a review request.
type DeclineAssignmentRequest struct {
	AssignmentID string
	Reason       string
}

// RecommendationRequest carries a draft or final review.
type RecommendationRequest struct {
	AssignmentID       string
	Recommendation     string
	CommentsToAuthor   string
	CommentsToEditor   string
	CompetingInterests string
	FormResponses      []FormResponse
}

// FormResponse answers one review form question.
type FormResponse struct {
	QuestionID string `json:"question_id"`
	Response   string `json:"response"`
}

// ReviewAssignment represents a reviewer assignment at the port boundary.
type ReviewAssignment struct {
	ID              string         `json:"id"`
	SubmissionID    string         `json:"submission_id"`
	ReviewRoundID   string         `json:"review_round_id"`
	ReviewerID      string         `json:"reviewer_id"`
	Stage           string         `json:"stage"`
	Status          string         `json:"status"`
	ReviewerView    string         `json:"reviewer_view"`
	Recommendation  string         `json:"recommendation,omitempty"`
	ReviewMethod    string         `json:"review_method"`
	AssignedAt      string         `json:"assigned_at"`
	DueDate         string         `json:"due_date,omitempty"`
	ResponseDueDate string         `json:"response_due_date,omitempty"`
	SubmittedAt     string         `json:"submitted_at,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// ReviewFormService defines the primary port for structured review forms.
type ReviewFormService interface {
	CreateForm(ctx context.Context, req CreateReviewFormRequest) (*ReviewForm, error)
	GetForm(ctx context.Context, formID string) (*ReviewForm, error)
	ListForms(ctx context.Context) ([]*ReviewForm, error)
}

// CreateReviewFormRequest contains parameters for creating a review form.
type CreateReviewFormRequest struct {
	JournalID string
	Title     string
	Questions []ReviewFormQuestion
}

// ReviewForm represents a review form at the port boundary.
type ReviewForm struct {
	ID        string               `json:"id"`
	JournalID string               `json:"journal_id,omitempty"`
	Title     string               `json:"title"`
	Questions []ReviewFormQuestion `json:"questions"`
	CreatedAt string               `json:"created_at"`
}

// ReviewFormQuestion is one question of a review form.
type ReviewFormQuestion struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
}
