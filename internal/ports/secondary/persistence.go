// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for every persisted
// timestamp, so that text ordering equals time ordering.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t in TimeLayout. The zero time renders as empty (null).
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a persisted timestamp. ok is false for empty or
// malformed values.
func ParseTime(s string) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{TimeLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// Transactor runs a unit of work atomically. Repositories called with the
// context passed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SubmissionRepository defines the secondary port for submission persistence.
type SubmissionRepository interface {
	// Create persists a new submission.
	Create(ctx context.Context, submission *SubmissionRecord) error

	// GetByID retrieves a submission by its ID.
	GetByID(ctx context.Context, id string) (*SubmissionRecord, error)

	// UpdateWorkflow sets stage, status and the derived archive flag.
	UpdateWorkflow(ctx context.Context, id string, change WorkflowChange) error

	// Delete removes a submission and everything it owns except activity.
	Delete(ctx context.Context, id string) error

	// List retrieves submissions matching the filters, newest update first.
	List(ctx context.Context, filters SubmissionFilters) ([]*SubmissionRecord, error)

	// Count returns how many submissions match the filters, ignoring paging.
	Count(ctx context.Context, filters SubmissionFilters) (int, error)
}

// SubmissionRecord represents a submission as stored in persistence.
type SubmissionRecord struct {
	ID          string
	JournalID   string
	Title       string
	Stage       string // submission, review, copyediting, production
	Status      string // queued, published, declined, scheduled
	IsArchived  bool
	Metadata    map[string]any
	SubmittedAt string
	UpdatedAt   string
}

// WorkflowChange is the new stage/status of a submission.
type WorkflowChange struct {
	Stage      string
	Status     string
	IsArchived bool
	UpdatedAt  string
}

// SubmissionFilters contains filter options for querying submissions.
// Every non-empty field is a conjunct.
type SubmissionFilters struct {
	Statuses          []string
	ParticipantUserID string   // submission has a participant row for this user
	ExcludeHeldRoles  []string // no participant on the submission holds any of these roles
	JournalID         string
	Stage             string
	Search            string // case-insensitive title substring
	Limit             int
	Offset            int
}

// ReviewRoundRepository defines the secondary port for review round persistence.
type ReviewRoundRepository interface {
	// Create persists a new round. A duplicate (submission, stage, round)
	// or a second active round is a conflict.
	Create(ctx context.Context, round *ReviewRoundRecord) error

	// GetByID retrieves a round by its ID.
	GetByID(ctx context.Context, id string) (*ReviewRoundRecord, error)

	// ListBySubmission retrieves rounds ordered by stage and number. An empty
	// stage lists every stage.
	ListBySubmission(ctx context.Context, submissionID, stage string) ([]*ReviewRoundRecord, error)

	// GetActive returns the active round for (submission, stage), or nil.
	GetActive(ctx context.Context, submissionID, stage string) (*ReviewRoundRecord, error)

	// Close moves an active round to closed. A round that is not active is
	// a conflict.
	Close(ctx context.Context, id, closedAt string) error
}

// ReviewRoundRecord represents a review round as stored in persistence.
type ReviewRoundRecord struct {
	ID           string
	SubmissionID string
	Stage        string
	Round        int
	Status       string // active, closed
	ReviewFormID string // Empty string means null
	Notes        string
	StartedAt    string
	ClosedAt     string // Empty string means null
}

// ReviewAssignmentRepository defines the secondary port for reviewer assignment persistence.
type ReviewAssignmentRepository interface {
	// Create persists a new assignment. A second non-terminal assignment for
	// the same (round, reviewer) is a conflict.
	Create(ctx context.Context, assignment *ReviewAssignmentRecord) error

	// GetByID retrieves an assignment by its ID.
	GetByID(ctx context.Context, id string) (*ReviewAssignmentRecord, error)

	// List retrieves assignments matching the given filters.
	List(ctx context.Context, filters ReviewAssignmentFilters) ([]*ReviewAssignmentRecord, error)

	// CountOpen counts assignments of a round that are pending or accepted.
	CountOpen(ctx context.Context, roundID string) (int, error)

	// Transition applies a status change only while the assignment is still
	// in the expected status. Losing that race is a conflict.
	Transition(ctx context.Context, id string, t AssignmentTransition) error

	// UpdateOpen writes due dates and metadata of a non-terminal
	// assignment. A terminal assignment is a conflict.
	UpdateOpen(ctx context.Context, id string, u AssignmentUpdate) error

	// Delete removes an assignment.
	Delete(ctx context.Context, id string) error
}

// ReviewAssignmentRecord represents a reviewer assignment as stored in persistence.
type ReviewAssignmentRecord struct {
	ID              string
	SubmissionID    string
	ReviewRoundID   string
	ReviewerID      string
	Stage           string
	Status          string // pending, accepted, declined, completed
	Recommendation  string // Empty string means null; set only when completed
	ReviewMethod    string
	AssignedAt      string
	DueDate         string // Empty string means null
	ResponseDueDate string // Empty string means null
	SubmittedAt     string // Empty string means null
	Metadata        map[string]any
	UpdatedAt       string
}

// AssignmentTransition is a conditional status change.
type AssignmentTransition struct {
	From           string
	To             string
	Recommendation string
	SubmittedAt    string
	Metadata       map[string]any
	UpdatedAt      string
}

// AssignmentUpdate replaces the mutable fields of an open assignment.
type AssignmentUpdate struct {
	DueDate         string
	ResponseDueDate string
	Metadata        map[string]any
	UpdatedAt       string
}

// ReviewAssignmentFilters contains filter options for querying assignments.
type ReviewAssignmentFilters struct {
	SubmissionID  string
	ReviewRoundID string
	ReviewerID    string
	Status        string
}

// ReviewFormRepository defines the secondary port for structured review forms.
type ReviewFormRepository interface {
	// Create persists a form together with its questions.
	Create(ctx context.Context, form *ReviewFormRecord, questions []*ReviewFormQuestionRecord) error

	// GetByID retrieves a form by its ID.
	GetByID(ctx context.Context, id string) (*ReviewFormRecord, error)

	// List retrieves every form.
	List(ctx context.Context) ([]*ReviewFormRecord, error)

	// ListQuestions retrieves the questions of a form in display order.
	ListQuestions(ctx context.Context, formID string) ([]*ReviewFormQuestionRecord, error)
}

// ReviewFormRecord represents a review form as stored in persistence.
type ReviewFormRecord struct {
	ID        string
	JournalID string // Empty string means site-wide
	Title     string
	CreatedAt string
}

// ReviewFormQuestionRecord is one question of a review form.
type ReviewFormQuestionRecord struct {
	ID       string
	FormID   string
	Seq      int
	Prompt   string
	Kind     string // text, textarea, choice
	Required bool
}

// ParticipantRepository defines the secondary port for the participant registry.
type ParticipantRepository interface {
	// Insert adds a participant row. created is false when the exact
	// (submission, user, role, stage) tuple already existed.
	Insert(ctx context.Context, participant *ParticipantRecord) (created bool, err error)

	// Delete removes one participant row.
	Delete(ctx context.Context, key ParticipantKey) error

	// UpdateFlags sets the permission flags of one participant row.
	UpdateFlags(ctx context.Context, key ParticipantKey, recommendOnly, canChangeMetadata bool) error

	// List retrieves participant rows matching the given filters.
	List(ctx context.Context, filters ParticipantFilters) ([]*ParticipantRecord, error)

	// SubmissionIDsForUser returns submissions where the user holds any role.
	SubmissionIDsForUser(ctx context.Context, userID string) ([]string, error)

	// SubmissionIDsWithRoles returns submissions where any participant holds
	// one of the roles.
	SubmissionIDsWithRoles(ctx context.Context, roles []string) ([]string, error)
}

// ParticipantKey identifies one participant row.
type ParticipantKey struct {
	SubmissionID string
	UserID       string
	Role         string
	Stage        string
}

// ParticipantRecord represents a participant row as stored in persistence.
type ParticipantRecord struct {
	ID                string
	SubmissionID      string
	UserID            string
	Role              string
	Stage             string
	RecommendOnly     bool
	CanChangeMetadata bool
	CreatedAt         string
}

// ParticipantFilters contains filter options for querying participants.
type ParticipantFilters struct {
	SubmissionID string
	UserID       string
	Stage        string
}

// TaskRepository defines the secondary port for editorial task persistence.
type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a task by its ID.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// List retrieves tasks matching the given filters, earliest due first.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)

	// Count returns how many tasks match the filters, ignoring the limit.
	Count(ctx context.Context, filters TaskFilters) (int, error)

	// Claim assigns an open unassigned task. An already claimed task is a
	// conflict.
	Claim(ctx context.Context, id, userID, at string) error

	// Close marks a task done.
	Close(ctx context.Context, id, at string) error
}

// TaskRecord represents a task as stored in persistence.
type TaskRecord struct {
	ID           string
	SubmissionID string
	Stage        string
	Title        string
	Status       string // open, done
	AssigneeID   string // Empty string means null
	DueDate      string // Empty string means null
	CreatedAt    string
	UpdatedAt    string
	ClosedAt     string // Empty string means null
}

// TaskFilters contains filter options for querying tasks.
type TaskFilters struct {
	SubmissionID string
	AssigneeID   string
	Unassigned   bool // only tasks without an assignee
	JournalID    string
	Status       string
	Limit        int
}

// ActivityRepository defines the secondary port for the append-only activity log.
type ActivityRepository interface {
	// Append persists a new entry.
	Append(ctx context.Context, entry *ActivityRecord) error

	// ListBySubmission retrieves entries newest first.
	ListBySubmission(ctx context.Context, submissionID string, limit int) ([]*ActivityRecord, error)
}

// ActivityRecord represents an activity log entry as stored in persistence.
type ActivityRecord struct {
	ID           string
	SubmissionID string
	ActorID      string
	Category     string
	Message      string
	CreatedAt    string
}
