package primary

import "context"

// LedgerService defines the primary port for the activity log and
// editorial tasks.
type LedgerService interface {
	// LogActivity appends an entry to a submission's activity log.
	LogActivity(ctx context.Context, req LogActivityRequest) (*ActivityEntry, error)

	// ListActivity lists a submission's entries, newest first.
	ListActivity(ctx context.Context, submissionID string, limit int) ([]*ActivityEntry, error)

	// CreateTask creates an editorial task.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error)

	// ListTasks lists tasks matching the filters. It never falls back.
	ListTasks(ctx context.Context, req ListTasksRequest) ([]*Task, error)

	// ClaimTask assigns an unassigned task to the caller.
	ClaimTask(ctx context.Context, taskID string) error

	// CloseTask marks a task done.
	CloseTask(ctx context.Context, taskID string) error
}

// LogActivityRequest contains parameters for an activity entry.
type LogActivityRequest struct {
	SubmissionID string
	Category     string
	Message      string
}

// ActivityEntry represents an activity log entry at the port boundary.
type ActivityEntry struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	ActorID      string `json:"actor_id"`
	Category     string `json:"category"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
}

// CreateTaskRequest contains parameters for creating a task.
type CreateTaskRequest struct {
	SubmissionID string
	Stage        string
	Title        string
	AssigneeID   string // optional
	DueDate      string // optional
}

// ListTasksRequest contains filter options for listing tasks.
type ListTasksRequest struct {
	SubmissionID string
	JournalID    string
	AssigneeID   string
	Unassigned   bool
	Status       string
	Limit        int
}

// Task represents an editorial task at the port boundary.
type Task struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	Stage        string `json:"stage"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	AssigneeID   string `json:"assignee_id,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	CreatedAt    string `json:"created_at"`
	ClosedAt     string `json:"closed_at,omitempty"`
}
