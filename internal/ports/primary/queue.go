package primary

import "context"

// QueueService defines the primary port for the queue resolver.
type QueueService interface {
	// ListQueue returns one page of a queue for the caller.
	ListQueue(ctx context.Context, req QueueRequest) (*QueuePage, error)

	// DashboardStats returns every queue counter for the caller.
	DashboardStats(ctx context.Context, req DashboardRequest) (*DashboardStats, error)
}

// QueueRequest selects a queue page.
type QueueRequest struct {
	Queue     string // my_queue, unassigned, all_active, archived
	JournalID string
	Stage     string
	Search    string
	Limit     int
	Offset    int
}

// QueuePage is one page of a queue.
type QueuePage struct {
	Queue       string        `json:"queue"`
	Total       int           `json:"total"`
	Limit       int           `json:"limit"`
	Offset      int           `json:"offset"`
	Submissions []*Submission `json:"submissions"`
}

// DashboardRequest selects the scope of dashboard counters.
type DashboardRequest struct {
	JournalID string
	// MyTasksOnly restricts the task counter to the caller's tasks.
	MyTasksOnly bool
}

// DashboardStats are the dashboard counters. Each equals the size of the
// matching queue.
type DashboardStats struct {
	MyQueue     int `json:"my_queue"`
	Unassigned  int `json:"unassigned"`
	Submission  int `json:"submission"`
	InReview    int `json:"in_review"`
	Copyediting int `json:"copyediting"`
	Production  int `json:"production"`
	AllActive   int `json:"all_active"`
	Archived    int `json:"archived"`
	Tasks       int `json:"tasks"`
}
