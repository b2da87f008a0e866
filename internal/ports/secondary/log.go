package secondary

import "context"

// ActivityWriter appends workflow events to a submission's activity log.
// Implementations resolve the actor from context.
type ActivityWriter interface {
	// Write appends one entry and returns it as stored.
	Write(ctx context.Context, submissionID, category, message string) (*ActivityRecord, error)
}

// EventPublisher fans activity entries out to other systems. It is called
// after the owning transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, entry *ActivityRecord) error
}
