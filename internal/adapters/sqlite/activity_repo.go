package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/editorial/internal/ports/secondary"
)

// ActivityRepository implements secondary.ActivityRepository with SQLite.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new SQLite activity repository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append persists a new entry.
func (r *ActivityRepository) Append(ctx context.Context, entry *secondary.ActivityRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO activity_logs (id, submission_id, actor_id, category, message, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, entry.SubmissionID, nullString(entry.ActorID), entry.Category, entry.Message, entry.CreatedAt,
	)
	return mapError("append activity", err)
}

// ListBySubmission retrieves entries newest first. A non-positive limit
// returns every entry.
func (r *ActivityRepository) ListBySubmission(ctx context.Context, submissionID string, limit int) ([]*secondary.ActivityRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, submission_id, actor_id, category, message, created_at FROM activity_logs
		 WHERE submission_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		submissionID, limit)
	if err != nil {
		return nil, mapError("list activity", err)
	}
	defer rows.Close()

	var entries []*secondary.ActivityRecord
	for rows.Next() {
		var (
			entry   secondary.ActivityRecord
			actorID sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.SubmissionID, &actorID, &entry.Category, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, mapError("scan activity", err)
		}
		entry.ActorID = actorID.String
		entries = append(entries, &entry)
	}
	return entries, mapError("list activity", rows.Err())
}

// Ensure ActivityRepository implements the interface
var _ secondary.ActivityRepository = (*ActivityRepository)(nil)
