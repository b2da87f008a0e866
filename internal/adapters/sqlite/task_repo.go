package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskSelectCols = "t.id, t.submission_id, t.stage, t.title, t.status, t.assignee_id, t.due_date, t.created_at, t.updated_at, t.closed_at"

// scanTask scans a task row into a TaskRecord.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TaskRecord, error) {
	var (
		record     secondary.TaskRecord
		assigneeID sql.NullString
		dueDate    sql.NullString
		closedAt   sql.NullString
	)
	err := scanner.Scan(
		&record.ID, &record.SubmissionID, &record.Stage, &record.Title, &record.Status,
		&assigneeID, &dueDate, &record.CreatedAt, &record.UpdatedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	record.AssigneeID = assigneeID.String
	record.DueDate = dueDate.String
	record.ClosedAt = closedAt.String
	return &record, nil
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	status := task.Status
	if status == "" {
		status = "open"
	}
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO tasks (id, submission_id, stage, title, status, assignee_id, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.SubmissionID, task.Stage, task.Title, status,
		nullString(task.AssigneeID), nullString(task.DueDate), task.CreatedAt, task.UpdatedAt,
	)
	return mapError("create task", err)
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+taskSelectCols+" FROM tasks t WHERE t.id = ?", id)
	record, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, mapError("get task", err)
	}
	return record, nil
}

func taskWhere(f secondary.TaskFilters) (string, []any) {
	clauses := []string{"1=1"}
	var args []any

	if f.SubmissionID != "" {
		clauses = append(clauses, "t.submission_id = ?")
		args = append(args, f.SubmissionID)
	}
	if f.AssigneeID != "" {
		clauses = append(clauses, "t.assignee_id = ?")
		args = append(args, f.AssigneeID)
	}
	if f.Unassigned {
		clauses = append(clauses, "t.assignee_id IS NULL")
	}
	if f.JournalID != "" {
		clauses = append(clauses, "s.journal_id = ?")
		args = append(args, f.JournalID)
	}
	if f.Status != "" {
		clauses = append(clauses, "t.status = ?")
		args = append(args, f.Status)
	}
	return strings.Join(clauses, " AND "), args
}

// List retrieves tasks matching the filters. Tasks with a due date come
// first, earliest due first.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	where, args := taskWhere(filters)
	query := "SELECT " + taskSelectCols + " FROM tasks t JOIN submissions s ON s.id = t.submission_id WHERE " + where +
		" ORDER BY t.due_date IS NULL, t.due_date ASC, t.created_at ASC, t.id ASC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list tasks", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, mapError("scan task", err)
		}
		tasks = append(tasks, record)
	}
	return tasks, mapError("list tasks", rows.Err())
}

// Count returns how many tasks match the filters.
func (r *TaskRepository) Count(ctx context.Context, filters secondary.TaskFilters) (int, error) {
	where, args := taskWhere(filters)
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks t JOIN submissions s ON s.id = t.submission_id WHERE "+where, args...).Scan(&n)
	if err != nil {
		return 0, mapError("count tasks", err)
	}
	return n, nil
}

// Claim assigns an open task that nobody holds yet.
func (r *TaskRepository) Claim(ctx context.Context, id, userID, at string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE tasks SET assignee_id = ?, updated_at = ? WHERE id = ? AND assignee_id IS NULL AND status = 'open'",
		userID, at, id)
	if err != nil {
		return mapError("claim task", err)
	}
	return expectOne(res, func() error {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.AssigneeID != "" {
			return apperr.Newf(apperr.ErrConflict, "task %s is already claimed by %s", id, current.AssigneeID)
		}
		return apperr.Newf(apperr.ErrConflict, "task %s is %s", id, current.Status)
	})
}

// Close marks a task done. Closing a done task leaves it unchanged.
func (r *TaskRepository) Close(ctx context.Context, id, at string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE tasks SET status = 'done', closed_at = ?, updated_at = ? WHERE id = ? AND status = 'open'",
		at, at, id)
	if err != nil {
		return mapError("close task", err)
	}
	return expectOne(res, func() error {
		_, err := r.GetByID(ctx, id)
		return err
	})
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
