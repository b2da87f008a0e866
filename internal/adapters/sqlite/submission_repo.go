package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/editorial/internal/ports/secondary"
)

// SubmissionRepository implements secondary.SubmissionRepository with SQLite.
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new SQLite submission repository.
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionSelectCols = "s.id, s.journal_id, s.title, s.current_stage, s.status, s.is_archived, s.metadata, s.submitted_at, s.updated_at"

// scanSubmission scans a submission row into a SubmissionRecord.
func scanSubmission(scanner interface {
	Scan(dest ...any) error
}) (*secondary.SubmissionRecord, error) {
	var (
		record   secondary.SubmissionRecord
		metadata string
	)
	err := scanner.Scan(
		&record.ID, &record.JournalID, &record.Title, &record.Stage, &record.Status,
		&record.IsArchived, &metadata, &record.SubmittedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if record.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create persists a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *secondary.SubmissionRecord) error {
	metadata, err := encodeMetadata(s.Metadata)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO submissions (id, journal_id, title, current_stage, status, is_archived, metadata, submitted_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.JournalID, s.Title, s.Stage, s.Status, s.IsArchived, metadata, s.SubmittedAt, s.UpdatedAt,
	)
	return mapError("create submission", err)
}

// GetByID retrieves a submission by its ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*secondary.SubmissionRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+submissionSelectCols+" FROM submissions s WHERE s.id = ?", id)

	record, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, notFound("submission", id)
	}
	if err != nil {
		return nil, mapError("get submission", err)
	}
	return record, nil
}

// UpdateWorkflow sets stage, status and the derived archive flag.
func (r *SubmissionRepository) UpdateWorkflow(ctx context.Context, id string, change secondary.WorkflowChange) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE submissions SET current_stage = ?, status = ?, is_archived = ?, updated_at = ? WHERE id = ?",
		change.Stage, change.Status, change.IsArchived, change.UpdatedAt, id,
	)
	if err != nil {
		return mapError("update submission workflow", err)
	}
	return expectOne(res, func() error { return notFound("submission", id) })
}

// Delete removes a submission. Rounds, assignments, participants and tasks
// cascade; activity entries have no foreign key and remain.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM submissions WHERE id = ?", id)
	if err != nil {
		return mapError("delete submission", err)
	}
	return expectOne(res, func() error { return notFound("submission", id) })
}

// submissionWhere renders filters into a WHERE clause. List and Count share
// it so counters always agree with lists.
func submissionWhere(f secondary.SubmissionFilters) (string, []any) {
	clauses := []string{"1=1"}
	var args []any

	if len(f.Statuses) > 0 {
		clauses = append(clauses, "s.status IN ("+placeholders(len(f.Statuses))+")")
		for _, st := range f.Statuses {
			args = append(args, st)
		}
	}
	if f.ParticipantUserID != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM participants p WHERE p.submission_id = s.id AND p.user_id = ?)")
		args = append(args, f.ParticipantUserID)
	}
	if len(f.ExcludeHeldRoles) > 0 {
		clauses = append(clauses, "NOT EXISTS (SELECT 1 FROM participants p WHERE p.submission_id = s.id AND p.role IN ("+placeholders(len(f.ExcludeHeldRoles))+"))")
		for _, role := range f.ExcludeHeldRoles {
			args = append(args, role)
		}
	}
	if f.JournalID != "" {
		clauses = append(clauses, "s.journal_id = ?")
		args = append(args, f.JournalID)
	}
	if f.Stage != "" {
		clauses = append(clauses, "s.current_stage = ?")
		args = append(args, f.Stage)
	}
	if f.Search != "" {
		clauses = append(clauses, "instr(fold(s.title), fold(?)) > 0")
		args = append(args, f.Search)
	}

	return strings.Join(clauses, " AND "), args
}

// List retrieves submissions matching the filters, most recently updated
// first. A non-positive limit returns every match.
func (r *SubmissionRepository) List(ctx context.Context, filters secondary.SubmissionFilters) ([]*secondary.SubmissionRecord, error) {
	where, args := submissionWhere(filters)
	query := "SELECT " + submissionSelectCols + " FROM submissions s WHERE " + where +
		" ORDER BY s.updated_at DESC, s.id ASC LIMIT ? OFFSET ?"

	limit := filters.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, filters.Offset)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list submissions", err)
	}
	defer rows.Close()

	var submissions []*secondary.SubmissionRecord
	for rows.Next() {
		record, err := scanSubmission(rows)
		if err != nil {
			return nil, mapError("scan submission", err)
		}
		submissions = append(submissions, record)
	}
	return submissions, mapError("list submissions", rows.Err())
}

// Count returns how many submissions match the filters, ignoring paging.
func (r *SubmissionRepository) Count(ctx context.Context, filters secondary.SubmissionFilters) (int, error) {
	where, args := submissionWhere(filters)
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, "SELECT COUNT(*) FROM submissions s WHERE "+where, args...).Scan(&n)
	if err != nil {
		return 0, mapError("count submissions", err)
	}
	return n, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Ensure SubmissionRepository implements the interface
var _ secondary.SubmissionRepository = (*SubmissionRepository)(nil)
