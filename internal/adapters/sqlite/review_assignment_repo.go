package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/secondary"
)

// ReviewAssignmentRepository implements secondary.ReviewAssignmentRepository with SQLite.
type ReviewAssignmentRepository struct {
	db *sql.DB
}

// NewReviewAssignmentRepository creates a new SQLite reviewer assignment repository.
func NewReviewAssignmentRepository(db *sql.DB) *ReviewAssignmentRepository {
	return &ReviewAssignmentRepository{db: db}
}

const assignmentSelectCols = "id, submission_id, review_round_id, reviewer_id, stage, status, recommendation, review_method, assigned_at, due_date, response_due_date, submitted_at, metadata, updated_at"

// scanAssignment scans an assignment row into a ReviewAssignmentRecord.
func scanAssignment(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ReviewAssignmentRecord, error) {
	var (
		record          secondary.ReviewAssignmentRecord
		recommendation  sql.NullString
		dueDate         sql.NullString
		responseDueDate sql.NullString
		submittedAt     sql.NullString
		metadata        string
	)
	err := scanner.Scan(
		&record.ID, &record.SubmissionID, &record.ReviewRoundID, &record.ReviewerID, &record.Stage,
		&record.Status, &recommendation, &record.ReviewMethod, &record.AssignedAt,
		&dueDate, &responseDueDate, &submittedAt, &metadata, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Recommendation = recommendation.String
	record.DueDate = dueDate.String
	record.ResponseDueDate = responseDueDate.String
	record.SubmittedAt = submittedAt.String
	if record.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create persists a new assignment.
func (r *ReviewAssignmentRepository) Create(ctx context.Context, a *secondary.ReviewAssignmentRecord) error {
	metadata, err := encodeMetadata(a.Metadata)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO review_assignments
		 (id, submission_id, review_round_id, reviewer_id, stage, status, review_method, assigned_at, due_date, response_due_date, metadata, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SubmissionID, a.ReviewRoundID, a.ReviewerID, a.Stage, a.Status, a.ReviewMethod, a.AssignedAt,
		nullString(a.DueDate), nullString(a.ResponseDueDate), metadata, a.UpdatedAt,
	)
	if err != nil {
		mapped := mapError("create review assignment", err)
		if apperr.Is(mapped, apperr.ErrConflict) {
			return apperr.Wrap(apperr.ErrConflict, "create review assignment",
				fmt.Sprintf("reviewer %s already has an open assignment in round %s", a.ReviewerID, a.ReviewRoundID), err)
		}
		return mapped
	}
	return nil
}

// GetByID retrieves an assignment by its ID.
func (r *ReviewAssignmentRepository) GetByID(ctx context.Context, id string) (*secondary.ReviewAssignmentRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+assignmentSelectCols+" FROM review_assignments WHERE id = ?", id)
	record, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, notFound("review assignment", id)
	}
	if err != nil {
		return nil, mapError("get review assignment", err)
	}
	return record, nil
}

// List retrieves assignments matching the given filters, oldest first.
func (r *ReviewAssignmentRepository) List(ctx context.Context, filters secondary.ReviewAssignmentFilters) ([]*secondary.ReviewAssignmentRecord, error) {
	query := "SELECT " + assignmentSelectCols + " FROM review_assignments WHERE 1=1"
	var args []any

	if filters.SubmissionID != "" {
		query += " AND submission_id = ?"
		args = append(args, filters.SubmissionID)
	}
	if filters.ReviewRoundID != "" {
		query += " AND review_round_id = ?"
		args = append(args, filters.ReviewRoundID)
	}
	if filters.ReviewerID != "" {
		query += " AND reviewer_id = ?"
		args = append(args, filters.ReviewerID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	query += " ORDER BY assigned_at ASC, id ASC"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list review assignments", err)
	}
	defer rows.Close()

	var assignments []*secondary.ReviewAssignmentRecord
	for rows.Next() {
		record, err := scanAssignment(rows)
		if err != nil {
			return nil, mapError("scan review assignment", err)
		}
		assignments = append(assignments, record)
	}
	return assignments, mapError("list review assignments", rows.Err())
}

// CountOpen counts assignments of a round that are pending or accepted.
func (r *ReviewAssignmentRepository) CountOpen(ctx context.Context, roundID string) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM review_assignments WHERE review_round_id = ? AND status IN ('pending', 'accepted')",
		roundID).Scan(&n)
	if err != nil {
		return 0, mapError("count open review assignments", err)
	}
	return n, nil
}

// Transition applies a status change while the assignment is still in the
// expected status.
func (r *ReviewAssignmentRepository) Transition(ctx context.Context, id string, t secondary.AssignmentTransition) error {
	metadata, err := encodeMetadata(t.Metadata)
	if err != nil {
		return err
	}
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE review_assignments
		 SET status = ?, recommendation = ?, submitted_at = ?, metadata = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		t.To, nullString(t.Recommendation), nullString(t.SubmittedAt), metadata, t.UpdatedAt, id, t.From,
	)
	if err != nil {
		return mapError("transition review assignment", err)
	}
	return expectOne(res, func() error {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return apperr.Newf(apperr.ErrConflict, "assignment %s is %s, expected %s", id, current.Status, t.From)
	})
}

// UpdateOpen writes due dates and metadata of a non-terminal assignment.
func (r *ReviewAssignmentRepository) UpdateOpen(ctx context.Context, id string, u secondary.AssignmentUpdate) error {
	metadata, err := encodeMetadata(u.Metadata)
	if err != nil {
		return err
	}
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE review_assignments
		 SET due_date = ?, response_due_date = ?, metadata = ?, updated_at = ?
		 WHERE id = ? AND status IN ('pending', 'accepted')`,
		nullString(u.DueDate), nullString(u.ResponseDueDate), metadata, u.UpdatedAt, id,
	)
	if err != nil {
		return mapError("update review assignment", err)
	}
	return expectOne(res, func() error {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return apperr.Newf(apperr.ErrConflict, "assignment %s is %s and can no longer be edited", id, current.Status)
	})
}

// Delete removes an assignment.
func (r *ReviewAssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM review_assignments WHERE id = ?", id)
	if err != nil {
		return mapError("delete review assignment", err)
	}
	return expectOne(res, func() error { return notFound("review assignment", id) })
}

// Ensure ReviewAssignmentRepository implements the interface
var _ secondary.ReviewAssignmentRepository = (*ReviewAssignmentRepository)(nil)
