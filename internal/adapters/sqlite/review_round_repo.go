package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/secondary"
)

// ReviewRoundRepository implements secondary.ReviewRoundRepository with SQLite.
type ReviewRoundRepository struct {
	db *sql.DB
}

// NewReviewRoundRepository creates a new SQLite review round repository.
func NewReviewRoundRepository(db *sql.DB) *ReviewRoundRepository {
	return &ReviewRoundRepository{db: db}
}

const roundSelectCols = "id, submission_id, stage, round, status, review_form_id, notes, started_at, closed_at"

// scanRound scans a review round row into a ReviewRoundRecord.
func scanRound(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ReviewRoundRecord, error) {
	var (
		record   secondary.ReviewRoundRecord
		formID   sql.NullString
		notes    sql.NullString
		closedAt sql.NullString
	)
	err := scanner.Scan(
		&record.ID, &record.SubmissionID, &record.Stage, &record.Round, &record.Status,
		&formID, &notes, &record.StartedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	record.ReviewFormID = formID.String
	record.Notes = notes.String
	record.ClosedAt = closedAt.String
	return &record, nil
}

// Create persists a new round. The unique (submission, stage, round) key
// and the single-active index turn concurrent duplicates into conflicts.
func (r *ReviewRoundRepository) Create(ctx context.Context, round *secondary.ReviewRoundRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO review_rounds (id, submission_id, stage, round, status, review_form_id, notes, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		round.ID, round.SubmissionID, round.Stage, round.Round, round.Status,
		nullString(round.ReviewFormID), nullString(round.Notes), round.StartedAt,
	)
	if err != nil {
		mapped := mapError("create review round", err)
		if apperr.Is(mapped, apperr.ErrConflict) {
			return apperr.Wrap(apperr.ErrConflict, "create review round",
				fmt.Sprintf("round %d already exists or another round is active for submission %s at stage %s", round.Round, round.SubmissionID, round.Stage), err)
		}
		return mapped
	}
	return nil
}

// GetByID retrieves a round by its ID.
func (r *ReviewRoundRepository) GetByID(ctx context.Context, id string) (*secondary.ReviewRoundRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+roundSelectCols+" FROM review_rounds WHERE id = ?", id)
	record, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, notFound("review round", id)
	}
	if err != nil {
		return nil, mapError("get review round", err)
	}
	return record, nil
}

// ListBySubmission retrieves rounds ordered by stage and number.
func (r *ReviewRoundRepository) ListBySubmission(ctx context.Context, submissionID, stage string) ([]*secondary.ReviewRoundRecord, error) {
	query := "SELECT " + roundSelectCols + " FROM review_rounds WHERE submission_id = ?"
	args := []any{submissionID}
	if stage != "" {
		query += " AND stage = ?"
		args = append(args, stage)
	}
	query += " ORDER BY stage, round"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list review rounds", err)
	}
	defer rows.Close()

	var rounds []*secondary.ReviewRoundRecord
	for rows.Next() {
		record, err := scanRound(rows)
		if err != nil {
			return nil, mapError("scan review round", err)
		}
		rounds = append(rounds, record)
	}
	return rounds, mapError("list review rounds", rows.Err())
}

// GetActive returns the active round for (submission, stage), or nil.
func (r *ReviewRoundRepository) GetActive(ctx context.Context, submissionID, stage string) (*secondary.ReviewRoundRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+roundSelectCols+" FROM review_rounds WHERE submission_id = ? AND stage = ? AND status = 'active'",
		submissionID, stage)
	record, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get active review round", err)
	}
	return record, nil
}

// Close moves an active round to closed.
func (r *ReviewRoundRepository) Close(ctx context.Context, id, closedAt string) error {
	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx,
		"UPDATE review_rounds SET status = 'closed', closed_at = ? WHERE id = ? AND status = 'active'",
		closedAt, id)
	if err != nil {
		return mapError("close review round", err)
	}
	return expectOne(res, func() error {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperr.Newf(apperr.ErrConflict, "review round %s is already closed", id)
	})
}

// Ensure ReviewRoundRepository implements the interface
var _ secondary.ReviewRoundRepository = (*ReviewRoundRepository)(nil)
