package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/editorial/internal/ports/secondary"
)

// ReviewFormRepository implements secondary.ReviewFormRepository with SQLite.
type ReviewFormRepository struct {
	db *sql.DB
}

// NewReviewFormRepository creates a new SQLite review form repository.
func NewReviewFormRepository(db *sql.DB) *ReviewFormRepository {
	return &ReviewFormRepository{db: db}
}

// Create persists a form together with its questions.
func (r *ReviewFormRepository) Create(ctx context.Context, form *secondary.ReviewFormRecord, questions []*secondary.ReviewFormQuestionRecord) error {
	q := conn(ctx, r.db)
	_, err := q.ExecContext(ctx,
		"INSERT INTO review_forms (id, journal_id, title, created_at) VALUES (?, ?, ?, ?)",
		form.ID, nullString(form.JournalID), form.Title, form.CreatedAt,
	)
	if err != nil {
		return mapError("create review form", err)
	}
	for _, question := range questions {
		_, err := q.ExecContext(ctx,
			"INSERT INTO review_form_questions (id, form_id, seq, prompt, kind, required) VALUES (?, ?, ?, ?, ?, ?)",
			question.ID, form.ID, question.Seq, question.Prompt, question.Kind, question.Required,
		)
		if err != nil {
			return mapError("create review form question", err)
		}
	}
	return nil
}

func scanForm(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ReviewFormRecord, error) {
	var (
		record    secondary.ReviewFormRecord
		journalID sql.NullString
	)
	if err := scanner.Scan(&record.ID, &journalID, &record.Title, &record.CreatedAt); err != nil {
		return nil, err
	}
	record.JournalID = journalID.String
	return &record, nil
}

// GetByID retrieves a form by its ID.
func (r *ReviewFormRepository) GetByID(ctx context.Context, id string) (*secondary.ReviewFormRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT id, journal_id, title, created_at FROM review_forms WHERE id = ?", id)
	record, err := scanForm(row)
	if err == sql.ErrNoRows {
		return nil, notFound("review form", id)
	}
	if err != nil {
		return nil, mapError("get review form", err)
	}
	return record, nil
}

// List retrieves every form ordered by title.
func (r *ReviewFormRepository) List(ctx context.Context) ([]*secondary.ReviewFormRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, "SELECT id, journal_id, title, created_at FROM review_forms ORDER BY title, id")
	if err != nil {
		return nil, mapError("list review forms", err)
	}
	defer rows.Close()

	var forms []*secondary.ReviewFormRecord
	for rows.Next() {
		record, err := scanForm(rows)
		if err != nil {
			return nil, mapError("scan review form", err)
		}
		forms = append(forms, record)
	}
	return forms, mapError("list review forms", rows.Err())
}

// ListQuestions retrieves the questions of a form in display order.
func (r *ReviewFormRepository) ListQuestions(ctx context.Context, formID string) ([]*secondary.ReviewFormQuestionRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id, form_id, seq, prompt, kind, required FROM review_form_questions WHERE form_id = ? ORDER BY seq",
		formID)
	if err != nil {
		return nil, mapError("list review form questions", err)
	}
	defer rows.Close()

	var questions []*secondary.ReviewFormQuestionRecord
	for rows.Next() {
		var q secondary.ReviewFormQuestionRecord
		if err := rows.Scan(&q.ID, &q.FormID, &q.Seq, &q.Prompt, &q.Kind, &q.Required); err != nil {
			return nil, mapError("scan review form question", err)
		}
		questions = append(questions, &q)
	}
	return questions, mapError("list review form questions", rows.Err())
}

// Ensure ReviewFormRepository implements the interface
var _ secondary.ReviewFormRepository = (*ReviewFormRepository)(nil)
