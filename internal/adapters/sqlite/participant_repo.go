package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/secondary"
)

// ParticipantRepository implements secondary.ParticipantRepository with SQLite.
type ParticipantRepository struct {
	db *sql.DB
}

// NewParticipantRepository creates a new SQLite participant repository.
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

const participantSelectCols = "id, submission_id, user_id, role, stage, recommend_only, can_change_metadata, created_at"

// Insert adds a participant row; an existing tuple is left untouched.
func (r *ParticipantRepository) Insert(ctx context.Context, p *secondary.ParticipantRecord) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO participants (id, submission_id, user_id, role, stage, recommend_only, can_change_metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(submission_id, user_id, role, stage) DO NOTHING`,
		p.ID, p.SubmissionID, p.UserID, p.Role, p.Stage, p.RecommendOnly, p.CanChangeMetadata, p.CreatedAt,
	)
	if err != nil {
		return false, mapError("insert participant", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError("insert participant", err)
	}
	return n > 0, nil
}

// Delete removes one participant row.
func (r *ParticipantRepository) Delete(ctx context.Context, key secondary.ParticipantKey) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM participants WHERE submission_id = ? AND user_id = ? AND role = ? AND stage = ?",
		key.SubmissionID, key.UserID, key.Role, key.Stage)
	if err != nil {
		return mapError("delete participant", err)
	}
	return expectOne(res, func() error { return participantNotFound(key) })
}

// UpdateFlags sets the permission flags of one participant row.
func (r *ParticipantRepository) UpdateFlags(ctx context.Context, key secondary.ParticipantKey, recommendOnly, canChangeMetadata bool) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE participants SET recommend_only = ?, can_change_metadata = ?
		 WHERE submission_id = ? AND user_id = ? AND role = ? AND stage = ?`,
		recommendOnly, canChangeMetadata, key.SubmissionID, key.UserID, key.Role, key.Stage)
	if err != nil {
		return mapError("update participant flags", err)
	}
	return expectOne(res, func() error { return participantNotFound(key) })
}

// List retrieves participant rows matching the given filters.
func (r *ParticipantRepository) List(ctx context.Context, filters secondary.ParticipantFilters) ([]*secondary.ParticipantRecord, error) {
	query := "SELECT " + participantSelectCols + " FROM participants WHERE 1=1"
	var args []any
	if filters.SubmissionID != "" {
		query += " AND submission_id = ?"
		args = append(args, filters.SubmissionID)
	}
	if filters.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filters.UserID)
	}
	if filters.Stage != "" {
		query += " AND stage = ?"
		args = append(args, filters.Stage)
	}
	query += " ORDER BY created_at, id"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list participants", err)
	}
	defer rows.Close()

	var participants []*secondary.ParticipantRecord
	for rows.Next() {
		var p secondary.ParticipantRecord
		if err := rows.Scan(&p.ID, &p.SubmissionID, &p.UserID, &p.Role, &p.Stage, &p.RecommendOnly, &p.CanChangeMetadata, &p.CreatedAt); err != nil {
			return nil, mapError("scan participant", err)
		}
		participants = append(participants, &p)
	}
	return participants, mapError("list participants", rows.Err())
}

// SubmissionIDsForUser returns submissions where the user holds any role.
func (r *ParticipantRepository) SubmissionIDsForUser(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx, "SELECT DISTINCT submission_id FROM participants WHERE user_id = ? ORDER BY submission_id", userID)
}

// SubmissionIDsWithRoles returns submissions where any participant holds
// one of the roles.
func (r *ParticipantRepository) SubmissionIDsWithRoles(ctx context.Context, roles []string) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	args := make([]any, len(roles))
	for i, role := range roles {
		args[i] = role
	}
	return r.ids(ctx,
		"SELECT DISTINCT submission_id FROM participants WHERE role IN ("+placeholders(len(roles))+") ORDER BY submission_id",
		args...)
}

func (r *ParticipantRepository) ids(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list participant submissions", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError("scan submission id", err)
		}
		ids = append(ids, id)
	}
	return ids, mapError("list participant submissions", rows.Err())
}

func participantNotFound(key secondary.ParticipantKey) error {
	return apperr.Newf(apperr.ErrNotFound, "participant %s (%s at %s) not found on submission %s",
		key.UserID, key.Role, key.Stage, key.SubmissionID)
}

// Ensure ParticipantRepository implements the interface
var _ secondary.ParticipantRepository = (*ParticipantRepository)(nil)
