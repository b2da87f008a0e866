package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/example/editorial/internal/apperr"
)

// mapError classifies a driver error into the error taxonomy. Errors that
// already carry a kind pass through unchanged.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var tagged *apperr.Error
	if errors.As(err, &tagged) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Wrap(apperr.ErrNotFound, operation, "", err)
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrConstraint:
			switch se.ExtendedCode {
			case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
				return apperr.Wrap(apperr.ErrConflict, operation, "already exists", err)
			case sqlite3.ErrConstraintForeignKey:
				return apperr.Wrap(apperr.ErrNotFound, operation, "referenced record does not exist", err)
			default:
				return apperr.Wrap(apperr.ErrValidation, operation, "constraint violated", err)
			}
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return apperr.Wrap(apperr.ErrConflict, operation, "database is busy; retry", err)
		}
	}

	return apperr.Wrap(apperr.ErrInfrastructure, operation, "", err)
}

func notFound(entity, id string) error {
	return apperr.NotFound(entity, id)
}

func encodeMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrValidation, "encode metadata", "", err)
	}
	return string(b), nil
}

func decodeMetadata(raw string) (map[string]any, error) {
	out := map[string]any{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// expectOne turns a zero-row conditional write into the error produced by
// onMiss.
func expectOne(res sql.Result, onMiss func() error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return onMiss()
	}
	return nil
}
