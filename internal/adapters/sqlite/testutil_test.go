// Package sqlite_test contains integration tests for SQLite repositories.
//
// Every test database is built from db.GetSchemaSQL() so that tests run
// against the authoritative schema. Use setupTestDB and the seed helpers
// below instead of hand-written CREATE TABLE statements.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/example/editorial/internal/db"
)

const seedTime = "2026-01-05T09:00:00.000000Z"

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})
	return testDB
}

// setupFileDB creates a file-backed database so that several connections
// can race against each other.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(filepath.Join(t.TempDir(), "editorial.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})
	return testDB
}

// seedSubmission inserts a queued submission at the given stage.
func seedSubmission(t *testing.T, db *sql.DB, id, journalID, title, stage string) string {
	t.Helper()
	if journalID == "" {
		journalID = "J1"
	}
	if stage == "" {
		stage = "submission"
	}
	_, err := db.Exec(
		`INSERT INTO submissions (id, journal_id, title, current_stage, status, is_archived, submitted_at, updated_at)
		 VALUES (?, ?, ?, ?, 'queued', 0, ?, ?)`,
		id, journalID, title, stage, seedTime, seedTime)
	if err != nil {
		t.Fatalf("failed to seed submission: %v", err)
	}
	return id
}

// seedArchivedSubmission inserts a submission with an archived status.
func seedArchivedSubmission(t *testing.T, db *sql.DB, id, status string) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO submissions (id, journal_id, title, current_stage, status, is_archived, submitted_at, updated_at)
		 VALUES (?, 'J1', ?, 'production', ?, 1, ?, ?)`,
		id, "Archived "+id, status, seedTime, seedTime)
	if err != nil {
		t.Fatalf("failed to seed archived submission: %v", err)
	}
	return id
}

// seedParticipant inserts a participant row.
func seedParticipant(t *testing.T, db *sql.DB, submissionID, userID, role, stage string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO participants (id, submission_id, user_id, role, stage, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		submissionID+":"+userID+":"+role+":"+stage, submissionID, userID, role, stage, seedTime)
	if err != nil {
		t.Fatalf("failed to seed participant: %v", err)
	}
}

// seedRound inserts an active review round.
func seedRound(t *testing.T, db *sql.DB, id, submissionID string, round int) string {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO review_rounds (id, submission_id, stage, round, status, started_at) VALUES (?, ?, 'review', ?, 'active', ?)",
		id, submissionID, round, seedTime)
	if err != nil {
		t.Fatalf("failed to seed review round: %v", err)
	}
	return id
}

// seedAssignment inserts a pending reviewer assignment.
func seedAssignment(t *testing.T, db *sql.DB, id, submissionID, roundID, reviewerID string) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO review_assignments (id, submission_id, review_round_id, reviewer_id, stage, status, review_method, assigned_at, metadata, updated_at)
		 VALUES (?, ?, ?, ?, 'review', 'pending', 'doubleAnonymous', ?, '{}', ?)`,
		id, submissionID, roundID, reviewerID, seedTime, seedTime)
	if err != nil {
		t.Fatalf("failed to seed review assignment: %v", err)
	}
	return id
}
