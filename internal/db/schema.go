package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs. It reflects the state
// after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository
// tests load it through GetSchemaSQL() rather than declaring their own
// tables, so a column referenced by an adapter but missing here fails the
// tests with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. TestMigrationsMatchSchema compares both
//
// Invariants enforced by the store itself:
//   - a submission is archived iff its status is not queued
//   - round numbers are unique per (submission, stage), at most one round is active
//   - a reviewer holds at most one pending/accepted assignment per round
//   - a recommendation is present iff the assignment is completed
//   - activity entries survive deletion of their submission
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	journal_id TEXT NOT NULL,
	title TEXT NOT NULL,
	current_stage TEXT NOT NULL CHECK(current_stage IN ('submission', 'review', 'copyediting', 'production')) DEFAULT 'submission',
	status TEXT NOT NULL CHECK(status IN ('queued', 'published', 'declined', 'scheduled')) DEFAULT 'queued',
	is_archived INTEGER NOT NULL DEFAULT 0,
	metadata TEXT NOT NULL DEFAULT '{}',
	submitted_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	CHECK ((status = 'queued') = (is_archived = 0))
);

CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, current_stage);
CREATE INDEX IF NOT EXISTS idx_submissions_journal ON submissions(journal_id);
CREATE INDEX IF NOT EXISTS idx_submissions_updated ON submissions(updated_at DESC, id);

CREATE TABLE IF NOT EXISTS review_forms (
	id TEXT PRIMARY KEY,
	journal_id TEXT,
	title TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS review_form_questions (
	id TEXT PRIMARY KEY,
	form_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	prompt TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('text', 'textarea', 'choice')) DEFAULT 'textarea',
	required INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (form_id) REFERENCES review_forms(id) ON DELETE CASCADE,
	UNIQUE(form_id, seq)
);

CREATE TABLE IF NOT EXISTS review_rounds (
	id TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	stage TEXT NOT NULL CHECK(stage IN ('submission', 'review', 'copyediting', 'production')),
	round INTEGER NOT NULL CHECK(round > 0),
	status TEXT NOT NULL CHECK(status IN ('active', 'closed')) DEFAULT 'active',
	notes TEXT,
	started_at TEXT NOT NULL,
	closed_at TEXT,
	review_form_id TEXT REFERENCES review_forms(id) ON DELETE SET NULL,
	FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE,
	UNIQUE(submission_id, stage, round)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_review_rounds_one_active ON review_rounds(submission_id, stage) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS review_assignments (
	id TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	review_round_id TEXT NOT NULL,
	reviewer_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'accepted', 'declined', 'completed')) DEFAULT 'pending',
	recommendation TEXT CHECK(recommendation IN ('accept', 'minor_revision', 'major_revision', 'reject')),
	review_method TEXT NOT NULL,
	assigned_at TEXT NOT NULL,
	due_date TEXT,
	response_due_date TEXT,
	submitted_at TEXT,
	metadata TEXT NOT NULL DEFAULT '{}',
	updated_at TEXT NOT NULL,
	FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE,
	FOREIGN KEY (review_round_id) REFERENCES review_rounds(id) ON DELETE CASCADE,
	CHECK ((status = 'completed') = (recommendation IS NOT NULL))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_review_assignments_open ON review_assignments(review_round_id, reviewer_id) WHERE status IN ('pending', 'accepted');
CREATE INDEX IF NOT EXISTS idx_review_assignments_reviewer ON review_assignments(reviewer_id, status);
CREATE INDEX IF NOT EXISTS idx_review_assignments_submission ON review_assignments(submission_id);

CREATE TABLE IF NOT EXISTS participants (
	id TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('manager', 'editor', 'section_editor', 'reviewer', 'author')),
	stage TEXT NOT NULL CHECK(stage IN ('submission', 'review', 'copyediting', 'production')),
	created_at TEXT NOT NULL,
	recommend_only INTEGER NOT NULL DEFAULT 0,
	can_change_metadata INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE,
	UNIQUE(submission_id, user_id, role, stage)
);

CREATE INDEX IF NOT EXISTS idx_participants_user ON participants(user_id);
CREATE INDEX IF NOT EXISTS idx_participants_role ON participants(role, submission_id);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	title TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('open', 'done')) DEFAULT 'open',
	assignee_id TEXT,
	due_date TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	closed_at TEXT,
	FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id, status);
CREATE INDEX IF NOT EXISTS idx_tasks_submission ON tasks(submission_id);

CREATE TABLE IF NOT EXISTS activity_logs (
	id TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	actor_id TEXT,
	category TEXT NOT NULL,
	message TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_logs_submission ON activity_logs(submission_id, created_at DESC);
`

// InitSchema brings a database up to date. A fresh database gets SchemaSQL
// directly and every migration is recorded as applied; an existing one runs
// its pending migrations.
func InitSchema(ctx context.Context, database *sql.DB) error {
	var tableCount int
	err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if tableCount > 0 {
		_, err := RunMigrations(ctx, database)
		return err
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	for _, m := range migrations {
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return tx.Commit()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
