package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_workflow_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_review_forms",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_participant_permission_flags",
		Up:      migrationV3,
	},
}

const schemaVersionSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// LatestVersion is the version a fully migrated database reports.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// RunMigrations executes all pending migrations, each in its own
// transaction, and returns the versions it applied.
func RunMigrations(ctx context.Context, database *sql.DB) ([]int, error) {
	if _, err := database.ExecContext(ctx, schemaVersionSQL); err != nil {
		return nil, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := database.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to get current schema version: %w", err)
	}

	var applied []int
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := database.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(ctx, tx); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
		applied = append(applied, migration.Version)
	}

	return applied, nil
}

// CurrentVersion returns the highest applied migration, 0 for an
// unmigrated database.
func CurrentVersion(ctx context.Context, database *sql.DB) (int, error) {
	var tableCount int
	err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil || tableCount == 0 {
		return 0, err
	}
	var v int
	err = database.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v)
	return v, err
}

func execAll(ctx context.Context, tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV1 creates the workflow tables as first released: submissions,
// rounds, assignments, participants, tasks and the activity log.
func migrationV1(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`CREATE TABLE IF NOT EXISTS submissions (
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
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, current_stage)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_journal ON submissions(journal_id)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_updated ON submissions(updated_at DESC, id)`,
		`CREATE TABLE IF NOT EXISTS review_rounds (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL,
			stage TEXT NOT NULL CHECK(stage IN ('submission', 'review', 'copyediting', 'production')),
			round INTEGER NOT NULL CHECK(round > 0),
			status TEXT NOT NULL CHECK(status IN ('active', 'closed')) DEFAULT 'active',
			notes TEXT,
			started_at TEXT NOT NULL,
			closed_at TEXT,
			FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE,
			UNIQUE(submission_id, stage, round)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_review_rounds_one_active ON review_rounds(submission_id, stage) WHERE status = 'active'`,
		`CREATE TABLE IF NOT EXISTS review_assignments (
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
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_review_assignments_open ON review_assignments(review_round_id, reviewer_id) WHERE status IN ('pending', 'accepted')`,
		`CREATE INDEX IF NOT EXISTS idx_review_assignments_reviewer ON review_assignments(reviewer_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_review_assignments_submission ON review_assignments(submission_id)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('manager', 'editor', 'section_editor', 'reviewer', 'author')),
			stage TEXT NOT NULL CHECK(stage IN ('submission', 'review', 'copyediting', 'production')),
			created_at TEXT NOT NULL,
			FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE,
			UNIQUE(submission_id, user_id, role, stage)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_user ON participants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_role ON participants(role, submission_id)`,
		`CREATE TABLE IF NOT EXISTS tasks (
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
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_submission ON tasks(submission_id)`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL,
			actor_id TEXT,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_submission ON activity_logs(submission_id, created_at DESC)`,
	)
}

// migrationV2 adds structured review forms and lets a round reference one.
func migrationV2(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`CREATE TABLE IF NOT EXISTS review_forms (
			id TEXT PRIMARY KEY,
			journal_id TEXT,
			title TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS review_form_questions (
			id TEXT PRIMARY KEY,
			form_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('text', 'textarea', 'choice')) DEFAULT 'textarea',
			required INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (form_id) REFERENCES review_forms(id) ON DELETE CASCADE,
			UNIQUE(form_id, seq)
		)`,
		`ALTER TABLE review_rounds ADD COLUMN review_form_id TEXT REFERENCES review_forms(id) ON DELETE SET NULL`,
	)
}

// migrationV3 adds the recommend-only and metadata permission flags to
// participant rows.
func migrationV3(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx,
		`ALTER TABLE participants ADD COLUMN recommend_only INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE participants ADD COLUMN can_change_metadata INTEGER NOT NULL DEFAULT 0`,
	)
}
