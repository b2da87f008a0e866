package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML document accepted by the seed step.
type Fixtures struct {
	Forms       []FormFixture       `yaml:"forms"`
	Submissions []SubmissionFixture `yaml:"submissions"`
}

// FormFixture seeds one review form.
type FormFixture struct {
	ID        string            `yaml:"id"`
	JournalID string            `yaml:"journal_id"`
	Title     string            `yaml:"title"`
	Questions []QuestionFixture `yaml:"questions"`
}

// QuestionFixture seeds one review form question.
type QuestionFixture struct {
	ID       string `yaml:"id"`
	Prompt   string `yaml:"prompt"`
	Kind     string `yaml:"kind"`
	Required bool   `yaml:"required"`
}

// SubmissionFixture seeds one submission and everything it owns.
type SubmissionFixture struct {
	ID           string               `yaml:"id"`
	JournalID    string               `yaml:"journal_id"`
	Title        string               `yaml:"title"`
	Stage        string               `yaml:"stage"`
	Status       string               `yaml:"status"`
	SubmittedAt  string               `yaml:"submitted_at"`
	Metadata     map[string]any       `yaml:"metadata"`
	Participants []ParticipantFixture `yaml:"participants"`
	Rounds       []RoundFixture       `yaml:"rounds"`
	Assignments  []AssignmentFixture  `yaml:"assignments"`
	Tasks        []TaskFixture        `yaml:"tasks"`
}

// ParticipantFixture seeds one participant row.
type ParticipantFixture struct {
	UserID            string `yaml:"user_id"`
	Role              string `yaml:"role"`
	Stage             string `yaml:"stage"`
	RecommendOnly     bool   `yaml:"recommend_only"`
	CanChangeMetadata bool   `yaml:"can_change_metadata"`
}

// RoundFixture seeds one review round.
type RoundFixture struct {
	ID           string `yaml:"id"`
	Stage        string `yaml:"stage"`
	Round        int    `yaml:"round"`
	Status       string `yaml:"status"`
	ReviewFormID string `yaml:"review_form_id"`
}

// AssignmentFixture seeds one reviewer assignment.
type AssignmentFixture struct {
	ID             string `yaml:"id"`
	RoundID        string `yaml:"round_id"`
	ReviewerID     string `yaml:"reviewer_id"`
	Status         string `yaml:"status"`
	Recommendation string `yaml:"recommendation"`
	ReviewMethod   string `yaml:"review_method"`
	DueDate        string `yaml:"due_date"`
}

// TaskFixture seeds one editorial task.
type TaskFixture struct {
	ID         string `yaml:"id"`
	Stage      string `yaml:"stage"`
	Title      string `yaml:"title"`
	Status     string `yaml:"status"`
	AssigneeID string `yaml:"assignee_id"`
	DueDate    string `yaml:"due_date"`
}

// SeedReport counts the rows a seed run inserted. Rows that already exist,
// or that violate a table constraint, are skipped and not counted.
type SeedReport struct {
	Forms        int
	Submissions  int
	Participants int
	Rounds       int
	Assignments  int
	Tasks        int
}

// LoadFixtures reads and decodes a fixtures file. Unknown keys are errors.
func LoadFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return DecodeFixtures(f)
}

// DecodeFixtures decodes a fixtures document. Unknown keys are errors.
func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// SeedFixtures inserts fixtures in one transaction. It is idempotent: rows
// whose key already exists are left untouched, so the step can be re-run at
// every start.
func SeedFixtures(ctx context.Context, database *sql.DB, fx *Fixtures) (SeedReport, error) {
	var report SeedReport
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	insert := func(counter *int, what, query string, args ...any) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			*counter += int(n)
		}
		return nil
	}

	for _, form := range fx.Forms {
		if err := insert(&report.Forms, "form "+form.ID,
			"INSERT OR IGNORE INTO review_forms (id, journal_id, title, created_at) VALUES (?, ?, ?, ?)",
			form.ID, nullable(form.JournalID), form.Title, now,
		); err != nil {
			return report, err
		}
		for i, q := range form.Questions {
			kind := q.Kind
			if kind == "" {
				kind = "textarea"
			}
			var ignored int
			if err := insert(&ignored, "question "+q.ID,
				"INSERT OR IGNORE INTO review_form_questions (id, form_id, seq, prompt, kind, required) VALUES (?, ?, ?, ?, ?, ?)",
				q.ID, form.ID, i+1, q.Prompt, kind, q.Required,
			); err != nil {
				return report, err
			}
		}
	}

	for _, s := range fx.Submissions {
		stage := defaultString(s.Stage, "submission")
		status := defaultString(s.Status, "queued")
		submitted := defaultString(s.SubmittedAt, now)
		metadata, err := json.Marshal(nonNilMap(s.Metadata))
		if err != nil {
			return report, fmt.Errorf("seed submission %s metadata: %w", s.ID, err)
		}

		if err := insert(&report.Submissions, "submission "+s.ID,
			`INSERT OR IGNORE INTO submissions (id, journal_id, title, current_stage, status, is_archived, metadata, submitted_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.JournalID, s.Title, stage, status, status != "queued", string(metadata), submitted, submitted,
		); err != nil {
			return report, err
		}

		for _, p := range s.Participants {
			if err := insert(&report.Participants, "participant "+p.UserID,
				`INSERT OR IGNORE INTO participants (id, submission_id, user_id, role, stage, recommend_only, can_change_metadata, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				s.ID+":"+p.UserID+":"+p.Role+":"+p.Stage, s.ID, p.UserID, p.Role, p.Stage, p.RecommendOnly, p.CanChangeMetadata, now,
			); err != nil {
				return report, err
			}
		}

		for _, r := range s.Rounds {
			var closedAt any
			roundStatus := defaultString(r.Status, "active")
			if roundStatus == "closed" {
				closedAt = now
			}
			if err := insert(&report.Rounds, "round "+r.ID,
				`INSERT OR IGNORE INTO review_rounds (id, submission_id, stage, round, status, started_at, closed_at, review_form_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, s.ID, defaultString(r.Stage, "review"), r.Round, roundStatus, now, closedAt, nullable(r.ReviewFormID),
			); err != nil {
				return report, err
			}
		}

		for _, a := range s.Assignments {
			var submittedAt any
			status := defaultString(a.Status, "pending")
			if status == "completed" {
				submittedAt = now
			}
			if err := insert(&report.Assignments, "assignment "+a.ID,
				`INSERT OR IGNORE INTO review_assignments
				 (id, submission_id, review_round_id, reviewer_id, stage, status, recommendation, review_method, assigned_at, due_date, submitted_at, metadata, updated_at)
				 SELECT ?, ?, r.id, ?, r.stage, ?, ?, ?, ?, ?, ?, '{}', ? FROM review_rounds r WHERE r.id = ?`,
				a.ID, s.ID, a.ReviewerID, status, nullable(a.Recommendation), defaultString(a.ReviewMethod, "doubleAnonymous"),
				now, nullable(a.DueDate), submittedAt, now, a.RoundID,
			); err != nil {
				return report, err
			}
		}

		for _, t := range s.Tasks {
			if err := insert(&report.Tasks, "task "+t.ID,
				`INSERT OR IGNORE INTO tasks (id, submission_id, stage, title, status, assignee_id, due_date, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, s.ID, defaultString(t.Stage, stage), t.Title, defaultString(t.Status, "open"), nullable(t.AssigneeID), nullable(t.DueDate), now, now,
			); err != nil {
				return report, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("seed: commit: %w", err)
	}
	return report, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
