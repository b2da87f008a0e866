package sqlite_test

import (
	"context"
	"sync"
	"testing"

	"github.com/example/editorial/internal/adapters/sqlite"
	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/secondary"
)

func setupAssignmentTestDB(t *testing.T) (*sqlite.ReviewAssignmentRepository, context.Context) {
	t.Helper()
	db := setupTestDB(t)
	seedSubmission(t, db, "SUB-001", "", "Title", "review")
	seedRound(t, db, "RND-001", "SUB-001", 1)
	seedAssignment(t, db, "ASG-001", "SUB-001", "RND-001", "rev-carol")
	return sqlite.NewReviewAssignmentRepository(db), context.Background()
}

func TestReviewAssignmentRepository_CreateDuplicateOpenConflicts(t *testing.T) {
	repo, ctx := setupAssignmentTestDB(t)

	err := repo.Create(ctx, &secondary.ReviewAssignmentRecord{
		ID: "ASG-002", SubmissionID: "SUB-001", ReviewRoundID: "RND-001", ReviewerID: "rev-carol",
		Stage: "review", Status: "pending", ReviewMethod: "open", AssignedAt: seedTime, UpdatedAt: seedTime,
	})
	if !apperr.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReviewAssignmentRepository_ReassignAfterDecline(t *testing.T) {
	repo, ctx := setupAssignmentTestDB(t)

	err := repo.Transition(ctx, "ASG-001", secondary.AssignmentTransition{
		From: "pending", To: "declined", Metadata: map[string]any{"decline_reason": "busy"}, UpdatedAt: seedTime,
	})
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	err = repo.Create(ctx, &secondary.ReviewAssignmentRecord{
		ID: "ASG-002", SubmissionID: "SUB-001", ReviewRoundID: "RND-001", ReviewerID: "rev-carol",
		Stage: "review", Status: "pending", ReviewMethod: "open", AssignedAt: seedTime, UpdatedAt: seedTime,
	})
	if err != nil {
		t.Fatalf("re-invite after decline should succeed: %v", err)
	}
	open, _ := repo.CountOpen(ctx, "RND-001")
	if open != 1 {
		t.Errorf("CountOpen = %d, want 1", open)
	}
}

func TestReviewAssignmentRepository_TransitionRequiresExpectedStatus(t *testing.T) {
	repo, ctx := setupAssignmentTestDB(t)

	accept := secondary.AssignmentTransition{From: "pending", To: "accepted", UpdatedAt: seedTime}
	if err := repo.Transition(ctx, "ASG-001", accept); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if err := repo.Transition(ctx, "ASG-001", accept); !apperr.Is(err, apperr.ErrConflict) {
		t.Errorf("second accept: expected conflict, got %v", err)
	}
	if err := repo.Transition(ctx, "ASG-404", accept); !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing assignment: expected not found, got %v", err)
	}

	err := repo.Transition(ctx, "ASG-001", secondary.AssignmentTransition{
		From: "accepted", To: "completed", Recommendation: "accept", SubmittedAt: seedTime,
		Metadata: map[string]any{"comments_to_editor": "fine"}, UpdatedAt: seedTime,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, "ASG-001")
	if got.Status != "completed" || got.Recommendation != "accept" || got.Metadata["comments_to_editor"] != "fine" {
		t.Errorf("unexpected completed assignment: %+v", got)
	}
}

func TestReviewAssignmentRepository_CompletedNeedsRecommendation(t *testing.T) {
	repo, ctx := setupAssignmentTestDB(t)

	_ = repo.Transition(ctx, "ASG-001", secondary.AssignmentTransition{From: "pending", To: "accepted", UpdatedAt: seedTime})
	err := repo.Transition(ctx, "ASG-001", secondary.AssignmentTransition{From: "accepted", To: "completed", UpdatedAt: seedTime})
	if !apperr.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReviewAssignmentRepository_UpdateOpen(t *testing.T) {
	repo, ctx := setupAssignmentTestDB(t)

	err := repo.UpdateOpen(ctx, "ASG-001", secondary.AssignmentUpdate{
		DueDate: "2026-03-01T00:00:00.000000Z", ResponseDueDate: "2026-02-01T00:00:00.000000Z", UpdatedAt: seedTime,
	})
	if err != nil {
		t.Fatalf("UpdateOpen failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, "ASG-001")
	if got.DueDate != "2026-03-01T00:00:00.000000Z" {
		t.Errorf("DueDate = %q", got.DueDate)
	}

	_ = repo.Transition(ctx, "ASG-001", secondary.AssignmentTransition{From: "pending", To: "declined", UpdatedAt: seedTime})
	err = repo.UpdateOpen(ctx, "ASG-001", secondary.AssignmentUpdate{UpdatedAt: seedTime})
	if !apperr.Is(err, apperr.ErrConflict) {
		t.Errorf("editing a declined assignment: expected conflict, got %v", err)
	}
}

func TestReviewAssignmentRepository_ListFilters(t *testing.T) {
	repo, ctx := setupAssignmentTestDB(t)

	list, err := repo.List(ctx, secondary.ReviewAssignmentFilters{ReviewerID: "rev-carol", Status: "pending"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "ASG-001" {
		t.Errorf("unexpected list: %+v", list)
	}
	list, _ = repo.List(ctx, secondary.ReviewAssignmentFilters{ReviewerID: "rev-dan"})
	if len(list) != 0 {
		t.Errorf("expected no assignments for rev-dan, got %d", len(list))
	}
}

func TestReviewAssignmentRepository_ConcurrentAcceptOneWins(t *testing.T) {
	db := setupFileDB(t)
	seedSubmission(t, db, "SUB-001", "", "Title", "review")
	seedRound(t, db, "RND-001", "SUB-001", 1)
	seedAssignment(t, db, "ASG-001", "SUB-001", "RND-001", "rev-carol")
	repo := sqlite.NewReviewAssignmentRepository(db)
	ctx := context.Background()

	const callers = 4
	var (
		wg   sync.WaitGroup
		errs = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Transition(ctx, "ASG-001", secondary.AssignmentTransition{
				From: "pending", To: "accepted", UpdatedAt: seedTime,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !apperr.Is(err, apperr.ErrConflict):
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d accepts succeeded, want exactly 1", succeeded)
	}
}
