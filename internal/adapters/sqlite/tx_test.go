package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/editorial/internal/adapters/sqlite"
	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/ports/secondary"
)

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	tx := sqlite.NewTransactor(db)
	subs := sqlite.NewSubmissionRepository(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := subs.Create(ctx, &secondary.SubmissionRecord{
			ID: "SUB-001", JournalID: "J1", Title: "T", Stage: "submission", Status: "queued",
			SubmittedAt: seedTime, UpdatedAt: seedTime,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := subs.GetByID(ctx, "SUB-001"); !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("write survived rollback: %v", err)
	}
}

func TestTransactor_NestedCallsJoin(t *testing.T) {
	db := setupTestDB(t)
	tx := sqlite.NewTransactor(db)
	subs := sqlite.NewSubmissionRepository(db)
	ctx := context.Background()

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		inner := tx.WithinTx(ctx, func(ctx context.Context) error {
			return subs.Create(ctx, &secondary.SubmissionRecord{
				ID: "SUB-001", JournalID: "J1", Title: "T", Stage: "submission", Status: "queued",
				SubmittedAt: seedTime, UpdatedAt: seedTime,
			})
		})
		if inner != nil {
			return inner
		}
		return apperr.New(apperr.ErrConflict, "outer failure")
	})
	if !apperr.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected outer error, got %v", err)
	}
	if _, err := subs.GetByID(ctx, "SUB-001"); !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("inner write should roll back with the outer transaction: %v", err)
	}
}
