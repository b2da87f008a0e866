package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/core/reviewround"
	"github.com/example/editorial/internal/core/stage"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

// ReviewRoundServiceImpl implements the ReviewRoundService interface.
type ReviewRoundServiceImpl struct {
	env         Env
	submissions secondary.SubmissionRepository
	rounds      secondary.ReviewRoundRepository
	assignments secondary.ReviewAssignmentRepository
	forms       secondary.ReviewFormRepository
}

// NewReviewRoundService creates a new ReviewRoundService with injected dependencies.
func NewReviewRoundService(
	env Env,
	submissions secondary.SubmissionRepository,
	rounds secondary.ReviewRoundRepository,
	assignments secondary.ReviewAssignmentRepository,
	forms secondary.ReviewFormRepository,
) *ReviewRoundServiceImpl {
	return &ReviewRoundServiceImpl{
		env:         env.withDefaults(),
		submissions: submissions,
		rounds:      rounds,
		assignments: assignments,
		forms:       forms,
	}
}

func parseRoundStage(raw string) (stage.Stage, error) {
	if strings.TrimSpace(raw) == "" {
		return stage.Review, nil
	}
	return stage.ParseStage(raw)
}

func roundNumbers(rounds []*secondary.ReviewRoundRecord) []int {
	out := make([]int, len(rounds))
	for i, r := range rounds {
		out[i] = r.Round
	}
	return out
}

// NextRoundNumber returns the number the next round of (submission, stage)
// would get.
func (s *ReviewRoundServiceImpl) NextRoundNumber(ctx context.Context, submissionID, stageName string) (int, error) {
	const op = "next_round_number"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return 0, s.env.fail(ctx, op, err)
	}
	st, err := parseRoundStage(stageName)
	if err != nil {
		return 0, s.env.fail(ctx, op, err)
	}
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return 0, s.env.fail(ctx, op, err)
	}
	if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
		return 0, s.env.fail(ctx, op, err)
	}
	rounds, err := s.rounds.ListBySubmission(ctx, sub.ID, string(st))
	if err != nil {
		return 0, s.env.fail(ctx, op, err)
	}
	return reviewround.NextRoundNumber(roundNumbers(rounds)), nil
}

// CreateRound opens a round. The number is computed inside the same
// transaction as the insert; the unique (submission, stage, round) key turns
// a lost race into a conflict.
func (s *ReviewRoundServiceImpl) CreateRound(ctx context.Context, req primary.CreateRoundRequest) (*primary.CreateRoundResponse, error) {
	const op = "create_round"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	st, err := parseRoundStage(req.Stage)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if req.Round < 0 {
		return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrValidation, "round number must be positive (got %d)", req.Round))
	}

	var (
		batch   activityBatch
		created *secondary.ReviewRoundRecord
	)
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.GetByID(ctx, req.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}
		if req.ReviewFormID != "" {
			if _, err := s.forms.GetByID(ctx, req.ReviewFormID); err != nil {
				return err
			}
		}

		existing, err := s.rounds.ListBySubmission(ctx, sub.ID, string(st))
		if err != nil {
			return err
		}
		numbers := roundNumbers(existing)
		number := req.Round
		if number == 0 {
			number = reviewround.NextRoundNumber(numbers)
		}
		for _, n := range numbers {
			if n == number {
				return apperr.Newf(apperr.ErrConflict,
					"round %d already exists for submission %s at stage %s", number, sub.ID, st)
			}
		}

		active, err := s.rounds.GetActive(ctx, sub.ID, string(st))
		if err != nil {
			return err
		}
		check := reviewround.CreateRoundContext{
			SubmissionID:     sub.ID,
			SubmissionExists: true,
			SubmissionStatus: stage.Status(sub.Status),
			Stage:            st,
			Round:            number,
			ExistingRounds:   numbers,
		}
		if active != nil {
			open, err := s.assignments.CountOpen(ctx, active.ID)
			if err != nil {
				return err
			}
			check.ActiveRound = active.Round
			check.ActiveOpenAssignments = open
			if open > 0 {
				return apperr.Newf(apperr.ErrPreconditionFailed,
					"round %d still has %d unresolved assignment(s)", active.Round, open)
			}
		}
		if err := reviewround.CanCreateRound(check).Error(); err != nil {
			return err
		}

		now := s.env.nowString()
		if active != nil {
			if err := s.rounds.Close(ctx, active.ID, now); err != nil {
				return err
			}
			if err := s.env.record(ctx, &batch, sub.ID, CategoryReview, fmt.Sprintf("Review round %d closed", active.Round)); err != nil {
				return err
			}
		}

		created = &secondary.ReviewRoundRecord{
			ID:           s.env.NewID("RND"),
			SubmissionID: sub.ID,
			Stage:        string(st),
			Round:        number,
			Status:       string(reviewround.StatusActive),
			ReviewFormID: req.ReviewFormID,
			Notes:        strings.TrimSpace(req.Notes),
			StartedAt:    now,
		}
		if err := s.rounds.Create(ctx, created); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, sub.ID, CategoryReview, fmt.Sprintf("Review round %d opened", number))
	})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	s.env.publish(ctx, batch)
	s.env.Metrics.RoundCreated(created.Stage)
	s.env.info(ctx, "review round created",
		logging.FieldSubmissionID, created.SubmissionID,
		logging.FieldRoundID, created.ID,
		"round", created.Round)

	return &primary.CreateRoundResponse{RoundID: created.ID, Round: recordToRound(created)}, nil
}

// CloseRound closes a round whose assignments have all been resolved.
func (s *ReviewRoundServiceImpl) CloseRound(ctx context.Context, roundID string) error {
	const op = "close_round"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var (
		batch activityBatch
		round *secondary.ReviewRoundRecord
	)
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		round, err = s.rounds.GetByID(ctx, roundID)
		if err != nil {
			return err
		}
		sub, err := s.submissions.GetByID(ctx, round.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}

		if reviewround.Status(round.Status) != reviewround.StatusActive {
			return apperr.Newf(apperr.ErrConflict, "review round %s is already %s", round.ID, round.Status)
		}
		open, err := s.assignments.CountOpen(ctx, round.ID)
		if err != nil {
			return err
		}
		result := reviewround.CanCloseRound(reviewround.CloseRoundContext{
			RoundID:         round.ID,
			Status:          reviewround.Status(round.Status),
			OpenAssignments: open,
		})
		if err := result.Error(); err != nil {
			return err
		}

		if err := s.rounds.Close(ctx, round.ID, s.env.nowString()); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, sub.ID, CategoryReview, fmt.Sprintf("Review round %d closed", round.Round))
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	s.env.publish(ctx, batch)
	s.env.info(ctx, "review round closed",
		logging.FieldSubmissionID, round.SubmissionID,
		logging.FieldRoundID, round.ID)
	return nil
}

// ListRounds lists the rounds of a submission, optionally for one stage.
func (s *ReviewRoundServiceImpl) ListRounds(ctx context.Context, submissionID, stageName string) ([]*primary.ReviewRound, error) {
	const op = "list_rounds"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if stageName != "" {
		st, err := stage.ParseStage(stageName)
		if err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
		stageName = string(st)
	}
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	records, err := s.rounds.ListBySubmission(ctx, sub.ID, stageName)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	rounds := make([]*primary.ReviewRound, len(records))
	for i, r := range records {
		rounds[i] = recordToRound(r)
	}
	return rounds, nil
}

// Ensure ReviewRoundServiceImpl implements the interface.
var _ primary.ReviewRoundService = (*ReviewRoundServiceImpl)(nil)
