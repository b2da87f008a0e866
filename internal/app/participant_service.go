package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/core/participant"
	"github.com/example/editorial/internal/core/stage"
	"github.com/example/editorial/internal/logging"
	"github.com/example/editorial/internal/ports/primary"
	"github.com/example/editorial/internal/ports/secondary"
)

// ParticipantServiceImpl implements the ParticipantService interface.
type ParticipantServiceImpl struct {
	env          Env
	submissions  secondary.SubmissionRepository
	participants secondary.ParticipantRepository
}

// NewParticipantService creates a new ParticipantService with injected dependencies.
func NewParticipantService(env Env, submissions secondary.SubmissionRepository, participants secondary.ParticipantRepository) *ParticipantServiceImpl {
	return &ParticipantServiceImpl{
		env:          env.withDefaults(),
		submissions:  submissions,
		participants: participants,
	}
}

func parseParticipantKey(req primary.ParticipantRequest) (participant.Key, error) {
	role, err := access.ParseRole(req.Role)
	if err != nil {
		return participant.Key{}, err
	}
	st, err := stage.ParseStage(req.Stage)
	if err != nil {
		return participant.Key{}, err
	}
	return participant.Key{
		SubmissionID: req.SubmissionID,
		UserID:       strings.TrimSpace(req.UserID),
		Role:         role,
		Stage:        st,
	}, nil
}

func toRecordKey(k participant.Key) secondary.ParticipantKey {
	return secondary.ParticipantKey{
		SubmissionID: k.SubmissionID,
		UserID:       k.UserID,
		Role:         string(k.Role),
		Stage:        string(k.Stage),
	}
}

// hasAnyEditorialGrant reports whether p holds editor access somewhere.
func hasAnyEditorialGrant(p *access.Principal) bool {
	if p.Has(access.CapEditorAccess, "") {
		return true
	}
	for _, g := range p.Grants {
		if !g.Site() && p.Has(access.CapEditorAccess, g.JournalID) {
			return true
		}
	}
	return false
}

// AssignParticipant registers a participant. Registering an existing tuple
// succeeds without writing.
func (s *ParticipantServiceImpl) AssignParticipant(ctx context.Context, req primary.ParticipantRequest) (*primary.Participant, error) {
	const op = "assign_participant"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	key, err := parseParticipantKey(req)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}

	var (
		batch  activityBatch
		result *secondary.ParticipantRecord
	)
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.GetByID(ctx, key.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}
		check := participant.CanAssign(participant.AssignContext{Key: key, SubmissionExists: true})
		if err := check.Error(); err != nil {
			return err
		}

		record := &secondary.ParticipantRecord{
			ID:           s.env.NewID("PRT"),
			SubmissionID: key.SubmissionID,
			UserID:       key.UserID,
			Role:         string(key.Role),
			Stage:        string(key.Stage),
			CreatedAt:    s.env.nowString(),
		}
		created, err := s.participants.Insert(ctx, record)
		if err != nil {
			return err
		}
		if !created {
			existing, err := s.participants.List(ctx, secondary.ParticipantFilters{
				SubmissionID: key.SubmissionID,
				UserID:       key.UserID,
				Stage:        string(key.Stage),
			})
			if err != nil {
				return err
			}
			for _, e := range existing {
				if e.Role == string(key.Role) {
					result = e
				}
			}
			return nil
		}
		result = record
		return s.env.record(ctx, &batch, sub.ID, CategoryParticipant,
			fmt.Sprintf("%s assigned as %s at stage %s", key.UserID, key.Role, key.Stage))
	})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	if len(batch) > 0 {
		s.env.info(ctx, "participant assigned",
			logging.FieldSubmissionID, key.SubmissionID,
			"user_id", key.UserID,
			"role", string(key.Role),
			"stage", string(key.Stage))
	}
	if result == nil {
		return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrInfrastructure, "participant %s vanished after insert", key.UserID))
	}
	return recordToParticipant(result), nil
}

// RemoveParticipant revokes one participant row.
func (s *ParticipantServiceImpl) RemoveParticipant(ctx context.Context, req primary.ParticipantRequest) error {
	const op = "remove_participant"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	key, err := parseParticipantKey(req)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var batch activityBatch
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.GetByID(ctx, key.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}
		if err := s.participants.Delete(ctx, toRecordKey(key)); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, sub.ID, CategoryParticipant,
			fmt.Sprintf("%s removed as %s at stage %s", key.UserID, key.Role, key.Stage))
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	return nil
}

// UpdateParticipantPermissions sets the flags of one participant row.
func (s *ParticipantServiceImpl) UpdateParticipantPermissions(ctx context.Context, req primary.ParticipantPermissionsRequest) error {
	const op = "update_participant_permissions"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	key, err := parseParticipantKey(req.ParticipantRequest)
	if err != nil {
		return s.env.fail(ctx, op, err)
	}

	var batch activityBatch
	err = s.env.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.GetByID(ctx, key.SubmissionID)
		if err != nil {
			return err
		}
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return err
		}
		if err := s.participants.UpdateFlags(ctx, toRecordKey(key), req.RecommendOnly, req.CanChangeMetadata); err != nil {
			return err
		}
		return s.env.record(ctx, &batch, sub.ID, CategoryParticipant,
			fmt.Sprintf("Permissions of %s (%s, %s) set: recommend only %t, metadata %t",
				key.UserID, key.Role, key.Stage, req.RecommendOnly, req.CanChangeMetadata))
	})
	if err != nil {
		return s.env.fail(ctx, op, err)
	}
	s.env.publish(ctx, batch)
	return nil
}

// ListParticipants lists the participants of a submission.
func (s *ParticipantServiceImpl) ListParticipants(ctx context.Context, submissionID string) ([]*primary.Participant, error) {
	const op = "list_participants"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	records, err := s.participants.List(ctx, secondary.ParticipantFilters{SubmissionID: sub.ID})
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	out := make([]*primary.Participant, len(records))
	for i, r := range records {
		out[i] = recordToParticipant(r)
	}
	return out, nil
}

// GetAssignedSubmissionIDs returns every submission where userID holds a
// role. Users may ask about themselves; editors about anyone.
func (s *ParticipantServiceImpl) GetAssignedSubmissionIDs(ctx context.Context, userID string) ([]string, error) {
	const op = "assigned_submission_ids"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if userID == "" {
		userID = p.UserID
	}
	if userID != p.UserID && !hasAnyEditorialGrant(p) {
		return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrForbidden, "user %s may not inspect assignments of %s", p.UserID, userID))
	}
	ids, err := s.participants.SubmissionIDsForUser(ctx, userID)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	return ids, nil
}

// GetAssignedSubmissionIDsForRoles returns every submission where any
// participant holds one of roles.
func (s *ParticipantServiceImpl) GetAssignedSubmissionIDsForRoles(ctx context.Context, roles []string) ([]string, error) {
	const op = "assigned_submission_ids_for_roles"
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	if !hasAnyEditorialGrant(p) {
		return nil, s.env.fail(ctx, op, apperr.Newf(apperr.ErrForbidden, "user %s lacks %s", p.UserID, access.CapEditorAccess))
	}
	parsed := make([]string, 0, len(roles))
	for _, raw := range roles {
		role, err := access.ParseRole(raw)
		if err != nil {
			return nil, s.env.fail(ctx, op, err)
		}
		parsed = append(parsed, string(role))
	}
	ids, err := s.participants.SubmissionIDsWithRoles(ctx, parsed)
	if err != nil {
		return nil, s.env.fail(ctx, op, err)
	}
	return ids, nil
}

// holdings loads the rows a user holds on a submission, after checking the
// caller may look.
func (s *ParticipantServiceImpl) holdings(ctx context.Context, submissionID, userID, stageName string) (context.Context, []participant.Holding, stage.Stage, error) {
	ctx, p, err := s.env.authenticate(ctx)
	if err != nil {
		return ctx, nil, "", err
	}
	st, err := stage.ParseStage(stageName)
	if err != nil {
		return ctx, nil, "", err
	}
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return ctx, nil, "", err
	}
	if userID != p.UserID {
		if _, err := access.AssertEditorAccess(p, sub.JournalID); err != nil {
			return ctx, nil, "", err
		}
	}
	records, err := s.participants.List(ctx, secondary.ParticipantFilters{SubmissionID: sub.ID, UserID: userID})
	if err != nil {
		return ctx, nil, "", err
	}
	out := make([]participant.Holding, len(records))
	for i, r := range records {
		out[i] = participant.Holding{
			Role:  access.Role(r.Role),
			Stage: stage.Stage(r.Stage),
			Flags: participant.Flags{RecommendOnly: r.RecommendOnly, CanChangeMetadata: r.CanChangeMetadata},
		}
	}
	return ctx, out, st, nil
}

// HasAssignment reports whether the user holds any role at the stage.
func (s *ParticipantServiceImpl) HasAssignment(ctx context.Context, submissionID, userID, stageName string) (bool, error) {
	const op = "has_assignment"
	ctx, held, st, err := s.holdings(ctx, submissionID, userID, stageName)
	if err != nil {
		return false, s.env.fail(ctx, op, err)
	}
	return participant.HasAssignment(held, st), nil
}

// CanMakeDecision reports whether the user may record editorial decisions
// at the stage.
func (s *ParticipantServiceImpl) CanMakeDecision(ctx context.Context, submissionID, userID, stageName string) (bool, error) {
	const op = "can_make_decision"
	ctx, held, st, err := s.holdings(ctx, submissionID, userID, stageName)
	if err != nil {
		return false, s.env.fail(ctx, op, err)
	}
	return participant.CanMakeDecision(held, st), nil
}

// CanChangeMetadata reports whether the user may edit submission metadata
// at the stage.
func (s *ParticipantServiceImpl) CanChangeMetadata(ctx context.Context, submissionID, userID, stageName string) (bool, error) {
	const op = "can_change_metadata"
	ctx, held, st, err := s.holdings(ctx, submissionID, userID, stageName)
	if err != nil {
		return false, s.env.fail(ctx, op, err)
	}
	return participant.CanChangeMetadata(held, st), nil
}

// Ensure ParticipantServiceImpl implements the interface.
var _ primary.ParticipantService = (*ParticipantServiceImpl)(nil)
