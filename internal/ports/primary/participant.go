package primary

import "context"

// ParticipantService defines the primary port for the participant registry.
type ParticipantService interface {
	// AssignParticipant registers (submission, user, role, stage); an
	// existing tuple is a no-op.
	AssignParticipant(ctx context.Context, req ParticipantRequest) (*Participant, error)

	// RemoveParticipant revokes one participant row.
	RemoveParticipant(ctx context.Context, req ParticipantRequest) error

	// UpdateParticipantPermissions sets recommend-only and metadata flags.
	UpdateParticipantPermissions(ctx context.Context, req ParticipantPermissionsRequest) error

	// ListParticipants lists the participants of a submission.
	ListParticipants(ctx context.Context, submissionID string) ([]*Participant, error)

	// GetAssignedSubmissionIDs returns submissions where the user holds any role.
	GetAssignedSubmissionIDs(ctx context.Context, userID string) ([]string, error)

	// GetAssignedSubmissionIDsForRoles returns submissions where any
	// participant holds one of the roles.
	GetAssignedSubmissionIDsForRoles(ctx context.Context, roles []string) ([]string, error)

	HasAssignment(ctx context.Context, submissionID, userID, stage string) (bool, error)
	CanMakeDecision(ctx context.Context, submissionID, userID, stage string) (bool, error)
	CanChangeMetadata(ctx context.Context, submissionID, userID, stage string) (bool, error)
}

// ParticipantRequest identifies one participant row.
type ParticipantRequest struct {
	SubmissionID string
	UserID       string
	Role         string
	Stage        string
}

// ParticipantPermissionsRequest sets the flags of one participant row.
type ParticipantPermissionsRequest struct {
	ParticipantRequest
	RecommendOnly     bool
	CanChangeMetadata bool
}

// Participant represents a participant row at the port boundary.
type Participant struct {
	ID                string `json:"id"`
	SubmissionID      string `json:"submission_id"`
	UserID            string `json:"user_id"`
	Role              string `json:"role"`
	Stage             string `json:"stage"`
	RecommendOnly     bool   `json:"recommend_only"`
	CanChangeMetadata bool   `json:"can_change_metadata"`
	CreatedAt         string `json:"created_at"`
}
