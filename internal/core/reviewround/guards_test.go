package reviewround

import (
	"testing"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/stage"
)

func TestNextRoundNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{name: "no rounds", existing: nil, want: 1},
		{name: "one round", existing: []int{1}, want: 2},
		{name: "unordered", existing: []int{2, 1, 3}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextRoundNumber(tt.existing); got != tt.want {
				t.Errorf("NextRoundNumber(%v) = %d, want %d", tt.existing, got, tt.want)
			}
		})
	}
}

func TestCanCreateRound(t *testing.T) {
	base := CreateRoundContext{
		SubmissionID:     "S-1",
		SubmissionExists: true,
		SubmissionStatus: stage.StatusQueued,
		Stage:            stage.Review,
		Round:            1,
	}

	tests := []struct {
		name        string
		mutate      func(*CreateRoundContext)
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "first round",
			mutate:      func(c *CreateRoundContext) {},
			wantAllowed: true,
		},
		{
			name:        "missing submission",
			mutate:      func(c *CreateRoundContext) { c.SubmissionExists = false },
			wantAllowed: false,
			wantReason:  "submission S-1 not found",
		},
		{
			name:        "archived submission",
			mutate:      func(c *CreateRoundContext) { c.SubmissionStatus = stage.StatusDeclined },
			wantAllowed: false,
			wantReason:  "submission S-1 is declined; no new review rounds",
		},
		{
			name:        "wrong stage",
			mutate:      func(c *CreateRoundContext) { c.Stage = stage.Copyediting },
			wantAllowed: false,
			wantReason:  "stage copyediting does not hold review rounds",
		},
		{
			name:        "duplicate number",
			mutate:      func(c *CreateRoundContext) { c.ExistingRounds = []int{1} },
			wantAllowed: false,
			wantReason:  "round 1 already exists for submission S-1 at stage review",
		},
		{
			name:        "gap",
			mutate:      func(c *CreateRoundContext) { c.Round = 3; c.ExistingRounds = []int{1} },
			wantAllowed: false,
			wantReason:  "round 3 would leave a gap (next round is 2)",
		},
		{
			name: "active round with open assignments",
			mutate: func(c *CreateRoundContext) {
				c.Round = 2
				c.ExistingRounds = []int{1}
				c.ActiveRound = 1
				c.ActiveOpenAssignments = 2
			},
			wantAllowed: false,
			wantReason:  "round 1 still has 2 unresolved assignment(s)",
		},
		{
			name: "active round fully resolved can be superseded",
			mutate: func(c *CreateRoundContext) {
				c.Round = 2
				c.ExistingRounds = []int{1}
				c.ActiveRound = 1
			},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := base
			tt.mutate(&ctx)
			result := CanCreateRound(ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanCloseRound(t *testing.T) {
	tests := []struct {
		name        string
		ctx         CloseRoundContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "all assignments terminal",
			ctx:         CloseRoundContext{RoundID: "R-1", Status: StatusActive},
			wantAllowed: true,
		},
		{
			name:        "pending assignments block",
			ctx:         CloseRoundContext{RoundID: "R-1", Status: StatusActive, OpenAssignments: 1},
			wantAllowed: false,
			wantReason:  "round R-1 has 1 assignment(s) awaiting a response or recommendation",
		},
		{
			name:        "already closed",
			ctx:         CloseRoundContext{RoundID: "R-1", Status: StatusClosed},
			wantAllowed: false,
			wantReason:  "round R-1 is already closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCloseRound(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestGuardResultError(t *testing.T) {
	tests := []struct {
		name     string
		result   GuardResult
		wantKind error
	}{
		{"allowed", GuardResult{Allowed: true}, nil},
		{"denied", GuardResult{Reason: "round already exists"}, apperr.ErrValidation},
		{"open assignments", CanCloseRound(CloseRoundContext{RoundID: "R-1", Status: StatusActive, OpenAssignments: 2}), apperr.ErrPreconditionFailed},
		{"already closed", CanCloseRound(CloseRoundContext{RoundID: "R-1", Status: StatusClosed}), apperr.ErrPreconditionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Error()
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !apperr.Is(err, tt.wantKind) {
				t.Errorf("Error() = %v, want kind %v", err, tt.wantKind)
			}
			if apperr.Message(err) != tt.result.Reason {
				t.Errorf("message = %q, want %q", apperr.Message(err), tt.result.Reason)
			}
		})
	}
}
