package task

import (
	"testing"

	"github.com/example/editorial/internal/apperr"
	"github.com/example/editorial/internal/core/stage"
)

func TestCanCreateTask(t *testing.T) {
	tests := []struct {
		name        string
		ctx         CreateTaskContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "valid task",
			ctx:         CreateTaskContext{SubmissionID: "S-1", SubmissionExists: true, Stage: stage.Review, Title: "Find reviewers"},
			wantAllowed: true,
		},
		{
			name:       "missing submission",
			ctx:        CreateTaskContext{SubmissionID: "S-9", Stage: stage.Review, Title: "x"},
			wantReason: "submission S-9 not found",
		},
		{
			name:       "bad stage",
			ctx:        CreateTaskContext{SubmissionID: "S-1", SubmissionExists: true, Stage: "typesetting", Title: "x"},
			wantReason: `unrecognized stage "typesetting"`,
		},
		{
			name:       "blank title",
			ctx:        CreateTaskContext{SubmissionID: "S-1", SubmissionExists: true, Stage: stage.Review, Title: "  "},
			wantReason: "task title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCreateTask(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanClaimTask(t *testing.T) {
	tests := []struct {
		name         string
		ctx          ClaimTaskContext
		wantAllowed  bool
		wantConflict bool
	}{
		{name: "unassigned open task", ctx: ClaimTaskContext{TaskID: "T-1", Status: StatusOpen, UserID: "u1"}, wantAllowed: true},
		{name: "already claimed", ctx: ClaimTaskContext{TaskID: "T-1", Status: StatusOpen, AssigneeID: "u2", UserID: "u1"}, wantConflict: true},
		{name: "done task", ctx: ClaimTaskContext{TaskID: "T-1", Status: StatusDone, UserID: "u1"}},
		{name: "no claimant", ctx: ClaimTaskContext{TaskID: "T-1", Status: StatusOpen}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanClaimTask(tt.ctx)
			if result.Allowed != tt.wantAllowed || result.Conflict != tt.wantConflict {
				t.Errorf("CanClaimTask() = %+v, want allowed=%v conflict=%v", result, tt.wantAllowed, tt.wantConflict)
			}
		})
	}
}

func TestCanCloseTask(t *testing.T) {
	if r := CanCloseTask(CloseTaskContext{TaskID: "T-1", Status: StatusOpen}); !r.Allowed {
		t.Errorf("closing open task: %s", r.Reason)
	}
	if r := CanCloseTask(CloseTaskContext{TaskID: "T-1", Status: StatusDone}); !r.Allowed {
		t.Errorf("closing done task should be a no-op: %s", r.Reason)
	}
	if r := CanCloseTask(CloseTaskContext{TaskID: "T-1", Status: "blocked"}); r.Allowed {
		t.Error("unknown status should be rejected")
	}
}

func TestGuardResultError(t *testing.T) {
	tests := []struct {
		name     string
		result   GuardResult
		wantKind error
	}{
		{"allowed", GuardResult{Allowed: true}, nil},
		{"denied", GuardResult{Reason: "title is required"}, apperr.ErrValidation},
		{"conflict", GuardResult{Reason: "claimed by someone else", Conflict: true}, apperr.ErrConflict},
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
