package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/core/access"
)

func newFlagTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "editorial"}
	RegisterGlobalFlags(root)
	child := &cobra.Command{Use: "show", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
	root.AddCommand(child)
	return child
}

func TestPrincipalFromFlags(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		envGrants  string
		wantNil    bool
		wantErr    bool
		wantUser   string
		wantGrants []access.Grant
	}{
		{
			name:    "no --as means nobody is signed in",
			args:    nil,
			wantNil: true,
		},
		{
			name:     "site and journal grants",
			args:     []string{"--as", "ed-alice", "--grant", "editor:JNL-1", "--grant", "reviewer"},
			wantUser: "ed-alice",
			wantGrants: []access.Grant{
				{Role: access.Editor, JournalID: "JNL-1"},
				{Role: access.Reviewer},
			},
		},
		{
			name:      "grants fall back to EDITORIAL_GRANTS",
			args:      []string{"--as", "mg-omar"},
			envGrants: "manager,author:JNL-2",
			wantUser:  "mg-omar",
			wantGrants: []access.Grant{
				{Role: access.Manager},
				{Role: access.Author, JournalID: "JNL-2"},
			},
		},
		{
			name:    "unknown role is rejected",
			args:    []string{"--as", "ed-alice", "--grant", "overlord"},
			wantErr: true,
		},
		{
			name:    "blank user is nobody",
			args:    []string{"--as", "  "},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITORIAL_AS", "")
			t.Setenv("EDITORIAL_GRANTS", tt.envGrants)
			cmd := newFlagTestCommand(t)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags: %v", err)
			}

			p, err := principalFromFlags(cmd)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantNil {
				if p != nil {
					t.Fatalf("expected no principal, got %+v", p)
				}
				return
			}
			if p == nil {
				t.Fatal("expected a principal, got nil")
			}
			if p.UserID != tt.wantUser {
				t.Errorf("UserID = %q, want %q", p.UserID, tt.wantUser)
			}
			if len(p.Grants) != len(tt.wantGrants) {
				t.Fatalf("Grants = %+v, want %+v", p.Grants, tt.wantGrants)
			}
			for i, g := range tt.wantGrants {
				if p.Grants[i] != g {
					t.Errorf("Grants[%d] = %+v, want %+v", i, p.Grants[i], g)
				}
			}
		})
	}
}

func TestOptionalString(t *testing.T) {
	cmd := &cobra.Command{Use: "update"}
	cmd.Flags().String("due", "", "")
	cmd.Flags().String("message", "", "")
	if err := cmd.ParseFlags([]string{"--message", ""}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	if got := optionalString(cmd, "due"); got != nil {
		t.Errorf("expected nil for an unset flag, got %q", *got)
	}
	got := optionalString(cmd, "message")
	if got == nil || *got != "" {
		t.Errorf("expected pointer to empty string for a flag set to empty, got %v", got)
	}
}

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		raw        string
		required   bool
		wantKind   string
		wantPrompt string
	}{
		{"Summarise the contribution", true, "", "Summarise the contribution"},
		{"text:Data availability", false, "text", "Data availability"},
		{"choice:Is the method sound?", true, "choice", "Is the method sound?"},
		{"Scope: is it in scope?", false, "", "Scope: is it in scope?"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q := parseQuestion(tt.raw, tt.required)
			if q.Kind != tt.wantKind || q.Prompt != tt.wantPrompt || q.Required != tt.required {
				t.Errorf("parseQuestion(%q) = %+v, want kind %q prompt %q required %t",
					tt.raw, q, tt.wantKind, tt.wantPrompt, tt.required)
			}
		})
	}
}
