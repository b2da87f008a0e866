// Package cli holds the cobra commands of the editorial binary. Commands
// parse flags, sign the caller in from --as/--grant and delegate to the
// services assembled by wire.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/adapters/auth"
	"github.com/example/editorial/internal/core/access"
	"github.com/example/editorial/internal/wire"
)

// RegisterGlobalFlags adds the config and identity flags to root and wires
// configuration loading and shutdown around every command.
func RegisterGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("config", "", "Path to editorial.toml (default ./editorial.toml)")
	flags.String("env-file", ".env", "Dotenv file with EDITORIAL_* overrides")
	flags.String("as", os.Getenv("EDITORIAL_AS"), "Act as this user ID")
	flags.StringSlice("grant", nil, "Role grant for --as: role or role:journal (repeatable)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		envFile, _ := cmd.Flags().GetString("env-file")
		wire.Configure(path, envFile)
		return nil
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return wire.Shutdown()
	}
}

// principalFromFlags builds the acting principal. No --as means nobody is
// signed in.
func principalFromFlags(cmd *cobra.Command) (*access.Principal, error) {
	userID, _ := cmd.Flags().GetString("as")
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetStringSlice("grant")
	if len(raw) == 0 {
		if env := os.Getenv("EDITORIAL_GRANTS"); env != "" {
			raw = strings.Split(env, ",")
		}
	}
	grants, err := auth.ParseGrants(raw)
	if err != nil {
		return nil, fmt.Errorf("--grant: %w", err)
	}
	return &access.Principal{UserID: userID, Grants: grants}, nil
}

// actorContext returns the command context signed in from the flags.
func actorContext(cmd *cobra.Command) (context.Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := principalFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return ctx, nil
	}
	return auth.WithPrincipal(ctx, p), nil
}

// session resolves the caller and the services in one step.
func session(cmd *cobra.Command) (context.Context, *wire.App, error) {
	ctx, err := actorContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	a, err := wire.Default()
	if err != nil {
		return nil, nil, err
	}
	return ctx, a, nil
}

// optionalString returns a pointer to the flag value when it was set.
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
