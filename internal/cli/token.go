package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/editorial/internal/adapters/auth"
	"github.com/example/editorial/internal/wire"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint API tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Sign a bearer token for --as with its --grant roles",
	Long: `Sign a bearer token for the API. The subject is --as and the grants are the
--grant values.

Examples:
  editorial token issue --as ed-alice --grant editor:JNL-1
  editorial token issue --as rev-carol --ttl 2h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := principalFromFlags(cmd)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("--as is required")
		}
		cfg, err := wire.Config()
		if err != nil {
			return err
		}
		provider, err := auth.NewJWTProvider(cfg.HTTP.JWTSecret)
		if err != nil {
			return fmt.Errorf("http.jwt_secret: %w", err)
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		token, err := provider.Issue(p, ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	tokenIssueCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.AddCommand(tokenIssueCmd)
	return tokenCmd
}
