package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"labelsync/pkg/github"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Commands for checking GitHub authentication",
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the authenticated GitHub user, token scopes and API quota",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	authManager := github.NewAuthManager().WithClientOptions(clientOptions(cfg, logger))
	tokenInfo, err := authManager.AuthenticateFromConfig(ctx, cfg)
	if tokenInfo == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Authentication failed: %v\n\n%s\n", err, github.GetAuthInstructions())
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Authenticated as %s\n", tokenInfo.User)
	fmt.Fprintf(out, "  Token source: %s\n", tokenInfo.Source)
	if len(tokenInfo.Scopes) > 0 {
		fmt.Fprintf(out, "  Scopes:       %s\n", strings.Join(tokenInfo.Scopes, ", "))
	} else {
		fmt.Fprintf(out, "  Scopes:       none reported (fine-grained token)\n")
	}
	if tokenInfo.RateLimit > 0 {
		fmt.Fprintf(out, "  API quota:    %d of %d remaining, resets %s\n",
			tokenInfo.RateRemaining, tokenInfo.RateLimit, tokenInfo.RateLimitReset.Local().Format(time.Kitchen))
	}

	if err != nil {
		fmt.Fprintf(out, "⚠️  %v\n", err)
		return err
	}
	return nil
}
