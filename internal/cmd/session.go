package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"labelsync/pkg/config"
	"labelsync/pkg/github"
	"labelsync/pkg/logging"
)

// session holds what every label command needs once configuration,
// logging and authentication are settled
type session struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     *github.Client
	target     github.Target
	reconciler github.MultiReconciler
}

// loadConfig reads the --config file, or the default location
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfigFromPath(configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load labelsync config: %w", err)
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the zap logger writing to the command's stderr
func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.NewLoggerFactory().CreateLoggerWithWriter(level, format, cmd.ErrOrStderr())
}

// resolveTarget parses the optional target argument, falling back to the
// configured organization
func resolveTarget(cfg *config.Config, args []string) (github.Target, error) {
	if len(args) > 0 {
		return github.ParseTarget(args[0])
	}
	if cfg.GitHub.Organization == "" {
		return github.Target{}, &github.ValidationError{
			Field:   "target",
			Message: "organization not specified: pass <org>[/<repo>] or set github.organization in config",
		}
	}
	return github.ParseTarget(cfg.GitHub.Organization)
}

// clientOptions builds the GitHub client options from configuration
func clientOptions(cfg *config.Config, logger *zap.Logger) github.ClientOptions {
	limiter := github.NewRequestLimiter(&github.RateLimiterConfig{
		MaxInFlight:          cfg.Concurrency.Requests,
		MinRemainingRequests: github.DefaultRateLimiterConfig().MinRemainingRequests,
	}, logger)

	return github.ClientOptions{
		BaseURL: cfg.GitHub.BaseURL,
		Limiter: limiter,
		Logger:  logger,
	}
}

// openSession loads configuration, parses the target and authenticates.
// The token is not validated against the API; a bad token surfaces as
// failed outcomes.
func openSession(cmd *cobra.Command, cfg *config.Config, targetArgs []string) (*session, error) {
	target, err := resolveTarget(cfg, targetArgs)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	authManager := github.NewAuthManager().WithClientOptions(clientOptions(cfg, logger))
	token, err := authManager.GetToken(cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n", github.GetAuthInstructions())
		return nil, err
	}
	if err := authManager.Authenticate(token); err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	logger.Debug("authenticated",
		zap.String("token_source", string(authManager.TokenSource())),
		zap.String("target", target.String()))

	client := authManager.GetClient()
	reconciler := github.NewMultiReconciler(client, target.Owner, github.MultiReconcilerOptions{
		Concurrency: cfg.Concurrency.Repositories,
		Discovery: github.DiscoveryOptions{
			PageSize:       cfg.Discovery.PageSize,
			MaxFailedPages: cfg.Discovery.MaxFailedPages,
		},
		Logger: logger,
	})

	return &session{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		target:     target,
		reconciler: reconciler,
	}, nil
}

// repositories resolves the target to repository names, failing when an
// organization yields none
func (s *session) repositories(ctx context.Context) ([]string, error) {
	repos := s.reconciler.Resolve(ctx, s.target)
	if len(repos) == 0 {
		return nil, fmt.Errorf("no repositories found for %s", s.target)
	}
	return repos, nil
}

// close flushes the logger
func (s *session) close() {
	_ = s.logger.Sync()
}
