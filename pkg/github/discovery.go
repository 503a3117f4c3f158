package github

import (
	"context"

	"go.uber.org/zap"
)

// DiscoveryOptions configures repository discovery
type DiscoveryOptions struct {
	// PageSize is the per_page value requested from the API
	PageSize int

	// MaxFailedPages stops discovery after this many consecutive failed pages
	MaxFailedPages int

	Logger *zap.Logger
}

// DefaultDiscoveryOptions returns the default discovery options
func DefaultDiscoveryOptions() DiscoveryOptions {
	return DiscoveryOptions{
		PageSize:       100,
		MaxFailedPages: 3,
	}
}

// DiscoverRepositories lists every repository of org page by page.
//
// An empty page ends discovery, as does a page shorter than the previous
// successful one. An organization holding an exact multiple of the page size
// therefore costs one extra, empty page. A failed page is logged and skipped.
// Names are deduplicated in first-seen order.
func DiscoverRepositories(ctx context.Context, client APIClient, org string, opts DiscoveryOptions) []string {
	defaults := DefaultDiscoveryOptions()
	if opts.PageSize <= 0 {
		opts.PageSize = defaults.PageSize
	}
	if opts.MaxFailedPages <= 0 {
		opts.MaxFailedPages = defaults.MaxFailedPages
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("organization", org))

	var names []string
	seen := make(map[string]struct{})
	previous := -1
	failures := 0

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			logger.Warn("repository discovery cancelled", zap.Int("page", page), zap.Error(ctx.Err()))
			break
		}

		repos, err := client.ListOrganizationRepositories(ctx, org, page, opts.PageSize)
		if err != nil {
			failures++
			fields := []zap.Field{zap.Int("page", page), zap.Error(err)}
			if ghErr := WrapGitHubError(err, ""); ghErr.StatusCode != 0 {
				fields = append(fields,
					zap.Int("status", ghErr.StatusCode),
					zap.String("rate_limit_remaining", ghErr.RateLimitRemaining()))
			}
			logger.Error("failed to fetch repository page", fields...)

			if failures >= opts.MaxFailedPages {
				logger.Error("giving up repository discovery", zap.Int("consecutive_failures", failures))
				break
			}
			continue
		}
		failures = 0

		logger.Debug("fetched repository page", zap.Int("page", page), zap.Int("count", len(repos)))

		for _, name := range repos {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}

		if len(repos) == 0 || (previous >= 0 && len(repos) < previous) {
			break
		}
		previous = len(repos)
	}

	logger.Info("discovered repositories", zap.Int("count", len(names)))
	return names
}
