package github

import (
	"context"

	"go.uber.org/zap"
)

// FetchLabels returns the current labels of owner/repo. A failed fetch is
// logged and yields an empty inventory so the run can continue.
func FetchLabels(ctx context.Context, client APIClient, owner, repo string, logger *zap.Logger) []Label {
	if logger == nil {
		logger = zap.NewNop()
	}

	labels, err := client.ListLabels(ctx, owner, repo)
	if err != nil {
		fields := []zap.Field{zap.String("repository", owner+"/"+repo), zap.Error(err)}
		if ghErr := WrapGitHubError(err, ""); ghErr.StatusCode != 0 {
			fields = append(fields,
				zap.Int("status", ghErr.StatusCode),
				zap.String("rate_limit_remaining", ghErr.RateLimitRemaining()))
		}
		logger.Error("failed to fetch labels", fields...)
		return []Label{}
	}

	logger.Debug("fetched labels", zap.String("repository", owner+"/"+repo), zap.Int("count", len(labels)))
	return labels
}
