package github

import (
	"context"
	"fmt"
	"os"
	"path"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// desiredLabelsDir is the directory of the configuration repository that
// holds label documents
const desiredLabelsDir = "config"

// LoadDesiredLabels parses a desired label document. JSON and YAML are both
// accepted; the document root must be a list of labels.
func LoadDesiredLabels(data []byte) ([]Label, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, &ValidationError{Field: "labels", Message: fmt.Sprintf("failed to parse label document: %v", err)}
	}

	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return nil, &ValidationError{Field: "labels", Message: "label document is empty"}
	}

	root := document.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, &ValidationError{
			Field:   "labels",
			Value:   nodeKindName(root.Kind),
			Message: "label document must be a list of {name, color} entries",
		}
	}

	var labels []Label
	if err := root.Decode(&labels); err != nil {
		return nil, &ValidationError{Field: "labels", Message: fmt.Sprintf("failed to decode labels: %v", err)}
	}

	if err := ValidateLabels(labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// LoadDesiredLabelsFromFile loads a desired label document from a local file
func LoadDesiredLabelsFromFile(filename string) ([]Label, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read label file: %w", err)
	}
	return LoadDesiredLabels(data)
}

// FetchDesiredLabels reads config/<file> from the configuration repository
// of owner. A failed fetch is logged and yields an empty label set; a
// malformed document is an error.
func FetchDesiredLabels(ctx context.Context, client APIClient, owner, configRepo, file string, logger *zap.Logger) ([]Label, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	filePath := path.Join(desiredLabelsDir, file)
	data, err := client.GetFileContent(ctx, owner, configRepo, filePath)
	if err != nil {
		fields := []zap.Field{
			zap.String("repository", owner+"/"+configRepo),
			zap.String("path", filePath),
			zap.Error(err),
		}
		if ghErr := WrapGitHubError(err, ""); ghErr.StatusCode != 0 {
			fields = append(fields,
				zap.Int("status", ghErr.StatusCode),
				zap.String("rate_limit_remaining", ghErr.RateLimitRemaining()))
		}
		logger.Error("failed to fetch label configuration", fields...)
		return []Label{}, nil
	}

	labels, err := LoadDesiredLabels(data)
	if err != nil {
		return nil, fmt.Errorf("invalid label configuration %s/%s:%s: %w", owner, configRepo, filePath, err)
	}

	logger.Info("loaded label configuration",
		zap.String("repository", owner+"/"+configRepo),
		zap.String("path", filePath),
		zap.Int("count", len(labels)))
	return labels, nil
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.SequenceNode:
		return "sequence"
	default:
		return "unknown"
	}
}
