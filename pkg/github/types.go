package github

import (
	"fmt"
	"net/url"
	"strings"
)

// Label represents an issue label of a repository
type Label struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Target identifies the repositories a command operates on: every repository
// of Owner, or only Repository when it is set.
type Target struct {
	Owner      string
	Repository string
}

// ParseTarget parses "org" or "org/repo"
func ParseTarget(value string) (Target, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Target{}, &ValidationError{Field: "target", Message: "organization is required"}
	}

	parts := strings.Split(value, "/")
	switch {
	case len(parts) == 1:
		return Target{Owner: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return Target{Owner: parts[0], Repository: parts[1]}, nil
	default:
		return Target{}, &ValidationError{
			Field:   "target",
			Value:   value,
			Message: "expected <org> or <org>/<repo>",
		}
	}
}

// IsSingleRepository reports whether the target bypasses discovery
func (t Target) IsSingleRepository() bool {
	return t.Repository != ""
}

// String returns the target in "org" or "org/repo" form
func (t Target) String() string {
	if t.Repository == "" {
		return t.Owner
	}
	return t.Owner + "/" + t.Repository
}

// Outcome is the result of one label mutation request. StatusCode is 0 when
// no HTTP response was received.
type Outcome struct {
	StatusCode int    `json:"status_code"`
	Path       string `json:"path"`
	Body       string `json:"body,omitempty"`
	Label      *Label `json:"label,omitempty"`
	Err        error  `json:"-"`
}

// Repository returns "owner/repo" parsed from the request path, or "" when
// the path does not address a repository.
func (o Outcome) Repository() string {
	owner, repo, _ := splitRepositoryPath(o.Path)
	if owner == "" {
		return ""
	}
	return owner + "/" + repo
}

// LabelName returns the label addressed by the final path segment, falling
// back to the label carried by the response.
func (o Outcome) LabelName() string {
	if _, _, rest := splitRepositoryPath(o.Path); len(rest) == 2 && rest[0] == "labels" {
		if name, err := url.PathUnescape(rest[1]); err == nil {
			return name
		}
	}
	if o.Label != nil {
		return o.Label.Name
	}
	return ""
}

// splitRepositoryPath finds the "repos/{owner}/{repo}" segment of a request
// path and returns the segments following it. Enterprise prefixes such as
// "/api/v3" are skipped.
func splitRepositoryPath(path string) (owner, repo string, rest []string) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i+2 < len(segments); i++ {
		if segments[i] == "repos" {
			return segments[i+1], segments[i+2], segments[i+3:]
		}
	}
	return "", "", nil
}

// ReconciliationPlan holds the operations computed for one repository
type ReconciliationPlan struct {
	Repository string      `json:"repository"`
	Operations []Operation `json:"operations,omitempty"`
}

// HasChanges reports whether the plan contains any operation
func (p *ReconciliationPlan) HasChanges() bool {
	return p != nil && len(p.Operations) > 0
}

// Count returns the number of operations of the given kind
func (p *ReconciliationPlan) Count(kind ChangeType) int {
	if p == nil {
		return 0
	}
	count := 0
	for _, op := range p.Operations {
		if op.Kind == kind {
			count++
		}
	}
	return count
}

// String describes the operation in plan output
func (op Operation) String() string {
	switch op.Kind {
	case ChangeTypeCreate:
		return fmt.Sprintf("create %s (#%s)", op.Payload.Name, op.Payload.Color)
	case ChangeTypeUpdate:
		if op.Payload.Name != op.TargetName {
			return fmt.Sprintf("rename %s → %s", op.TargetName, op.Payload.Name)
		}
		return fmt.Sprintf("update %s (#%s)", op.TargetName, op.Payload.Color)
	case ChangeTypeDelete:
		return fmt.Sprintf("delete %s", op.TargetName)
	default:
		return fmt.Sprintf("%s %s", op.Kind, op.TargetName)
	}
}
