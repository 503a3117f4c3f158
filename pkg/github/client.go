package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// labelsPerPage is the page size used when listing labels
const labelsPerPage = 100

// Client implements the APIClient interface using the GitHub REST API
type Client struct {
	client  *github.Client
	limiter RequestLimiter
	logger  *zap.Logger
}

// ClientOptions configures a Client
type ClientOptions struct {
	// BaseURL overrides the API endpoint, e.g. "https://ghe.example.com/api/v3/"
	BaseURL string

	// Limiter is shared by every call of the client. A default limiter is
	// created when nil.
	Limiter RequestLimiter

	Logger *zap.Logger
}

// NewClient creates a new GitHub API client with the provided token
func NewClient(token string) *Client {
	client, _ := NewClientWithOptions(token, ClientOptions{})
	return client
}

// NewClientWithOptions creates a GitHub API client authenticated with token
func NewClientWithOptions(token string, opts ClientOptions) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewRequestLimiter(nil, logger)
	}

	var ghClient *github.Client
	if token == "" {
		ghClient = github.NewClient(nil)
	} else {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		ghClient = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		baseURL, err := url.Parse(base)
		if err != nil {
			return nil, &ValidationError{Field: "github.base_url", Value: opts.BaseURL, Message: err.Error()}
		}
		ghClient.BaseURL = baseURL
	}

	return &Client{
		client:  ghClient,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Limiter returns the request limiter shared by the client's calls
func (c *Client) Limiter() RequestLimiter {
	return c.limiter
}

// execute runs one API call inside a limiter slot and records the quota
// reported by the response
func (c *Client) execute(ctx context.Context, call func() (*github.Response, error)) (*github.Response, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("waiting for request slot: %w", err)
	}
	defer c.limiter.Release()

	resp, err := call()
	if resp != nil && resp.Rate.Limit > 0 {
		c.limiter.UpdateLimits(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
	return resp, err
}

// ListOrganizationRepositories returns the repository names on one page of
// the organization's repository listing
func (c *Client) ListOrganizationRepositories(ctx context.Context, org string, page, perPage int) ([]string, error) {
	opts := &github.RepositoryListByOrgOptions{
		Type: "all",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	var repos []*github.Repository
	_, err := c.execute(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		repos, resp, err = c.client.Repositories.ListByOrg(ctx, org, opts)
		return resp, err
	})
	if err != nil {
		return nil, WrapGitHubError(err, fmt.Sprintf("organization %s repositories page %d", org, page))
	}

	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		names = append(names, repo.GetName())
	}
	return names, nil
}

// ListLabels returns every label of the repository, following pagination
func (c *Client) ListLabels(ctx context.Context, owner, repo string) ([]Label, error) {
	opts := &github.ListOptions{PerPage: labelsPerPage}
	var result []Label

	for {
		var labels []*github.Label
		resp, err := c.execute(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			labels, resp, err = c.client.Issues.ListLabels(ctx, owner, repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, WrapGitHubError(err, fmt.Sprintf("labels of repository %s/%s", owner, repo))
		}

		for _, label := range labels {
			result = append(result, convertGitHubLabel(label))
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// CreateLabel creates a label on the repository
func (c *Client) CreateLabel(ctx context.Context, owner, repo string, label Label) Outcome {
	var created *github.Label
	resp, err := c.execute(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		created, resp, err = c.client.Issues.CreateLabel(ctx, owner, repo, buildLabelRequest(label))
		return resp, err
	})

	outcome := newOutcome(resp, err, labelsPath(owner, repo, ""), fmt.Sprintf("label %s/%s:%s", owner, repo, label.Name))
	if created != nil {
		converted := convertGitHubLabel(created)
		outcome.Label = &converted
	} else {
		outcome.Label = &label
	}
	return outcome
}

// EditLabel patches the label called name. A payload name different from
// name renames the label. The name is escaped here since go-github places
// it in the path verbatim.
func (c *Client) EditLabel(ctx context.Context, owner, repo, name string, label Label) Outcome {
	var edited *github.Label
	resp, err := c.execute(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		edited, resp, err = c.client.Issues.EditLabel(ctx, owner, repo, url.PathEscape(name), buildLabelRequest(label))
		return resp, err
	})

	outcome := newOutcome(resp, err, labelsPath(owner, repo, name), fmt.Sprintf("label %s/%s:%s", owner, repo, name))
	if edited != nil {
		converted := convertGitHubLabel(edited)
		outcome.Label = &converted
	} else {
		outcome.Label = &label
	}
	return outcome
}

// DeleteLabel deletes the label called name
func (c *Client) DeleteLabel(ctx context.Context, owner, repo, name string) Outcome {
	resp, err := c.execute(ctx, func() (*github.Response, error) {
		return c.client.Issues.DeleteLabel(ctx, owner, repo, url.PathEscape(name))
	})

	outcome := newOutcome(resp, err, labelsPath(owner, repo, name), fmt.Sprintf("label %s/%s:%s", owner, repo, name))
	outcome.Label = &Label{Name: name}
	return outcome
}

// GetFileContent returns the decoded content of a file in the repository
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error) {
	resource := fmt.Sprintf("content %s/%s:%s", owner, repo, path)

	var file *github.RepositoryContent
	_, err := c.execute(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		file, _, resp, err = c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
		return resp, err
	})
	if err != nil {
		return nil, WrapGitHubError(err, resource)
	}
	if file == nil {
		return nil, NewGitHubError(ErrorTypeValidation, fmt.Sprintf("%s is a directory", path), nil)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, WrapGitHubError(err, resource)
	}
	return []byte(content), nil
}

// newOutcome converts the result of a mutation into an Outcome. The path is
// taken, still escaped, from the request that was actually sent when there is one.
func newOutcome(resp *github.Response, err error, fallbackPath, resource string) Outcome {
	outcome := Outcome{Path: fallbackPath}

	if resp != nil && resp.Response != nil {
		outcome.StatusCode = resp.StatusCode
		if resp.Request != nil && resp.Request.URL != nil {
			outcome.Path = resp.Request.URL.EscapedPath()
		}
	}

	if err != nil {
		outcome.Body = errorBody(err)
		outcome.Err = WrapGitHubError(err, resource)
	}
	return outcome
}

func labelsPath(owner, repo, name string) string {
	if name == "" {
		return fmt.Sprintf("/repos/%s/%s/labels", owner, repo)
	}
	return fmt.Sprintf("/repos/%s/%s/labels/%s", owner, repo, url.PathEscape(name))
}

func buildLabelRequest(label Label) *github.Label {
	request := &github.Label{Name: github.String(label.Name)}
	if label.Color != "" {
		request.Color = github.String(label.Color)
	}
	return request
}

func convertGitHubLabel(label *github.Label) Label {
	return Label{
		Name:  label.GetName(),
		Color: label.GetColor(),
	}
}
