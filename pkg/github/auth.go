package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"gopkg.in/ini.v1"

	"labelsync/pkg/config"
)

// TokenSource names where a token was found
type TokenSource string

const (
	TokenSourceGitHubEnv TokenSource = "GITHUB_TOKEN"
	TokenSourceGHEnv     TokenSource = "GH_TOKEN"
	TokenSourceConfig    TokenSource = "config"
	TokenSourceGitConfig TokenSource = "gitconfig"
)

// AuthManager handles GitHub authentication
type AuthManager struct {
	client        *Client
	source        TokenSource
	clientOptions ClientOptions

	// GitConfigPath is read for a [github] token entry when no other source
	// provides one. Defaults to ~/.gitconfig.
	GitConfigPath string
}

// NewAuthManager creates a new authentication manager
func NewAuthManager() *AuthManager {
	am := &AuthManager{}
	if home, err := os.UserHomeDir(); err == nil {
		am.GitConfigPath = filepath.Join(home, ".gitconfig")
	}
	return am
}

// WithClientOptions sets the options used for the authenticated client
func (am *AuthManager) WithClientOptions(opts ClientOptions) *AuthManager {
	am.clientOptions = opts
	return am
}

// GetToken retrieves the GitHub token from, in order: GITHUB_TOKEN, GH_TOKEN,
// the configuration file (or LABELSYNC_GITHUB_TOKEN), and ~/.gitconfig
func (am *AuthManager) GetToken(cfg *config.Config) (string, error) {
	if token := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); token != "" {
		am.source = TokenSourceGitHubEnv
		return token, nil
	}

	if token := strings.TrimSpace(os.Getenv("GH_TOKEN")); token != "" {
		am.source = TokenSourceGHEnv
		return token, nil
	}

	if cfg != nil && strings.TrimSpace(cfg.GitHub.Token) != "" {
		am.source = TokenSourceConfig
		return strings.TrimSpace(cfg.GitHub.Token), nil
	}

	if token := am.gitConfigToken(); token != "" {
		am.source = TokenSourceGitConfig
		return token, nil
	}

	return "", fmt.Errorf("no GitHub token found: set GITHUB_TOKEN environment variable or configure token in ~/.labelsync/config.yaml")
}

// TokenSource returns where the last token returned by GetToken came from
func (am *AuthManager) TokenSource() TokenSource {
	return am.source
}

func (am *AuthManager) gitConfigToken() string {
	if am.GitConfigPath == "" {
		return ""
	}
	if _, err := os.Stat(am.GitConfigPath); err != nil {
		return ""
	}

	gitConfig, err := ini.Load(am.GitConfigPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(gitConfig.Section("github").Key("token").String())
}

// Authenticate sets up the GitHub client with the provided token
func (am *AuthManager) Authenticate(token string) error {
	if token == "" {
		return fmt.Errorf("GitHub token cannot be empty")
	}

	client, err := NewClientWithOptions(token, am.clientOptions)
	if err != nil {
		return err
	}

	am.client = client
	return nil
}

// ValidateToken validates the GitHub token and reports its scopes and quota
func (am *AuthManager) ValidateToken(ctx context.Context) (*TokenInfo, error) {
	if am.client == nil {
		return nil, fmt.Errorf("not authenticated: call Authenticate() first")
	}

	var user *github.User
	resp, err := am.client.execute(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		user, resp, err = am.client.client.Users.Get(ctx, "")
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate GitHub token: %w", WrapGitHubError(err, "authenticated user"))
	}

	scopes := []string{}
	if scopeHeader := resp.Header.Get("X-OAuth-Scopes"); scopeHeader != "" {
		scopes = strings.Split(strings.ReplaceAll(scopeHeader, " ", ""), ",")
	}

	tokenInfo := &TokenInfo{
		User:           user.GetLogin(),
		Scopes:         scopes,
		Source:         am.source,
		RateLimit:      resp.Rate.Limit,
		RateRemaining:  resp.Rate.Remaining,
		RateLimitReset: resp.Rate.Reset.Time,
	}

	if err := am.validatePermissions(tokenInfo.Scopes); err != nil {
		return tokenInfo, err
	}

	return tokenInfo, nil
}

// ErrMissingScopes is returned when a classic token lacks the repo scope
var ErrMissingScopes = errors.New("GitHub token missing required permissions")

// validatePermissions checks if the token has required permissions.
// Fine-grained tokens report no scopes and are not checked.
func (am *AuthManager) validatePermissions(scopes []string) error {
	if len(scopes) == 0 {
		return nil
	}

	for _, scope := range scopes {
		if scope == "repo" || scope == "public_repo" {
			return nil
		}
	}

	return fmt.Errorf("%w: please ensure your token has the 'repo' or 'public_repo' scope", ErrMissingScopes)
}

// GetClient returns the authenticated GitHub client
func (am *AuthManager) GetClient() *Client {
	return am.client
}

// TokenInfo contains information about the authenticated token
type TokenInfo struct {
	User           string      `json:"user"`
	Scopes         []string    `json:"scopes"`
	Source         TokenSource `json:"source"`
	RateLimit      int         `json:"rate_limit"`
	RateRemaining  int         `json:"rate_remaining"`
	RateLimitReset time.Time   `json:"rate_limit_reset"`
}

// AuthenticateFromConfig is a convenience method that handles the full authentication flow
func (am *AuthManager) AuthenticateFromConfig(ctx context.Context, cfg *config.Config) (*TokenInfo, error) {
	token, err := am.GetToken(cfg)
	if err != nil {
		return nil, err
	}

	if err := am.Authenticate(token); err != nil {
		return nil, err
	}

	return am.ValidateToken(ctx)
}

// GetAuthInstructions returns instructions for setting up GitHub authentication
func GetAuthInstructions() string {
	return `GitHub authentication is required. Please set up authentication using one of the following methods:

1. Environment Variable (Recommended for CI/CD):
   export GITHUB_TOKEN="your_personal_access_token"
   (GH_TOKEN is honored as well)

2. Configuration File:
   Add the following to ~/.labelsync/config.yaml:

   github:
     token: "your_personal_access_token"

3. Git configuration:
   git config --global github.token your_personal_access_token

To create a personal access token:
1. Go to GitHub Settings > Developer settings > Personal access tokens
2. Generate a token with the 'repo' scope (or 'public_repo' for public repositories only)
3. Copy the generated token and use it with one of the methods above`
}
