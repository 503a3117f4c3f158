package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelsync/internal/githubtest"
)

// createTestClient creates a GitHub client configured to use the test server
func createTestClient(t *testing.T, server *githubtest.Server) *Client {
	t.Helper()
	client, err := NewClientWithOptions("test-token", ClientOptions{BaseURL: server.BaseURL()})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-token")

	require.NotNil(t, client)
	require.NotNil(t, client.client)
	require.NotNil(t, client.Limiter())
	assert.Equal(t, "https://api.github.com/", client.client.BaseURL.String())
}

func TestNewClientWithOptions_BaseURL(t *testing.T) {
	client, err := NewClientWithOptions("test-token", ClientOptions{BaseURL: "https://ghe.example.com/api/v3"})
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", client.client.BaseURL.String())

	_, err = NewClientWithOptions("test-token", ClientOptions{BaseURL: "://bad"})
	assert.True(t, IsValidationError(err))
}

func TestClient_ListOrganizationRepositories(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	for _, name := range []string{"api", "cli", "docs", "web", "www"} {
		server.AddRepository("acme", name)
	}
	client := createTestClient(t, server)

	page1, err := client.ListOrganizationRepositories(context.Background(), "acme", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "cli"}, page1)

	page3, err := client.ListOrganizationRepositories(context.Background(), "acme", 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"www"}, page3)

	_, err = client.ListOrganizationRepositories(context.Background(), "missing", 1, 2)
	require.Error(t, err)
	var ghErr *GitHubError
	require.ErrorAs(t, err, &ghErr)
	assert.Equal(t, ErrorTypeNotFound, ghErr.Type)
	assert.Equal(t, http.StatusNotFound, ghErr.StatusCode)
	assert.NotEmpty(t, ghErr.RateLimitRemaining())
}

func TestClient_ListLabelsFollowsPagination(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()

	var labels []githubtest.Label
	for i := 0; i < 150; i++ {
		labels = append(labels, githubtest.Label{Name: fmt.Sprintf("label-%03d", i), Color: "ededed"})
	}
	server.AddRepository("acme", "api", labels...)
	client := createTestClient(t, server)

	result, err := client.ListLabels(context.Background(), "acme", "api")

	require.NoError(t, err)
	assert.Len(t, result, 150)
	assert.Equal(t, 2, server.CountRequests(http.MethodGet))
}

func TestClient_CreateLabel(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	server.AddRepository("acme", "api", githubtest.Label{Name: "bug", Color: "ff0000"})
	client := createTestClient(t, server)

	created := client.CreateLabel(context.Background(), "acme", "api", Label{Name: "wip", Color: "ffff00"})
	assert.Equal(t, http.StatusCreated, created.StatusCode)
	assert.Equal(t, "/repos/acme/api/labels", created.Path)
	assert.NoError(t, created.Err)
	require.NotNil(t, created.Label)
	assert.Equal(t, "wip", created.Label.Name)

	conflict := client.CreateLabel(context.Background(), "acme", "api", Label{Name: "bug", Color: "00ff00"})
	assert.Equal(t, http.StatusUnprocessableEntity, conflict.StatusCode)
	assert.Contains(t, conflict.Body, "already_exists")
	var ghErr *GitHubError
	require.ErrorAs(t, conflict.Err, &ghErr)
	assert.Equal(t, ErrorTypeConflict, ghErr.Type)

	assert.Contains(t, server.Labels("acme", "api"), githubtest.Label{Name: "wip", Color: "ffff00"})
}

func TestClient_EditLabel(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	server.AddRepository("acme", "api", githubtest.Label{Name: "bug", Color: "ff0000"})
	client := createTestClient(t, server)

	renamed := client.EditLabel(context.Background(), "acme", "api", "bug", Label{Name: "defect"})
	assert.Equal(t, http.StatusOK, renamed.StatusCode)
	assert.Equal(t, "/repos/acme/api/labels/bug", renamed.Path)
	assert.Equal(t, []githubtest.Label{{Name: "defect", Color: "ff0000"}}, server.Labels("acme", "api"))

	missing := client.EditLabel(context.Background(), "acme", "api", "bug", Label{Name: "bug", Color: "000000"})
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.Equal(t, EffectFailed, Classify(missing))
}

func TestClient_DeleteLabel(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	server.AddRepository("acme", "api", githubtest.Label{Name: "good first issue", Color: "7057ff"})
	client := createTestClient(t, server)

	deleted := client.DeleteLabel(context.Background(), "acme", "api", "good first issue")

	assert.Equal(t, http.StatusNoContent, deleted.StatusCode)
	assert.Equal(t, "good first issue", deleted.LabelName())
	assert.Equal(t, "acme/api", deleted.Repository())
	assert.Empty(t, server.Labels("acme", "api"))
}

func TestClient_LabelNamesWithReservedCharacters(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	server.AddRepository("acme", "api",
		githubtest.Label{Name: "kind/bug", Color: "00ff00"},
		githubtest.Label{Name: "help?", Color: "00ff00"},
	)
	client := createTestClient(t, server)

	edited := client.EditLabel(context.Background(), "acme", "api", "kind/bug", Label{Name: "kind/bug", Color: "ff0000"})
	assert.Equal(t, http.StatusOK, edited.StatusCode)
	assert.NoError(t, edited.Err)
	assert.Equal(t, "/repos/acme/api/labels/kind%2Fbug", edited.Path)
	assert.Equal(t, "kind/bug", edited.LabelName())
	assert.Equal(t, "acme/api", edited.Repository())

	deleted := client.DeleteLabel(context.Background(), "acme", "api", "help?")
	assert.Equal(t, http.StatusNoContent, deleted.StatusCode)
	assert.NoError(t, deleted.Err)
	assert.Equal(t, "help?", deleted.LabelName())

	assert.Equal(t, []githubtest.Label{{Name: "kind/bug", Color: "ff0000"}}, server.Labels("acme", "api"))
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL + "/"
	server.Close()

	client, err := NewClientWithOptions("test-token", ClientOptions{BaseURL: serverURL})
	require.NoError(t, err)

	outcome := client.DeleteLabel(context.Background(), "acme", "api", "bug")

	assert.Equal(t, 0, outcome.StatusCode)
	assert.Equal(t, "/repos/acme/api/labels/bug", outcome.Path)
	assert.NotEmpty(t, outcome.Body)
	assert.Error(t, outcome.Err)
	assert.Equal(t, EffectFailed, Classify(outcome))
}

func TestClient_GetFileContent(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	server.AddRepository("acme", ".github")
	server.AddFile("acme", ".github", "config/labels.json", []byte(`[{"name":"bug","color":"ff0000"}]`))
	client := createTestClient(t, server)

	content, err := client.GetFileContent(context.Background(), "acme", ".github", "config/labels.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"bug","color":"ff0000"}]`, string(content))

	_, err = client.GetFileContent(context.Background(), "acme", ".github", "config/missing.json")
	var ghErr *GitHubError
	require.ErrorAs(t, err, &ghErr)
	assert.Equal(t, ErrorTypeNotFound, ghErr.Type)
}

func TestClient_RecordsRateLimit(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	server.AddRepository("acme", "api")
	client := createTestClient(t, server)

	_, err := client.ListLabels(context.Background(), "acme", "api")
	require.NoError(t, err)

	stats := client.Limiter().GetStats()
	assert.True(t, stats.QuotaKnown())
	assert.Equal(t, 4999, stats.RemainingRequests)
	assert.Equal(t, int64(1), stats.TotalRequests)
}

func TestClient_RespectsRequestLimit(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	server.Delay = 10 * time.Millisecond
	server.AddRepository("acme", "api")

	limiter := NewRequestLimiter(&RateLimiterConfig{MaxInFlight: 3}, nil)
	client, err := NewClientWithOptions("test-token", ClientOptions{BaseURL: server.BaseURL(), Limiter: limiter})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.CreateLabel(context.Background(), "acme", "api", Label{Name: fmt.Sprintf("label-%02d", i), Color: "ededed"})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, server.PeakInFlight(), 3)
	assert.LessOrEqual(t, limiter.GetStats().PeakInFlight, 3)
	assert.Len(t, server.Labels("acme", "api"), 20)
}
