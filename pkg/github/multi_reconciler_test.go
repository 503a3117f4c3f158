package github

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labelsync/internal/githubtest"
)

func TestDefaultMultiReconcilerOptions(t *testing.T) {
	opts := DefaultMultiReconcilerOptions()

	assert.Equal(t, 5, opts.Concurrency)
	assert.Equal(t, 100, opts.Discovery.PageSize)
	assert.Equal(t, 3, opts.Discovery.MaxFailedPages)
}

func TestMultiReconciler_ResolveSingleRepository(t *testing.T) {
	client := new(MockAPIClient)
	mr := NewMultiReconciler(client, "acme", DefaultMultiReconcilerOptions())

	repos := mr.Resolve(context.Background(), Target{Owner: "acme", Repository: "api"})

	assert.Equal(t, []string{"api"}, repos)
	client.AssertNotCalled(t, "ListOrganizationRepositories", mock.Anything, mock.Anything, mock.Anything)
}

func TestMultiReconciler_ResolveDiscoversOrganization(t *testing.T) {
	client := new(MockAPIClient)
	client.On("ListOrganizationRepositories", "acme", 1, 100).Return([]string{"api", "web"}, nil)
	client.On("ListOrganizationRepositories", "acme", 2, 100).Return([]string{}, nil)

	mr := NewMultiReconciler(client, "acme", DefaultMultiReconcilerOptions())
	repos := mr.Resolve(context.Background(), Target{Owner: "acme"})

	assert.Equal(t, []string{"api", "web"}, repos)
	client.AssertExpectations(t)
}

func TestMultiReconciler_PlanAll(t *testing.T) {
	client := new(MockAPIClient)
	client.On("ListLabels", "acme", "api").Return([]Label{{Name: "bug", Color: "ff0000"}}, nil)
	client.On("ListLabels", "acme", "web").Return([]Label{{Name: "bug", Color: "00ff00"}, {Name: "old", Color: "000000"}}, nil)
	client.On("ListLabels", "acme", "docs").Return(nil, errors.New("boom"))

	mr := NewMultiReconciler(client, "acme", MultiReconcilerOptions{Concurrency: 2})
	desired := []Label{{Name: "bug", Color: "ff0000"}}

	plans := mr.PlanAll(context.Background(), []string{"api", "web", "docs"}, desired, true)

	require.Len(t, plans, 3)
	assert.False(t, plans["api"].HasChanges())
	assert.Equal(t, []Operation{UpdateOperation("bug", "ff0000"), DeleteOperation("old")}, plans["web"].Operations)
	assert.Equal(t, []Operation{CreateOperation(Label{Name: "bug", Color: "ff0000"})}, plans["docs"].Operations,
		"an unreadable inventory is treated as empty")
	client.AssertExpectations(t)
}

func TestMultiReconciler_ApplyAll(t *testing.T) {
	client := new(MockAPIClient)
	client.On("CreateLabel", "acme", "api", Label{Name: "wip", Color: "ffff00"}).
		Return(outcomeFor(http.StatusCreated, "/repos/acme/api/labels"))
	client.On("CreateLabel", "acme", "web", Label{Name: "wip", Color: "ffff00"}).
		Return(outcomeFor(http.StatusForbidden, "/repos/acme/web/labels"))

	mr := NewMultiReconciler(client, "acme", DefaultMultiReconcilerOptions())
	create := CreateOperation(Label{Name: "wip", Color: "ffff00"})
	plans := map[string]*ReconciliationPlan{
		"api":  {Repository: "api", Operations: []Operation{create}},
		"web":  {Repository: "web", Operations: []Operation{create}},
		"docs": {Repository: "docs"},
	}

	result, err := mr.ApplyAll(context.Background(), plans)

	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, result.Succeeded)
	assert.Equal(t, []string{"web"}, result.Failed)
	assert.Equal(t, []string{"docs"}, result.Skipped)
	assert.Equal(t, MultiRepoSummary{
		TotalRepositories: 3,
		SuccessCount:      1,
		FailureCount:      1,
		SkippedCount:      1,
		TotalChanges:      2,
	}, result.Summary)
	assert.Len(t, result.Outcomes["api"], 1)
	assert.NotContains(t, result.Outcomes, "docs")

	summary := mr.Summary()
	assert.Equal(t, 1, summary.UpdateCount)
	assert.Equal(t, []string{"acme/api"}, summary.AffectedRepos)
	assert.Equal(t, 1, summary.Failures())
}

func TestMultiReconciler_ApplyAllConflictIsNotFailure(t *testing.T) {
	client := new(MockAPIClient)
	client.On("CreateLabel", "acme", "api", mock.Anything).
		Return(outcomeFor(http.StatusUnprocessableEntity, "/repos/acme/api/labels"))

	mr := NewMultiReconciler(client, "acme", DefaultMultiReconcilerOptions())
	plans := map[string]*ReconciliationPlan{
		"api": {Repository: "api", Operations: []Operation{CreateOperation(Label{Name: "bug", Color: "ff0000"})}},
	}

	result, err := mr.ApplyAll(context.Background(), plans)

	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 0, mr.Summary().UpdateCount)
}

func TestMultiReconciler_ApplyAllNilPlans(t *testing.T) {
	mr := NewMultiReconciler(new(MockAPIClient), "acme", DefaultMultiReconcilerOptions())

	result, err := mr.ApplyAll(context.Background(), nil)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestMultiReconciler_ApplyOne(t *testing.T) {
	client := new(MockAPIClient)
	for _, repo := range []string{"api", "web", "docs"} {
		client.On("DeleteLabel", "acme", repo, "old").
			Return(outcomeFor(http.StatusNoContent, "/repos/acme/"+repo+"/labels/old"))
	}

	mr := NewMultiReconciler(client, "acme", DefaultMultiReconcilerOptions())
	outcomes := mr.ApplyOne(context.Background(), []string{"api", "web", "docs"}, DeleteOperation("old"))

	require.Len(t, outcomes, 3)
	assert.Equal(t, "acme/api", outcomes[0].Repository())
	assert.Equal(t, "acme/docs", outcomes[2].Repository())

	summary := mr.Summary()
	assert.Equal(t, 3, summary.UpdateCount)
	assert.Equal(t, 3, summary.AffectedRepoCount)
	client.AssertExpectations(t)
}

func TestMultiReconciler_EndToEnd(t *testing.T) {
	server := githubtest.NewServer()
	defer server.Close()
	server.AddRepository("acme", "api", githubtest.Label{Name: "bug", Color: "00ff00"}, githubtest.Label{Name: "old", Color: "000000"})
	server.AddRepository("acme", "web")
	server.AddRepository("acme", "docs", githubtest.Label{Name: "bug", Color: "FF0000"})
	client := createTestClient(t, server)

	mr := NewMultiReconciler(client, "acme", DefaultMultiReconcilerOptions())
	desired := []Label{{Name: "bug", Color: "ff0000"}}

	repos := mr.Resolve(context.Background(), Target{Owner: "acme"})
	require.Equal(t, []string{"api", "docs", "web"}, repos)

	result, err := mr.ApplyAll(context.Background(), mr.PlanAll(context.Background(), repos, desired, true))
	require.NoError(t, err)

	assert.Equal(t, []string{"api", "web"}, result.Succeeded)
	assert.Equal(t, []string{"docs"}, result.Skipped)
	assert.Equal(t, []githubtest.Label{{Name: "bug", Color: "ff0000"}}, server.Labels("acme", "api"))
	assert.Equal(t, []githubtest.Label{{Name: "bug", Color: "ff0000"}}, server.Labels("acme", "web"))

	summary := mr.Summary()
	assert.Equal(t, 3, summary.UpdateCount)
	assert.Equal(t, []string{"acme/api", "acme/web"}, summary.AffectedRepos)

	again := mr.PlanAll(context.Background(), repos, desired, true)
	for repo, plan := range again {
		assert.False(t, plan.HasChanges(), repo)
	}
}
