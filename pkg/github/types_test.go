package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input    string
		expected Target
		wantErr  bool
	}{
		{input: "acme", expected: Target{Owner: "acme"}},
		{input: "acme/api", expected: Target{Owner: "acme", Repository: "api"}},
		{input: " acme/api ", expected: Target{Owner: "acme", Repository: "api"}},
		{input: "", wantErr: true},
		{input: "acme/", wantErr: true},
		{input: "/api", wantErr: true},
		{input: "acme/api/extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			target, err := ParseTarget(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, target)
			assert.Equal(t, tt.expected.Repository != "", target.IsSingleRepository())
		})
	}
}

func TestTarget_String(t *testing.T) {
	assert.Equal(t, "acme", Target{Owner: "acme"}.String())
	assert.Equal(t, "acme/api", Target{Owner: "acme", Repository: "api"}.String())
}

func TestOutcome_Repository(t *testing.T) {
	assert.Equal(t, "acme/api", Outcome{Path: "/repos/acme/api/labels"}.Repository())
	assert.Equal(t, "acme/api", Outcome{Path: "/api/v3/repos/acme/api/labels/bug"}.Repository())
	assert.Equal(t, "", Outcome{Path: "/orgs/acme/repos"}.Repository())
	assert.Equal(t, "", Outcome{}.Repository())
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "create bug (#ff0000)", CreateOperation(Label{Name: "bug", Color: "ff0000"}).String())
	assert.Equal(t, "update bug (#00f)", UpdateOperation("bug", "00f").String())
	assert.Equal(t, "rename bug → defect", RenameOperation("bug", "defect").String())
	assert.Equal(t, "delete old", DeleteOperation("old").String())
}

func TestReconciliationPlan_Count(t *testing.T) {
	plan := &ReconciliationPlan{
		Repository: "api",
		Operations: []Operation{
			CreateOperation(Label{Name: "a", Color: "aaa"}),
			CreateOperation(Label{Name: "b", Color: "bbb"}),
			DeleteOperation("c"),
		},
	}

	assert.True(t, plan.HasChanges())
	assert.Equal(t, 2, plan.Count(ChangeTypeCreate))
	assert.Equal(t, 0, plan.Count(ChangeTypeUpdate))
	assert.Equal(t, 1, plan.Count(ChangeTypeDelete))

	var empty *ReconciliationPlan
	assert.False(t, empty.HasChanges())
	assert.Equal(t, 0, empty.Count(ChangeTypeCreate))
}
