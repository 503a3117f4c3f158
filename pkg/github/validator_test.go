package github

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateColor(t *testing.T) {
	tests := []struct {
		color   string
		wantErr bool
	}{
		{color: "09aF00"},
		{color: "abc"},
		{color: "ABC"},
		{color: "ffffff"},
		{color: "#abc", wantErr: true},
		{color: "abcd", wantErr: true},
		{color: "zzzzzz", wantErr: true},
		{color: "", wantErr: true},
		{color: "ff00ff00", wantErr: true},
		{color: " abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			err := ValidateColor(tt.color)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateLabelName(t *testing.T) {
	assert.NoError(t, ValidateLabelName("good first issue"))
	assert.NoError(t, ValidateLabelName("🐛 bug"))
	assert.Error(t, ValidateLabelName(""))
	assert.Error(t, ValidateLabelName("   "))
	assert.Error(t, ValidateLabelName(strings.Repeat("x", 51)))
}

func TestValidateLabel(t *testing.T) {
	assert.NoError(t, ValidateLabel(Label{Name: "bug", Color: "f00"}))

	err := ValidateLabel(Label{Name: "bug", Color: "red"})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "color", validationErr.Field)
	assert.Equal(t, "red", validationErr.Value)
}

func TestValidateLabels(t *testing.T) {
	t.Run("valid set", func(t *testing.T) {
		assert.NoError(t, ValidateLabels([]Label{
			{Name: "bug", Color: "ff0000"},
			{Name: "docs", Color: "00f"},
		}))
	})

	t.Run("collects every problem", func(t *testing.T) {
		err := ValidateLabels([]Label{
			{Name: "bug", Color: "#ff0000"},
			{Name: "", Color: "00f"},
			{Name: "bug", Color: "00f"},
		})
		require.Error(t, err)

		var validationErrs ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		require.Len(t, validationErrs, 3)
		assert.Equal(t, "labels[0].color", validationErrs[0].Field)
		assert.Equal(t, "labels[1].name", validationErrs[1].Field)
		assert.Equal(t, "labels[2].name", validationErrs[2].Field)
		assert.Contains(t, validationErrs[2].Message, "duplicate of labels[0]")
	})
}
