package github

import (
	"fmt"
	"regexp"
	"strings"
)

var validColor = regexp.MustCompile(`^([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// maxLabelNameLength is the longest label name the GitHub API accepts
const maxLabelNameLength = 50

// ValidateColor checks that color is a 3 or 6 digit hex string without a
// leading '#'. Short forms are accepted as-is and never expanded.
func ValidateColor(color string) error {
	if color == "" {
		return &ValidationError{Field: "color", Message: "color is required"}
	}
	if strings.HasPrefix(color, "#") {
		return &ValidationError{
			Field:   "color",
			Value:   color,
			Message: "color must not start with '#'",
		}
	}
	if !validColor.MatchString(color) {
		return &ValidationError{
			Field:   "color",
			Value:   color,
			Message: "color must be a 3 or 6 digit hex value",
		}
	}
	return nil
}

// ValidateLabelName checks that name is usable as a label name
func ValidateLabelName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "label name is required"}
	}
	if len([]rune(name)) > maxLabelNameLength {
		return &ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("label name cannot exceed %d characters", maxLabelNameLength),
		}
	}
	return nil
}

// ValidateLabel validates both the name and the color of label
func ValidateLabel(label Label) error {
	if err := ValidateLabelName(label.Name); err != nil {
		return err
	}
	return ValidateColor(label.Color)
}

// ValidateLabels validates a desired label set, collecting every problem.
// Names must be unique.
func ValidateLabels(labels []Label) error {
	var validationErrors ValidationErrors
	seen := make(map[string]int, len(labels))

	for i, label := range labels {
		field := fmt.Sprintf("labels[%d]", i)

		if err := ValidateLabelName(label.Name); err != nil {
			validationErrors.Add(field+".name", label.Name, err.(*ValidationError).Message)
		} else if first, ok := seen[label.Name]; ok {
			validationErrors.Add(field+".name", label.Name, fmt.Sprintf("duplicate of labels[%d]", first))
		} else {
			seen[label.Name] = i
		}

		if err := ValidateColor(label.Color); err != nil {
			validationErrors.Add(field+".color", label.Color, err.(*ValidationError).Message)
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}
