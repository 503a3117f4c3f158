package github

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
)

// ErrorType represents different categories of GitHub API errors
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Rate limit headers surfaced with transport errors
const (
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// GitHubError represents a structured error from GitHub operations
type GitHubError struct {
	Type       ErrorType   `json:"type"`
	Message    string      `json:"message"`
	Cause      error       `json:"-"`
	Resource   string      `json:"resource,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
	Headers    http.Header `json:"-"`
}

// Error implements the error interface
func (e *GitHubError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *GitHubError) Unwrap() error {
	return e.Cause
}

// RateLimitRemaining returns the remaining quota reported with the failed
// response, or "" when the response carried none.
func (e *GitHubError) RateLimitRemaining() string {
	if e.Headers == nil {
		return ""
	}
	return e.Headers.Get(HeaderRateLimitRemaining)
}

// NewGitHubError creates a new GitHubError with the specified type and message
func NewGitHubError(errorType ErrorType, message string, cause error) *GitHubError {
	return &GitHubError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// WrapGitHubError wraps a GitHub API error into our structured error type
func WrapGitHubError(err error, resource string) *GitHubError {
	if err == nil {
		return nil
	}

	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		if ghErr.Resource == "" {
			ghErr.Resource = resource
		}
		return ghErr
	}

	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &GitHubError{
			Type:       ErrorTypeRateLimit,
			Message:    fmt.Sprintf("Rate limit exceeded. Reset at %v", rateLimitErr.Rate.Reset.Time),
			Cause:      err,
			Resource:   resource,
			StatusCode: responseStatus(rateLimitErr.Response),
			Headers:    responseHeaders(rateLimitErr.Response),
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &GitHubError{
			Type:       ErrorTypeRateLimit,
			Message:    "Secondary rate limit triggered: " + abuseErr.Message,
			Cause:      err,
			Resource:   resource,
			StatusCode: responseStatus(abuseErr.Response),
			Headers:    responseHeaders(abuseErr.Response),
		}
	}

	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) {
		return parseGitHubAPIError(apiErr, resource)
	}

	if isNetworkError(err) {
		return &GitHubError{
			Type:     ErrorTypeNetwork,
			Message:  "Network error occurred. Please check your connection and try again",
			Cause:    err,
			Resource: resource,
		}
	}

	return &GitHubError{
		Type:     ErrorTypeUnknown,
		Message:  err.Error(),
		Cause:    err,
		Resource: resource,
	}
}

// parseGitHubAPIError parses GitHub API error responses into structured errors
func parseGitHubAPIError(apiErr *github.ErrorResponse, resource string) *GitHubError {
	baseErr := &GitHubError{
		Resource:   resource,
		Cause:      apiErr,
		StatusCode: responseStatus(apiErr.Response),
		Headers:    responseHeaders(apiErr.Response),
	}

	switch baseErr.StatusCode {
	case http.StatusUnauthorized:
		baseErr.Type = ErrorTypeAuth
		baseErr.Message = "Authentication failed. Please check your GitHub token"
		if strings.Contains(apiErr.Message, "token") || strings.Contains(apiErr.Message, "credentials") {
			baseErr.Message = "Invalid or expired GitHub token. Please update your GITHUB_TOKEN environment variable or configuration"
		}

	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(apiErr.Message), "rate limit") {
			baseErr.Type = ErrorTypeRateLimit
			baseErr.Message = "GitHub API rate limit exceeded"
		} else {
			baseErr.Type = ErrorTypePermission
			baseErr.Message = "Insufficient permissions. Your token may not have the required scopes (repo or public_repo)"
		}

	case http.StatusNotFound:
		baseErr.Type = ErrorTypeNotFound
		switch {
		case strings.Contains(resource, "label"):
			baseErr.Message = "Label not found"
		case strings.Contains(resource, "organization"):
			baseErr.Message = "Organization not found. Check the organization name and your access permissions"
		case strings.Contains(resource, "repository"), strings.Contains(resource, "content"):
			baseErr.Message = "Repository or file not found. Check the name and your access permissions"
		default:
			baseErr.Message = "Resource not found"
		}

	case http.StatusConflict:
		baseErr.Type = ErrorTypeConflict
		baseErr.Message = "Resource conflict occurred"

	case http.StatusUnprocessableEntity:
		baseErr.Type = ErrorTypeValidation
		baseErr.Message = "Validation failed"
		if hasErrorCode(apiErr, "already_exists") {
			baseErr.Type = ErrorTypeConflict
			baseErr.Message = "Resource already exists with the same name"
		} else if details := errorDetails(apiErr); details != "" {
			baseErr.Message = fmt.Sprintf("Validation failed: %s", details)
		}

	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		baseErr.Type = ErrorTypeNetwork
		baseErr.Message = "GitHub API is temporarily unavailable. Please try again later"

	default:
		baseErr.Type = ErrorTypeUnknown
		baseErr.Message = apiErr.Message
	}

	return baseErr
}

// errorBody renders the error the way it is reported in outcome log lines
func errorBody(err error) string {
	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) {
		if details := errorDetails(apiErr); details != "" {
			return fmt.Sprintf("%s: %s", apiErr.Message, details)
		}
		return apiErr.Message
	}
	return err.Error()
}

func errorDetails(apiErr *github.ErrorResponse) string {
	var details []string
	for _, e := range apiErr.Errors {
		switch {
		case e.Field != "" && e.Code != "":
			details = append(details, fmt.Sprintf("%s %s", e.Field, e.Code))
		case e.Message != "":
			details = append(details, e.Message)
		case e.Code != "":
			details = append(details, e.Code)
		}
	}
	return strings.Join(details, "; ")
}

func hasErrorCode(apiErr *github.ErrorResponse, code string) bool {
	for _, e := range apiErr.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func responseStatus(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func responseHeaders(resp *http.Response) http.Header {
	if resp == nil {
		return nil
	}
	return resp.Header
}

// isNetworkError checks if an error is a network-related error. Transport
// failures reach us as *url.Error wrapping *net.OpError or *net.DNSError, all
// of which satisfy net.Error.
func isNetworkError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// ValidationError represents a validation failure detected before any request is made
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error for field '%s' (value: %s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	if len(e) == 1 {
		return e[0].Error()
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e), strings.Join(messages, "; "))
}

// Add adds a validation error to the collection
func (e *ValidationErrors) Add(field, value, message string) {
	*e = append(*e, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// IsValidationError reports whether err is a ValidationError or ValidationErrors
func IsValidationError(err error) bool {
	var single *ValidationError
	var multiple ValidationErrors
	return errors.As(err, &single) || errors.As(err, &multiple)
}
