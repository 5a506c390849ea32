package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNoCredentials     = errors.New("last.fm credentials not configured")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNoDevices         = errors.New("no speakers found")
	ErrDeviceUnreachable = errors.New("speaker unreachable")
	ErrReportRejected    = errors.New("report rejected")
	ErrRateLimited       = errors.New("rate limited")
	ErrNetworkError      = errors.New("network error")
	ErrTimeout           = errors.New("request timeout")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// ScrobbledError wraps an error with a user-friendly suggestion.
type ScrobbledError struct {
	Err        error
	Suggestion string
}

func (e *ScrobbledError) Error() string {
	return e.Err.Error()
}

func (e *ScrobbledError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &ScrobbledError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// Check if it's already a ScrobbledError with suggestion
	var serr *ScrobbledError
	if errors.As(err, &serr) && serr.Suggestion != "" {
		return serr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Credential and authentication errors
	if errors.Is(err, ErrNoCredentials) || strings.Contains(errStr, "credentials not configured") {
		return "Run 'scrobbled setup' to enter your Last.fm credentials"
	}
	if errors.Is(err, ErrNotAuthenticated) || strings.Contains(errStr, "not authenticated") ||
		strings.Contains(errStr, "authentication failed") || strings.Contains(errStr, "invalid session") {
		return "Check your Last.fm username and password, then run 'scrobbled setup'"
	}

	// Speaker errors
	if errors.Is(err, ErrNoDevices) || strings.Contains(errStr, "no speakers") {
		return "Make sure your Sonos speakers are powered on and on the same network"
	}
	if errors.Is(err, ErrDeviceUnreachable) || strings.Contains(errStr, "unreachable") ||
		strings.Contains(errStr, "connection refused") {
		return "Check that the speaker is still on the network; polling retries it automatically"
	}

	// Rate limiting
	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Last.fm is rate limiting requests. Pending scrobbles are retried on the next poll"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") {
		return "Check your network connection and try again"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || strings.Contains(errStr, "config") {
		return "Run 'scrobbled config init' to create a configuration file"
	}

	// Server errors
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "Last.fm is having issues. Failed reports are retried on the next poll"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
