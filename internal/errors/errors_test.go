package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWithSuggestionRoundTrip(t *testing.T) {
	base := errors.New("boom")
	err := WithSuggestion(base, "try turning it off and on")

	if !errors.Is(err, base) {
		t.Error("wrapped error does not unwrap to the original")
	}
	if got := GetSuggestion(err); got != "try turning it off and on" {
		t.Errorf("GetSuggestion() = %q, want the explicit suggestion", got)
	}
}

func TestGetSuggestionHeuristics(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no credentials", ErrNoCredentials, "scrobbled setup"},
		{"wrapped not authenticated", fmt.Errorf("login: %w", ErrNotAuthenticated), "username and password"},
		{"no speakers", ErrNoDevices, "powered on"},
		{"rate limited by message", errors.New("HTTP 429 too many requests"), "rate limiting"},
		{"timeout", ErrTimeout, "network connection"},
		{"unknown", errors.New("weird"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("GetSuggestion() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("GetSuggestion() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFormatIncludesSuggestion(t *testing.T) {
	msg := Format(ErrNoCredentials)
	if !strings.Contains(msg, "Error:") || !strings.Contains(msg, "Suggestion:") {
		t.Errorf("Format() = %q, want both error and suggestion", msg)
	}

	msg = Format(errors.New("weird"))
	if strings.Contains(msg, "Suggestion:") {
		t.Errorf("Format() = %q, want no suggestion section", msg)
	}
}

func TestPartialResult(t *testing.T) {
	var p PartialResult[[]string]
	p.Data = append(p.Data, "a")
	p.AddError(nil)

	if p.HasErrors() {
		t.Error("HasErrors() = true before any error added")
	}

	p.AddError(errors.New("first"))
	p.AddError(errors.New("second"))

	if !p.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	summary := p.ErrorSummary()
	if !strings.Contains(summary, "2 errors") || !strings.Contains(summary, "first") {
		t.Errorf("ErrorSummary() = %q, want a numbered summary", summary)
	}
}
