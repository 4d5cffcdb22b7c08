package gateway

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned by New when no credential is configured.
// Every model-dependent feature is dead without it, so callers surface it
// once, at the point of first use.
var ErrMissingAPIKey = errors.New("gateway: API key is not configured (set API_KEY)")

// AuthError means a credential was present but rejected by the provider.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("gateway: authentication rejected: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// GenerationError wraps any other failure from a one-shot or streaming call.
// Op names the failed operation for diagnostics.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("gateway: %s failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// VideoError is a terminal video-generation failure: the operation finished
// with a provider error or without the expected artifact URI.
type VideoError struct {
	Reason string
	Err    error
}

func (e *VideoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: video generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("gateway: video generation failed: %s", e.Reason)
}

func (e *VideoError) Unwrap() error { return e.Err }

// classify decides the typed error at the transport boundary, so nothing
// downstream has to pattern-match provider message text.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		if apiErr.Code == 401 || apiErr.Code == 403 || strings.Contains(msg, "api key not valid") || strings.Contains(msg, "api key expired") {
			return &AuthError{Err: err}
		}
	}
	return &GenerationError{Op: op, Err: err}
}

// IsAuth reports whether err, anywhere in its chain, is a credential
// rejection.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
