package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Client abstracts text-completion providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a provider-neutral completion request. Prompts are built by
// the caller; the provider only adds transport concerns.
type Request struct {
	System     string
	User       string
	MaxTokens  int
	JSONObject bool
}

// ErrEmptyResponse indicates a success response with no textual content.
var ErrEmptyResponse = errors.New("llm: empty response content")

// ErrNotConfigured is returned by the placeholder client when no provider
// credentials were supplied.
var ErrNotConfigured = errors.New("llm: client not configured")

// StatusError is a non-success HTTP response from the provider. The body
// is kept so callers can surface provider diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: http status %d: %s", e.StatusCode, e.Body)
}

// IsTransportError reports whether err is a retryable transport-level
// failure: network errors, timeouts, non-success statuses, or an empty
// completion. Quality shortfalls and parse failures are not transport
// errors and are handled by the orchestrator's gate instead.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "client.timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}

// PlaceholderClient stands in when no provider credentials are configured,
// so callers get a classifiable failure instead of a nil client.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}
