package workflow

import (
	"context"
	"errors"
	"net/http"
)

// AgentExecutionError wraps any failure raised while invoking an agent's
// model, classified with an HTTP-shaped status code and whether a caller
// could reasonably retry.
type AgentExecutionError struct {
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

func (e *AgentExecutionError) Error() string { return e.Message }
func (e *AgentExecutionError) Unwrap() error { return e.Cause }

// httpStatusError is the shape a provider client error is expected to
// satisfy when it originates from a non-2xx HTTP response.
type httpStatusError interface {
	StatusCode() int
}

// classifyAgentError maps a raw error from a ChatModel invocation into an
// AgentExecutionError per the engine's fixed classification table.
func classifyAgentError(err error) *AgentExecutionError {
	var existing *AgentExecutionError
	if errors.As(err, &existing) {
		return existing
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AgentExecutionError{Message: "request timed out", StatusCode: http.StatusRequestTimeout, Retryable: true, Cause: err}
	}

	var statusErr httpStatusError
	if errors.As(err, &statusErr) {
		return classifyHTTPStatus(statusErr.StatusCode(), err)
	}

	return &AgentExecutionError{Message: err.Error(), StatusCode: http.StatusInternalServerError, Retryable: false, Cause: err}
}

func classifyHTTPStatus(status int, cause error) *AgentExecutionError {
	switch status {
	case http.StatusNotFound:
		return &AgentExecutionError{Message: cause.Error(), StatusCode: http.StatusNotFound, Retryable: false, Cause: cause}
	case http.StatusUnauthorized:
		return &AgentExecutionError{Message: cause.Error(), StatusCode: http.StatusUnauthorized, Retryable: false, Cause: cause}
	case http.StatusTooManyRequests:
		return &AgentExecutionError{Message: "Rate limit exceeded: " + cause.Error(), StatusCode: http.StatusTooManyRequests, Retryable: true, Cause: cause}
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return &AgentExecutionError{Message: cause.Error(), StatusCode: status, Retryable: true, Cause: cause}
	default:
		return &AgentExecutionError{Message: cause.Error(), StatusCode: status, Retryable: false, Cause: cause}
	}
}
