// Package core holds the small set of types shared by every engine
// component: the error envelope, opaque identifiers, and nothing else.
package core

// Kind enumerates the error taxonomy surfaced by the config registry and
// workflow engine. Kinds classify failures; they are not Go error types,
// so callers compare *Error.Code or use errors.As for richer errors such
// as *AgentExecutionError.
type Kind string

const (
	KindConfigNotFound       Kind = "config_not_found"
	KindConfigInvalid        Kind = "config_invalid"
	KindFileIO               Kind = "file_io"
	KindIncludeDepthExceeded Kind = "include_depth_exceeded"
	KindWorkflowNotFound     Kind = "workflow_not_found"
	KindAgentNotFound        Kind = "agent_not_found"
	KindUnsupportedProvider  Kind = "unsupported_provider"
	KindMissingCredential    Kind = "missing_credential"
	KindProviderHTTP         Kind = "provider_http"
	KindProviderTimeout      Kind = "provider_timeout"
	KindRouterParse          Kind = "router_parse"
	KindInternal             Kind = "internal"
)

// Error is the engine-wide error envelope. It carries a human-readable
// message, a taxonomy Code, optional structured Details, and wraps the
// underlying cause for errors.Is/errors.As chains.
type Error struct {
	Message string         `json:"message,omitempty"`
	Code    Kind           `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

// NewError builds an *Error from an underlying cause (which may be nil),
// a taxonomy code, and optional structured details.
func NewError(err error, code Kind, details map[string]any) *Error {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	return &Error{
		Message: message,
		Code:    code,
		Details: details,
		cause:   err,
	}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// AsMap renders the error as a plain map suitable for a JSON error body.
// Returns nil for a nil or empty error.
func (e *Error) AsMap() map[string]any {
	if e == nil || (e.Message == "" && e.Code == "" && e.Details == nil) {
		return nil
	}
	return map[string]any{
		"message": e.Message,
		"code":    string(e.Code),
		"details": e.Details,
	}
}
