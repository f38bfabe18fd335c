package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a tool invocation failure. The set is closed; the
// orchestrator relies on it to decide between feeding the error back to
// the LLM and telling the user to (re)authorize.
type Kind string

const (
	// KindValidation marks malformed tool arguments or an unknown tool.
	KindValidation Kind = "validation"

	// KindTimeout marks a dispatched call that exceeded its deadline.
	KindTimeout Kind = "timeout"

	// KindProvider marks a call the external API rejected or failed.
	KindProvider Kind = "provider"

	// KindAuthorizationRequired marks a missing or unrecoverable credential.
	KindAuthorizationRequired Kind = "authorization_required"

	// KindCapacity marks a call rejected by adapter backpressure.
	KindCapacity Kind = "capacity_exceeded"
)

// ToolError is a classified tool invocation failure.
type ToolError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError builds a classified error, optionally wrapping a cause.
func NewToolError(kind Kind, message string, cause error) *ToolError {
	return &ToolError{Kind: kind, Message: message, Err: cause}
}

// AsToolError extracts a ToolError from err; any other error is wrapped
// as a provider failure so callers always see a classified kind.
func AsToolError(err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{Kind: KindProvider, Message: err.Error(), Err: err}
}
