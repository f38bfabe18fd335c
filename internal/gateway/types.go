package gateway

import (
	"context"
	"time"

	"personal-assistant/internal/agent"
)

// Status is the lifecycle state of an invocation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed_out"
)

// Invocation is one correlated tool call. The gateway owns the status
// transitions; once terminal it never changes again.
type Invocation struct {
	ID        string                 `json:"id"`
	SessionID string                 `json:"session_id"`
	ToolName  string                 `json:"tool_name"`
	Args      map[string]interface{} `json:"-"`
	Status    Status                 `json:"status"`
	Result    string                 `json:"-"`
	Err       *ToolError             `json:"-"`
	StartedAt time.Time              `json:"started_at"`
}

// Adapter is a provider integration that serves one or more tools.
type Adapter interface {
	// Name identifies the adapter (unique across registrations).
	Name() string

	// Descriptors returns the tools this adapter serves.
	Descriptors() []agent.ToolDescriptor

	// Invoke executes one tool call and returns a natural-language
	// result the reasoning loop can feed back to the LLM.
	Invoke(ctx context.Context, tool string, args map[string]interface{}) (string, error)

	// Healthy reports whether the adapter can currently reach its provider.
	Healthy(ctx context.Context) bool

	// Reentrant reports whether concurrent invocations of this adapter's
	// tools are safe. Non-reentrant adapters are serialized.
	Reentrant() bool
}

// Config bounds gateway behavior.
type Config struct {
	// AdapterConcurrency caps in-flight invocations per adapter.
	AdapterConcurrency int

	// QueueWait bounds how long a call waits for capacity before it is
	// rejected with KindCapacity.
	QueueWait time.Duration

	// InvokeTimeout is the per-invocation deadline.
	InvokeTimeout time.Duration

	// HealthCheckInterval is how often adapter health is probed. Zero
	// disables the background loop.
	HealthCheckInterval time.Duration
}
