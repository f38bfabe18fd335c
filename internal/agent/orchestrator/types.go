package orchestrator

import (
	"context"
	"sync"
	"time"

	"personal-assistant/internal/agent"
	"personal-assistant/internal/gateway"
	"personal-assistant/pkg/llmprovider"
)

// LLM is the reasoning model surface. *llmprovider.Manager satisfies it.
type LLM interface {
	GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error)
}

// ToolGateway is the invocation broker surface. *gateway.Gateway satisfies it.
type ToolGateway interface {
	Catalog() []agent.ToolDescriptor
	Invoke(ctx context.Context, sessionID, toolName string, args map[string]interface{}) (*gateway.Invocation, error)
}

// Config bounds the reasoning loop.
type Config struct {
	Timezone          string
	MaxToolIterations int
	SessionTTL        time.Duration
	MaxSessions       int
}

// Session holds one conversation's bounded history. The mutex serializes
// turns: no two reasoning loops for the same session overlap.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	history    []llmprovider.Message
	lastActive time.Time
}
