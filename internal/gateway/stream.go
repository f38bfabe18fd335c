package gateway

import (
	"sync"

	"personal-assistant/internal/agent"
)

// EventType discriminates stream events.
type EventType string

const (
	// EventCatalog carries the full current catalog.
	EventCatalog EventType = "catalog"

	// EventInvocation carries one invocation lifecycle transition.
	EventInvocation EventType = "invocation"
)

// Event is one message on the tool stream.
type Event struct {
	Type       EventType              `json:"type"`
	Catalog    []agent.ToolDescriptor `json:"catalog,omitempty"`
	Invocation *InvocationEvent       `json:"invocation,omitempty"`
}

// InvocationEvent is the streamed view of an invocation transition.
// Arguments and results stay off the stream; they may contain user data.
type InvocationEvent struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	ToolName  string `json:"tool_name"`
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
}

const clientBuffer = 32

type hub struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan Event]struct{})}
}

// Subscribe attaches a stream client. The first event is always the full
// current catalog, so reconnecting clients never need delta resumption.
// The returned cancel func detaches the client and closes its channel.
func (g *Gateway) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, clientBuffer)
	ch <- Event{Type: EventCatalog, Catalog: g.Catalog()}

	g.hub.mu.Lock()
	g.hub.clients[ch] = struct{}{}
	g.hub.mu.Unlock()

	cancel := func() {
		g.hub.mu.Lock()
		defer g.hub.mu.Unlock()
		if _, ok := g.hub.clients[ch]; ok {
			delete(g.hub.clients, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// broadcast fans an event out to every client. Slow clients drop events
// rather than block the gateway; a reconnect restores a consistent view
// via the full-catalog snapshot.
func (h *hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}
