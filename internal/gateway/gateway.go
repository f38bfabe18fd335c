package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"personal-assistant/internal/agent"
	"personal-assistant/pkg/log"
)

const healthProbeTimeout = 5 * time.Second

// Gateway is the single broker between the reasoning loop and the tool
// adapters. It owns the catalog, enforces per-adapter backpressure and
// per-invocation deadlines, and resolves each invocation exactly once.
type Gateway struct {
	cfg Config
	l   log.Logger

	mu       sync.RWMutex
	adapters map[string]*registeredAdapter
	tools    map[string]*registeredAdapter
	descs    map[string]agent.ToolDescriptor

	hub *hub
}

type registeredAdapter struct {
	adapter Adapter
	sem     chan struct{}
	serial  sync.Mutex
	healthy bool
}

// New creates a gateway with no registered adapters.
func New(cfg Config, l log.Logger) *Gateway {
	if cfg.AdapterConcurrency <= 0 {
		cfg.AdapterConcurrency = 1
	}
	return &Gateway{
		cfg:      cfg,
		l:        l,
		adapters: make(map[string]*registeredAdapter),
		tools:    make(map[string]*registeredAdapter),
		descs:    make(map[string]agent.ToolDescriptor),
		hub:      newHub(),
	}
}

// Register adds an adapter and publishes its tools to the catalog.
// Duplicate adapter or tool names are rejected.
func (g *Gateway) Register(a Adapter) error {
	g.mu.Lock()
	if _, exists := g.adapters[a.Name()]; exists {
		g.mu.Unlock()
		return fmt.Errorf("gateway: adapter %q already registered", a.Name())
	}

	descriptors := a.Descriptors()
	for _, d := range descriptors {
		if _, exists := g.tools[d.Name]; exists {
			g.mu.Unlock()
			return fmt.Errorf("gateway: tool %q already registered", d.Name)
		}
	}

	ra := &registeredAdapter{
		adapter: a,
		sem:     make(chan struct{}, g.cfg.AdapterConcurrency),
		healthy: true,
	}
	g.adapters[a.Name()] = ra
	for _, d := range descriptors {
		g.tools[d.Name] = ra
		g.descs[d.Name] = d
	}
	g.mu.Unlock()

	g.hub.broadcast(Event{Type: EventCatalog, Catalog: g.Catalog()})
	return nil
}

// Catalog returns descriptors for every tool whose adapter is currently
// healthy, sorted by tool name.
func (g *Gateway) Catalog() []agent.ToolDescriptor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]agent.ToolDescriptor, 0, len(g.descs))
	for name, ra := range g.tools {
		if ra.healthy {
			out = append(out, g.descs[name])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke executes one tool call end to end: capacity admission, dispatch
// to the owning adapter under the per-invocation deadline, and exactly-once
// resolution. The returned invocation is terminal; on failure the error is
// always a *ToolError.
func (g *Gateway) Invoke(ctx context.Context, sessionID, toolName string, args map[string]interface{}) (*Invocation, error) {
	inv := &Invocation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ToolName:  toolName,
		Args:      args,
		Status:    StatusPending,
		StartedAt: time.Now(),
	}

	g.mu.RLock()
	ra, known := g.tools[toolName]
	healthy := known && ra.healthy
	g.mu.RUnlock()

	if !known {
		return g.reject(inv, NewToolError(KindValidation, fmt.Sprintf("unknown tool %q", toolName), nil))
	}
	if !healthy {
		return g.reject(inv, NewToolError(KindProvider, fmt.Sprintf("tool %q is temporarily unavailable", toolName), nil))
	}

	g.publishInvocation(inv)

	queueTimer := time.NewTimer(g.cfg.QueueWait)
	defer queueTimer.Stop()
	select {
	case ra.sem <- struct{}{}:
	case <-queueTimer.C:
		return g.reject(inv, NewToolError(KindCapacity, fmt.Sprintf("tool %q is at capacity", toolName), nil))
	case <-ctx.Done():
		return g.reject(inv, NewToolError(KindCapacity, "canceled while waiting for capacity", ctx.Err()))
	}

	if !ra.adapter.Reentrant() {
		ra.serial.Lock()
	}

	inv.Status = StatusDispatched
	g.publishInvocation(inv)

	// The adapter call is detached from caller cancellation so a dispatched
	// invocation runs to completion or deadline even if the caller goes away.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cfg.InvokeTimeout)

	done := make(chan struct{})
	var once sync.Once
	resolve := func(status Status, result string, terr *ToolError) bool {
		fired := false
		once.Do(func() {
			inv.Status = status
			inv.Result = result
			inv.Err = terr
			fired = true
			close(done)
		})
		return fired
	}

	go func() {
		defer func() {
			cancel()
			if !ra.adapter.Reentrant() {
				ra.serial.Unlock()
			}
			<-ra.sem
		}()

		result, err := ra.adapter.Invoke(callCtx, toolName, args)
		var delivered bool
		if err != nil {
			delivered = resolve(StatusFailed, "", AsToolError(err))
		} else {
			delivered = resolve(StatusSucceeded, result, nil)
		}
		if !delivered {
			g.l.Warnf(context.WithoutCancel(callCtx), "gateway: dropped late completion of invocation %s (%s)", inv.ID, toolName)
		}
	}()

	select {
	case <-done:
	case <-callCtx.Done():
		resolve(StatusTimedOut, "", NewToolError(KindTimeout, fmt.Sprintf("tool %q exceeded its %s deadline", toolName, g.cfg.InvokeTimeout), callCtx.Err()))
	case <-ctx.Done():
		resolve(StatusTimedOut, "", NewToolError(KindTimeout, "caller canceled before completion", ctx.Err()))
	}

	g.publishInvocation(inv)
	if inv.Err != nil {
		return inv, inv.Err
	}
	return inv, nil
}

func (g *Gateway) reject(inv *Invocation, terr *ToolError) (*Invocation, error) {
	if terr.Kind == KindTimeout {
		inv.Status = StatusTimedOut
	} else {
		inv.Status = StatusFailed
	}
	inv.Err = terr
	g.publishInvocation(inv)
	return inv, terr
}

// Run drives the background health loop until ctx is canceled. Adapters
// that fail a probe have their tools removed from the catalog; they are
// restored when a later probe succeeds.
func (g *Gateway) Run(ctx context.Context) {
	if g.cfg.HealthCheckInterval <= 0 {
		return
	}
	ticker := time.NewTicker(g.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.checkHealth(ctx)
		}
	}
}

func (g *Gateway) checkHealth(ctx context.Context) {
	g.mu.RLock()
	snapshot := make(map[string]*registeredAdapter, len(g.adapters))
	for name, ra := range g.adapters {
		snapshot[name] = ra
	}
	g.mu.RUnlock()

	changed := false
	for name, ra := range snapshot {
		probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		healthy := ra.adapter.Healthy(probeCtx)
		cancel()

		g.mu.Lock()
		if ra.healthy != healthy {
			ra.healthy = healthy
			changed = true
			if healthy {
				g.l.Infof(ctx, "gateway: adapter %q recovered, tools restored to catalog", name)
			} else {
				g.l.Warnf(ctx, "gateway: adapter %q failed health check, tools removed from catalog", name)
			}
		}
		g.mu.Unlock()
	}

	if changed {
		g.hub.broadcast(Event{Type: EventCatalog, Catalog: g.Catalog()})
	}
}

func (g *Gateway) publishInvocation(inv *Invocation) {
	ev := &InvocationEvent{
		ID:        inv.ID,
		SessionID: inv.SessionID,
		ToolName:  inv.ToolName,
		Status:    inv.Status,
	}
	if inv.Err != nil {
		ev.Error = inv.Err.Message
	}
	g.hub.broadcast(Event{Type: EventInvocation, Invocation: ev})
}
