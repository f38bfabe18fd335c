package orchestrator

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"personal-assistant/pkg/log"
)

// Orchestrator runs the reasoning loop per chat session. Sessions are
// isolated: one session's in-flight tool call never blocks another
// session's progress.
type Orchestrator struct {
	llm LLM
	gw  ToolGateway
	l   log.Logger
	cfg Config

	smu      sync.Mutex
	sessions *expirable.LRU[string, *Session]
}

func New(llm LLM, gw ToolGateway, l log.Logger, cfg Config) *Orchestrator {
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.MaxToolIterations <= 0 {
		cfg.MaxToolIterations = 5
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 10 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1024
	}

	return &Orchestrator{
		llm:      llm,
		gw:       gw,
		l:        l,
		cfg:      cfg,
		sessions: expirable.NewLRU[string, *Session](cfg.MaxSessions, nil, cfg.SessionTTL),
	}
}

// session returns the live session for id, creating it on first use.
// Idle sessions are garbage-collected by the LRU's TTL.
func (o *Orchestrator) session(id string) *Session {
	o.smu.Lock()
	defer o.smu.Unlock()

	if sess, ok := o.sessions.Get(id); ok {
		return sess
	}
	sess := &Session{ID: id, CreatedAt: time.Now()}
	o.sessions.Add(id, sess)
	return sess
}
