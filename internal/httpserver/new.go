package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"personal-assistant/internal/agent"
	"personal-assistant/internal/gateway"
	"personal-assistant/pkg/log"
)

// Agent is the reasoning surface the chat endpoint drives.
// *orchestrator.Orchestrator satisfies it.
type Agent interface {
	ProcessQuery(ctx context.Context, sessionID, query string) (string, error)
}

// ToolStream exposes the catalog and the event stream.
// *gateway.Gateway satisfies it.
type ToolStream interface {
	Catalog() []agent.ToolDescriptor
	Subscribe() (<-chan gateway.Event, func())
}

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string

	assistant Agent
	tools     ToolStream
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string

	Agent Agent
	Tools ToolStream
}

// New creates a new HTTPServer instance.
func New(cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:           cfg.Logger,
		gin:         gin.New(),
		port:        cfg.Port,
		mode:        cfg.Mode,
		environment: cfg.Environment,
		assistant:   cfg.Agent,
		tools:       cfg.Tools,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	srv.mapHandlers()
	return srv, nil
}

func (srv *HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.assistant == nil {
		return errors.New("agent is required")
	}
	if srv.tools == nil {
		return errors.New("tool stream is required")
	}
	return nil
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (srv *HTTPServer) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.port),
		Handler: srv.gin,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.l.Infof(ctx, "HTTP server listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.l.Infof(shutdownCtx, "HTTP server shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
