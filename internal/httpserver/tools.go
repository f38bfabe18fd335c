package httpserver

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"personal-assistant/pkg/response"
)

// handleToolCatalog returns a snapshot of the live tool catalog.
// @Summary Tool catalog
// @Description List the tools currently available to the assistant
// @Tags Tools
// @Produce json
// @Success 200 {object} response.Resp "Current tool descriptors"
// @Router /tools [get]
func (srv *HTTPServer) handleToolCatalog(c *gin.Context) {
	response.OK(c, gin.H{"tools": srv.tools.Catalog()})
}

// handleToolStream streams catalog and invocation lifecycle events over
// SSE. Every new connection starts with the full catalog, so clients
// reconnect without delta bookkeeping.
// @Summary Tool event stream
// @Description SSE stream of catalog updates and invocation transitions
// @Tags Tools
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /tools/stream [get]
func (srv *HTTPServer) handleToolStream(c *gin.Context) {
	events, cancel := srv.tools.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				srv.l.Errorf(ctx, "failed to marshal stream event: %v", err)
				continue
			}
			c.SSEvent(string(ev.Type), string(payload))
			c.Writer.Flush()
		}
	}
}
