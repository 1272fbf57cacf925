package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/draftline/draftline/internal/events"
	"github.com/draftline/draftline/internal/logger"
)

// EventsHandler streams per-project job events over SSE.
type EventsHandler struct {
	bus    *events.Bus
	logger *logger.Logger
}

// NewEventsHandler creates a new events handler.
// Parameters:
//   - bus: in-process event bus.
//   - log: logger instance.
// Returns:
//   - *EventsHandler: initialized handler.
func NewEventsHandler(bus *events.Bus, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		bus:    bus,
		logger: log,
	}
}

// Stream handles GET /api/v1/projects/:project/events. Events are hints:
// delivery is at-least-once while the client keeps up, and slow consumers
// lose events instead of blocking the producers. Clients reconcile by
// re-fetching the status snapshot.
// Parameters:
//   - c: Gin request context.
// Returns: none (streams text/event-stream until the client disconnects).
func (h *EventsHandler) Stream(c *gin.Context) {
	projectID := c.Param("project")
	ctx := c.Request.Context()

	ch, cancel := h.bus.Subscribe(projectID)
	defer cancel()

	logger.CtxDebug(ctx, "SSE subscriber connected: project=%s, client_ip=%s", projectID, c.ClientIP())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev.Data)
			return true
		case <-ctx.Done():
			return false
		}
	})

	logger.CtxDebug(ctx, "SSE subscriber disconnected: project=%s, client_ip=%s", projectID, c.ClientIP())
}
