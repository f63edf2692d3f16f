package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MelvinKr/CutlyAI/internal/events"
)

// FeedHandler streams change feed events over SSE.
type FeedHandler struct {
	*BaseHandler
	hub *events.Hub
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(base *BaseHandler, hub *events.Hub) *FeedHandler {
	return &FeedHandler{
		BaseHandler: base,
		hub:         hub,
	}
}

// Stream handles GET /feed
// Streams the tenant's change events as server-sent events until the client
// disconnects. The optional "tables" query parameter narrows the
// subscription to a comma-separated list of table names.
func (h *FeedHandler) Stream(c *gin.Context) {
	var tables []string
	if raw := c.Query("tables"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}

	ch, cancel := h.hub.Subscribe(h.TenantID(c), tables...)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("change", event)
			return true
		case <-clientGone:
			return false
		}
	})
}
