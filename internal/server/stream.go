package server

import (
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/gin-gonic/gin"
)

const (
	streamEventHeartbeat = "heartbeat"
	streamSource         = "roster-api"
)

type notificationPayload struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"kind"`
	Message        string    `json:"message"`
	RecordID       string    `json:"record_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAfterMS int64     `json:"expires_after_ms"`
}

type heartbeatPayload struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

func newNotificationPayload(event notify.Event) notificationPayload {
	return notificationPayload{
		ID:             event.ID,
		Kind:           string(event.Kind),
		Message:        event.Message,
		RecordID:       event.RecordID,
		CreatedAt:      event.CreatedAt,
		ExpiresAfterMS: event.ExpiresAfter.Milliseconds(),
	}
}

func (h *httpHandler) handleActiveNotifications(c *gin.Context) {
	active := h.feed.Active()
	payload := make([]notificationPayload, 0, len(active))
	for _, event := range active {
		payload = append(payload, newNotificationPayload(event))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": payload})
}

// handleNotificationStream replays the visible notifications, then forwards new
// ones as server-sent events named after their kind.
func (h *httpHandler) handleNotificationStream(c *gin.Context) {
	ctx := c.Request.Context()
	events, cleanup := h.feed.Subscribe(ctx)
	defer cleanup()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	var replayedThrough int64
	for _, event := range h.feed.Active() {
		c.SSEvent(string(event.Kind), newNotificationPayload(event))
		replayedThrough = event.ID
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.ID <= replayedThrough {
				continue
			}
			c.SSEvent(string(event.Kind), newNotificationPayload(event))
			c.Writer.Flush()
		case tick := <-ticker.C:
			c.SSEvent(streamEventHeartbeat, heartbeatPayload{Source: streamSource, Timestamp: tick.UTC()})
			c.Writer.Flush()
		}
	}
}
