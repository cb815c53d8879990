package adaptor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"seat-reservation/internal/broadcast"

	"go.uber.org/zap"
)

// heartbeatInterval keeps idle SSE connections alive through proxies and
// load balancers with idle timeouts.
const heartbeatInterval = 15 * time.Second

type EventsHandler struct {
	hub *broadcast.Hub
	log *zap.Logger
}

func NewEventsHandler(hub *broadcast.Hub, log *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		log: log.With(zap.String("handler", "events")),
	}
}

// Stream handles GET /api/admin/events: a server-sent-events stream of
// reservation lifecycle events for the admin dashboard.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	h.log.Info("Observer connected", zap.String("ip", r.RemoteAddr))
	defer h.log.Info("Observer disconnected", zap.String("ip", r.RemoteAddr))

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, open := <-sub.C:
			if !open {
				// Pruned as a slow observer or the hub shut down.
				return
			}

			payload, err := json.Marshal(event.Payload)
			if err != nil {
				h.log.Error("Failed to marshal event payload",
					zap.Error(err),
					zap.String("event_type", event.Type))
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
