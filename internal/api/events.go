package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/ledcontroller/internal/events"
)

// ConnectedEvent opens every event stream.
type ConnectedEvent struct {
	Message   string `json:"message" example:"SSE connection established"`
	Bridged   int    `json:"bridged" example:"3" doc:"Number of LEDs bridged when the stream opened"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z"`
}

// registerSSERoutes registers the bridge event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of LEDs being bridged, removed, or requested without a sysfs directory",
		Tags:        []string{"events"},
	}, map[string]any{
		"connected":   ConnectedEvent{},
		"led-added":   events.LEDAddedEvent{},
		"led-removed": events.LEDRemovedEvent{},
		"led-missing": events.LEDMissingEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)
		unsubscribe := events.SubscribeBridgeEvents(s.eventBus, eventCh)
		defer unsubscribe()

		if err := send.Data(ConnectedEvent{
			Message:   "SSE connection established",
			Bridged:   s.bridgedCount(),
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
