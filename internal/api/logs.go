package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/ledcontroller/internal/api/models"
	"github.com/smazurov/ledcontroller/internal/events"
	"github.com/smazurov/ledcontroller/internal/logging"
)

func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent Logs",
		Description: "Return buffered log entries, optionally filtered by level and module",
		Tags:        []string{"logs"},
	}, func(ctx context.Context, input *models.LogsInput) (*models.LogsResponse, error) {
		entries := []events.LogEntryEvent{}
		if buffer := logging.GetBuffer(); buffer != nil {
			for _, entry := range buffer.Filter(func(e logging.LogEntry) bool {
				return (input.Level == "" || e.Level == input.Level) &&
					(input.Module == "" || e.Module == input.Module)
			}) {
				entries = append(entries, events.FromLogEntry(entry))
			}
		}

		return &models.LogsResponse{
			Body: models.LogsData{
				Entries: entries,
				Count:   len(entries),
			},
		}, nil
	})

	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Real-time log streaming via Server-Sent Events. Sends buffered logs first, then streams new logs.",
		Tags:        []string{"logs"},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Subscribe before replaying so nothing falls between the two
		eventCh := make(chan any, 100)
		unsubscribe := events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, eventCh)
		defer unsubscribe()

		if buffer := logging.GetBuffer(); buffer != nil {
			for _, entry := range buffer.ReadAll() {
				if err := send.Data(events.FromLogEntry(entry)); err != nil {
					return
				}
			}
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
