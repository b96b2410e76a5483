package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/gpiosample/internal/api/models"
	"github.com/smazurov/gpiosample/internal/events"
	"github.com/smazurov/gpiosample/internal/logging"
)

func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent logs",
		Description: "Get recent log entries from the in-memory ring buffer",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *models.LogsQuery) (*models.LogsResponse, error) {
		if input.Limit == 0 {
			return &models.LogsResponse{Body: models.LogsData{Entries: []models.LogLine{}}}, nil
		}
		entries := logging.GetBuffer().Recent(input.Limit, input.Module)

		lines := make([]models.LogLine, 0, len(entries))
		for _, entry := range entries {
			lines = append(lines, models.LogLine{
				Timestamp: entry.Timestamp.Format(time.RFC3339Nano),
				Level:     entry.Level,
				Module:    entry.Module,
				Message:   entry.Message,
				Attrs:     entry.Attributes,
				Line:      logging.FormatLogLine(entry),
			})
		}

		return &models.LogsResponse{
			Body: models.LogsData{Entries: lines, Count: len(lines)},
		}, nil
	})

	if s.options.EventBus == nil {
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Real-time log streaming via Server-Sent Events. Sends buffered logs first, then streams new logs.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Subscribe before replaying so nothing is lost in between.
		stream := events.NewStream(100)
		events.Forward[events.LogEntryEvent](s.options.EventBus, stream)
		defer stream.Close()

		for _, entry := range logging.GetBuffer().ReadAll() {
			if err := send.Data(LogEntryEvent(entry)); err != nil {
				return
			}
		}

		s.pump(ctx, stream, send)
	})
}

// LogEntryEvent converts a buffered log entry to its bus event.
func LogEntryEvent(entry logging.LogEntry) events.LogEntryEvent {
	return events.LogEntryEvent{
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		Attributes: entry.Attributes,
	}
}
